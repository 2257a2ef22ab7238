package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evolvix-software/course-economics/pkg/retry"
)

func TestNewConnectionFromURL_MalformedURLIsPermanent(t *testing.T) {
	conn, err := NewConnectionFromURL(context.Background(), "postgres://user:pa ss@:badport/db", DefaultPoolConfig())

	require.Error(t, err)
	assert.Nil(t, conn)
	assert.True(t, retry.IsPermanent(err))

	calls := 0
	_, err = retry.Value(context.Background(), retry.StartupRetrier(5, nil), func(ctx context.Context) (*Connection, error) {
		calls++
		return NewConnectionFromURL(ctx, "postgres://user:pa ss@:badport/db", DefaultPoolConfig())
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestGetMigrations_Ordered(t *testing.T) {
	migrations := GetMigrations()

	require.NotEmpty(t, migrations)
	for i, m := range migrations {
		assert.Equal(t, i+1, m.Version)
		assert.NotEmpty(t, m.UpSQL)
		assert.NotEmpty(t, m.DownSQL)
	}
}
