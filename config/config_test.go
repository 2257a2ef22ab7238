package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(NewViper())
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.App.Environment)
	assert.True(t, cfg.UsesMemoryStore())
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, []string{"*"}, cfg.HTTP.AllowedOrigins)

	assert.Equal(t, 80.0, cfg.Economics.CertificateThreshold)
	assert.True(t, cfg.Economics.DefaultPlatformPercent.Equal(decimal.NewFromInt(30)))
	assert.True(t, cfg.Economics.DefaultMentorPercent.Equal(decimal.NewFromInt(70)))
	assert.Equal(t, "independent", cfg.Economics.RoundingMode)
	assert.Equal(t, 30, cfg.Economics.InstallmentCadenceDays)

	assert.Equal(t, 72*time.Hour, cfg.Scheduler.ReminderLookAhead)
	assert.True(t, cfg.Features.IsEnabled(FeatureEarningsCache))
}

func TestLoadFrom_Environment(t *testing.T) {
	t.Setenv("APP_ENV", "staging")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("ECON_DEFAULT_PLATFORM_PERCENT", "25.5")
	t.Setenv("ECON_DEFAULT_MENTOR_PERCENT", "74.5")
	t.Setenv("ECON_ROUNDING_MODE", "Reconciled")
	t.Setenv("SCHEDULER_REMINDER_LOOKAHEAD", "24h")
	t.Setenv("HTTP_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("FEATURE_CERTIFICATE_ISSUANCE_LOCK", "false")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_USER", "econ")
	t.Setenv("DB_PASSWORD", "secret")

	cfg, err := LoadFrom(NewViper())
	require.NoError(t, err)

	assert.Equal(t, EnvStaging, cfg.App.Environment)
	assert.Equal(t, 9000, cfg.HTTP.Port)
	assert.Equal(t, "reconciled", cfg.Economics.RoundingMode)
	assert.True(t, cfg.Economics.DefaultPlatformPercent.Equal(decimal.RequireFromString("25.5")))
	assert.Equal(t, 24*time.Hour, cfg.Scheduler.ReminderLookAhead)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.AllowedOrigins)
	assert.False(t, cfg.Features.IsEnabled(FeatureIssuanceLock))
	assert.Equal(t, "postgres://econ:secret@db:5432/postgres?sslmode=require", cfg.Database.URL)
	assert.False(t, cfg.UsesMemoryStore())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"split not summing to 100", map[string]string{"ECON_DEFAULT_PLATFORM_PERCENT": "40"}, "sum to 100"},
		{"negative split", map[string]string{"ECON_DEFAULT_PLATFORM_PERCENT": "-10", "ECON_DEFAULT_MENTOR_PERCENT": "110"}, "sum to 100"},
		{"cadence", map[string]string{"ECON_INSTALLMENT_CADENCE_DAYS": "14"}, "fixed at 30"},
		{"rounding", map[string]string{"ECON_ROUNDING_MODE": "bankers"}, "ECON_ROUNDING_MODE"},
		{"threshold", map[string]string{"ECON_CERTIFICATE_THRESHOLD": "120"}, "ECON_CERTIFICATE_THRESHOLD"},
		{"production without database", map[string]string{"APP_ENV": "production"}, "DATABASE_URL"},
		{"unknown environment", map[string]string{"APP_ENV": "qa"}, "APP_ENV"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadFrom(NewViper())
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadFrom_BadDecimal(t *testing.T) {
	t.Setenv("ECON_DEFAULT_MENTOR_PERCENT", "seventy")
	_, err := LoadFrom(NewViper())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ECON_DEFAULT_MENTOR_PERCENT")
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("HTTP_PORT=7070\nLOG_LEVEL=debug\n"), 0o600))

	t.Setenv("APP_ENV_FILE", path)
	// godotenv does not override variables that are already set
	t.Setenv("LOG_LEVEL", "warn")
	t.Cleanup(func() { _ = os.Unsetenv("HTTP_PORT") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.HTTP.Port)
	assert.Equal(t, "warn", cfg.Observability.LogLevel)
}

func TestFeatureFlags(t *testing.T) {
	ff := LoadFeatureFlags(nil)

	assert.True(t, ff.IsEnabled(FeatureInstallmentRemind))
	assert.False(t, ff.IsEnabled("unknown.feature"))

	require.NoError(t, ff.SetEnabled(FeatureInstallmentRemind, false))
	assert.False(t, ff.IsEnabled(FeatureInstallmentRemind))
	assert.ErrorIs(t, ff.SetEnabled("unknown.feature", true), ErrFeatureNotFound)

	all := ff.GetAllFeatures()
	require.Len(t, all, 4)
	assert.Equal(t, FeatureIssuanceLock, all[0].Name)

	var nilFlags *FeatureFlags
	assert.False(t, nilFlags.IsEnabled(FeatureEarningsCache))
}

func TestFeatureNameToEnvKey(t *testing.T) {
	assert.Equal(t, "FEATURE_EARNINGS_CACHE", featureNameToEnvKey(FeatureEarningsCache))
	assert.Equal(t, "FEATURE_CERTIFICATE_ISSUANCE_LOCK", featureNameToEnvKey(FeatureIssuanceLock))
}
