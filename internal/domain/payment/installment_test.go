package payment

import (
	"fmt"
	"testing"
	"time"

	"github.com/evolvix-software/course-economics/internal/domain/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildInstallmentSchedule_ThreeWay(t *testing.T) {
	start := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	entries, err := BuildInstallmentSchedule(dec("1000"), 3, start)

	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "333.33", entries[0].Amount.StringFixed(2))
	assert.Equal(t, "333.33", entries[1].Amount.StringFixed(2))
	assert.Equal(t, "333.34", entries[2].Amount.StringFixed(2))
	assert.Equal(t, "1000.00", ScheduleTotal(entries).StringFixed(2))

	for i, e := range entries {
		assert.Equal(t, i+1, e.Number)
		assert.Equal(t, start.Add(time.Duration(i)*30*24*time.Hour), e.DueDate)
	}
	assert.Equal(t, 30*24*time.Hour, entries[1].DueDate.Sub(entries[0].DueDate))
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), entries[1].DueDate, "fixed cadence ignores month lengths")
}

func TestBuildInstallmentSchedule_SumIsExact(t *testing.T) {
	totals := []string{"0", "0.01", "1", "99.99", "100", "1000", "12345.67", "100000"}

	for _, total := range totals {
		for n := 1; n <= 12; n++ {
			t.Run(fmt.Sprintf("%s/%d", total, n), func(t *testing.T) {
				entries, err := BuildInstallmentSchedule(dec(total), n, now)
				require.NoError(t, err)
				require.Len(t, entries, n)
				assert.True(t, ScheduleTotal(entries).Equal(dec(total)))
			})
		}
	}
}

func TestBuildInstallmentSchedule_RemainderGoesLast(t *testing.T) {
	entries, err := BuildInstallmentSchedule(dec("100"), 6, now)

	require.NoError(t, err)
	for _, e := range entries[:5] {
		assert.Equal(t, "16.67", e.Amount.StringFixed(2))
	}
	assert.Equal(t, "16.65", entries[5].Amount.StringFixed(2))
}

func TestBuildInstallmentSchedule_SingleEntry(t *testing.T) {
	entries, err := BuildInstallmentSchedule(dec("250.50"), 1, now)

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "250.50", entries[0].Amount.StringFixed(2))
	assert.Equal(t, now, entries[0].DueDate)
}

func TestBuildInstallmentSchedule_CadenceIgnoresDaylightSaving(t *testing.T) {
	newYork, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	start := time.Date(2026, 2, 20, 9, 0, 0, 0, newYork)

	entries, err := BuildInstallmentSchedule(dec("300"), 3, start)

	require.NoError(t, err)
	for i := 1; i < len(entries); i++ {
		assert.Equal(t, 720*time.Hour, entries[i].DueDate.Sub(entries[i-1].DueDate))
	}
}

func TestBuildInstallmentSchedule_NegativeRemainder(t *testing.T) {
	entries, err := BuildInstallmentSchedule(dec("0.05"), 10, now)

	require.NoError(t, err)
	assert.Equal(t, "0.01", entries[0].Amount.StringFixed(2))
	assert.Equal(t, "-0.04", entries[9].Amount.StringFixed(2))
	assert.True(t, ScheduleTotal(entries).Equal(dec("0.05")))

	err = RequirePayable(entries)
	assert.True(t, shared.IsInvalidConfiguration(err))
}

func TestRequirePayable(t *testing.T) {
	ok, err := BuildInstallmentSchedule(dec("1000"), 3, now)
	require.NoError(t, err)
	assert.NoError(t, RequirePayable(ok))

	zero, err := BuildInstallmentSchedule(dec("0"), 2, now)
	require.NoError(t, err)
	assert.True(t, shared.IsInvalidConfiguration(RequirePayable(zero)))
}

func TestBuildInstallmentSchedule_InvalidCount(t *testing.T) {
	_, err := BuildInstallmentSchedule(dec("1000"), MaxInstallments, now)
	assert.NoError(t, err)

	for _, n := range []int{MaxInstallments + 1, 2000000000} {
		entries, err := BuildInstallmentSchedule(dec("1"), n, now)
		assert.True(t, shared.IsInvalidConfiguration(err))
		assert.Nil(t, entries)
	}

	for _, n := range []int{0, -1} {
		_, err := BuildInstallmentSchedule(dec("1000"), n, now)
		assert.True(t, shared.IsInvalidConfiguration(err))
	}

	_, err = BuildInstallmentSchedule(dec("-1"), 2, now)
	assert.True(t, shared.IsInvalidConfiguration(err))

	_, err = BuildInstallmentSchedule(dec("100.005"), 2, now)
	assert.True(t, shared.IsInvalidConfiguration(err))
}

func TestNewInstallments(t *testing.T) {
	entries, err := BuildInstallmentSchedule(dec("900"), 3, now)
	require.NoError(t, err)

	n := 0
	ids := shared.IDGeneratorFunc(func() string {
		n++
		return fmt.Sprintf("inst-%d", n)
	})

	items := NewInstallments(Enrollment{CourseID: "c1", StudentID: "s1", MentorID: "m1"}, entries, ids, now)

	require.Len(t, items, 3)
	assert.Equal(t, "inst-3", items[2].ID)
	assert.Equal(t, 3, items[0].TotalInstallments)
	assert.Equal(t, InstallmentScheduled, items[1].Status)
	assert.True(t, items[0].NeedsReminder(now))
	assert.False(t, items[1].NeedsReminder(now.AddDate(0, 0, 29)))
	assert.True(t, items[1].NeedsReminder(now.AddDate(0, 0, 30)))

	reminded := now
	items[0].RemindedAt = &reminded
	assert.False(t, items[0].NeedsReminder(now))
}
