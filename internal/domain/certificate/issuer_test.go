package certificate

import (
	"strings"
	"testing"
	"time"

	"github.com/evolvix-software/course-economics/internal/domain/course"
	"github.com/evolvix-software/course-economics/internal/domain/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var issuedAt = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func courseWithDuration(text string) *course.Course {
	return &course.Course{ID: "course-1", MentorID: "mentor-1", DurationText: text}
}

func TestTryIssue_IssuesAtThreshold(t *testing.T) {
	p := NewProgress("student-1", "course-1", 80, issuedAt.Add(-time.Hour))

	got, ok := TryIssue(p, courseWithDuration("15 hours"), DefaultThreshold, issuedAt, "https://certs.example.com/")

	require.True(t, ok)
	assert.True(t, got.CertificateIssued)
	assert.True(t, strings.HasPrefix(got.CertificateID, IDPrefix))
	assert.Equal(t, "https://certs.example.com/"+got.CertificateID, got.CertificateURL)
	require.NotNil(t, got.CertificateIssuedAt)
	assert.Equal(t, issuedAt, *got.CertificateIssuedAt)
	assert.Equal(t, issuedAt, got.UpdatedAt)
	assert.Equal(t, StateIssued, got.State())
}

func TestTryIssue_BelowThreshold(t *testing.T) {
	p := NewProgress("student-1", "course-1", 79, issuedAt)

	got, ok := TryIssue(p, courseWithDuration("15 hours"), DefaultThreshold, issuedAt, "")

	assert.False(t, ok)
	assert.Equal(t, p, got)
	assert.Equal(t, StateNotIssued, got.State())
}

func TestTryIssue_Idempotent(t *testing.T) {
	p := NewProgress("student-1", "course-1", 95, issuedAt)
	c := courseWithDuration("3 months")

	first, ok := TryIssue(p, c, DefaultThreshold, issuedAt, "")
	require.True(t, ok)

	second, ok := TryIssue(first, c, DefaultThreshold, issuedAt.Add(24*time.Hour), "")
	assert.False(t, ok)
	assert.Equal(t, first, second)
}

func TestTryIssue_MentorSignatureFollowsTier(t *testing.T) {
	tests := []struct {
		duration string
		signed   bool
	}{
		{"3 hours", false},
		{"15 hours", false},
		{"45 hours", true},
		{"5 months", true},
	}

	for _, tt := range tests {
		t.Run(tt.duration, func(t *testing.T) {
			p := NewProgress("student-1", "course-1", 100, issuedAt)
			got, ok := TryIssue(p, courseWithDuration(tt.duration), DefaultThreshold, issuedAt, "")
			require.True(t, ok)
			assert.Equal(t, tt.signed, got.MentorSigned)
		})
	}
}

func TestTryIssue_CustomThreshold(t *testing.T) {
	p := NewProgress("student-1", "course-1", 60, issuedAt)

	_, ok := TryIssue(p, courseWithDuration("1 day"), 50, issuedAt, "")
	assert.True(t, ok)

	_, ok = TryIssue(p, courseWithDuration("1 day"), 61, issuedAt, "")
	assert.False(t, ok)
}

func TestTryIssue_DefaultURL(t *testing.T) {
	p := NewProgress("student-1", "course-1", 100, issuedAt)

	got, ok := TryIssue(p, courseWithDuration("1 day"), DefaultThreshold, issuedAt, "")

	require.True(t, ok)
	assert.Equal(t, "/certificates/"+got.CertificateID, got.CertificateURL)
}

func TestIssuer_UsesClockAndDefaults(t *testing.T) {
	issuer := NewIssuer(IssuerConfig{URLPrefix: "https://certs.example.com"}, shared.FixedClock(issuedAt))
	assert.Equal(t, DefaultThreshold, issuer.Threshold())

	got, ok := issuer.TryIssue(NewProgress("student-1", "course-1", 80, issuedAt), courseWithDuration("15 hours"))

	require.True(t, ok)
	assert.Equal(t, issuedAt, *got.CertificateIssuedAt)
	assert.Equal(t, "https://certs.example.com/"+got.CertificateID, got.CertificateURL)

	_, ok = issuer.TryIssueWithThreshold(NewProgress("student-2", "course-1", 80, issuedAt), courseWithDuration("15 hours"), 90)
	assert.False(t, ok)
}

func TestNewCertificateID(t *testing.T) {
	a := NewCertificateID("student-1", "course-1", issuedAt)

	assert.Equal(t, a, NewCertificateID("student-1", "course-1", issuedAt))
	assert.NotEqual(t, a, NewCertificateID("student-2", "course-1", issuedAt))
	assert.NotEqual(t, a, NewCertificateID("student-1", "course-2", issuedAt))
	assert.NotEqual(t, a, NewCertificateID("student-1", "course-1", issuedAt.Add(time.Nanosecond)))
	assert.NotEqual(t, NewCertificateID("ab", "c", issuedAt), NewCertificateID("a", "bc", issuedAt))
	assert.Len(t, a, len(IDPrefix)+20)
}

func TestProgress_ClampsPercentage(t *testing.T) {
	assert.Equal(t, 0.0, NewProgress("s", "c", -5, issuedAt).ProgressPercentage)
	assert.Equal(t, 100.0, NewProgress("s", "c", 140, issuedAt).ProgressPercentage)
	assert.Equal(t, 42.5, NewProgress("s", "c", 10, issuedAt).WithPercentage(42.5, issuedAt).ProgressPercentage)
}

func TestTryIssue_NilCourse(t *testing.T) {
	p := NewProgress("student-1", "course-1", 100, issuedAt)

	got, ok := TryIssue(p, nil, DefaultThreshold, issuedAt, "")

	assert.False(t, ok)
	assert.Equal(t, p, got)
}

func TestProgress_LowerPercentageKeepsCertificate(t *testing.T) {
	p := NewProgress("student-1", "course-1", 90, issuedAt)
	issued, ok := TryIssue(p, courseWithDuration("45 hours"), DefaultThreshold, issuedAt, "")
	require.True(t, ok)

	regraded := issued.WithPercentage(40, issuedAt.Add(time.Hour))

	assert.Equal(t, 40.0, regraded.ProgressPercentage)
	assert.True(t, regraded.CertificateIssued)
	assert.Equal(t, issued.CertificateID, regraded.CertificateID)
	assert.True(t, regraded.MentorSigned)
}
