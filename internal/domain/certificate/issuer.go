package certificate

import (
	"strings"
	"time"

	"github.com/evolvix-software/course-economics/internal/domain/course"
	"github.com/evolvix-software/course-economics/internal/domain/shared"
)

// Eligible reports whether a record may transition to issued.
func Eligible(p Progress, threshold float64) bool {
	return !p.CertificateIssued && p.ProgressPercentage >= threshold
}

// TryIssue issues a certificate when the record is not yet issued and its
// progress meets the threshold. It returns the updated record and true, or
// the untouched record and false when either guard fails.
//
// MentorSigned is decided here from the course tier and never revisited, so
// a nil course is never issued against.
func TryIssue(p Progress, c *course.Course, threshold float64, now time.Time, urlPrefix string) (Progress, bool) {
	if c == nil || !Eligible(p, threshold) {
		return p, false
	}

	issuedAt := now.UTC()
	id := NewCertificateID(p.StudentID, p.CourseID, issuedAt)

	p.CertificateIssued = true
	p.CertificateID = id
	p.CertificateURL = certificateURL(urlPrefix, id)
	p.CertificateIssuedAt = &issuedAt
	p.MentorSigned = c.Tier().RequiresMentorSignature()
	p.UpdatedAt = issuedAt
	return p, true
}

func certificateURL(prefix, id string) string {
	prefix = strings.TrimRight(prefix, "/")
	if prefix == "" {
		return "/certificates/" + id
	}
	return prefix + "/" + id
}

// IssuerConfig configures an Issuer.
type IssuerConfig struct {
	// Threshold defaults to DefaultThreshold when zero or negative.
	Threshold float64

	// URLPrefix is prepended to certificate identifiers to build CertificateURL.
	URLPrefix string
}

// Issuer binds TryIssue to a clock and configuration.
type Issuer struct {
	threshold float64
	urlPrefix string
	clock     shared.Clock
}

// NewIssuer creates a new Issuer.
func NewIssuer(cfg IssuerConfig, clock shared.Clock) *Issuer {
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	if clock == nil {
		clock = shared.SystemClock{}
	}
	return &Issuer{
		threshold: cfg.Threshold,
		urlPrefix: cfg.URLPrefix,
		clock:     clock,
	}
}

// Threshold returns the configured default threshold.
func (i *Issuer) Threshold() float64 {
	return i.threshold
}

// TryIssue applies the configured threshold.
func (i *Issuer) TryIssue(p Progress, c *course.Course) (Progress, bool) {
	return TryIssue(p, c, i.threshold, i.clock.Now(), i.urlPrefix)
}

// TryIssueWithThreshold overrides the configured threshold for one call.
func (i *Issuer) TryIssueWithThreshold(p Progress, c *course.Course, threshold float64) (Progress, bool) {
	return TryIssue(p, c, threshold, i.clock.Now(), i.urlPrefix)
}
