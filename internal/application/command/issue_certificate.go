package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/evolvix-software/course-economics/internal/domain/certificate"
	"github.com/evolvix-software/course-economics/internal/domain/course"
	"github.com/evolvix-software/course-economics/internal/domain/shared"
	"github.com/evolvix-software/course-economics/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// ISSUE CERTIFICATE COMMAND
// Attempts to issue a certificate for a (student, course) pair. A second
// attempt, or one below the threshold, is not an error: it reports
// Changed=false with the stored record.
//
// The read-then-write is guarded twice: an optional distributed lock keeps
// concurrent attempts apart, and the repository only persists the issued
// record if the stored one is still not issued.
// ══════════════════════════════════════════════════════════════════════════════

// Reasons reported when no certificate was issued.
const (
	ReasonAlreadyIssued  = "already_issued"
	ReasonBelowThreshold = "below_threshold"
	ReasonInProgress     = "issuance_in_progress"
)

// IssueCertificateCommand identifies the record to evaluate.
type IssueCertificateCommand struct {
	CourseID  string
	StudentID string

	// Threshold overrides the configured threshold when set.
	Threshold *float64

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c IssueCertificateCommand) Validate() error {
	if strings.TrimSpace(c.CourseID) == "" || strings.TrimSpace(c.StudentID) == "" {
		return shared.NewDomainError("certificate", "Issue", shared.ErrInvalidID, "course_id and student_id are required")
	}
	if c.Threshold != nil && (*c.Threshold < 0 || *c.Threshold > 100) {
		return shared.NewDomainError("certificate", "Issue", shared.ErrValueOutOfRange, "threshold must be between 0 and 100")
	}
	return nil
}

// IssueCertificateResult describes the outcome.
type IssueCertificateResult struct {
	Progress *certificate.Progress
	Changed  bool
	Reason   string
}

// IssueCertificateHandler handles IssueCertificateCommand.
type IssueCertificateHandler struct {
	courses   course.Repository
	progress  certificate.Repository
	issuer    *certificate.Issuer
	lock      certificate.IssuanceLock
	publisher shared.EventPublisher
	log       *logger.Logger
}

// NewIssueCertificateHandler creates a new IssueCertificateHandler.
// lock may be nil; the repository guard still applies.
func NewIssueCertificateHandler(
	courses course.Repository,
	progress certificate.Repository,
	issuer *certificate.Issuer,
	lock certificate.IssuanceLock,
	publisher shared.EventPublisher,
	log *logger.Logger,
) *IssueCertificateHandler {
	return &IssueCertificateHandler{
		courses:   courses,
		progress:  progress,
		issuer:    issuer,
		lock:      lock,
		publisher: publisherOrNop(publisher),
		log:       loggerOrNop(log).With(logger.Component("issue_certificate")),
	}
}

// Handle executes the issue certificate command.
func (h *IssueCertificateHandler) Handle(ctx context.Context, cmd IssueCertificateCommand) (*IssueCertificateResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("issue_certificate: %w", err)
	}

	if h.lock != nil {
		release, ok, err := h.lock.Acquire(ctx, cmd.CourseID, cmd.StudentID)
		if err != nil {
			// The repository guard still prevents a double issue.
			h.log.Warn("issuance lock unavailable", logger.Err(err))
		} else if !ok {
			p, err := h.progress.Get(ctx, cmd.CourseID, cmd.StudentID)
			if err != nil {
				return nil, fmt.Errorf("issue_certificate: %w", err)
			}
			return &IssueCertificateResult{Progress: p, Reason: ReasonInProgress}, nil
		} else {
			defer func() {
				if err := release(context.WithoutCancel(ctx)); err != nil {
					h.log.Warn("failed to release issuance lock", logger.Err(err))
				}
			}()
		}
	}

	p, err := h.progress.Get(ctx, cmd.CourseID, cmd.StudentID)
	if err != nil {
		return nil, fmt.Errorf("issue_certificate: %w", err)
	}
	if p.CertificateIssued {
		return &IssueCertificateResult{Progress: p, Reason: ReasonAlreadyIssued}, nil
	}

	c, err := h.courses.GetByID(ctx, cmd.CourseID)
	if err != nil {
		return nil, fmt.Errorf("issue_certificate: %w", err)
	}

	var (
		issued certificate.Progress
		ok     bool
	)
	if cmd.Threshold != nil {
		issued, ok = h.issuer.TryIssueWithThreshold(*p, c, *cmd.Threshold)
	} else {
		issued, ok = h.issuer.TryIssue(*p, c)
	}
	if !ok {
		return &IssueCertificateResult{Progress: p, Reason: ReasonBelowThreshold}, nil
	}

	if err := h.progress.MarkIssued(ctx, &issued); err != nil {
		if errors.Is(err, certificate.ErrAlreadyIssued) {
			stored, getErr := h.progress.Get(ctx, cmd.CourseID, cmd.StudentID)
			if getErr != nil {
				return nil, fmt.Errorf("issue_certificate: %w", getErr)
			}
			return &IssueCertificateResult{Progress: stored, Reason: ReasonAlreadyIssued}, nil
		}
		return nil, fmt.Errorf("issue_certificate: failed to save: %w", err)
	}

	event := shared.NewCertificateIssuedEvent(issued.CourseID, issued.StudentID, issued.CertificateID, issued.MentorSigned, *issued.CertificateIssuedAt)
	event.CorrelationID = cmd.CorrelationID
	publish(h.publisher, h.log, event)

	h.log.Info("certificate issued",
		logger.CourseID(issued.CourseID),
		logger.StudentID(issued.StudentID),
		logger.String("certificate_id", issued.CertificateID),
		logger.Bool("mentor_signed", issued.MentorSigned),
	)

	return &IssueCertificateResult{Progress: &issued, Changed: true}, nil
}
