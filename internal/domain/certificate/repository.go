package certificate

import "context"

// Repository stores progress records, one per (student, course) pair.
type Repository interface {
	// Get returns the record for a pair.
	// Returns shared.ErrProgressNotFound if none exists.
	Get(ctx context.Context, courseID, studentID string) (*Progress, error)

	// SavePercentage creates the record or updates its percentage.
	SavePercentage(ctx context.Context, p *Progress) error

	// MarkIssued persists an issued record only if the stored one is not
	// issued yet. Returns ErrAlreadyIssued when another writer got there first.
	MarkIssued(ctx context.Context, p *Progress) error

	// ListByStudent returns every record of a student.
	ListByStudent(ctx context.Context, studentID string) ([]*Progress, error)
}

// IssuanceLock serializes issuance attempts for one (student, course) pair
// across processes. Acquire returns ok=false when another holder owns it.
type IssuanceLock interface {
	Acquire(ctx context.Context, courseID, studentID string) (release func(context.Context) error, ok bool, err error)
}
