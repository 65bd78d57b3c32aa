package verification

import (
	"context"
	"errors"
)

var (
	ErrDoctorNotFound = errors.New("doctor not found")
	ErrNotPending     = errors.New("doctor is not pending verification")
)

// Registry is the system of record for doctor registrations. Approve and
// Reject are keyed by email, matching how registrations are identified
// upstream.
type Registry interface {
	List(ctx context.Context) ([]Doctor, error)
	Approve(ctx context.Context, email string) error
	Reject(ctx context.Context, email string) error
}
