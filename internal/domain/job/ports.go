package job

import (
	"context"
	"time"

	"github.com/dmarrick/novaforge/internal/domain/shared"
)

// Repository is the durable job store port. Deadlines live in the store, not
// in process memory, so in-flight jobs survive a restart.
type Repository interface {
	// Save inserts or updates a job record
	Save(ctx context.Context, j *Job) error

	// FindByID retrieves a job, failing with *NotFoundError if unknown
	FindByID(ctx context.Context, id string) (*Job, error)

	// FindActive returns all active jobs ordered by deadline ascending.
	// The recovery sweep depends on this ordering.
	FindActive(ctx context.Context) ([]*Job, error)

	// FindActiveDueBefore returns active jobs whose deadline is at or
	// before the cutoff, ordered by deadline ascending
	FindActiveDueBefore(ctx context.Context, cutoff time.Time) ([]*Job, error)

	// ListByOwner returns the owner's jobs, newest first. A nil status
	// returns all of them.
	ListByOwner(ctx context.Context, ownerID shared.OwnerID, status *Status) ([]*Job, error)

	// TransitionStatus atomically moves a job from one status to another
	// and stamps finishedAt for terminal states. Returns false without
	// error when the job was not in the expected status; the caller lost
	// the race and must treat the call as a no-op.
	TransitionStatus(ctx context.Context, id string, from, to Status, at time.Time) (bool, error)
}
