package capacity

import "context"

// Tracker is the slot accounting port. Implementations must make TryAcquire a
// single atomic step: the active-count check and the claim insert happen
// together, so concurrent admissions can never push a host past maxSlots.
type Tracker interface {
	// TryAcquire claims one slot at hostID for jobID, failing with
	// *CapacityExceededError when all maxSlots are in use
	TryAcquire(ctx context.Context, hostID, jobID string, maxSlots int) (*Claim, error)

	// Release frees a claim. Idempotent: releasing an already-released
	// claim is a no-op, not an error.
	Release(ctx context.Context, claimID string) error

	// ActiveCount returns the number of active claims at hostID
	ActiveCount(ctx context.Context, hostID string) (int, error)

	// ActiveClaims returns every claim not yet released, across all hosts
	ActiveClaims(ctx context.Context) ([]*Claim, error)

	// FindByJob returns the claim backing a job, or nil if none exists
	FindByJob(ctx context.Context, jobID string) (*Claim, error)
}
