package sample

import (
	"context"

	"github.com/dmarrick/novaforge/internal/domain/shared"
)

// Repository is the ore sample store port
type Repository interface {
	// Save inserts or updates a sample record
	Save(ctx context.Context, s *OreSample) error

	// FindByID retrieves a sample owned by ownerID, failing with
	// *NotFoundError if unknown or owned by someone else
	FindByID(ctx context.Context, ownerID shared.OwnerID, id string) (*OreSample, error)

	// ListByOwner returns the owner's samples, newest first, excluding
	// sold ones
	ListByOwner(ctx context.Context, ownerID shared.OwnerID) ([]*OreSample, error)

	// TransitionState atomically moves a sample from one appraisal state
	// to another. Returns false without error when the sample was not in
	// the expected state; the caller lost the race and must treat the
	// transition as already done.
	TransitionState(ctx context.Context, ownerID shared.OwnerID, id string, from, to AppraisalState) (bool, error)

	// ReduceAmount atomically removes qty units from an unappraised
	// sample, deleting the record when nothing remains. Returns the
	// remaining amount; concurrent reductions cannot consume the same
	// units twice.
	ReduceAmount(ctx context.Context, ownerID shared.OwnerID, id string, qty int) (int, error)

	// Delete removes a sample record
	Delete(ctx context.Context, ownerID shared.OwnerID, id string) error
}
