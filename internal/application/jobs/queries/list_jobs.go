package queries

import (
	"context"
	"fmt"

	"github.com/dmarrick/novaforge/internal/application/common"
	"github.com/dmarrick/novaforge/internal/domain/job"
	"github.com/dmarrick/novaforge/internal/domain/shared"
)

// ListJobsQuery requests an owner's jobs, optionally filtered by status
type ListJobsQuery struct {
	OwnerID shared.OwnerID
	Status  *job.Status
}

// ListJobsResponse carries the matching snapshots, newest first
type ListJobsResponse struct {
	Jobs []*JobSnapshot
}

// ListJobsHandler serves job listing queries
type ListJobsHandler struct {
	jobs  job.Repository
	clock shared.Clock
}

// NewListJobsHandler creates a list jobs handler
func NewListJobsHandler(jobs job.Repository, clock shared.Clock) *ListJobsHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &ListJobsHandler{jobs: jobs, clock: clock}
}

// Handle executes the list jobs query
func (h *ListJobsHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*ListJobsQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	found, err := h.jobs.ListByOwner(ctx, query.OwnerID, query.Status)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	snapshots := make([]*JobSnapshot, len(found))
	for i, j := range found {
		snapshots[i] = SnapshotOf(j, h.clock)
	}
	return &ListJobsResponse{Jobs: snapshots}, nil
}
