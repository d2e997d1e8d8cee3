package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/dmarrick/novaforge/internal/application/common"
	"github.com/dmarrick/novaforge/internal/domain/job"
	"github.com/dmarrick/novaforge/internal/domain/shared"
)

// JobSnapshot is the read model returned to external collaborators
type JobSnapshot struct {
	ID           string
	OwnerID      shared.OwnerID
	Kind         job.Kind
	TargetID     string
	HostID       string
	ResourceKind string
	Quantity     int
	Quality      string
	Status       job.Status
	StartedAt    *time.Time
	Deadline     *time.Time
	Remaining    time.Duration // zero for terminal or overdue jobs
}

// GetJobStatusQuery requests a snapshot of one job
type GetJobStatusQuery struct {
	JobID string
}

// GetJobStatusHandler serves job status queries
type GetJobStatusHandler struct {
	jobs  job.Repository
	clock shared.Clock
}

// NewGetJobStatusHandler creates a get job status handler
func NewGetJobStatusHandler(jobs job.Repository, clock shared.Clock) *GetJobStatusHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GetJobStatusHandler{jobs: jobs, clock: clock}
}

// Handle executes the job status query
func (h *GetJobStatusHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*GetJobStatusQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	j, err := h.jobs.FindByID(ctx, query.JobID)
	if err != nil {
		return nil, err
	}

	return SnapshotOf(j, h.clock), nil
}

// SnapshotOf projects a job aggregate onto its read model
func SnapshotOf(j *job.Job, clock shared.Clock) *JobSnapshot {
	snapshot := &JobSnapshot{
		ID:           j.ID(),
		OwnerID:      j.OwnerID(),
		Kind:         j.Kind(),
		TargetID:     j.TargetID(),
		HostID:       j.HostID(),
		ResourceKind: j.ResourceKind(),
		Quantity:     j.Quantity(),
		Quality:      j.Quality().String(),
		Status:       j.Status(),
		StartedAt:    j.StartedAt(),
		Deadline:     j.Deadline(),
	}
	if j.Status() == job.StatusActive && j.Deadline() != nil {
		if remaining := clock.Until(*j.Deadline()); remaining > 0 {
			snapshot.Remaining = remaining
		}
	}
	return snapshot
}
