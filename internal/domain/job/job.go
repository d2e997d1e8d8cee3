package job

import (
	"time"

	"github.com/dmarrick/novaforge/internal/domain/bonus"
	"github.com/dmarrick/novaforge/internal/domain/catalog"
	"github.com/dmarrick/novaforge/internal/domain/shared"
)

// Kind distinguishes production jobs (facility + recipe) from extraction jobs
// (site + resource kind)
type Kind string

const (
	KindProduction Kind = "PRODUCTION"
	KindExtraction Kind = "EXTRACTION"
)

// Status is the lifecycle state of a job. Transitions are strictly
// pending -> active -> completed|cancelled.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// Job is a timed unit of work with reserved materials, a claimed slot, and a
// deadline. It is the aggregate root of the scheduling engine.
type Job struct {
	id            string
	ownerID       shared.OwnerID
	kind          Kind
	targetID      string // recipe id or extraction site id
	hostID        string // facility or site whose slot the job occupies
	resourceKind  string // extraction only: the requested resource
	quantity      int
	quality       catalog.QualityTier
	reservationID string // empty for extraction jobs
	claimID       string
	modifiers     bonus.ModifierSet
	status        Status
	createdAt     time.Time
	startedAt     *time.Time
	deadline      *time.Time
	finishedAt    *time.Time
}

// NewJob creates a job in pending state. The modifier set resolved at start
// time is stored with the job so a recovered completion computes the same
// outcome it would have computed on schedule.
func NewJob(
	id string,
	ownerID shared.OwnerID,
	kind Kind,
	targetID string,
	hostID string,
	resourceKind string,
	quantity int,
	quality catalog.QualityTier,
	reservationID string,
	claimID string,
	modifiers bonus.ModifierSet,
	createdAt time.Time,
) *Job {
	return &Job{
		id:            id,
		ownerID:       ownerID,
		kind:          kind,
		targetID:      targetID,
		hostID:        hostID,
		resourceKind:  resourceKind,
		quantity:      quantity,
		quality:       quality,
		reservationID: reservationID,
		claimID:       claimID,
		modifiers:     modifiers,
		status:        StatusPending,
		createdAt:     createdAt,
	}
}

// Restore rebuilds a job from persistence in whatever state it was saved
func Restore(
	id string,
	ownerID shared.OwnerID,
	kind Kind,
	targetID string,
	hostID string,
	resourceKind string,
	quantity int,
	quality catalog.QualityTier,
	reservationID string,
	claimID string,
	modifiers bonus.ModifierSet,
	status Status,
	createdAt time.Time,
	startedAt *time.Time,
	deadline *time.Time,
	finishedAt *time.Time,
) *Job {
	return &Job{
		id:            id,
		ownerID:       ownerID,
		kind:          kind,
		targetID:      targetID,
		hostID:        hostID,
		resourceKind:  resourceKind,
		quantity:      quantity,
		quality:       quality,
		reservationID: reservationID,
		claimID:       claimID,
		modifiers:     modifiers,
		status:        status,
		createdAt:     createdAt,
		startedAt:     startedAt,
		deadline:      deadline,
		finishedAt:    finishedAt,
	}
}

func (j *Job) ID() string                   { return j.id }
func (j *Job) OwnerID() shared.OwnerID      { return j.ownerID }
func (j *Job) Kind() Kind                   { return j.kind }
func (j *Job) TargetID() string             { return j.targetID }
func (j *Job) HostID() string               { return j.hostID }
func (j *Job) ResourceKind() string         { return j.resourceKind }
func (j *Job) Quantity() int                { return j.quantity }
func (j *Job) Quality() catalog.QualityTier { return j.quality }
func (j *Job) ReservationID() string        { return j.reservationID }
func (j *Job) ClaimID() string              { return j.claimID }
func (j *Job) Modifiers() bonus.ModifierSet { return j.modifiers }
func (j *Job) Status() Status               { return j.status }
func (j *Job) CreatedAt() time.Time         { return j.createdAt }
func (j *Job) StartedAt() *time.Time        { return j.startedAt }
func (j *Job) Deadline() *time.Time         { return j.deadline }
func (j *Job) FinishedAt() *time.Time       { return j.finishedAt }

// Activate transitions the job from pending to active with a computed deadline
func (j *Job) Activate(startedAt time.Time, deadline time.Time) error {
	if j.status != StatusPending {
		return NewInvalidTransitionError(j.id, j.status, StatusActive)
	}
	j.status = StatusActive
	j.startedAt = &startedAt
	j.deadline = &deadline
	return nil
}

// MarkCompleted transitions the job to completed. The exactly-once guarantee
// is enforced by the repository's compare-and-swap; this guard catches misuse
// of an in-memory instance.
func (j *Job) MarkCompleted(at time.Time) error {
	if j.status != StatusActive {
		return NewInvalidTransitionError(j.id, j.status, StatusCompleted)
	}
	j.status = StatusCompleted
	j.finishedAt = &at
	return nil
}

// MarkCancelled transitions the job to cancelled
func (j *Job) MarkCancelled(at time.Time) error {
	if j.status != StatusPending && j.status != StatusActive {
		return NewInvalidTransitionError(j.id, j.status, StatusCancelled)
	}
	j.status = StatusCancelled
	j.finishedAt = &at
	return nil
}

// IsTerminal reports whether the job has reached completed or cancelled
func (j *Job) IsTerminal() bool {
	return j.status == StatusCompleted || j.status == StatusCancelled
}

// Cancellable reports whether policy permits cancelling the job in its
// current state: extraction claims may be abandoned while pending or active,
// production runs only before they go active.
func (j *Job) Cancellable() bool {
	switch j.status {
	case StatusPending:
		return true
	case StatusActive:
		return j.kind == KindExtraction
	default:
		return false
	}
}
