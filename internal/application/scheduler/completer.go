package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmarrick/novaforge/internal/application/common"
	"github.com/dmarrick/novaforge/internal/domain/capacity"
	"github.com/dmarrick/novaforge/internal/domain/catalog"
	"github.com/dmarrick/novaforge/internal/domain/job"
	"github.com/dmarrick/novaforge/internal/domain/ledger"
	"github.com/dmarrick/novaforge/internal/domain/sample"
	"github.com/dmarrick/novaforge/internal/domain/shared"
	"github.com/dmarrick/novaforge/internal/domain/yield"
)

// Completer applies job outcomes. The exactly-once guarantee rests on the job
// repository's status compare-and-swap: whichever caller wins the ACTIVE ->
// COMPLETED transition applies the outcome, every other caller sees a no-op.
type Completer struct {
	catalog   *catalog.Catalog
	jobs      job.Repository
	ledger    ledger.Store
	tracker   capacity.Tracker
	samples   sample.Repository
	generator *yield.Generator
	events    *common.EventBus
	metrics   MetricsRecorder
	clock     shared.Clock
}

// NewCompleter wires a completer. A nil metrics recorder is replaced by a
// no-op; a nil clock falls back to the system clock.
func NewCompleter(
	cat *catalog.Catalog,
	jobs job.Repository,
	ledgerStore ledger.Store,
	tracker capacity.Tracker,
	samples sample.Repository,
	generator *yield.Generator,
	events *common.EventBus,
	metrics MetricsRecorder,
	clock shared.Clock,
) *Completer {
	if metrics == nil {
		metrics = NopMetrics()
	}
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &Completer{
		catalog:   cat,
		jobs:      jobs,
		ledger:    ledgerStore,
		tracker:   tracker,
		samples:   samples,
		generator: generator,
		events:    events,
		metrics:   metrics,
		clock:     clock,
	}
}

// Complete finishes an active job: computes its outcome, credits the owner,
// releases the slot claim, and emits the completion event. Idempotent: a job
// not in ACTIVE status is left untouched and no error is returned.
func (c *Completer) Complete(ctx context.Context, jobID string) error {
	now := c.clock.Now()

	won, err := c.jobs.TransitionStatus(ctx, jobID, job.StatusActive, job.StatusCompleted, now)
	if err != nil {
		return fmt.Errorf("failed to transition job %s: %w", jobID, err)
	}
	if !won {
		// Already completed or cancelled; someone else applied the outcome
		return nil
	}

	j, err := c.jobs.FindByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to load completed job %s: %w", jobID, err)
	}

	output, err := c.applyOutcome(ctx, j)
	if err != nil {
		// The status transition already happened and reserved materials
		// must not be lost, so invariant violations degrade to a zero
		// output instead of leaving the job stuck
		common.LoggerFromContext(ctx).Log("ERROR", "job completed with degraded outcome",
			map[string]interface{}{"job_id": jobID, "error": err.Error()})
		output = map[string]int{}
	}

	if err := c.tracker.Release(ctx, j.ClaimID()); err != nil {
		return fmt.Errorf("failed to release claim for job %s: %w", jobID, err)
	}

	if deadline := j.Deadline(); deadline != nil && j.StartedAt() != nil {
		c.metrics.RecordJobCompleted(string(j.Kind()), deadline.Sub(*j.StartedAt()).Seconds())
	} else {
		c.metrics.RecordJobCompleted(string(j.Kind()), 0)
	}

	c.events.Publish(common.CompletionEvent{
		JobID:     j.ID(),
		OwnerID:   j.OwnerID(),
		Kind:      j.Kind(),
		Status:    job.StatusCompleted,
		Output:    output,
		Timestamp: now,
	})
	return nil
}

// Cancel aborts a pending or active job where policy allows it: the material
// reservation is refunded, the slot claim released, and no outcome applied.
// Completion wins a near-simultaneous race; the loser gets a
// *job.NotCancellableError.
func (c *Completer) Cancel(ctx context.Context, jobID string) error {
	j, err := c.jobs.FindByID(ctx, jobID)
	if err != nil {
		return err
	}

	if !j.Cancellable() {
		return &job.NotCancellableError{JobID: jobID, Status: j.Status()}
	}

	now := c.clock.Now()
	won, err := c.jobs.TransitionStatus(ctx, jobID, j.Status(), job.StatusCancelled, now)
	if err != nil {
		return fmt.Errorf("failed to cancel job %s: %w", jobID, err)
	}
	if !won {
		// The deadline fired (or another cancel landed) between our read
		// and the swap
		fresh, ferr := c.jobs.FindByID(ctx, jobID)
		if ferr != nil {
			return ferr
		}
		return &job.NotCancellableError{JobID: jobID, Status: fresh.Status()}
	}

	if reservationID := j.ReservationID(); reservationID != "" {
		if err := c.ledger.Refund(ctx, reservationID); err != nil {
			return fmt.Errorf("failed to refund reservation for job %s: %w", jobID, err)
		}
	}

	if err := c.tracker.Release(ctx, j.ClaimID()); err != nil {
		return fmt.Errorf("failed to release claim for job %s: %w", jobID, err)
	}

	c.metrics.RecordJobCancelled(string(j.Kind()))

	c.events.Publish(common.CompletionEvent{
		JobID:     j.ID(),
		OwnerID:   j.OwnerID(),
		Kind:      j.Kind(),
		Status:    job.StatusCancelled,
		Output:    map[string]int{},
		Timestamp: now,
	})
	return nil
}

// ReleaseOrphanedClaims frees slot claims whose backing job is terminal or
// missing. A crash between a job's terminal transition and its claim release
// leaves the slot held with nothing left to free it, since the sweeper only
// retries ACTIVE jobs. Runs during recovery, before the engine serves
// requests, so a claim without a job row is debris from a crashed admission,
// not an admission in flight.
func (c *Completer) ReleaseOrphanedClaims(ctx context.Context) (int, error) {
	claims, err := c.tracker.ActiveClaims(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list active claims: %w", err)
	}

	released := 0
	for _, claim := range claims {
		j, err := c.jobs.FindByID(ctx, claim.JobID())
		if err != nil {
			var notFound *job.NotFoundError
			if !errors.As(err, &notFound) {
				return released, fmt.Errorf("failed to load job for claim %s: %w", claim.ID(), err)
			}
		} else if !j.IsTerminal() {
			continue
		}

		if err := c.tracker.Release(ctx, claim.ID()); err != nil {
			return released, fmt.Errorf("failed to release orphaned claim %s: %w", claim.ID(), err)
		}
		common.LoggerFromContext(ctx).Log("WARN", "released orphaned slot claim",
			map[string]interface{}{"claim_id": claim.ID(), "host_id": claim.HostID(), "job_id": claim.JobID()})
		released++
	}
	return released, nil
}

func (c *Completer) applyOutcome(ctx context.Context, j *job.Job) (map[string]int, error) {
	switch j.Kind() {
	case job.KindProduction:
		return c.applyProductionOutcome(ctx, j)
	case job.KindExtraction:
		return c.applyExtractionOutcome(ctx, j)
	default:
		return nil, fmt.Errorf("unknown job kind %s", j.Kind())
	}
}

func (c *Completer) applyProductionOutcome(ctx context.Context, j *job.Job) (map[string]int, error) {
	recipe, err := c.catalog.Recipe(j.TargetID())
	if err != nil {
		return nil, fmt.Errorf("recipe vanished from catalog: %w", err)
	}

	// The facility is only needed for the performance score; completion must
	// not fail if it was dropped from the catalog after the job started
	var performance float64
	facility, err := c.catalog.Facility(j.HostID())
	if err == nil {
		outcome := c.generator.Production(recipe, facility, j.Quantity(), j.Quality())
		performance = outcome.Performance
	} else {
		performance = recipe.Factors(j.Quality()).OutputFactor
	}

	if err := c.ledger.Credit(ctx, j.OwnerID(), recipe.OutputKind(), j.Quantity()); err != nil {
		return nil, fmt.Errorf("failed to credit production output: %w", err)
	}

	common.LoggerFromContext(ctx).Log("INFO", "production job completed",
		map[string]interface{}{
			"job_id":      j.ID(),
			"output_kind": recipe.OutputKind(),
			"quantity":    j.Quantity(),
			"performance": performance,
		})

	c.metrics.RecordYield(recipe.OutputKind(), j.Quantity())
	return map[string]int{recipe.OutputKind(): j.Quantity()}, nil
}

func (c *Completer) applyExtractionOutcome(ctx context.Context, j *job.Job) (map[string]int, error) {
	site, err := c.catalog.Site(j.TargetID())
	if err != nil {
		return nil, fmt.Errorf("site vanished from catalog: %w", err)
	}

	outcome := c.generator.Extraction(site, j.ResourceKind(), j.Modifiers())
	now := c.clock.Now()

	output := make(map[string]int, 2)
	yields := []yield.SampleYield{outcome.Primary}
	if outcome.Rare != nil {
		yields = append(yields, *outcome.Rare)
	}

	for _, y := range yields {
		s := sample.NewOreSample(uuid.New().String(), j.OwnerID(), y.Kind, y.Amount, y.Quality, now)
		if err := c.samples.Save(ctx, s); err != nil {
			return output, fmt.Errorf("failed to save ore sample: %w", err)
		}
		output[y.Kind] += y.Amount
		c.metrics.RecordYield(y.Kind, y.Amount)
	}

	return output, nil
}
