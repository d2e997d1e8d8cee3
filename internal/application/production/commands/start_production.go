package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmarrick/novaforge/internal/application/common"
	"github.com/dmarrick/novaforge/internal/application/scheduler"
	"github.com/dmarrick/novaforge/internal/domain/bonus"
	"github.com/dmarrick/novaforge/internal/domain/capacity"
	"github.com/dmarrick/novaforge/internal/domain/catalog"
	"github.com/dmarrick/novaforge/internal/domain/job"
	"github.com/dmarrick/novaforge/internal/domain/ledger"
	"github.com/dmarrick/novaforge/internal/domain/shared"
)

// StartProductionCommand requests a new production job at a facility
type StartProductionCommand struct {
	OwnerID    shared.OwnerID
	FacilityID string
	RecipeID   string
	Quantity   int
	Quality    catalog.QualityTier
}

// StartProductionResponse reports the registered job
type StartProductionResponse struct {
	JobID    string
	Deadline time.Time
	Reserved map[string]int
}

// StartProductionHandler admits production jobs. The request passes through
// catalog validation, capacity admission, ledger reservation, and bonus
// resolution before the job is registered with the scheduler; a failure at
// any step leaves no partial state behind.
type StartProductionHandler struct {
	catalog   *catalog.Catalog
	tracker   capacity.Tracker
	ledger    ledger.Store
	equipment bonus.EquipmentProvider
	jobs      job.Repository
	scheduler *scheduler.Scheduler
	metrics   scheduler.MetricsRecorder
	clock     shared.Clock
}

// NewStartProductionHandler creates a start production handler
func NewStartProductionHandler(
	cat *catalog.Catalog,
	tracker capacity.Tracker,
	ledgerStore ledger.Store,
	equipment bonus.EquipmentProvider,
	jobs job.Repository,
	sched *scheduler.Scheduler,
	metrics scheduler.MetricsRecorder,
	clock shared.Clock,
) *StartProductionHandler {
	if metrics == nil {
		metrics = scheduler.NopMetrics()
	}
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &StartProductionHandler{
		catalog:   cat,
		tracker:   tracker,
		ledger:    ledgerStore,
		equipment: equipment,
		jobs:      jobs,
		scheduler: sched,
		metrics:   metrics,
		clock:     clock,
	}
}

// Handle executes the start production command
func (h *StartProductionHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*StartProductionCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	if cmd.Quantity < 1 {
		return nil, shared.NewValidationError("quantity", "must be at least 1")
	}
	if !cmd.Quality.IsValid() {
		return nil, shared.NewValidationError("quality", fmt.Sprintf("unknown tier %d", int(cmd.Quality)))
	}

	// Validation precedes any mutation
	facility, err := h.catalog.Facility(cmd.FacilityID)
	if err != nil {
		return nil, err
	}
	recipe, err := h.catalog.Recipe(cmd.RecipeID)
	if err != nil {
		return nil, err
	}

	clearances, err := h.equipment.GetClearances(ctx, cmd.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query clearances: %w", err)
	}
	if err := h.catalog.CanProduce(facility, recipe, cmd.Quality, clearances); err != nil {
		return nil, err
	}

	requirements := recipe.RequirementsFor(cmd.Quantity, cmd.Quality)
	jobID := uuid.New().String()

	// Capacity admission, then ledger reservation. The claim is the only
	// state held while reserving, and it is released on any later failure.
	claim, err := h.tracker.TryAcquire(ctx, facility.ID(), jobID, facility.MaxSlots())
	if err != nil {
		return nil, err
	}

	reservation, err := h.ledger.Reserve(ctx, cmd.OwnerID, requirements)
	if err != nil {
		h.rollbackClaim(ctx, claim)
		return nil, err
	}

	mods, err := h.resolveModifiers(ctx, cmd.OwnerID, facility, recipe)
	if err != nil {
		h.rollbackReservation(ctx, reservation)
		h.rollbackClaim(ctx, claim)
		return nil, err
	}

	now := h.clock.Now()
	duration := productionDuration(recipe, facility, cmd.Quantity, cmd.Quality, mods)
	deadline := now.Add(duration)

	j := job.NewJob(jobID, cmd.OwnerID, job.KindProduction, recipe.ID(), facility.ID(),
		"", cmd.Quantity, cmd.Quality, reservation.ID(), claim.ID(), mods, now)
	if err := j.Activate(now, deadline); err != nil {
		h.rollbackReservation(ctx, reservation)
		h.rollbackClaim(ctx, claim)
		return nil, err
	}
	if err := h.jobs.Save(ctx, j); err != nil {
		h.rollbackReservation(ctx, reservation)
		h.rollbackClaim(ctx, claim)
		return nil, fmt.Errorf("failed to persist job: %w", err)
	}

	h.scheduler.Schedule(jobID, deadline)
	h.metrics.RecordJobStarted(string(job.KindProduction))

	common.LoggerFromContext(ctx).Log("INFO", "production job started",
		map[string]interface{}{
			"job_id":   jobID,
			"facility": facility.ID(),
			"recipe":   recipe.ID(),
			"quantity": cmd.Quantity,
			"quality":  cmd.Quality.String(),
			"deadline": deadline,
		})

	return &StartProductionResponse{JobID: jobID, Deadline: deadline, Reserved: requirements}, nil
}

func (h *StartProductionHandler) resolveModifiers(ctx context.Context, ownerID shared.OwnerID, facility *catalog.Facility, recipe *catalog.Recipe) (bonus.ModifierSet, error) {
	effects, err := h.equipment.GetEquippedEffects(ctx, ownerID)
	if err != nil {
		return bonus.ModifierSet{}, fmt.Errorf("failed to query equipped effects: %w", err)
	}
	condition, err := h.equipment.GetCondition(ctx, ownerID)
	if err != nil {
		return bonus.ModifierSet{}, fmt.Errorf("failed to query equipment condition: %w", err)
	}
	return bonus.Resolve(effects, facility.SpecializationMatches(recipe.Category()), condition), nil
}

func (h *StartProductionHandler) rollbackClaim(ctx context.Context, claim *capacity.Claim) {
	if err := h.tracker.Release(ctx, claim.ID()); err != nil {
		common.LoggerFromContext(ctx).Log("ERROR", "failed to roll back slot claim",
			map[string]interface{}{"claim_id": claim.ID(), "error": err.Error()})
	}
}

func (h *StartProductionHandler) rollbackReservation(ctx context.Context, reservation *ledger.Reservation) {
	if err := h.ledger.Refund(ctx, reservation.ID()); err != nil {
		common.LoggerFromContext(ctx).Log("ERROR", "failed to roll back reservation",
			map[string]interface{}{"reservation_id": reservation.ID(), "error": err.Error()})
	}
}

// productionDuration computes base duration scaled down by the speed
// multiplier and facility efficiency, scaled up by the tier's time factor,
// floored at one second
func productionDuration(recipe *catalog.Recipe, facility *catalog.Facility, quantity int, tier catalog.QualityTier, mods bonus.ModifierSet) time.Duration {
	base := recipe.BaseDurationFor(quantity)
	scaled := float64(base) / (mods.SpeedMultiplier * facility.Efficiency()) * recipe.Factors(tier).TimeFactor
	duration := time.Duration(scaled)
	if duration < time.Second {
		duration = time.Second
	}
	return duration
}
