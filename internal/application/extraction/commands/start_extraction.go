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
	"github.com/dmarrick/novaforge/internal/domain/shared"
)

// StartExtractionCommand requests a mining claim at an extraction site
type StartExtractionCommand struct {
	OwnerID      shared.OwnerID
	SiteID       string
	ResourceKind string
	Quantity     int // extraction cycles; scales the claim duration
}

// StartExtractionResponse reports the registered job
type StartExtractionResponse struct {
	JobID    string
	Deadline time.Time
}

// StartExtractionHandler admits extraction jobs: validates the site and
// resource, claims a mining spot, resolves bonuses, and registers the
// deadline. Extraction consumes no materials, so there is no reservation.
type StartExtractionHandler struct {
	catalog   *catalog.Catalog
	tracker   capacity.Tracker
	equipment bonus.EquipmentProvider
	jobs      job.Repository
	scheduler *scheduler.Scheduler
	metrics   scheduler.MetricsRecorder
	clock     shared.Clock
}

// NewStartExtractionHandler creates a start extraction handler
func NewStartExtractionHandler(
	cat *catalog.Catalog,
	tracker capacity.Tracker,
	equipment bonus.EquipmentProvider,
	jobs job.Repository,
	sched *scheduler.Scheduler,
	metrics scheduler.MetricsRecorder,
	clock shared.Clock,
) *StartExtractionHandler {
	if metrics == nil {
		metrics = scheduler.NopMetrics()
	}
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &StartExtractionHandler{
		catalog:   cat,
		tracker:   tracker,
		equipment: equipment,
		jobs:      jobs,
		scheduler: sched,
		metrics:   metrics,
		clock:     clock,
	}
}

// Handle executes the start extraction command
func (h *StartExtractionHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*StartExtractionCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	if cmd.Quantity < 1 {
		return nil, shared.NewValidationError("quantity", "must be at least 1")
	}

	site, err := h.catalog.Site(cmd.SiteID)
	if err != nil {
		return nil, err
	}
	if !site.HasResource(cmd.ResourceKind) {
		return nil, &catalog.ResourceError{SiteID: site.ID(), Kind: cmd.ResourceKind}
	}

	jobID := uuid.New().String()
	claim, err := h.tracker.TryAcquire(ctx, site.ID(), jobID, site.MaxClaims())
	if err != nil {
		return nil, err
	}

	mods, err := h.resolveModifiers(ctx, cmd.OwnerID)
	if err != nil {
		h.rollbackClaim(ctx, claim)
		return nil, err
	}

	now := h.clock.Now()
	duration := extractionDuration(site, cmd.Quantity, mods)
	deadline := now.Add(duration)

	j := job.NewJob(jobID, cmd.OwnerID, job.KindExtraction, site.ID(), site.ID(),
		cmd.ResourceKind, cmd.Quantity, catalog.QualityStandard, "", claim.ID(), mods, now)
	if err := j.Activate(now, deadline); err != nil {
		h.rollbackClaim(ctx, claim)
		return nil, err
	}
	if err := h.jobs.Save(ctx, j); err != nil {
		h.rollbackClaim(ctx, claim)
		return nil, fmt.Errorf("failed to persist job: %w", err)
	}

	h.scheduler.Schedule(jobID, deadline)
	h.metrics.RecordJobStarted(string(job.KindExtraction))

	common.LoggerFromContext(ctx).Log("INFO", "extraction job started",
		map[string]interface{}{
			"job_id":   jobID,
			"site":     site.ID(),
			"resource": cmd.ResourceKind,
			"cycles":   cmd.Quantity,
			"deadline": deadline,
		})

	return &StartExtractionResponse{JobID: jobID, Deadline: deadline}, nil
}

func (h *StartExtractionHandler) resolveModifiers(ctx context.Context, ownerID shared.OwnerID) (bonus.ModifierSet, error) {
	effects, err := h.equipment.GetEquippedEffects(ctx, ownerID)
	if err != nil {
		return bonus.ModifierSet{}, fmt.Errorf("failed to query equipped effects: %w", err)
	}
	condition, err := h.equipment.GetCondition(ctx, ownerID)
	if err != nil {
		return bonus.ModifierSet{}, fmt.Errorf("failed to query equipment condition: %w", err)
	}
	// Sites carry no category specialization; only equipment and condition apply
	return bonus.Resolve(effects, false, condition), nil
}

func (h *StartExtractionHandler) rollbackClaim(ctx context.Context, claim *capacity.Claim) {
	if err := h.tracker.Release(ctx, claim.ID()); err != nil {
		common.LoggerFromContext(ctx).Log("ERROR", "failed to roll back slot claim",
			map[string]interface{}{"claim_id": claim.ID(), "error": err.Error()})
	}
}

// extractionDuration scales the site's base cycle time by the requested
// cycles and difficulty, divided by the speed multiplier, floored at one
// second
func extractionDuration(site *catalog.ExtractionSite, cycles int, mods bonus.ModifierSet) time.Duration {
	base := float64(site.BaseDuration()) * float64(cycles) * site.Difficulty().TimeMultiplier()
	duration := time.Duration(base / mods.SpeedMultiplier)
	if duration < time.Second {
		duration = time.Second
	}
	return duration
}
