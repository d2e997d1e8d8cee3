package commands

import (
	"context"
	"fmt"

	"github.com/dmarrick/novaforge/internal/application/common"
	"github.com/dmarrick/novaforge/internal/domain/catalog"
	"github.com/dmarrick/novaforge/internal/domain/ledger"
	"github.com/dmarrick/novaforge/internal/domain/sample"
	"github.com/dmarrick/novaforge/internal/domain/shared"
	"github.com/dmarrick/novaforge/internal/domain/yield"
)

// RefineTag is the capability tag a facility must carry to refine ore
const RefineTag = "REFINE"

// RefineOreCommand requests refining part of an ore sample into material
type RefineOreCommand struct {
	OwnerID    shared.OwnerID
	SampleID   string
	RefineryID string
	Quantity   int
}

// RefineOreResponse reports the refined output. CorruptionLoss is zero at
// owner-controlled refineries and reported separately elsewhere so the fee
// stays auditable.
type RefineOreResponse struct {
	RefinedKind    string
	Output         int
	NaiveOutput    int
	CorruptionLoss int
}

// RefineOreHandler converts ore held in a sample into refined material
// credited to the ledger
type RefineOreHandler struct {
	catalog   *catalog.Catalog
	samples   sample.Repository
	ledger    ledger.Store
	generator *yield.Generator
}

// NewRefineOreHandler creates a refine ore handler
func NewRefineOreHandler(cat *catalog.Catalog, samples sample.Repository, ledgerStore ledger.Store, generator *yield.Generator) *RefineOreHandler {
	return &RefineOreHandler{catalog: cat, samples: samples, ledger: ledgerStore, generator: generator}
}

// Handle executes the refine ore command
func (h *RefineOreHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*RefineOreCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	if cmd.Quantity < 1 {
		return nil, shared.NewValidationError("quantity", "must be at least 1")
	}

	refinery, err := h.catalog.Facility(cmd.RefineryID)
	if err != nil {
		return nil, err
	}
	if !refinery.SupportsTag(RefineTag) {
		return nil, &catalog.CapabilityError{FacilityID: refinery.ID(), Tag: RefineTag}
	}

	s, err := h.samples.FindByID(ctx, cmd.OwnerID, cmd.SampleID)
	if err != nil {
		return nil, err
	}
	refinedKind, err := h.catalog.RefineProduct(s.Kind())
	if err != nil {
		return nil, err
	}

	// Validation done; the store's guarded decrement shrinks the sample
	// before any credit, so two racing refines cannot both consume the
	// same ore. Exhausted samples are deleted in the same step.
	remaining, err := h.samples.ReduceAmount(ctx, cmd.OwnerID, s.ID(), cmd.Quantity)
	if err != nil {
		return nil, err
	}

	ownerControlled := refinery.IsOwnedBy(cmd.OwnerID.Value())
	outcome := h.generator.Refine(refinedKind, cmd.Quantity, ownerControlled)

	if err := h.ledger.Credit(ctx, cmd.OwnerID, outcome.RefinedKind, outcome.Output); err != nil {
		return nil, fmt.Errorf("failed to credit refined material: %w", err)
	}

	common.LoggerFromContext(ctx).Log("INFO", "ore refined",
		map[string]interface{}{
			"sample_id":       s.ID(),
			"refinery":        refinery.ID(),
			"refined_kind":    outcome.RefinedKind,
			"output":          outcome.Output,
			"corruption_loss": outcome.CorruptionLoss,
			"remaining":       remaining,
		})

	return &RefineOreResponse{
		RefinedKind:    outcome.RefinedKind,
		Output:         outcome.Output,
		NaiveOutput:    outcome.NaiveOutput,
		CorruptionLoss: outcome.CorruptionLoss,
	}, nil
}
