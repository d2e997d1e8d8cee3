package commands

import (
	"context"
	"fmt"

	"github.com/dmarrick/novaforge/internal/application/common"
	"github.com/dmarrick/novaforge/internal/domain/catalog"
	"github.com/dmarrick/novaforge/internal/domain/sample"
	"github.com/dmarrick/novaforge/internal/domain/shared"
	"github.com/dmarrick/novaforge/internal/domain/yield"
)

// AppraiseSampleCommand requests a market appraisal of an ore sample
type AppraiseSampleCommand struct {
	OwnerID  shared.OwnerID
	SampleID string
}

// AppraiseSampleResponse reports the fixed appraisal
type AppraiseSampleResponse struct {
	SampleID string
	Kind     string
	Amount   int
	Value    int
}

// AppraiseSampleHandler assigns a market value to an unappraised sample. The
// value derives deterministically from kind, quality, and amount, plus one
// bounded market factor drawn at appraisal time; it never changes afterwards.
type AppraiseSampleHandler struct {
	catalog   *catalog.Catalog
	samples   sample.Repository
	generator *yield.Generator
	clock     shared.Clock
}

// NewAppraiseSampleHandler creates an appraise sample handler
func NewAppraiseSampleHandler(cat *catalog.Catalog, samples sample.Repository, generator *yield.Generator, clock shared.Clock) *AppraiseSampleHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &AppraiseSampleHandler{catalog: cat, samples: samples, generator: generator, clock: clock}
}

// Handle executes the appraise sample command
func (h *AppraiseSampleHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*AppraiseSampleCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	s, err := h.samples.FindByID(ctx, cmd.OwnerID, cmd.SampleID)
	if err != nil {
		return nil, err
	}

	value := yield.AppraisalValue(h.catalog.BaseValue(s.Kind()), s.Amount(), s.Quality(), h.generator.MarketFactor())
	if err := s.Appraise(value, h.clock.Now()); err != nil {
		return nil, err
	}
	if err := h.samples.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to persist appraisal: %w", err)
	}

	common.LoggerFromContext(ctx).Log("INFO", "sample appraised",
		map[string]interface{}{"sample_id": s.ID(), "kind": s.Kind(), "value": value})

	return &AppraiseSampleResponse{SampleID: s.ID(), Kind: s.Kind(), Amount: s.Amount(), Value: value}, nil
}
