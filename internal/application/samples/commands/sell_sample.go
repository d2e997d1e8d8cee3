package commands

import (
	"context"
	"fmt"

	"github.com/dmarrick/novaforge/internal/application/common"
	"github.com/dmarrick/novaforge/internal/domain/ledger"
	"github.com/dmarrick/novaforge/internal/domain/sample"
	"github.com/dmarrick/novaforge/internal/domain/shared"
)

// SellSampleCommand requests the sale of an appraised sample
type SellSampleCommand struct {
	OwnerID  shared.OwnerID
	SampleID string
}

// SellSampleResponse reports the credited sale
type SellSampleResponse struct {
	SampleID      string
	CreditsEarned int
}

// SellSampleHandler sells an appraised sample at its fixed appraisal value:
// the sample is removed and currency credited to the owner's ledger
type SellSampleHandler struct {
	samples sample.Repository
	ledger  ledger.Store
}

// NewSellSampleHandler creates a sell sample handler
func NewSellSampleHandler(samples sample.Repository, ledgerStore ledger.Store) *SellSampleHandler {
	return &SellSampleHandler{samples: samples, ledger: ledgerStore}
}

// Handle executes the sell sample command
func (h *SellSampleHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*SellSampleCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	s, err := h.samples.FindByID(ctx, cmd.OwnerID, cmd.SampleID)
	if err != nil {
		return nil, err
	}
	if s.State() != sample.StateAppraised {
		return nil, &sample.NotAppraisedError{SampleID: s.ID()}
	}

	// The store-level swap on the state column is what makes the sale
	// exactly-once: of two racing sells only one sees the APPRAISED row
	won, err := h.samples.TransitionState(ctx, cmd.OwnerID, s.ID(), sample.StateAppraised, sample.StateSold)
	if err != nil {
		return nil, err
	}
	if !won {
		if _, ferr := h.samples.FindByID(ctx, cmd.OwnerID, s.ID()); ferr != nil {
			return nil, ferr
		}
		return nil, &sample.NotAppraisedError{SampleID: s.ID()}
	}

	// The appraised value is fixed once set, so the read above is safe to
	// pay out from
	earned := s.AppraisedValue()
	if err := h.ledger.Credit(ctx, cmd.OwnerID, ledger.CurrencyKind, earned); err != nil {
		return nil, fmt.Errorf("failed to credit sale: %w", err)
	}
	if err := h.samples.Delete(ctx, cmd.OwnerID, s.ID()); err != nil {
		return nil, fmt.Errorf("failed to remove sold sample: %w", err)
	}

	common.LoggerFromContext(ctx).Log("INFO", "sample sold",
		map[string]interface{}{"sample_id": s.ID(), "kind": s.Kind(), "credits": earned})

	return &SellSampleResponse{SampleID: s.ID(), CreditsEarned: earned}, nil
}
