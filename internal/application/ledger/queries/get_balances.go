package queries

import (
	"context"
	"fmt"

	"github.com/dmarrick/novaforge/internal/application/common"
	"github.com/dmarrick/novaforge/internal/domain/ledger"
	"github.com/dmarrick/novaforge/internal/domain/shared"
)

// GetBalancesQuery requests an owner's material balances
type GetBalancesQuery struct {
	OwnerID shared.OwnerID
}

// GetBalancesResponse carries all non-zero balances
type GetBalancesResponse struct {
	Balances map[string]int
}

// GetBalancesHandler serves ledger balance queries
type GetBalancesHandler struct {
	ledger ledger.Store
}

// NewGetBalancesHandler creates a get balances handler
func NewGetBalancesHandler(ledgerStore ledger.Store) *GetBalancesHandler {
	return &GetBalancesHandler{ledger: ledgerStore}
}

// Handle executes the balances query
func (h *GetBalancesHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*GetBalancesQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	balances, err := h.ledger.Balances(ctx, query.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load balances: %w", err)
	}
	return &GetBalancesResponse{Balances: balances}, nil
}
