package queries

import (
	"context"
	"fmt"

	"github.com/dmarrick/novaforge/internal/application/common"
	"github.com/dmarrick/novaforge/internal/domain/sample"
	"github.com/dmarrick/novaforge/internal/domain/shared"
)

// ListSamplesQuery requests an owner's unsold samples
type ListSamplesQuery struct {
	OwnerID shared.OwnerID
}

// ListSamplesResponse carries the samples, newest first
type ListSamplesResponse struct {
	Samples []*sample.OreSample
}

// ListSamplesHandler serves sample listing queries
type ListSamplesHandler struct {
	samples sample.Repository
}

// NewListSamplesHandler creates a list samples handler
func NewListSamplesHandler(samples sample.Repository) *ListSamplesHandler {
	return &ListSamplesHandler{samples: samples}
}

// Handle executes the list samples query
func (h *ListSamplesHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*ListSamplesQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	samples, err := h.samples.ListByOwner(ctx, query.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list samples: %w", err)
	}
	return &ListSamplesResponse{Samples: samples}, nil
}
