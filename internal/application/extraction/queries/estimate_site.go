package queries

import (
	"context"
	"fmt"

	"github.com/dmarrick/novaforge/internal/application/common"
	"github.com/dmarrick/novaforge/internal/domain/bonus"
	"github.com/dmarrick/novaforge/internal/domain/catalog"
	"github.com/dmarrick/novaforge/internal/domain/shared"
	"github.com/dmarrick/novaforge/internal/domain/yield"
)

// EstimateSiteQuery requests a survey estimate for an extraction site
type EstimateSiteQuery struct {
	OwnerID shared.OwnerID
	SiteID  string
}

// EstimateSiteResponse carries the scan estimate. Estimated is drawn from the
// scan band, so repeated scans of the same site vary within it.
type EstimateSiteResponse struct {
	SiteID     string
	Estimated  int
	RareChance float64
	Resources  []string
}

// EstimateSiteHandler serves read-only survey scans; no claim is taken and no
// state changes
type EstimateSiteHandler struct {
	catalog   *catalog.Catalog
	equipment bonus.EquipmentProvider
	generator *yield.Generator
}

// NewEstimateSiteHandler creates an estimate site handler
func NewEstimateSiteHandler(cat *catalog.Catalog, equipment bonus.EquipmentProvider, generator *yield.Generator) *EstimateSiteHandler {
	return &EstimateSiteHandler{catalog: cat, equipment: equipment, generator: generator}
}

// Handle executes the site estimate query
func (h *EstimateSiteHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*EstimateSiteQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	site, err := h.catalog.Site(query.SiteID)
	if err != nil {
		return nil, err
	}

	effects, err := h.equipment.GetEquippedEffects(ctx, query.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query equipped effects: %w", err)
	}
	condition, err := h.equipment.GetCondition(ctx, query.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query equipment condition: %w", err)
	}
	mods := bonus.Resolve(effects, false, condition)

	chance := yield.BaseRareChance(site.Level(), site.Difficulty()) * mods.RareFindBonus
	if chance > 1 {
		chance = 1
	}

	return &EstimateSiteResponse{
		SiteID:     site.ID(),
		Estimated:  h.generator.ScanEstimate(site, mods),
		RareChance: chance,
		Resources:  site.PrimaryResources(),
	}, nil
}
