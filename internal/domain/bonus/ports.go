package bonus

import (
	"context"

	"github.com/dmarrick/novaforge/internal/domain/catalog"
	"github.com/dmarrick/novaforge/internal/domain/shared"
)

// EquipmentProvider is the read-only query surface of the external
// ship/equipment manager
type EquipmentProvider interface {
	// GetEquippedEffects returns the effects of the owner's active loadout,
	// in a stable order
	GetEquippedEffects(ctx context.Context, ownerID shared.OwnerID) ([]catalog.EquipmentEffect, error)

	// GetCondition returns the owner's equipment condition in [0,1]
	GetCondition(ctx context.Context, ownerID shared.OwnerID) (float64, error)

	// GetClearances returns the security clearances the owner holds
	GetClearances(ctx context.Context, ownerID shared.OwnerID) ([]string, error)
}
