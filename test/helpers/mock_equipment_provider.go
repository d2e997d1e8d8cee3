package helpers

import (
	"context"

	"github.com/dmarrick/novaforge/internal/domain/catalog"
	"github.com/dmarrick/novaforge/internal/domain/shared"
)

// MockEquipmentProvider is a configurable equipment provider for tests.
// Zero value returns no effects, full condition, and no clearances.
type MockEquipmentProvider struct {
	Effects    []catalog.EquipmentEffect
	Condition  float64
	Clearances []string

	// Err, when set, is returned by every method
	Err error
}

// NewMockEquipmentProvider creates a provider with full condition
func NewMockEquipmentProvider() *MockEquipmentProvider {
	return &MockEquipmentProvider{Condition: 1.0}
}

func (m *MockEquipmentProvider) GetEquippedEffects(ctx context.Context, ownerID shared.OwnerID) ([]catalog.EquipmentEffect, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Effects, nil
}

func (m *MockEquipmentProvider) GetCondition(ctx context.Context, ownerID shared.OwnerID) (float64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	if m.Condition == 0 {
		return 1.0, nil
	}
	return m.Condition, nil
}

func (m *MockEquipmentProvider) GetClearances(ctx context.Context, ownerID shared.OwnerID) ([]string, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Clearances, nil
}
