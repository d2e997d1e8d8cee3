// Package equipment provides the engine-side adapter to the external
// equipment manager. The scheduling engine only reads loadout effects,
// condition, and clearances; it never mutates equipment state.
package equipment

import (
	"context"
	"sync"

	"github.com/dmarrick/novaforge/internal/domain/bonus"
	"github.com/dmarrick/novaforge/internal/domain/catalog"
	"github.com/dmarrick/novaforge/internal/domain/shared"
)

// Loadout is one owner's equipment snapshot as reported by the manager
type Loadout struct {
	Effects    []catalog.EquipmentEffect
	Condition  float64
	Clearances []string
}

// StaticProvider implements bonus.EquipmentProvider from in-memory loadout
// snapshots pushed by the equipment manager. Owners without a snapshot get a
// neutral loadout at full condition.
type StaticProvider struct {
	mu       sync.RWMutex
	loadouts map[int]Loadout
}

// NewStaticProvider creates an empty provider
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{loadouts: make(map[int]Loadout)}
}

var _ bonus.EquipmentProvider = (*StaticProvider)(nil)

// SetLoadout records or replaces the owner's equipment snapshot
func (p *StaticProvider) SetLoadout(ownerID shared.OwnerID, loadout Loadout) {
	effects := make([]catalog.EquipmentEffect, len(loadout.Effects))
	copy(effects, loadout.Effects)
	clearances := make([]string, len(loadout.Clearances))
	copy(clearances, loadout.Clearances)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.loadouts[ownerID.Value()] = Loadout{
		Effects:    effects,
		Condition:  loadout.Condition,
		Clearances: clearances,
	}
}

// GetEquippedEffects returns the effects of the owner's active loadout
func (p *StaticProvider) GetEquippedEffects(ctx context.Context, ownerID shared.OwnerID) ([]catalog.EquipmentEffect, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	loadout, ok := p.loadouts[ownerID.Value()]
	if !ok {
		return nil, nil
	}
	effects := make([]catalog.EquipmentEffect, len(loadout.Effects))
	copy(effects, loadout.Effects)
	return effects, nil
}

// GetCondition returns the owner's equipment condition in [0,1]
func (p *StaticProvider) GetCondition(ctx context.Context, ownerID shared.OwnerID) (float64, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	loadout, ok := p.loadouts[ownerID.Value()]
	if !ok {
		return 1.0, nil
	}
	return loadout.Condition, nil
}

// GetClearances returns the security clearances the owner holds
func (p *StaticProvider) GetClearances(ctx context.Context, ownerID shared.OwnerID) ([]string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	loadout, ok := p.loadouts[ownerID.Value()]
	if !ok {
		return nil, nil
	}
	clearances := make([]string, len(loadout.Clearances))
	copy(clearances, loadout.Clearances)
	return clearances, nil
}
