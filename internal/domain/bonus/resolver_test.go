package bonus_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmarrick/novaforge/internal/domain/bonus"
	"github.com/dmarrick/novaforge/internal/domain/catalog"
)

func TestResolve_NoEffects(t *testing.T) {
	m := bonus.Resolve(nil, false, 1.0)
	assert.Equal(t, bonus.NeutralModifiers(), m)
}

func TestResolve_ComposesMultiplicatively(t *testing.T) {
	effects := []catalog.EquipmentEffect{
		catalog.NewEquipmentEffect("MINING_LASER_II", 1.2, 1.5, 0, 0),
		catalog.NewEquipmentEffect("SURVEY_ARRAY", 0, 1.1, 0, 2.0),
	}

	m := bonus.Resolve(effects, false, 1.0)

	assert.InDelta(t, 1.2, m.SpeedMultiplier, 1e-9)
	assert.InDelta(t, 1.5*1.1, m.YieldMultiplier, 1e-9)
	assert.InDelta(t, 2.0, m.RareFindBonus, 1e-9)
}

func TestResolve_SpecializationBonus(t *testing.T) {
	m := bonus.Resolve(nil, true, 1.0)

	assert.InDelta(t, bonus.SpecializationBonus, m.SpeedMultiplier, 1e-9)
	assert.InDelta(t, bonus.SpecializationBonus, m.YieldMultiplier, 1e-9)
	// Specialization does not touch the rare-find channel
	assert.InDelta(t, 1.0, m.RareFindBonus, 1e-9)
}

func TestResolve_ConditionDegradation(t *testing.T) {
	worn := bonus.Resolve(nil, false, 0.0)
	assert.InDelta(t, bonus.ConditionEfficiencyMin, worn.SpeedMultiplier, 1e-9)
	assert.InDelta(t, bonus.ConditionEfficiencyMin, worn.EfficiencyMultiplier, 1e-9)

	half := bonus.Resolve(nil, false, 0.5)
	assert.InDelta(t, 0.75, half.YieldMultiplier, 1e-9)

	// Out-of-range conditions clamp to the band
	over := bonus.Resolve(nil, false, 1.7)
	assert.InDelta(t, bonus.ConditionEfficiencyMax, over.SpeedMultiplier, 1e-9)
}

func TestResolve_IsDeterministic(t *testing.T) {
	effects := []catalog.EquipmentEffect{
		catalog.NewEquipmentEffect("FAB_COPROCESSOR", 1.35, 1.05, 1.1, 0),
	}

	first := bonus.Resolve(effects, true, 0.8)
	second := bonus.Resolve(effects, true, 0.8)

	assert.Equal(t, first, second)
}
