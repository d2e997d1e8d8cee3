package bonus

import "github.com/dmarrick/novaforge/internal/domain/catalog"

// SpecializationBonus is the multiplier a facility or site contributes when
// its specialization matches the job's category
const SpecializationBonus = 1.1

// Condition efficiency bounds. Equipment wear degrades efficiency linearly
// from ConditionEfficiencyMax (pristine) down to ConditionEfficiencyMin
// (fully worn).
const (
	ConditionEfficiencyMin = 0.5
	ConditionEfficiencyMax = 1.0
)

// Resolve composes equipped-item effects and location modifiers into a single
// modifier set. The composition order is fixed so results are reproducible:
// base 1.0, then each equipped effect in the order supplied, then the
// specialization bonus, then the condition-derived efficiency factor.
//
// Resolve is pure: deterministic given its inputs, no side effects.
func Resolve(effects []catalog.EquipmentEffect, specializationMatch bool, condition float64) ModifierSet {
	m := NeutralModifiers()

	for _, effect := range effects {
		m.SpeedMultiplier *= effect.SpeedMultiplier
		m.YieldMultiplier *= effect.YieldMultiplier
		m.EfficiencyMultiplier *= effect.EfficiencyMultiplier
		m.RareFindBonus *= effect.RareFindMultiplier
	}

	if specializationMatch {
		m.SpeedMultiplier *= SpecializationBonus
		m.YieldMultiplier *= SpecializationBonus
	}

	efficiency := conditionEfficiency(condition)
	m.SpeedMultiplier *= efficiency
	m.YieldMultiplier *= efficiency
	m.EfficiencyMultiplier *= efficiency

	return m
}

// conditionEfficiency maps an equipment condition in [0,1] onto the
// [ConditionEfficiencyMin, ConditionEfficiencyMax] degradation band
func conditionEfficiency(condition float64) float64 {
	if condition < 0 {
		condition = 0
	}
	if condition > 1 {
		condition = 1
	}
	return ConditionEfficiencyMin + (ConditionEfficiencyMax-ConditionEfficiencyMin)*condition
}
