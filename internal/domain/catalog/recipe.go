package catalog

import (
	"math"
	"time"
)

// Recipe is an immutable blueprint describing how a piece of equipment is
// manufactured: which materials it consumes, how long a unit takes at base
// speed, and how quality tiers scale output, time, and cost.
type Recipe struct {
	id           string
	outputKind   string
	category     string
	inputs       map[string]int
	baseDuration time.Duration
	requiredTag  string
	qualityTable map[QualityTier]QualityFactors
}

// NewRecipe creates a recipe definition. A nil qualityTable falls back to the
// default tier table.
func NewRecipe(
	id string,
	outputKind string,
	category string,
	inputs map[string]int,
	baseDuration time.Duration,
	requiredTag string,
	qualityTable map[QualityTier]QualityFactors,
) *Recipe {
	// Copy inputs to keep the catalog immutable after load
	in := make(map[string]int, len(inputs))
	for kind, qty := range inputs {
		in[kind] = qty
	}

	if qualityTable == nil {
		qualityTable = DefaultQualityTable()
	}
	table := make(map[QualityTier]QualityFactors, len(qualityTable))
	for tier, factors := range qualityTable {
		table[tier] = factors
	}

	return &Recipe{
		id:           id,
		outputKind:   outputKind,
		category:     category,
		inputs:       in,
		baseDuration: baseDuration,
		requiredTag:  requiredTag,
		qualityTable: table,
	}
}

func (r *Recipe) ID() string                  { return r.id }
func (r *Recipe) OutputKind() string          { return r.outputKind }
func (r *Recipe) Category() string            { return r.category }
func (r *Recipe) BaseDuration() time.Duration { return r.baseDuration }
func (r *Recipe) RequiredTag() string         { return r.requiredTag }

// Inputs returns a copy of the per-unit material requirements
func (r *Recipe) Inputs() map[string]int {
	inputs := make(map[string]int, len(r.inputs))
	for kind, qty := range r.inputs {
		inputs[kind] = qty
	}
	return inputs
}

// Factors returns the quality factors for a tier, falling back to the default
// table when the recipe's own table has no entry
func (r *Recipe) Factors(tier QualityTier) QualityFactors {
	if factors, ok := r.qualityTable[tier]; ok {
		return factors
	}
	return DefaultQualityTable()[tier]
}

// RequirementsFor computes the total materials consumed to produce qty units
// at the given tier. Per-unit costs scale by the tier's material factor and
// are rounded up so higher tiers never cost less than standard.
func (r *Recipe) RequirementsFor(qty int, tier QualityTier) map[string]int {
	factor := r.Factors(tier).MaterialFactor
	requirements := make(map[string]int, len(r.inputs))
	for kind, perUnit := range r.inputs {
		requirements[kind] = int(math.Ceil(float64(perUnit*qty) * factor))
	}
	return requirements
}

// BaseDurationFor returns the unmodified duration for producing qty units
func (r *Recipe) BaseDurationFor(qty int) time.Duration {
	return r.baseDuration * time.Duration(qty)
}
