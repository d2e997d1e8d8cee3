package catalog

// EquipmentEffect is a named set of numeric modifiers contributed by an
// equipped item or active loadout. All modifiers are multipliers with a
// neutral value of 1.0.
type EquipmentEffect struct {
	Name                 string
	SpeedMultiplier      float64
	YieldMultiplier      float64
	EfficiencyMultiplier float64
	RareFindMultiplier   float64
}

// NewEquipmentEffect creates an effect, normalizing zero-valued modifiers to
// the neutral 1.0 so partially-specified effects compose safely
func NewEquipmentEffect(name string, speed, yield, efficiency, rareFind float64) EquipmentEffect {
	return EquipmentEffect{
		Name:                 name,
		SpeedMultiplier:      orNeutral(speed),
		YieldMultiplier:      orNeutral(yield),
		EfficiencyMultiplier: orNeutral(efficiency),
		RareFindMultiplier:   orNeutral(rareFind),
	}
}

func orNeutral(v float64) float64 {
	if v <= 0 {
		return 1.0
	}
	return v
}
