package bonus

// ModifierSet is the composed multiplier set applied to a job's duration and
// output. Neutral value for every field is 1.0.
type ModifierSet struct {
	SpeedMultiplier      float64
	YieldMultiplier      float64
	EfficiencyMultiplier float64
	RareFindBonus        float64
}

// NeutralModifiers returns the identity modifier set
func NeutralModifiers() ModifierSet {
	return ModifierSet{
		SpeedMultiplier:      1.0,
		YieldMultiplier:      1.0,
		EfficiencyMultiplier: 1.0,
		RareFindBonus:        1.0,
	}
}
