package catalog

import "fmt"

// QualityTier is the ordered grade a produced item can be manufactured at.
// Tiers are totally ordered: Standard < High < Premium < Military < Classified.
type QualityTier int

const (
	QualityStandard QualityTier = iota
	QualityHigh
	QualityPremium
	QualityMilitary
	QualityClassified
)

var qualityNames = map[QualityTier]string{
	QualityStandard:   "STANDARD",
	QualityHigh:       "HIGH",
	QualityPremium:    "PREMIUM",
	QualityMilitary:   "MILITARY",
	QualityClassified: "CLASSIFIED",
}

// String returns the canonical name of the tier
func (q QualityTier) String() string {
	if name, ok := qualityNames[q]; ok {
		return name
	}
	return fmt.Sprintf("QUALITY(%d)", int(q))
}

// IsValid checks whether the tier is one of the known grades
func (q QualityTier) IsValid() bool {
	_, ok := qualityNames[q]
	return ok
}

// Exceeds reports whether q is a higher grade than other
func (q QualityTier) Exceeds(other QualityTier) bool {
	return q > other
}

// ParseQualityTier converts a tier name into a QualityTier
func ParseQualityTier(name string) (QualityTier, error) {
	for tier, n := range qualityNames {
		if n == name {
			return tier, nil
		}
	}
	return QualityStandard, fmt.Errorf("unknown quality tier: %s", name)
}

// QualityFactors are the per-tier multipliers applied to a recipe's output
// performance, duration, and material cost
type QualityFactors struct {
	OutputFactor   float64
	TimeFactor     float64
	MaterialFactor float64
}

// DefaultQualityTable returns the standard tier table used when a recipe does
// not override its own factors
func DefaultQualityTable() map[QualityTier]QualityFactors {
	return map[QualityTier]QualityFactors{
		QualityStandard:   {OutputFactor: 1.0, TimeFactor: 1.0, MaterialFactor: 1.0},
		QualityHigh:       {OutputFactor: 1.15, TimeFactor: 1.25, MaterialFactor: 1.2},
		QualityPremium:    {OutputFactor: 1.3, TimeFactor: 1.5, MaterialFactor: 1.5},
		QualityMilitary:   {OutputFactor: 1.5, TimeFactor: 2.0, MaterialFactor: 2.0},
		QualityClassified: {OutputFactor: 2.0, TimeFactor: 3.0, MaterialFactor: 3.0},
	}
}
