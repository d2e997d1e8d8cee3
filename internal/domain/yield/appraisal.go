package yield

import "math"

// QualityValueBase anchors the quality value factor: a sample of quality q
// appraises at (QualityValueBase + q) times its base value, so quality 0.5 is
// worth exactly face value
const QualityValueBase = 0.5

// AppraisalValue computes the deterministic part of a sample's market value.
// The marketFactor is drawn once, at appraisal time, from the
// MarketFactorBand; after that the value is fixed.
func AppraisalValue(baseValue, amount int, quality, marketFactor float64) int {
	value := float64(baseValue) * float64(amount) * (QualityValueBase + quality) * marketFactor
	return int(math.Round(value))
}
