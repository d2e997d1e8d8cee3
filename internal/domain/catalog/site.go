package catalog

import "time"

// DifficultyTier grades how hard a site is to work. It maps to a time/energy
// multiplier in the 0.7-2.0 range.
type DifficultyTier string

const (
	DifficultyLow      DifficultyTier = "LOW"
	DifficultyModerate DifficultyTier = "MODERATE"
	DifficultyHigh     DifficultyTier = "HIGH"
	DifficultyExtreme  DifficultyTier = "EXTREME"
)

// TimeMultiplier returns the extraction-time multiplier for the tier
func (d DifficultyTier) TimeMultiplier() float64 {
	switch d {
	case DifficultyLow:
		return 0.7
	case DifficultyHigh:
		return 1.5
	case DifficultyExtreme:
		return 2.0
	default:
		return 1.0
	}
}

// AbundanceTier grades how resource-rich a site is. It maps to a numeric
// abundance score in the 0.5-4 range.
type AbundanceTier string

const (
	AbundanceSparse   AbundanceTier = "SPARSE"
	AbundanceModerate AbundanceTier = "MODERATE"
	AbundanceRich     AbundanceTier = "RICH"
	AbundancePristine AbundanceTier = "PRISTINE"
)

// Score returns the numeric abundance score for the tier
func (a AbundanceTier) Score() float64 {
	switch a {
	case AbundanceSparse:
		return 0.5
	case AbundanceRich:
		return 2.5
	case AbundancePristine:
		return 4.0
	default:
		return 1.0
	}
}

// ExtractionSite is an immutable extraction location definition
type ExtractionSite struct {
	id               string
	name             string
	level            int
	difficulty       DifficultyTier
	abundance        AbundanceTier
	primaryResources []string
	rareResources    []string
	maxClaims        int
	baseDuration     time.Duration
}

// NewExtractionSite creates an extraction site definition
func NewExtractionSite(
	id string,
	name string,
	level int,
	difficulty DifficultyTier,
	abundance AbundanceTier,
	primaryResources []string,
	rareResources []string,
	maxClaims int,
	baseDuration time.Duration,
) *ExtractionSite {
	primary := make([]string, len(primaryResources))
	copy(primary, primaryResources)
	rare := make([]string, len(rareResources))
	copy(rare, rareResources)

	return &ExtractionSite{
		id:               id,
		name:             name,
		level:            level,
		difficulty:       difficulty,
		abundance:        abundance,
		primaryResources: primary,
		rareResources:    rare,
		maxClaims:        maxClaims,
		baseDuration:     baseDuration,
	}
}

func (s *ExtractionSite) ID() string                  { return s.id }
func (s *ExtractionSite) Name() string                { return s.name }
func (s *ExtractionSite) Level() int                  { return s.level }
func (s *ExtractionSite) Difficulty() DifficultyTier  { return s.difficulty }
func (s *ExtractionSite) Abundance() AbundanceTier    { return s.abundance }
func (s *ExtractionSite) MaxClaims() int              { return s.maxClaims }
func (s *ExtractionSite) BaseDuration() time.Duration { return s.baseDuration }

// PrimaryResources returns a copy of the site's primary resource kinds
func (s *ExtractionSite) PrimaryResources() []string {
	resources := make([]string, len(s.primaryResources))
	copy(resources, s.primaryResources)
	return resources
}

// RareResources returns a copy of the site's rare resource kinds
func (s *ExtractionSite) RareResources() []string {
	resources := make([]string, len(s.rareResources))
	copy(resources, s.rareResources)
	return resources
}

// HasResource reports whether kind is extractable at the site, either as a
// primary or rare resource
func (s *ExtractionSite) HasResource(kind string) bool {
	for _, r := range s.primaryResources {
		if r == kind {
			return true
		}
	}
	for _, r := range s.rareResources {
		if r == kind {
			return true
		}
	}
	return false
}
