package yield

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/dmarrick/novaforge/internal/domain/bonus"
	"github.com/dmarrick/novaforge/internal/domain/catalog"
)

// Randomization bands. These are part of the engine's contract: tests pin
// them, so they must never be inlined as literals at call sites.
const (
	// PrimaryYieldBandLow/High bound the uniform random factor applied to
	// primary extraction yields
	PrimaryYieldBandLow  = 0.7
	PrimaryYieldBandHigh = 1.3

	// ScanBandLow/High bound the uniform random factor applied to scan
	// estimates
	ScanBandLow  = 0.8
	ScanBandHigh = 1.2

	// MarketFactorBandLow/High bound the market factor applied during
	// sample appraisal
	MarketFactorBandLow  = 0.85
	MarketFactorBandHigh = 1.15

	// SampleQualityBandLow/High bound the raw quality roll of an
	// extracted sample before efficiency scaling
	SampleQualityBandLow  = 0.3
	SampleQualityBandHigh = 0.9
)

// MaxYieldCapFactor caps any computed extraction amount at this multiple of
// the site's base amount, preventing runaway multiplier stacking
const MaxYieldCapFactor = 10

// BaseAmountPerLevel scales a site's base yield by its level
const BaseAmountPerLevel = 8

// Rare-find chance parameters. The chance grows with site level and
// difficulty and is scaled by the resolved rare-find bonus, clamped to [0,1].
const (
	RareChanceBase     = 0.05
	RareChancePerLevel = 0.01

	// RareAmountFraction scales the primary-yield formula down for the
	// rare resource roll
	RareAmountFraction = 0.25
)

// Refining parameters
const (
	// RefineMultiplierLow/High bound the random ore-to-material multiplier
	RefineMultiplierLow  = 1.0
	RefineMultiplierHigh = 4.0

	// RefineCorruptionMax is the worst-case corruption loss at a
	// third-party refinery, as a fraction of the naive output
	RefineCorruptionMax = 0.15
)

// ProductionOutcome is the deterministic result of a finished production job
type ProductionOutcome struct {
	OutputKind  string
	Quantity    int
	Performance float64
}

// SampleYield describes one extracted resource batch
type SampleYield struct {
	Kind    string
	Amount  int
	Quality float64 // [0,1]
}

// ExtractionOutcome is the stochastic-but-bounded result of a finished
// extraction job. Rare is nil when the rare-find trial failed.
type ExtractionOutcome struct {
	Primary SampleYield
	Rare    *SampleYield
}

// RefineOutcome is the result of refining ore into material. CorruptionLoss
// is reported separately from the net output so third-party refinery fees
// stay auditable.
type RefineOutcome struct {
	RefinedKind    string
	Output         int
	NaiveOutput    int
	CorruptionLoss int
}

// Generator computes job outcomes. All randomness flows through its single
// seeded source so tests can pin results; methods are safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator creates a generator seeded with the given value. A zero seed
// falls back to the wall clock so a restarted engine does not replay the
// previous run's stream.
func NewGenerator(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// BaseAmount returns the unmodified per-job yield for a site level
func BaseAmount(level int) int {
	if level < 1 {
		level = 1
	}
	return level * BaseAmountPerLevel
}

// BaseRareChance returns the unmodified rare-find probability for a site
func BaseRareChance(level int, difficulty catalog.DifficultyTier) float64 {
	if level < 1 {
		level = 1
	}
	return (RareChanceBase + RareChancePerLevel*float64(level)) * difficulty.TimeMultiplier()
}

// Production computes the outcome of a production job. Manufacturing is
// deterministic in count; only the performance score varies with tier and
// facility specialization.
func (g *Generator) Production(recipe *catalog.Recipe, facility *catalog.Facility, quantity int, tier catalog.QualityTier) ProductionOutcome {
	performance := recipe.Factors(tier).OutputFactor
	if facility.SpecializationMatches(recipe.Category()) {
		performance *= bonus.SpecializationBonus
	}
	return ProductionOutcome{
		OutputKind:  recipe.OutputKind(),
		Quantity:    quantity,
		Performance: performance,
	}
}

// Extraction computes the outcome of an extraction job at a site. The primary
// amount is floor(base * abundance * yieldMultiplier * U[band]), at least 1,
// capped at MaxYieldCapFactor times the base amount. The rare roll is a
// Bernoulli trial with the clamped bonus-scaled chance.
func (g *Generator) Extraction(site *catalog.ExtractionSite, resourceKind string, mods bonus.ModifierSet) ExtractionOutcome {
	g.mu.Lock()
	defer g.mu.Unlock()

	base := BaseAmount(site.Level())
	abundance := site.Abundance().Score()

	amount := boundedAmount(base, abundance*mods.YieldMultiplier*g.uniform(PrimaryYieldBandLow, PrimaryYieldBandHigh))
	quality := clamp01(g.uniform(SampleQualityBandLow, SampleQualityBandHigh) * mods.EfficiencyMultiplier)

	outcome := ExtractionOutcome{
		Primary: SampleYield{Kind: resourceKind, Amount: amount, Quality: quality},
	}

	rareKinds := site.RareResources()
	if len(rareKinds) == 0 {
		return outcome
	}

	chance := clamp01(BaseRareChance(site.Level(), site.Difficulty()) * mods.RareFindBonus)
	if g.rng.Float64() >= chance {
		return outcome
	}

	rareAmount := boundedAmount(base,
		abundance*mods.YieldMultiplier*g.uniform(PrimaryYieldBandLow, PrimaryYieldBandHigh)*RareAmountFraction)
	outcome.Rare = &SampleYield{
		Kind:    rareKinds[g.rng.Intn(len(rareKinds))],
		Amount:  rareAmount,
		Quality: clamp01(g.uniform(SampleQualityBandLow, SampleQualityBandHigh) * mods.EfficiencyMultiplier),
	}
	return outcome
}

// ScanEstimate computes the read-only survey estimate for a site: the same
// base formula as extraction but drawn from the tighter scan band
func (g *Generator) ScanEstimate(site *catalog.ExtractionSite, mods bonus.ModifierSet) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	base := BaseAmount(site.Level())
	return boundedAmount(base, site.Abundance().Score()*mods.YieldMultiplier*g.uniform(ScanBandLow, ScanBandHigh))
}

// MarketFactor draws the bounded market factor used by sample appraisal
func (g *Generator) MarketFactor() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.uniform(MarketFactorBandLow, MarketFactorBandHigh)
}

// Refine converts ore into refined material. Owner-controlled refineries skip
// the corruption loss entirely; third-party refineries lose 0-15% of the
// naive output, reported separately.
func (g *Generator) Refine(refinedKind string, inputQty int, ownerControlled bool) RefineOutcome {
	g.mu.Lock()
	defer g.mu.Unlock()

	multiplier := g.uniform(RefineMultiplierLow, RefineMultiplierHigh)
	naive := int(math.Floor(float64(inputQty) * multiplier))

	loss := 0
	if !ownerControlled {
		loss = int(math.Floor(float64(naive) * g.uniform(0, RefineCorruptionMax)))
	}

	return RefineOutcome{
		RefinedKind:    refinedKind,
		Output:         naive - loss,
		NaiveOutput:    naive,
		CorruptionLoss: loss,
	}
}

// boundedAmount applies the floor, minimum-of-1, and hard-cap rules shared by
// every extraction amount
func boundedAmount(base int, multiplier float64) int {
	amount := int(math.Floor(float64(base) * multiplier))
	if amount < 1 {
		amount = 1
	}
	if hardCap := base * MaxYieldCapFactor; amount > hardCap {
		amount = hardCap
	}
	return amount
}

func (g *Generator) uniform(low, high float64) float64 {
	return low + (high-low)*g.rng.Float64()
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
