// Package catalogfile loads the static production catalog from a YAML file.
package catalogfile

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/dmarrick/novaforge/internal/domain/catalog"
)

// recipeSpec is the on-disk shape of a recipe entry
type recipeSpec struct {
	ID           string         `mapstructure:"id"`
	OutputKind   string         `mapstructure:"output_kind"`
	Category     string         `mapstructure:"category"`
	Inputs       map[string]int `mapstructure:"inputs"`
	BaseDuration string         `mapstructure:"base_duration"`
	RequiredTag  string         `mapstructure:"required_tag"`
}

type facilitySpec struct {
	ID                string   `mapstructure:"id"`
	Name              string   `mapstructure:"name"`
	Tags              []string `mapstructure:"tags"`
	MaxSlots          int      `mapstructure:"max_slots"`
	Efficiency        float64  `mapstructure:"efficiency"`
	MaxQuality        string   `mapstructure:"max_quality"`
	Specialization    string   `mapstructure:"specialization"`
	AccessRequirement string   `mapstructure:"access_requirement"`
	OwnerID           int      `mapstructure:"owner_id"`
}

type siteSpec struct {
	ID               string   `mapstructure:"id"`
	Name             string   `mapstructure:"name"`
	Level            int      `mapstructure:"level"`
	Difficulty       string   `mapstructure:"difficulty"`
	Abundance        string   `mapstructure:"abundance"`
	PrimaryResources []string `mapstructure:"primary_resources"`
	RareResources    []string `mapstructure:"rare_resources"`
	MaxClaims        int      `mapstructure:"max_claims"`
	BaseDuration     string   `mapstructure:"base_duration"`
}

type effectSpec struct {
	Name                 string  `mapstructure:"name"`
	SpeedMultiplier      float64 `mapstructure:"speed_multiplier"`
	YieldMultiplier      float64 `mapstructure:"yield_multiplier"`
	EfficiencyMultiplier float64 `mapstructure:"efficiency_multiplier"`
	RareFindMultiplier   float64 `mapstructure:"rare_find_multiplier"`
}

type catalogSpec struct {
	Recipes        []recipeSpec      `mapstructure:"recipes"`
	Facilities     []facilitySpec    `mapstructure:"facilities"`
	Sites          []siteSpec        `mapstructure:"sites"`
	Effects        []effectSpec      `mapstructure:"effects"`
	BaseValues     map[string]int    `mapstructure:"base_values"`
	RefineProducts map[string]string `mapstructure:"refine_products"`
}

// Load reads a catalog YAML file and builds the immutable catalog
func Load(path string) (*catalog.Catalog, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}

	var spec catalogSpec
	if err := v.Unmarshal(&spec); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file %s: %w", path, err)
	}
	return build(spec)
}

func build(spec catalogSpec) (*catalog.Catalog, error) {
	data := catalog.Data{
		BaseValues:     spec.BaseValues,
		RefineProducts: spec.RefineProducts,
	}

	for _, r := range spec.Recipes {
		duration, err := parseDuration(r.BaseDuration)
		if err != nil {
			return nil, fmt.Errorf("recipe %s: %w", r.ID, err)
		}
		data.Recipes = append(data.Recipes, catalog.NewRecipe(
			r.ID, r.OutputKind, r.Category, r.Inputs, duration, r.RequiredTag, nil,
		))
	}

	for _, f := range spec.Facilities {
		maxQuality := catalog.QualityClassified
		if f.MaxQuality != "" {
			tier, err := catalog.ParseQualityTier(f.MaxQuality)
			if err != nil {
				return nil, fmt.Errorf("facility %s: %w", f.ID, err)
			}
			maxQuality = tier
		}
		data.Facilities = append(data.Facilities, catalog.NewFacility(
			f.ID, f.Name, f.Tags, f.MaxSlots, f.Efficiency,
			maxQuality, f.Specialization, f.AccessRequirement, f.OwnerID,
		))
	}

	for _, s := range spec.Sites {
		duration, err := parseDuration(s.BaseDuration)
		if err != nil {
			return nil, fmt.Errorf("site %s: %w", s.ID, err)
		}
		difficulty, err := parseDifficulty(s.Difficulty)
		if err != nil {
			return nil, fmt.Errorf("site %s: %w", s.ID, err)
		}
		abundance, err := parseAbundance(s.Abundance)
		if err != nil {
			return nil, fmt.Errorf("site %s: %w", s.ID, err)
		}
		data.Sites = append(data.Sites, catalog.NewExtractionSite(
			s.ID, s.Name, s.Level, difficulty, abundance,
			s.PrimaryResources, s.RareResources, s.MaxClaims, duration,
		))
	}

	for _, e := range spec.Effects {
		data.Effects = append(data.Effects, catalog.NewEquipmentEffect(
			e.Name, e.SpeedMultiplier, e.YieldMultiplier,
			e.EfficiencyMultiplier, e.RareFindMultiplier,
		))
	}

	return catalog.New(data), nil
}

func parseDuration(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, fmt.Errorf("base_duration is required")
	}
	duration, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid base_duration %q: %w", raw, err)
	}
	if duration <= 0 {
		return 0, fmt.Errorf("base_duration must be positive, got %s", duration)
	}
	return duration, nil
}

func parseDifficulty(raw string) (catalog.DifficultyTier, error) {
	switch catalog.DifficultyTier(raw) {
	case catalog.DifficultyLow, catalog.DifficultyModerate, catalog.DifficultyHigh, catalog.DifficultyExtreme:
		return catalog.DifficultyTier(raw), nil
	}
	return "", fmt.Errorf("unknown difficulty tier %q", raw)
}

func parseAbundance(raw string) (catalog.AbundanceTier, error) {
	switch catalog.AbundanceTier(raw) {
	case catalog.AbundanceSparse, catalog.AbundanceModerate, catalog.AbundanceRich, catalog.AbundancePristine:
		return catalog.AbundanceTier(raw), nil
	}
	return "", fmt.Errorf("unknown abundance tier %q", raw)
}
