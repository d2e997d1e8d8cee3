package catalog

import (
	"sort"

	"github.com/dmarrick/novaforge/internal/domain/shared"
)

// Data is the raw reference data handed to the engine by the external catalog
// loader. The engine never mutates it after load.
type Data struct {
	Recipes    []*Recipe
	Facilities []*Facility
	Sites      []*ExtractionSite
	Effects    []EquipmentEffect

	// BaseValues maps a material kind to its base market value per unit,
	// used by sample appraisal
	BaseValues map[string]int

	// RefineProducts maps an ore kind to the refined material it yields
	RefineProducts map[string]string
}

// Catalog holds the immutable lookup tables for recipes, facilities,
// extraction sites, and equipment effects. Loaded once, read-only after.
type Catalog struct {
	recipes        map[string]*Recipe
	facilities     map[string]*Facility
	sites          map[string]*ExtractionSite
	effects        map[string]EquipmentEffect
	baseValues     map[string]int
	refineProducts map[string]string
}

// New builds a catalog from loaded reference data
func New(data Data) *Catalog {
	c := &Catalog{
		recipes:        make(map[string]*Recipe, len(data.Recipes)),
		facilities:     make(map[string]*Facility, len(data.Facilities)),
		sites:          make(map[string]*ExtractionSite, len(data.Sites)),
		effects:        make(map[string]EquipmentEffect, len(data.Effects)),
		baseValues:     make(map[string]int, len(data.BaseValues)),
		refineProducts: make(map[string]string, len(data.RefineProducts)),
	}
	for _, r := range data.Recipes {
		c.recipes[r.ID()] = r
	}
	for _, f := range data.Facilities {
		c.facilities[f.ID()] = f
	}
	for _, s := range data.Sites {
		c.sites[s.ID()] = s
	}
	for _, e := range data.Effects {
		c.effects[e.Name] = e
	}
	for kind, value := range data.BaseValues {
		c.baseValues[kind] = value
	}
	for ore, refined := range data.RefineProducts {
		c.refineProducts[ore] = refined
	}
	return c
}

// Recipe looks up a recipe by id
func (c *Catalog) Recipe(id string) (*Recipe, error) {
	recipe, ok := c.recipes[id]
	if !ok {
		return nil, NewNotFoundError("recipe", id)
	}
	return recipe, nil
}

// Facility looks up a facility by id
func (c *Catalog) Facility(id string) (*Facility, error) {
	facility, ok := c.facilities[id]
	if !ok {
		return nil, NewNotFoundError("facility", id)
	}
	return facility, nil
}

// Site looks up an extraction site by id
func (c *Catalog) Site(id string) (*ExtractionSite, error) {
	site, ok := c.sites[id]
	if !ok {
		return nil, NewNotFoundError("extraction site", id)
	}
	return site, nil
}

// Effect looks up an equipment effect by name
func (c *Catalog) Effect(name string) (EquipmentEffect, error) {
	effect, ok := c.effects[name]
	if !ok {
		return EquipmentEffect{}, NewNotFoundError("equipment effect", name)
	}
	return effect, nil
}

// BaseValue returns the base per-unit market value for a material kind.
// Unknown kinds appraise at zero rather than failing.
func (c *Catalog) BaseValue(kind string) int {
	return c.baseValues[kind]
}

// RefineProduct returns the refined material kind an ore refines into
func (c *Catalog) RefineProduct(oreKind string) (string, error) {
	refined, ok := c.refineProducts[oreKind]
	if !ok {
		return "", NewNotFoundError("refine product", oreKind)
	}
	return refined, nil
}

// CanProduce validates that a facility can run a recipe at the requested
// quality tier for an owner holding the given clearances. Checks, in order:
// capability-tag membership, the facility's access requirement, and that the
// tier does not exceed the facility's maximum.
func (c *Catalog) CanProduce(facility *Facility, recipe *Recipe, tier QualityTier, clearances []string) error {
	if !facility.SupportsTag(recipe.RequiredTag()) {
		return &CapabilityError{FacilityID: facility.ID(), Tag: recipe.RequiredTag()}
	}

	if req := facility.AccessRequirement(); req != "" {
		if !containsString(clearances, req) {
			return shared.NewAccessDeniedError(req)
		}
	}

	if tier.Exceeds(facility.MaxQuality()) {
		return &InvalidQualityTierError{Requested: tier, Maximum: facility.MaxQuality()}
	}

	return nil
}

// RecipeIDs returns all recipe ids, sorted
func (c *Catalog) RecipeIDs() []string {
	return sortedKeys(c.recipes)
}

// FacilityIDs returns all facility ids, sorted
func (c *Catalog) FacilityIDs() []string {
	return sortedKeys(c.facilities)
}

// SiteIDs returns all extraction site ids, sorted
func (c *Catalog) SiteIDs() []string {
	return sortedKeys(c.sites)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
