package helpers

import (
	"time"

	"github.com/dmarrick/novaforge/internal/domain/catalog"
)

// NewTestCatalog builds a small catalog covering production, extraction, and
// refining paths for tests
func NewTestCatalog() *catalog.Catalog {
	return catalog.New(catalog.Data{
		Recipes: []*catalog.Recipe{
			catalog.NewRecipe(
				"PLASMA_RIFLE",
				"PLASMA_RIFLE",
				"WEAPONS",
				map[string]int{"IRON": 10, "PLASMA_CELL": 2},
				10*time.Minute,
				"",
				nil,
			),
			catalog.NewRecipe(
				"COMBAT_ARMOR",
				"COMBAT_ARMOR",
				"ARMOR",
				map[string]int{"TITANIUM": 8},
				15*time.Minute,
				"HEAVY_FORGE",
				nil,
			),
		},
		Facilities: []*catalog.Facility{
			catalog.NewFacility(
				"FORGE-1",
				"Orbital Forge One",
				[]string{"HEAVY_FORGE"},
				2,
				1.0,
				catalog.QualityPremium,
				"WEAPONS",
				"",
				0,
			),
			catalog.NewFacility(
				"SMELTER-1",
				"Belt Smelter",
				[]string{"REFINE"},
				4,
				1.2,
				catalog.QualityStandard,
				"",
				"",
				1,
			),
			catalog.NewFacility(
				"MILSPEC-1",
				"Military Fabricator",
				[]string{"HEAVY_FORGE"},
				1,
				1.5,
				catalog.QualityClassified,
				"WEAPONS",
				"MILITARY_CLEARANCE",
				0,
			),
		},
		Sites: []*catalog.ExtractionSite{
			catalog.NewExtractionSite(
				"ASTEROID-7",
				"Asteroid Belt Seven",
				3,
				catalog.DifficultyModerate,
				catalog.AbundanceRich,
				[]string{"IRON_ORE", "NICKEL_ORE"},
				[]string{"PLATINUM_ORE"},
				2,
				5*time.Minute,
			),
		},
		Effects: []catalog.EquipmentEffect{
			catalog.NewEquipmentEffect("MINING_LASER_MK2", 1.2, 1.1, 1.0, 1.0),
		},
		BaseValues: map[string]int{
			"IRON_ORE":     12,
			"NICKEL_ORE":   18,
			"PLATINUM_ORE": 140,
		},
		RefineProducts: map[string]string{
			"IRON_ORE":   "IRON",
			"NICKEL_ORE": "NICKEL",
		},
	})
}
