package config

import "time"

// EngineConfig holds scheduling engine configuration
type EngineConfig struct {
	// Path to the static catalog file (recipes, facilities, sites)
	CatalogPath string `mapstructure:"catalog_path" validate:"required"`

	// Seed for the yield generator. Zero seeds from the wall clock.
	YieldSeed int64 `mapstructure:"yield_seed"`

	// Maximum completions processed per second during startup recovery
	RecoveryRate float64 `mapstructure:"recovery_rate" validate:"min=0"`

	// Interval between sweeps for overdue jobs
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}
