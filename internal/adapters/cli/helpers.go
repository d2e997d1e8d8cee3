package cli

import (
	"fmt"
	"sort"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/dustin/go-humanize"

	"github.com/dmarrick/novaforge/internal/adapters/catalogfile"
	"github.com/dmarrick/novaforge/internal/adapters/equipment"
	"github.com/dmarrick/novaforge/internal/adapters/persistence"
	"github.com/dmarrick/novaforge/internal/application/common"
	"github.com/dmarrick/novaforge/internal/application/engine"
	"github.com/dmarrick/novaforge/internal/domain/catalog"
	"github.com/dmarrick/novaforge/internal/domain/shared"
	"github.com/dmarrick/novaforge/internal/infrastructure/config"
	"github.com/dmarrick/novaforge/internal/infrastructure/database"
	"github.com/dmarrick/novaforge/internal/infrastructure/logging"
)

// session bundles what every CLI command needs: the assembled engine, the
// catalog it runs against, and the event log for history queries
type session struct {
	engine  *engine.Engine
	catalog *catalog.Catalog
	events  *persistence.GormEventLogRepository
	close   func()
}

// openSession loads config, opens the database, and assembles the engine.
// The scheduler is not started: the daemon owns timers, and overdue jobs are
// completed by its sweeper.
func openSession() (*session, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	cat, err := catalogfile.Load(cfg.Engine.CatalogPath)
	if err != nil {
		return nil, err
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(db); err != nil {
		database.Close(db)
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	var logger common.EngineLogger
	if verbose {
		consoleLogger, err := logging.NewFromConfig(&cfg.Logging)
		if err != nil {
			database.Close(db)
			return nil, err
		}
		logger = consoleLogger
	}

	eng, err := engine.New(db, engine.Options{
		Catalog:       cat,
		Equipment:     equipment.NewStaticProvider(),
		Logger:        logger,
		YieldSeed:     cfg.Engine.YieldSeed,
		RecoveryRate:  cfg.Engine.RecoveryRate,
		SweepInterval: cfg.Engine.SweepInterval,
		PersistEvents: true,
	})
	if err != nil {
		database.Close(db)
		return nil, err
	}

	return &session{
		engine:  eng,
		catalog: cat,
		events:  persistence.NewGormEventLogRepository(db),
		close:   func() { database.Close(db) },
	}, nil
}

// requireOwner validates the --owner-id flag
func requireOwner() (shared.OwnerID, error) {
	owner, err := shared.NewOwnerID(ownerID)
	if err != nil {
		return shared.OwnerID{}, fmt.Errorf("--owner-id is required and must be positive")
	}
	return owner, nil
}

// formatRemaining renders a remaining duration for display
func formatRemaining(d time.Duration) string {
	if d <= 0 {
		return "due"
	}
	return d.Round(time.Second).String()
}

// formatTime renders a timestamp relative to now ("3 minutes ago")
func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return humanize.Time(*t)
}

// formatCredits renders an integer with thousands separators
func formatCredits(v int) string {
	return humanize.Comma(int64(v))
}

// suggest returns the closest candidate to input, or "" when nothing is
// within a sensible edit distance
func suggest(input string, candidates []string) string {
	best := ""
	bestDist := 4 // anything further is noise
	for _, candidate := range candidates {
		dist := levenshtein.ComputeDistance(input, candidate)
		if dist < bestDist {
			best = candidate
			bestDist = dist
		}
	}
	return best
}

// suggestionHint formats a "did you mean" hint for unknown catalog ids
func suggestionHint(input string, candidates []string) string {
	sort.Strings(candidates)
	if s := suggest(input, candidates); s != "" {
		return fmt.Sprintf(" (did you mean %q?)", s)
	}
	return ""
}
