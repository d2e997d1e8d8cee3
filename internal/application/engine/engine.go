// Package engine assembles the scheduling engine: handlers behind a mediator,
// the deadline scheduler, and the completion event bus. It is the single
// entry point both the daemon and tests wire against.
package engine

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"gorm.io/gorm"

	"github.com/dmarrick/novaforge/internal/adapters/persistence"
	"github.com/dmarrick/novaforge/internal/application/common"
	extractioncommands "github.com/dmarrick/novaforge/internal/application/extraction/commands"
	extractionqueries "github.com/dmarrick/novaforge/internal/application/extraction/queries"
	jobcommands "github.com/dmarrick/novaforge/internal/application/jobs/commands"
	jobqueries "github.com/dmarrick/novaforge/internal/application/jobs/queries"
	ledgerqueries "github.com/dmarrick/novaforge/internal/application/ledger/queries"
	productioncommands "github.com/dmarrick/novaforge/internal/application/production/commands"
	samplecommands "github.com/dmarrick/novaforge/internal/application/samples/commands"
	samplequeries "github.com/dmarrick/novaforge/internal/application/samples/queries"
	"github.com/dmarrick/novaforge/internal/application/scheduler"
	"github.com/dmarrick/novaforge/internal/domain/bonus"
	"github.com/dmarrick/novaforge/internal/domain/capacity"
	"github.com/dmarrick/novaforge/internal/domain/catalog"
	"github.com/dmarrick/novaforge/internal/domain/job"
	"github.com/dmarrick/novaforge/internal/domain/ledger"
	"github.com/dmarrick/novaforge/internal/domain/sample"
	"github.com/dmarrick/novaforge/internal/domain/shared"
	"github.com/dmarrick/novaforge/internal/domain/yield"
)

// Options configures engine assembly
type Options struct {
	Catalog   *catalog.Catalog
	Equipment bonus.EquipmentProvider
	Logger    common.EngineLogger
	Metrics   scheduler.MetricsRecorder
	Clock     shared.Clock

	// YieldSeed seeds the yield generator. Zero seeds from the wall clock.
	YieldSeed int64

	// RecoveryRate caps completions per second during startup recovery
	RecoveryRate float64

	// SweepInterval overrides how often the overdue-job sweeper runs. Zero
	// keeps the scheduler default.
	SweepInterval time.Duration

	// PersistEvents mirrors completion events into the engine_events table
	PersistEvents bool
}

// Engine is the assembled scheduling engine façade
type Engine struct {
	mediator  common.Mediator
	scheduler *scheduler.Scheduler
	events    *common.EventBus
	logger    common.EngineLogger

	jobs    job.Repository
	ledger  ledger.Store
	tracker capacity.Tracker
	samples sample.Repository
}

// New assembles an engine over the given database connection
func New(db *gorm.DB, opts Options) (*Engine, error) {
	if opts.Catalog == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	if opts.Equipment == nil {
		return nil, fmt.Errorf("equipment provider is required")
	}
	clock := opts.Clock
	if clock == nil {
		clock = shared.NewRealClock()
	}

	jobs := persistence.NewGormJobRepository(db)
	ledgerStore := persistence.NewGormLedgerStore(db)
	tracker := persistence.NewGormCapacityTracker(db)
	samples := persistence.NewGormSampleRepository(db)

	generator := yield.NewGenerator(opts.YieldSeed)
	events := common.NewEventBus()

	completer := scheduler.NewCompleter(
		opts.Catalog, jobs, ledgerStore, tracker, samples,
		generator, events, opts.Metrics, clock,
	)
	sched := scheduler.NewScheduler(jobs, completer, clock, opts.Logger, opts.Metrics,
		opts.RecoveryRate, opts.SweepInterval)

	if opts.PersistEvents {
		eventLog := persistence.NewGormEventLogRepository(db)
		events.Subscribe(common.CompletionObserverFunc(func(event common.CompletionEvent) {
			if err := eventLog.Append(context.Background(), event); err != nil && opts.Logger != nil {
				opts.Logger.Log("ERROR", "failed to persist completion event", map[string]interface{}{
					"job_id": event.JobID,
					"error":  err.Error(),
				})
			}
		}))
	}

	m := common.NewMediator()
	registrations := []struct {
		request common.Request
		handler common.RequestHandler
	}{
		{&productioncommands.StartProductionCommand{}, productioncommands.NewStartProductionHandler(
			opts.Catalog, tracker, ledgerStore, opts.Equipment, jobs, sched, opts.Metrics, clock)},
		{&extractioncommands.StartExtractionCommand{}, extractioncommands.NewStartExtractionHandler(
			opts.Catalog, tracker, opts.Equipment, jobs, sched, opts.Metrics, clock)},
		{&jobcommands.CancelJobCommand{}, jobcommands.NewCancelJobHandler(completer, sched)},
		{&samplecommands.AppraiseSampleCommand{}, samplecommands.NewAppraiseSampleHandler(
			opts.Catalog, samples, generator, clock)},
		{&samplecommands.SellSampleCommand{}, samplecommands.NewSellSampleHandler(samples, ledgerStore)},
		{&samplecommands.RefineOreCommand{}, samplecommands.NewRefineOreHandler(
			opts.Catalog, samples, ledgerStore, generator)},
		{&jobqueries.GetJobStatusQuery{}, jobqueries.NewGetJobStatusHandler(jobs, clock)},
		{&jobqueries.ListJobsQuery{}, jobqueries.NewListJobsHandler(jobs, clock)},
		{&samplequeries.ListSamplesQuery{}, samplequeries.NewListSamplesHandler(samples)},
		{&ledgerqueries.GetBalancesQuery{}, ledgerqueries.NewGetBalancesHandler(ledgerStore)},
		{&extractionqueries.EstimateSiteQuery{}, extractionqueries.NewEstimateSiteHandler(
			opts.Catalog, opts.Equipment, generator)},
	}
	for _, reg := range registrations {
		if err := m.Register(reflect.TypeOf(reg.request), reg.handler); err != nil {
			return nil, fmt.Errorf("failed to register handler: %w", err)
		}
	}

	return &Engine{
		mediator:  m,
		scheduler: sched,
		events:    events,
		logger:    opts.Logger,
		jobs:      jobs,
		ledger:    ledgerStore,
		tracker:   tracker,
		samples:   samples,
	}, nil
}

// Start recovers persisted deadlines and launches the background sweeper
func (e *Engine) Start(ctx context.Context) error {
	return e.scheduler.Start(ctx)
}

// Stop halts timers and the sweeper. In-flight jobs stay in the store and are
// recovered on the next Start.
func (e *Engine) Stop() {
	e.scheduler.Stop()
}

// Subscribe registers an observer for job completion events
func (e *Engine) Subscribe(observer common.CompletionObserver) {
	e.events.Subscribe(observer)
}

// StartProduction admits a production job
func (e *Engine) StartProduction(ctx context.Context, cmd *productioncommands.StartProductionCommand) (*productioncommands.StartProductionResponse, error) {
	return send[*productioncommands.StartProductionResponse](ctx, e, cmd)
}

// StartExtraction admits an extraction job
func (e *Engine) StartExtraction(ctx context.Context, cmd *extractioncommands.StartExtractionCommand) (*extractioncommands.StartExtractionResponse, error) {
	return send[*extractioncommands.StartExtractionResponse](ctx, e, cmd)
}

// CancelJob cancels a job per the cancellation policy
func (e *Engine) CancelJob(ctx context.Context, cmd *jobcommands.CancelJobCommand) (*jobcommands.CancelJobResponse, error) {
	return send[*jobcommands.CancelJobResponse](ctx, e, cmd)
}

// AppraiseSample fixes a sample's market value
func (e *Engine) AppraiseSample(ctx context.Context, cmd *samplecommands.AppraiseSampleCommand) (*samplecommands.AppraiseSampleResponse, error) {
	return send[*samplecommands.AppraiseSampleResponse](ctx, e, cmd)
}

// SellSample sells an appraised sample at its fixed value
func (e *Engine) SellSample(ctx context.Context, cmd *samplecommands.SellSampleCommand) (*samplecommands.SellSampleResponse, error) {
	return send[*samplecommands.SellSampleResponse](ctx, e, cmd)
}

// RefineOre converts sampled ore into refined material
func (e *Engine) RefineOre(ctx context.Context, cmd *samplecommands.RefineOreCommand) (*samplecommands.RefineOreResponse, error) {
	return send[*samplecommands.RefineOreResponse](ctx, e, cmd)
}

// GetJobStatus returns a job snapshot with remaining time
func (e *Engine) GetJobStatus(ctx context.Context, query *jobqueries.GetJobStatusQuery) (*jobqueries.JobSnapshot, error) {
	return send[*jobqueries.JobSnapshot](ctx, e, query)
}

// ListJobs returns an owner's jobs, newest first
func (e *Engine) ListJobs(ctx context.Context, query *jobqueries.ListJobsQuery) (*jobqueries.ListJobsResponse, error) {
	return send[*jobqueries.ListJobsResponse](ctx, e, query)
}

// ListSamples returns an owner's unsold samples
func (e *Engine) ListSamples(ctx context.Context, query *samplequeries.ListSamplesQuery) (*samplequeries.ListSamplesResponse, error) {
	return send[*samplequeries.ListSamplesResponse](ctx, e, query)
}

// GetBalances returns all non-zero ledger balances of an owner
func (e *Engine) GetBalances(ctx context.Context, query *ledgerqueries.GetBalancesQuery) (*ledgerqueries.GetBalancesResponse, error) {
	return send[*ledgerqueries.GetBalancesResponse](ctx, e, query)
}

// EstimateSite runs a read-only survey scan of an extraction site
func (e *Engine) EstimateSite(ctx context.Context, query *extractionqueries.EstimateSiteQuery) (*extractionqueries.EstimateSiteResponse, error) {
	return send[*extractionqueries.EstimateSiteResponse](ctx, e, query)
}

func send[T any](ctx context.Context, e *Engine, request common.Request) (T, error) {
	var zero T
	if e.logger != nil {
		ctx = common.WithLogger(ctx, e.logger)
	}
	response, err := e.mediator.Send(ctx, request)
	if err != nil {
		return zero, err
	}
	typed, ok := response.(T)
	if !ok {
		return zero, fmt.Errorf("unexpected response type %T", response)
	}
	return typed, nil
}
