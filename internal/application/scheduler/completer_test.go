package scheduler_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dmarrick/novaforge/internal/adapters/persistence"
	"github.com/dmarrick/novaforge/internal/application/common"
	"github.com/dmarrick/novaforge/internal/application/scheduler"
	"github.com/dmarrick/novaforge/internal/domain/bonus"
	"github.com/dmarrick/novaforge/internal/domain/capacity"
	"github.com/dmarrick/novaforge/internal/domain/catalog"
	"github.com/dmarrick/novaforge/internal/domain/job"
	"github.com/dmarrick/novaforge/internal/domain/ledger"
	"github.com/dmarrick/novaforge/internal/domain/sample"
	"github.com/dmarrick/novaforge/internal/domain/shared"
	"github.com/dmarrick/novaforge/internal/domain/yield"
	"github.com/dmarrick/novaforge/test/helpers"
)

// completerFixture wires a completer over real repositories so outcome
// application exercises the same store paths production runs through
type completerFixture struct {
	completer *scheduler.Completer
	jobs      job.Repository
	ledger    ledger.Store
	tracker   capacity.Tracker
	samples   sample.Repository
	clock     *shared.MockClock
	events    []common.CompletionEvent
}

func newCompleterFixture(t *testing.T) *completerFixture {
	t.Helper()
	db := helpers.NewTestDB(t)
	return newCompleterFixtureWithDB(t, db)
}

func newCompleterFixtureWithDB(t *testing.T, db *gorm.DB) *completerFixture {
	t.Helper()

	f := &completerFixture{
		jobs:    persistence.NewGormJobRepository(db),
		ledger:  persistence.NewGormLedgerStore(db),
		tracker: persistence.NewGormCapacityTracker(db),
		samples: persistence.NewGormSampleRepository(db),
		clock:   shared.NewMockClock(time.Date(2186, 3, 14, 12, 0, 0, 0, time.UTC)),
	}

	bus := common.NewEventBus()
	bus.Subscribe(common.CompletionObserverFunc(func(event common.CompletionEvent) {
		f.events = append(f.events, event)
	}))

	f.completer = scheduler.NewCompleter(
		helpers.NewTestCatalog(), f.jobs, f.ledger, f.tracker, f.samples,
		yield.NewGenerator(42), bus, nil, f.clock,
	)
	return f
}

// startProductionJob persists an active production job backed by a real
// reservation and slot claim, the way the admission path leaves it
func (f *completerFixture) startProductionJob(t *testing.T, jobID string, owner shared.OwnerID) *job.Job {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, f.ledger.Credit(ctx, owner, "IRON", 10))
	require.NoError(t, f.ledger.Credit(ctx, owner, "PLASMA_CELL", 2))
	reservation, err := f.ledger.Reserve(ctx, owner, map[string]int{"IRON": 10, "PLASMA_CELL": 2})
	require.NoError(t, err)
	claim, err := f.tracker.TryAcquire(ctx, "FORGE-1", jobID, 2)
	require.NoError(t, err)

	now := f.clock.Now()
	j := job.NewJob(jobID, owner, job.KindProduction, "PLASMA_RIFLE", "FORGE-1",
		"", 1, catalog.QualityStandard, reservation.ID(), claim.ID(), bonus.NeutralModifiers(), now)
	require.NoError(t, j.Activate(now, now.Add(10*time.Minute)))
	require.NoError(t, f.jobs.Save(ctx, j))
	return j
}

func (f *completerFixture) startExtractionJob(t *testing.T, jobID string, owner shared.OwnerID) *job.Job {
	t.Helper()
	ctx := context.Background()

	claim, err := f.tracker.TryAcquire(ctx, "ASTEROID-7", jobID, 2)
	require.NoError(t, err)

	now := f.clock.Now()
	j := job.NewJob(jobID, owner, job.KindExtraction, "ASTEROID-7", "ASTEROID-7",
		"IRON_ORE", 1, catalog.QualityStandard, "", claim.ID(), bonus.NeutralModifiers(), now)
	require.NoError(t, j.Activate(now, now.Add(5*time.Minute)))
	require.NoError(t, f.jobs.Save(ctx, j))
	return j
}

func TestCompleter_ProductionCreditsOutput(t *testing.T) {
	// Arrange
	f := newCompleterFixture(t)
	owner := shared.MustNewOwnerID(1)
	f.startProductionJob(t, "job-1", owner)
	f.clock.Advance(10 * time.Minute)

	// Act
	require.NoError(t, f.completer.Complete(context.Background(), "job-1"))

	// Assert
	balance, err := f.ledger.Balance(context.Background(), owner, "PLASMA_RIFLE")
	require.NoError(t, err)
	assert.Equal(t, 1, balance)

	j, err := f.jobs.FindByID(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, job.StatusCompleted, j.Status())
	require.NotNil(t, j.FinishedAt())

	count, err := f.tracker.ActiveCount(context.Background(), "FORGE-1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	require.Len(t, f.events, 1)
	assert.Equal(t, "job-1", f.events[0].JobID)
	assert.Equal(t, job.StatusCompleted, f.events[0].Status)
	assert.Equal(t, map[string]int{"PLASMA_RIFLE": 1}, f.events[0].Output)
}

func TestCompleter_CompleteIsIdempotent(t *testing.T) {
	f := newCompleterFixture(t)
	owner := shared.MustNewOwnerID(1)
	f.startProductionJob(t, "job-1", owner)
	f.clock.Advance(10 * time.Minute)

	require.NoError(t, f.completer.Complete(context.Background(), "job-1"))
	require.NoError(t, f.completer.Complete(context.Background(), "job-1"))

	// The output is credited exactly once
	balance, err := f.ledger.Balance(context.Background(), owner, "PLASMA_RIFLE")
	require.NoError(t, err)
	assert.Equal(t, 1, balance)
	assert.Len(t, f.events, 1)
}

func TestCompleter_ExtractionSavesSamples(t *testing.T) {
	// Arrange
	f := newCompleterFixture(t)
	owner := shared.MustNewOwnerID(1)
	f.startExtractionJob(t, "job-1", owner)
	f.clock.Advance(5 * time.Minute)

	// Act
	require.NoError(t, f.completer.Complete(context.Background(), "job-1"))

	// Assert
	samples, err := f.samples.ListByOwner(context.Background(), owner)
	require.NoError(t, err)
	require.NotEmpty(t, samples)
	assert.Equal(t, "IRON_ORE", samples[len(samples)-1].Kind())
	assert.Positive(t, samples[len(samples)-1].Amount())
	assert.Equal(t, sample.StateUnappraised, samples[len(samples)-1].State())

	count, err := f.tracker.ActiveCount(context.Background(), "ASTEROID-7")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	require.Len(t, f.events, 1)
	assert.Positive(t, f.events[0].Output["IRON_ORE"])
}

func TestCompleter_CancelExtractionReleasesClaim(t *testing.T) {
	// Arrange
	f := newCompleterFixture(t)
	owner := shared.MustNewOwnerID(1)
	f.startExtractionJob(t, "job-1", owner)

	// Act
	require.NoError(t, f.completer.Cancel(context.Background(), "job-1"))

	// Assert
	j, err := f.jobs.FindByID(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, job.StatusCancelled, j.Status())

	count, err := f.tracker.ActiveCount(context.Background(), "ASTEROID-7")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	require.Len(t, f.events, 1)
	assert.Equal(t, job.StatusCancelled, f.events[0].Status)
}

func TestCompleter_CancelPendingProductionRefunds(t *testing.T) {
	// Arrange: a production job that reserved materials but never went active
	f := newCompleterFixture(t)
	owner := shared.MustNewOwnerID(1)
	ctx := context.Background()

	require.NoError(t, f.ledger.Credit(ctx, owner, "IRON", 10))
	require.NoError(t, f.ledger.Credit(ctx, owner, "PLASMA_CELL", 2))
	reservation, err := f.ledger.Reserve(ctx, owner, map[string]int{"IRON": 10, "PLASMA_CELL": 2})
	require.NoError(t, err)
	claim, err := f.tracker.TryAcquire(ctx, "FORGE-1", "job-1", 2)
	require.NoError(t, err)

	j := job.NewJob("job-1", owner, job.KindProduction, "PLASMA_RIFLE", "FORGE-1",
		"", 1, catalog.QualityStandard, reservation.ID(), claim.ID(), bonus.NeutralModifiers(), f.clock.Now())
	require.NoError(t, f.jobs.Save(ctx, j))

	// Act
	require.NoError(t, f.completer.Cancel(ctx, "job-1"))

	// Assert
	iron, err := f.ledger.Balance(ctx, owner, "IRON")
	require.NoError(t, err)
	assert.Equal(t, 10, iron)

	cells, err := f.ledger.Balance(ctx, owner, "PLASMA_CELL")
	require.NoError(t, err)
	assert.Equal(t, 2, cells)

	count, err := f.tracker.ActiveCount(ctx, "FORGE-1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestCompleter_ActiveProductionNotCancellable(t *testing.T) {
	f := newCompleterFixture(t)
	owner := shared.MustNewOwnerID(1)
	f.startProductionJob(t, "job-1", owner)

	err := f.completer.Cancel(context.Background(), "job-1")
	var notCancellable *job.NotCancellableError
	require.ErrorAs(t, err, &notCancellable)
	assert.Equal(t, job.StatusActive, notCancellable.Status)

	// The reservation stays held
	iron, berr := f.ledger.Balance(context.Background(), owner, "IRON")
	require.NoError(t, berr)
	assert.Equal(t, 0, iron)
}

func TestCompleter_CancelAfterCompletionFails(t *testing.T) {
	f := newCompleterFixture(t)
	owner := shared.MustNewOwnerID(1)
	f.startProductionJob(t, "job-1", owner)
	f.clock.Advance(10 * time.Minute)

	require.NoError(t, f.completer.Complete(context.Background(), "job-1"))

	err := f.completer.Cancel(context.Background(), "job-1")
	var notCancellable *job.NotCancellableError
	require.ErrorAs(t, err, &notCancellable)
	assert.Equal(t, job.StatusCompleted, notCancellable.Status)

	// No refund happened
	iron, berr := f.ledger.Balance(context.Background(), owner, "IRON")
	require.NoError(t, berr)
	assert.Equal(t, 0, iron)
}

func TestCompleter_CancelUnknownJob(t *testing.T) {
	f := newCompleterFixture(t)

	err := f.completer.Cancel(context.Background(), "missing")
	var notFound *job.NotFoundError
	require.ErrorAs(t, err, &notFound)
}
