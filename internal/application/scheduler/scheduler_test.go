package scheduler_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmarrick/novaforge/internal/application/scheduler"
	"github.com/dmarrick/novaforge/internal/domain/job"
	"github.com/dmarrick/novaforge/internal/domain/shared"
)

func newScheduler(f *completerFixture) *scheduler.Scheduler {
	return scheduler.NewScheduler(f.jobs, f.completer, f.clock, nil, nil, 50, 0)
}

func TestScheduler_RecoverCompletesOverdueJobs(t *testing.T) {
	// Arrange: a job whose deadline passed while the process was down
	f := newCompleterFixture(t)
	owner := shared.MustNewOwnerID(1)
	f.startProductionJob(t, "job-1", owner)
	f.clock.Advance(20 * time.Minute)

	s := newScheduler(f)

	// Act
	require.NoError(t, s.Recover(context.Background()))

	// Assert
	j, err := f.jobs.FindByID(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, job.StatusCompleted, j.Status())

	balance, err := f.ledger.Balance(context.Background(), owner, "PLASMA_RIFLE")
	require.NoError(t, err)
	assert.Equal(t, 1, balance)
}

func TestScheduler_RecoverKeepsFutureJobs(t *testing.T) {
	// Arrange: deadline still ahead, recovery must only re-register the timer
	f := newCompleterFixture(t)
	owner := shared.MustNewOwnerID(1)
	f.startProductionJob(t, "job-1", owner)

	s := newScheduler(f)
	defer s.Stop()

	// Act
	require.NoError(t, s.Recover(context.Background()))

	// Assert
	j, err := f.jobs.FindByID(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, job.StatusActive, j.Status())
	assert.Empty(t, f.events)
}

func TestScheduler_RecoverReleasesOrphanedClaims(t *testing.T) {
	// Arrange: the process died after the job's terminal transition but
	// before its claim release, so the slot is held with nothing to free it
	f := newCompleterFixture(t)
	owner := shared.MustNewOwnerID(1)
	f.startProductionJob(t, "job-1", owner)
	won, err := f.jobs.TransitionStatus(context.Background(), "job-1",
		job.StatusActive, job.StatusCompleted, f.clock.Now())
	require.NoError(t, err)
	require.True(t, won)

	// A claim left behind by a crashed admission, with no job row at all
	_, err = f.tracker.TryAcquire(context.Background(), "FORGE-1", "job-ghost", 2)
	require.NoError(t, err)

	s := newScheduler(f)
	defer s.Stop()

	// Act
	require.NoError(t, s.Recover(context.Background()))

	// Assert: both slots are free again
	count, err := f.tracker.ActiveCount(context.Background(), "FORGE-1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestScheduler_RecoverKeepsClaimsOfActiveJobs(t *testing.T) {
	f := newCompleterFixture(t)
	owner := shared.MustNewOwnerID(1)
	f.startProductionJob(t, "job-1", owner)

	s := newScheduler(f)
	defer s.Stop()

	require.NoError(t, s.Recover(context.Background()))

	count, err := f.tracker.ActiveCount(context.Background(), "FORGE-1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestScheduler_StopIsIdempotent(t *testing.T) {
	f := newCompleterFixture(t)
	s := newScheduler(f)

	s.Stop()
	assert.NotPanics(t, s.Stop)
}

func TestScheduler_RecoverCompletesInDeadlineOrder(t *testing.T) {
	// Arrange: two overdue jobs; the earlier deadline completes first
	f := newCompleterFixture(t)
	owner := shared.MustNewOwnerID(1)

	f.startExtractionJob(t, "job-early", owner)
	f.clock.Advance(1 * time.Minute)
	f.startExtractionJob(t, "job-late", owner)
	f.clock.Advance(30 * time.Minute)

	s := newScheduler(f)

	// Act
	require.NoError(t, s.Recover(context.Background()))

	// Assert
	require.Len(t, f.events, 2)
	assert.Equal(t, "job-early", f.events[0].JobID)
	assert.Equal(t, "job-late", f.events[1].JobID)
}

func TestScheduler_DeadlineFiresCompletion(t *testing.T) {
	// Arrange: an already-due deadline registers a zero-delay timer
	f := newCompleterFixture(t)
	owner := shared.MustNewOwnerID(1)
	j := f.startProductionJob(t, "job-1", owner)
	f.clock.Advance(10 * time.Minute)

	s := newScheduler(f)
	defer s.Stop()

	// Act
	s.Schedule("job-1", *j.Deadline())

	// Assert
	assert.Eventually(t, func() bool {
		fresh, err := f.jobs.FindByID(context.Background(), "job-1")
		return err == nil && fresh.Status() == job.StatusCompleted
	}, 5*time.Second, 10*time.Millisecond)
}

func TestScheduler_UnscheduleDropsTimer(t *testing.T) {
	f := newCompleterFixture(t)
	owner := shared.MustNewOwnerID(1)
	j := f.startProductionJob(t, "job-1", owner)

	s := newScheduler(f)
	defer s.Stop()

	s.Schedule("job-1", *j.Deadline())
	s.Unschedule("job-1")

	// Timer is gone; the job stays active
	fresh, err := f.jobs.FindByID(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, job.StatusActive, fresh.Status())
}
