package job_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmarrick/novaforge/internal/domain/bonus"
	"github.com/dmarrick/novaforge/internal/domain/catalog"
	"github.com/dmarrick/novaforge/internal/domain/job"
	"github.com/dmarrick/novaforge/internal/domain/shared"
)

func newPendingJob(kind job.Kind) *job.Job {
	return job.NewJob(
		"job-1",
		shared.MustNewOwnerID(1),
		kind,
		"TARGET",
		"HOST",
		"",
		1,
		catalog.QualityStandard,
		"res-1",
		"claim-1",
		bonus.NeutralModifiers(),
		time.Now().UTC(),
	)
}

func TestJob_LifecycleHappyPath(t *testing.T) {
	j := newPendingJob(job.KindProduction)
	assert.Equal(t, job.StatusPending, j.Status())

	now := time.Now().UTC()
	deadline := now.Add(time.Minute)
	require.NoError(t, j.Activate(now, deadline))
	assert.Equal(t, job.StatusActive, j.Status())
	assert.Equal(t, deadline, *j.Deadline())

	require.NoError(t, j.MarkCompleted(deadline))
	assert.Equal(t, job.StatusCompleted, j.Status())
	assert.True(t, j.IsTerminal())
}

func TestJob_CompleteRequiresActive(t *testing.T) {
	j := newPendingJob(job.KindProduction)

	err := j.MarkCompleted(time.Now())
	var transition *job.InvalidTransitionError
	require.ErrorAs(t, err, &transition)
	assert.Equal(t, job.StatusPending, transition.From)
}

func TestJob_CompletedCannotBeCancelled(t *testing.T) {
	j := newPendingJob(job.KindExtraction)
	now := time.Now().UTC()
	require.NoError(t, j.Activate(now, now.Add(time.Minute)))
	require.NoError(t, j.MarkCompleted(now.Add(time.Minute)))

	assert.False(t, j.Cancellable())
	assert.Error(t, j.MarkCancelled(now))
}

func TestJob_ActivateTwiceFails(t *testing.T) {
	j := newPendingJob(job.KindProduction)
	now := time.Now().UTC()
	require.NoError(t, j.Activate(now, now.Add(time.Minute)))

	assert.Error(t, j.Activate(now, now.Add(time.Minute)))
}

func TestJob_CancellationPolicy(t *testing.T) {
	now := time.Now().UTC()

	// Pending jobs of either kind may be cancelled
	assert.True(t, newPendingJob(job.KindProduction).Cancellable())
	assert.True(t, newPendingJob(job.KindExtraction).Cancellable())

	// Active extraction claims may be abandoned, active production runs may not
	extraction := newPendingJob(job.KindExtraction)
	require.NoError(t, extraction.Activate(now, now.Add(time.Minute)))
	assert.True(t, extraction.Cancellable())

	production := newPendingJob(job.KindProduction)
	require.NoError(t, production.Activate(now, now.Add(time.Minute)))
	assert.False(t, production.Cancellable())
}
