package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmarrick/novaforge/internal/adapters/persistence"
	"github.com/dmarrick/novaforge/internal/domain/bonus"
	"github.com/dmarrick/novaforge/internal/domain/catalog"
	"github.com/dmarrick/novaforge/internal/domain/job"
	"github.com/dmarrick/novaforge/internal/domain/shared"
	"github.com/dmarrick/novaforge/test/helpers"
)

func newActiveJob(t *testing.T, id string, deadline time.Time) *job.Job {
	t.Helper()
	now := deadline.Add(-10 * time.Minute)
	j := job.NewJob(
		id,
		shared.MustNewOwnerID(1),
		job.KindProduction,
		"PLASMA_RIFLE",
		"FORGE-1",
		"",
		1,
		catalog.QualityStandard,
		"res-"+id,
		"claim-"+id,
		bonus.NeutralModifiers(),
		now,
	)
	require.NoError(t, j.Activate(now, deadline))
	return j
}

func TestJobRepository_SaveAndFind(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormJobRepository(db)
	deadline := time.Now().UTC().Add(10 * time.Minute).Truncate(time.Second)
	original := newActiveJob(t, "job-1", deadline)

	// Act
	require.NoError(t, repo.Save(context.Background(), original))
	found, err := repo.FindByID(context.Background(), "job-1")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, original.ID(), found.ID())
	assert.Equal(t, original.OwnerID(), found.OwnerID())
	assert.Equal(t, original.Kind(), found.Kind())
	assert.Equal(t, original.TargetID(), found.TargetID())
	assert.Equal(t, original.HostID(), found.HostID())
	assert.Equal(t, original.Quality(), found.Quality())
	assert.Equal(t, original.ReservationID(), found.ReservationID())
	assert.Equal(t, original.ClaimID(), found.ClaimID())
	assert.Equal(t, original.Modifiers(), found.Modifiers())
	assert.Equal(t, job.StatusActive, found.Status())
	require.NotNil(t, found.Deadline())
	assert.WithinDuration(t, deadline, *found.Deadline(), time.Second)
}

func TestJobRepository_FindByIDUnknown(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormJobRepository(db)

	_, err := repo.FindByID(context.Background(), "no-such-job")

	var notFound *job.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "no-such-job", notFound.ID)
}

func TestJobRepository_FindActiveOrderedByDeadline(t *testing.T) {
	// Arrange: save out of deadline order
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormJobRepository(db)
	base := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, repo.Save(context.Background(), newActiveJob(t, "job-late", base.Add(30*time.Minute))))
	require.NoError(t, repo.Save(context.Background(), newActiveJob(t, "job-soon", base.Add(5*time.Minute))))
	require.NoError(t, repo.Save(context.Background(), newActiveJob(t, "job-mid", base.Add(15*time.Minute))))

	// Act
	active, err := repo.FindActive(context.Background())

	// Assert: deadline ascending
	require.NoError(t, err)
	require.Len(t, active, 3)
	assert.Equal(t, "job-soon", active[0].ID())
	assert.Equal(t, "job-mid", active[1].ID())
	assert.Equal(t, "job-late", active[2].ID())
}

func TestJobRepository_FindActiveDueBefore(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormJobRepository(db)
	base := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, repo.Save(context.Background(), newActiveJob(t, "job-due", base.Add(-1*time.Minute))))
	require.NoError(t, repo.Save(context.Background(), newActiveJob(t, "job-future", base.Add(20*time.Minute))))

	due, err := repo.FindActiveDueBefore(context.Background(), base)

	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "job-due", due[0].ID())
}

func TestJobRepository_TransitionStatusCompareAndSwap(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormJobRepository(db)
	j := newActiveJob(t, "job-1", time.Now().UTC().Add(time.Minute))
	require.NoError(t, repo.Save(context.Background(), j))
	now := time.Now().UTC()

	// Act: first transition wins
	won, err := repo.TransitionStatus(context.Background(), "job-1", job.StatusActive, job.StatusCompleted, now)
	require.NoError(t, err)
	assert.True(t, won)

	// Second caller loses without error
	won, err = repo.TransitionStatus(context.Background(), "job-1", job.StatusActive, job.StatusCancelled, now)
	require.NoError(t, err)
	assert.False(t, won)

	// Assert terminal state and stamp
	found, err := repo.FindByID(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, job.StatusCompleted, found.Status())
	require.NotNil(t, found.FinishedAt())
}

func TestJobRepository_ListByOwnerFiltersStatus(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormJobRepository(db)
	base := time.Now().UTC()

	active := newActiveJob(t, "job-active", base.Add(time.Minute))
	require.NoError(t, repo.Save(context.Background(), active))

	done := newActiveJob(t, "job-done", base.Add(time.Minute))
	require.NoError(t, done.MarkCompleted(base))
	require.NoError(t, repo.Save(context.Background(), done))

	other := job.NewJob(
		"job-other", shared.MustNewOwnerID(2), job.KindExtraction,
		"ASTEROID-7", "ASTEROID-7", "IRON_ORE", 1, catalog.QualityStandard,
		"", "claim-x", bonus.NeutralModifiers(), base,
	)
	require.NoError(t, repo.Save(context.Background(), other))

	// All owner-1 jobs
	all, err := repo.ListByOwner(context.Background(), shared.MustNewOwnerID(1), nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// Only active
	status := job.StatusActive
	activeOnly, err := repo.ListByOwner(context.Background(), shared.MustNewOwnerID(1), &status)
	require.NoError(t, err)
	require.Len(t, activeOnly, 1)
	assert.Equal(t, "job-active", activeOnly[0].ID())
}
