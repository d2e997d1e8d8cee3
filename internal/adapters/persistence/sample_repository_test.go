package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmarrick/novaforge/internal/adapters/persistence"
	"github.com/dmarrick/novaforge/internal/domain/sample"
	"github.com/dmarrick/novaforge/internal/domain/shared"
	"github.com/dmarrick/novaforge/test/helpers"
)

func TestSampleRepository_SaveAndFind(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormSampleRepository(db)
	owner := shared.MustNewOwnerID(1)
	created := time.Now().UTC().Truncate(time.Second)
	ore := sample.NewOreSample("sample-1", owner, "IRON_ORE", 42, 0.7, created)

	// Act
	require.NoError(t, repo.Save(context.Background(), ore))
	found, err := repo.FindByID(context.Background(), owner, "sample-1")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "IRON_ORE", found.Kind())
	assert.Equal(t, 42, found.Amount())
	assert.InDelta(t, 0.7, found.Quality(), 1e-9)
	assert.Equal(t, sample.StateUnappraised, found.State())
}

func TestSampleRepository_FindScopedToOwner(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormSampleRepository(db)
	alice := shared.MustNewOwnerID(1)
	bob := shared.MustNewOwnerID(2)

	ore := sample.NewOreSample("sample-1", alice, "IRON_ORE", 10, 0.5, time.Now().UTC())
	require.NoError(t, repo.Save(context.Background(), ore))

	// Bob cannot see Alice's sample
	_, err := repo.FindByID(context.Background(), bob, "sample-1")
	var notFound *sample.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestSampleRepository_ListExcludesSold(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormSampleRepository(db)
	owner := shared.MustNewOwnerID(1)
	now := time.Now().UTC()

	unappraised := sample.NewOreSample("sample-raw", owner, "IRON_ORE", 10, 0.5, now)
	require.NoError(t, repo.Save(context.Background(), unappraised))

	sold := sample.NewOreSample("sample-sold", owner, "NICKEL_ORE", 5, 0.6, now)
	require.NoError(t, sold.Appraise(120, now))
	require.NoError(t, sold.MarkSold())
	require.NoError(t, repo.Save(context.Background(), sold))

	// Act
	samples, err := repo.ListByOwner(context.Background(), owner)

	// Assert
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, "sample-raw", samples[0].ID())
}

func TestSampleRepository_AppraisalRoundTrips(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormSampleRepository(db)
	owner := shared.MustNewOwnerID(1)
	now := time.Now().UTC().Truncate(time.Second)

	ore := sample.NewOreSample("sample-1", owner, "PLATINUM_ORE", 3, 0.9, now)
	require.NoError(t, ore.Appraise(777, now))
	require.NoError(t, repo.Save(context.Background(), ore))

	found, err := repo.FindByID(context.Background(), owner, "sample-1")
	require.NoError(t, err)
	assert.Equal(t, sample.StateAppraised, found.State())
	assert.Equal(t, 777, found.AppraisedValue())
	require.NotNil(t, found.AppraisedAt())
}

func TestSampleRepository_TransitionStateIsExactlyOnce(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormSampleRepository(db)
	owner := shared.MustNewOwnerID(1)
	now := time.Now().UTC()

	ore := sample.NewOreSample("sample-1", owner, "IRON_ORE", 10, 0.5, now)
	require.NoError(t, ore.Appraise(100, now))
	require.NoError(t, repo.Save(context.Background(), ore))

	// Act: two callers race for the same APPRAISED -> SOLD swap
	first, err := repo.TransitionState(context.Background(), owner, "sample-1", sample.StateAppraised, sample.StateSold)
	require.NoError(t, err)
	second, err := repo.TransitionState(context.Background(), owner, "sample-1", sample.StateAppraised, sample.StateSold)
	require.NoError(t, err)

	// Assert: exactly one winner
	assert.True(t, first)
	assert.False(t, second)

	found, err := repo.FindByID(context.Background(), owner, "sample-1")
	require.NoError(t, err)
	assert.Equal(t, sample.StateSold, found.State())
}

func TestSampleRepository_TransitionStateScopedToOwner(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormSampleRepository(db)
	alice := shared.MustNewOwnerID(1)
	bob := shared.MustNewOwnerID(2)
	now := time.Now().UTC()

	ore := sample.NewOreSample("sample-1", alice, "IRON_ORE", 10, 0.5, now)
	require.NoError(t, ore.Appraise(100, now))
	require.NoError(t, repo.Save(context.Background(), ore))

	won, err := repo.TransitionState(context.Background(), bob, "sample-1", sample.StateAppraised, sample.StateSold)
	require.NoError(t, err)
	assert.False(t, won)
}

func TestSampleRepository_ReduceAmountGuards(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormSampleRepository(db)
	owner := shared.MustNewOwnerID(1)

	ore := sample.NewOreSample("sample-1", owner, "IRON_ORE", 10, 0.5, time.Now().UTC())
	require.NoError(t, repo.Save(context.Background(), ore))

	remaining, err := repo.ReduceAmount(context.Background(), owner, "sample-1", 4)
	require.NoError(t, err)
	assert.Equal(t, 6, remaining)

	// Over-ask fails and reports what is actually left
	_, err = repo.ReduceAmount(context.Background(), owner, "sample-1", 10)
	var insufficient *sample.InsufficientAmountError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 6, insufficient.Available)
	assert.Equal(t, 10, insufficient.Requested)
}

func TestSampleRepository_ReduceAmountDeletesExhausted(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormSampleRepository(db)
	owner := shared.MustNewOwnerID(1)

	ore := sample.NewOreSample("sample-1", owner, "IRON_ORE", 10, 0.5, time.Now().UTC())
	require.NoError(t, repo.Save(context.Background(), ore))

	remaining, err := repo.ReduceAmount(context.Background(), owner, "sample-1", 10)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)

	_, err = repo.FindByID(context.Background(), owner, "sample-1")
	var notFound *sample.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestSampleRepository_ReduceAmountRejectsAppraised(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormSampleRepository(db)
	owner := shared.MustNewOwnerID(1)
	now := time.Now().UTC()

	ore := sample.NewOreSample("sample-1", owner, "IRON_ORE", 10, 0.5, now)
	require.NoError(t, ore.Appraise(100, now))
	require.NoError(t, repo.Save(context.Background(), ore))

	_, err := repo.ReduceAmount(context.Background(), owner, "sample-1", 5)
	var appraised *sample.AlreadyAppraisedError
	require.ErrorAs(t, err, &appraised)
}

func TestSampleRepository_Delete(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormSampleRepository(db)
	owner := shared.MustNewOwnerID(1)

	ore := sample.NewOreSample("sample-1", owner, "IRON_ORE", 10, 0.5, time.Now().UTC())
	require.NoError(t, repo.Save(context.Background(), ore))

	require.NoError(t, repo.Delete(context.Background(), owner, "sample-1"))

	_, err := repo.FindByID(context.Background(), owner, "sample-1")
	var notFound *sample.NotFoundError
	require.ErrorAs(t, err, &notFound)
}
