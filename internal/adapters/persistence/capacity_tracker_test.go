package persistence_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmarrick/novaforge/internal/adapters/persistence"
	"github.com/dmarrick/novaforge/internal/domain/capacity"
	"github.com/dmarrick/novaforge/test/helpers"
)

func TestCapacityTracker_AcquireUpToLimit(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	tracker := persistence.NewGormCapacityTracker(db)

	// Act: two slots available
	first, err := tracker.TryAcquire(context.Background(), "FORGE-1", "job-1", 2)
	require.NoError(t, err)
	second, err := tracker.TryAcquire(context.Background(), "FORGE-1", "job-2", 2)
	require.NoError(t, err)

	// Assert: third admission fails
	_, err = tracker.TryAcquire(context.Background(), "FORGE-1", "job-3", 2)
	var exceeded *capacity.CapacityExceededError
	require.ErrorAs(t, err, &exceeded)
	assert.Equal(t, "FORGE-1", exceeded.HostID)
	assert.Equal(t, 2, exceeded.MaxSlots)

	count, err := tracker.ActiveCount(context.Background(), "FORGE-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.True(t, first.IsActive())
	assert.True(t, second.IsActive())
}

func TestCapacityTracker_ConcurrentAcquiresRespectLimit(t *testing.T) {
	// Six acquires race for two slots; the guarded counter admits exactly
	// two regardless of interleaving
	db := helpers.NewTestDB(t)
	tracker := persistence.NewGormCapacityTracker(db)

	errs := make([]error, 6)
	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = tracker.TryAcquire(context.Background(), "FORGE-1", fmt.Sprintf("job-%d", i), 2)
		}(i)
	}
	wg.Wait()

	admitted := 0
	for _, err := range errs {
		if err == nil {
			admitted++
			continue
		}
		var exceeded *capacity.CapacityExceededError
		require.ErrorAs(t, err, &exceeded)
	}
	assert.Equal(t, 2, admitted)

	count, err := tracker.ActiveCount(context.Background(), "FORGE-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestCapacityTracker_ActiveClaimsListsUnreleased(t *testing.T) {
	db := helpers.NewTestDB(t)
	tracker := persistence.NewGormCapacityTracker(db)

	first, err := tracker.TryAcquire(context.Background(), "FORGE-1", "job-1", 2)
	require.NoError(t, err)
	second, err := tracker.TryAcquire(context.Background(), "SITE-1", "job-2", 2)
	require.NoError(t, err)

	require.NoError(t, tracker.Release(context.Background(), first.ID()))

	active, err := tracker.ActiveClaims(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, second.ID(), active[0].ID())
}

func TestCapacityTracker_ReleaseFreesSlot(t *testing.T) {
	db := helpers.NewTestDB(t)
	tracker := persistence.NewGormCapacityTracker(db)

	claim, err := tracker.TryAcquire(context.Background(), "SITE-1", "job-1", 1)
	require.NoError(t, err)

	_, err = tracker.TryAcquire(context.Background(), "SITE-1", "job-2", 1)
	require.Error(t, err)

	require.NoError(t, tracker.Release(context.Background(), claim.ID()))

	// Slot is free again
	_, err = tracker.TryAcquire(context.Background(), "SITE-1", "job-2", 1)
	require.NoError(t, err)
}

func TestCapacityTracker_ReleaseIsIdempotent(t *testing.T) {
	db := helpers.NewTestDB(t)
	tracker := persistence.NewGormCapacityTracker(db)

	claim, err := tracker.TryAcquire(context.Background(), "SITE-1", "job-1", 2)
	require.NoError(t, err)

	require.NoError(t, tracker.Release(context.Background(), claim.ID()))
	require.NoError(t, tracker.Release(context.Background(), claim.ID()))

	count, err := tracker.ActiveCount(context.Background(), "SITE-1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestCapacityTracker_HostsAreIndependent(t *testing.T) {
	db := helpers.NewTestDB(t)
	tracker := persistence.NewGormCapacityTracker(db)

	_, err := tracker.TryAcquire(context.Background(), "FORGE-1", "job-1", 1)
	require.NoError(t, err)

	// A full FORGE-1 does not block FORGE-2
	_, err = tracker.TryAcquire(context.Background(), "FORGE-2", "job-2", 1)
	require.NoError(t, err)
}

func TestCapacityTracker_FindByJob(t *testing.T) {
	db := helpers.NewTestDB(t)
	tracker := persistence.NewGormCapacityTracker(db)

	claim, err := tracker.TryAcquire(context.Background(), "FORGE-1", "job-1", 2)
	require.NoError(t, err)

	found, err := tracker.FindByJob(context.Background(), "job-1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, claim.ID(), found.ID())
	assert.Equal(t, "FORGE-1", found.HostID())

	missing, err := tracker.FindByJob(context.Background(), "job-unknown")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
