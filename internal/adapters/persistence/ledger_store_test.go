package persistence_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmarrick/novaforge/internal/adapters/persistence"
	"github.com/dmarrick/novaforge/internal/domain/ledger"
	"github.com/dmarrick/novaforge/internal/domain/shared"
	"github.com/dmarrick/novaforge/test/helpers"
)

func TestLedgerStore_CreditAndBalance(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	store := persistence.NewGormLedgerStore(db)
	owner := shared.MustNewOwnerID(1)

	// Act
	require.NoError(t, store.Credit(context.Background(), owner, "IRON", 15))
	require.NoError(t, store.Credit(context.Background(), owner, "IRON", 5))

	// Assert
	balance, err := store.Balance(context.Background(), owner, "IRON")
	require.NoError(t, err)
	assert.Equal(t, 20, balance)
}

func TestLedgerStore_BalanceUnknownKindIsZero(t *testing.T) {
	db := helpers.NewTestDB(t)
	store := persistence.NewGormLedgerStore(db)
	owner := shared.MustNewOwnerID(1)

	balance, err := store.Balance(context.Background(), owner, "UNOBTAINIUM")
	require.NoError(t, err)
	assert.Equal(t, 0, balance)
}

func TestLedgerStore_ReserveDebitsAllMaterials(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	store := persistence.NewGormLedgerStore(db)
	owner := shared.MustNewOwnerID(1)
	require.NoError(t, store.Credit(context.Background(), owner, "IRON", 20))
	require.NoError(t, store.Credit(context.Background(), owner, "PLASMA_CELL", 4))

	// Act
	reservation, err := store.Reserve(context.Background(), owner, map[string]int{
		"IRON":        10,
		"PLASMA_CELL": 2,
	})

	// Assert
	require.NoError(t, err)
	assert.NotEmpty(t, reservation.ID())
	assert.Equal(t, map[string]int{"IRON": 10, "PLASMA_CELL": 2}, reservation.Materials())

	iron, _ := store.Balance(context.Background(), owner, "IRON")
	cells, _ := store.Balance(context.Background(), owner, "PLASMA_CELL")
	assert.Equal(t, 10, iron)
	assert.Equal(t, 2, cells)
}

func TestLedgerStore_ReserveShortfallDebitsNothing(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	store := persistence.NewGormLedgerStore(db)
	owner := shared.MustNewOwnerID(1)
	require.NoError(t, store.Credit(context.Background(), owner, "IRON", 15))

	// Act: needs iron 10 (held) and plasma 2 (missing)
	_, err := store.Reserve(context.Background(), owner, map[string]int{
		"IRON":        10,
		"PLASMA_CELL": 2,
	})

	// Assert: all-or-nothing, iron untouched
	var insufficient *ledger.InsufficientMaterialsError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, map[string]int{"PLASMA_CELL": 2}, insufficient.Missing)

	iron, _ := store.Balance(context.Background(), owner, "IRON")
	assert.Equal(t, 15, iron)
}

func TestLedgerStore_SequentialReservesRespectBalance(t *testing.T) {
	// Two reservations of 10 against 15 held: the second must report a
	// shortfall of 5
	db := helpers.NewTestDB(t)
	store := persistence.NewGormLedgerStore(db)
	owner := shared.MustNewOwnerID(1)
	require.NoError(t, store.Credit(context.Background(), owner, "IRON", 15))

	_, err := store.Reserve(context.Background(), owner, map[string]int{"IRON": 10})
	require.NoError(t, err)

	_, err = store.Reserve(context.Background(), owner, map[string]int{"IRON": 10})
	var insufficient *ledger.InsufficientMaterialsError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, map[string]int{"IRON": 5}, insufficient.Missing)
}

func TestLedgerStore_ConcurrentReservesCannotOversubscribe(t *testing.T) {
	// Two simultaneous reservations of 10 against 15 held: the guarded
	// decrement lets exactly one through
	db := helpers.NewTestDB(t)
	store := persistence.NewGormLedgerStore(db)
	owner := shared.MustNewOwnerID(1)
	require.NoError(t, store.Credit(context.Background(), owner, "IRON", 15))

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = store.Reserve(context.Background(), owner, map[string]int{"IRON": 10})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var insufficient *ledger.InsufficientMaterialsError
		require.ErrorAs(t, err, &insufficient)
	}
	assert.Equal(t, 1, succeeded)

	iron, err := store.Balance(context.Background(), owner, "IRON")
	require.NoError(t, err)
	assert.Equal(t, 5, iron)
}

func TestLedgerStore_RefundRestoresMaterials(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	store := persistence.NewGormLedgerStore(db)
	owner := shared.MustNewOwnerID(1)
	require.NoError(t, store.Credit(context.Background(), owner, "IRON", 20))

	reservation, err := store.Reserve(context.Background(), owner, map[string]int{"IRON": 12})
	require.NoError(t, err)

	// Act
	require.NoError(t, store.Refund(context.Background(), reservation.ID()))

	// Assert
	iron, _ := store.Balance(context.Background(), owner, "IRON")
	assert.Equal(t, 20, iron)
}

func TestLedgerStore_RefundTwiceFails(t *testing.T) {
	db := helpers.NewTestDB(t)
	store := persistence.NewGormLedgerStore(db)
	owner := shared.MustNewOwnerID(1)
	require.NoError(t, store.Credit(context.Background(), owner, "IRON", 20))

	reservation, err := store.Reserve(context.Background(), owner, map[string]int{"IRON": 12})
	require.NoError(t, err)

	require.NoError(t, store.Refund(context.Background(), reservation.ID()))
	err = store.Refund(context.Background(), reservation.ID())
	require.Error(t, err)

	// Balance must not be inflated by the failed second refund
	iron, _ := store.Balance(context.Background(), owner, "IRON")
	assert.Equal(t, 20, iron)
}

func TestLedgerStore_RefundUnknownReservation(t *testing.T) {
	db := helpers.NewTestDB(t)
	store := persistence.NewGormLedgerStore(db)

	err := store.Refund(context.Background(), "no-such-reservation")
	var notFound *ledger.ErrReservationNotFound
	require.ErrorAs(t, err, &notFound)
}

func TestLedgerStore_DebitInsufficient(t *testing.T) {
	db := helpers.NewTestDB(t)
	store := persistence.NewGormLedgerStore(db)
	owner := shared.MustNewOwnerID(1)
	require.NoError(t, store.Credit(context.Background(), owner, "IRON_ORE", 5))

	err := store.Debit(context.Background(), owner, "IRON_ORE", 8)

	var insufficient *ledger.InsufficientQuantityError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 8, insufficient.Requested)
	assert.Equal(t, 5, insufficient.Available)
}

func TestLedgerStore_BalancesScopedToOwner(t *testing.T) {
	db := helpers.NewTestDB(t)
	store := persistence.NewGormLedgerStore(db)
	alice := shared.MustNewOwnerID(1)
	bob := shared.MustNewOwnerID(2)

	require.NoError(t, store.Credit(context.Background(), alice, "IRON", 10))
	require.NoError(t, store.Credit(context.Background(), alice, ledger.CurrencyKind, 500))
	require.NoError(t, store.Credit(context.Background(), bob, "IRON", 3))

	balances, err := store.Balances(context.Background(), alice)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"IRON": 10, ledger.CurrencyKind: 500}, balances)
}
