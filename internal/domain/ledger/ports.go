package ledger

import (
	"context"

	"github.com/dmarrick/novaforge/internal/domain/shared"
)

// CurrencyKind is the material kind used for credits. Sales pay out into the
// same ledger that holds materials.
const CurrencyKind = "CREDITS"

// Store is the material ledger port. Implementations must make Reserve atomic:
// concurrent reservations against the same owner whose combined requirements
// exceed the balance must not both succeed, and a failed reservation leaves
// every balance untouched.
type Store interface {
	// Reserve atomically checks that every required quantity is available
	// for the owner and debits all of them as a single unit. Returns
	// *InsufficientMaterialsError listing the shortfall on failure.
	Reserve(ctx context.Context, ownerID shared.OwnerID, requirements map[string]int) (*Reservation, error)

	// Credit adds qty units of kind to the owner's balance. Always succeeds.
	Credit(ctx context.Context, ownerID shared.OwnerID, kind string, qty int) error

	// Debit removes qty units of kind from the owner's balance, failing with
	// *InsufficientQuantityError if fewer are held. Used by sell/refine paths
	// that consume a single known material.
	Debit(ctx context.Context, ownerID shared.OwnerID, kind string, qty int) error

	// Refund credits every material of a reservation back to its owner.
	// Refunding the same reservation twice is an error.
	Refund(ctx context.Context, reservationID string) error

	// FindReservation retrieves a reservation token by id, failing with
	// *ErrReservationNotFound if unknown
	FindReservation(ctx context.Context, reservationID string) (*Reservation, error)

	// Balance returns the owner's current quantity of kind (0 if none held)
	Balance(ctx context.Context, ownerID shared.OwnerID, kind string) (int, error)

	// Balances returns all non-zero balances for the owner
	Balances(ctx context.Context, ownerID shared.OwnerID) (map[string]int, error)
}
