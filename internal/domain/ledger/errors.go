package ledger

import (
	"fmt"
	"sort"
	"strings"
)

// InsufficientMaterialsError reports a reservation that could not be satisfied.
// Missing holds, per material kind, how many more units were required than
// available. The failed reservation debits nothing.
type InsufficientMaterialsError struct {
	Missing map[string]int
}

func (e *InsufficientMaterialsError) Error() string {
	kinds := make([]string, 0, len(e.Missing))
	for kind := range e.Missing {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	parts := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		parts = append(parts, fmt.Sprintf("%s:%d", kind, e.Missing[kind]))
	}
	return fmt.Sprintf("insufficient materials: missing {%s}", strings.Join(parts, ", "))
}

// ErrReservationNotFound reports an unknown reservation token
type ErrReservationNotFound struct {
	ID string
}

func (e *ErrReservationNotFound) Error() string {
	return fmt.Sprintf("reservation not found: %s", e.ID)
}

// InsufficientQuantityError reports an attempt to remove more of a material
// than the owner holds outside the reserve path (e.g., selling or refining)
type InsufficientQuantityError struct {
	Kind      string
	Requested int
	Available int
}

func (e *InsufficientQuantityError) Error() string {
	return fmt.Sprintf("insufficient quantity of %s: requested %d, have %d", e.Kind, e.Requested, e.Available)
}
