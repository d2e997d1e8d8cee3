package ledger

import (
	"time"

	"github.com/dmarrick/novaforge/internal/domain/shared"
)

// Reservation is the token returned by a successful atomic reserve. It records
// exactly which materials were debited so a cancelled job can be refunded.
type Reservation struct {
	id        string
	ownerID   shared.OwnerID
	materials map[string]int
	createdAt time.Time
}

// NewReservation creates a reservation token for already-debited materials
func NewReservation(id string, ownerID shared.OwnerID, materials map[string]int, createdAt time.Time) *Reservation {
	m := make(map[string]int, len(materials))
	for kind, qty := range materials {
		m[kind] = qty
	}
	return &Reservation{
		id:        id,
		ownerID:   ownerID,
		materials: m,
		createdAt: createdAt,
	}
}

func (r *Reservation) ID() string              { return r.id }
func (r *Reservation) OwnerID() shared.OwnerID { return r.ownerID }
func (r *Reservation) CreatedAt() time.Time    { return r.createdAt }

// Materials returns a copy of the debited material quantities
func (r *Reservation) Materials() map[string]int {
	materials := make(map[string]int, len(r.materials))
	for kind, qty := range r.materials {
		materials[kind] = qty
	}
	return materials
}
