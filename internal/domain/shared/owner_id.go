package shared

import "fmt"

// OwnerID is a value object identifying the player (or corporation) that owns
// ledger balances, jobs, and samples
type OwnerID struct {
	value int
}

// NewOwnerID creates a new OwnerID value object
func NewOwnerID(id int) (OwnerID, error) {
	if id <= 0 {
		return OwnerID{}, fmt.Errorf("owner_id must be positive")
	}
	return OwnerID{value: id}, nil
}

// MustNewOwnerID creates a new OwnerID value object, panicking if invalid
// Use this only when you're certain the ID is valid (e.g., from database)
func MustNewOwnerID(id int) OwnerID {
	ownerID, err := NewOwnerID(id)
	if err != nil {
		panic(err)
	}
	return ownerID
}

// Value returns the integer value of the OwnerID
func (o OwnerID) Value() int {
	return o.value
}

// String returns a string representation of the OwnerID
func (o OwnerID) String() string {
	return fmt.Sprintf("%d", o.value)
}

// Equals checks if two OwnerIDs are equal
func (o OwnerID) Equals(other OwnerID) bool {
	return o.value == other.value
}

// IsZero checks if the OwnerID is the zero value (uninitialized)
func (o OwnerID) IsZero() bool {
	return o.value == 0
}
