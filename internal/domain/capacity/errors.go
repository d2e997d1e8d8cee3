package capacity

import "fmt"

// CapacityExceededError reports an admission attempt against a host whose
// active claim count already equals its configured maximum
type CapacityExceededError struct {
	HostID   string
	MaxSlots int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("capacity exceeded at %s: all %d slots in use", e.HostID, e.MaxSlots)
}
