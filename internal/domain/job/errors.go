package job

import "fmt"

// NotFoundError reports an unknown job id
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("job not found: %s", e.ID)
}

// InvalidTransitionError reports an attempted illegal status transition
type InvalidTransitionError struct {
	JobID string
	From  Status
	To    Status
}

func NewInvalidTransitionError(jobID string, from, to Status) *InvalidTransitionError {
	return &InvalidTransitionError{JobID: jobID, From: from, To: to}
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("job %s: illegal transition %s -> %s", e.JobID, e.From, e.To)
}

// NotCancellableError reports a cancellation request that policy forbids
type NotCancellableError struct {
	JobID  string
	Status Status
}

func (e *NotCancellableError) Error() string {
	return fmt.Sprintf("job %s cannot be cancelled in %s state", e.JobID, e.Status)
}
