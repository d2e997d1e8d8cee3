package sample

import "fmt"

// NotFoundError reports an unknown sample id
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("sample not found: %s", e.ID)
}

// AlreadyAppraisedError reports a second appraisal attempt
type AlreadyAppraisedError struct {
	SampleID string
}

func (e *AlreadyAppraisedError) Error() string {
	return fmt.Sprintf("sample %s is already appraised", e.SampleID)
}

// InsufficientAmountError reports a refine request for more units than the
// sample holds
type InsufficientAmountError struct {
	SampleID  string
	Requested int
	Available int
}

func (e *InsufficientAmountError) Error() string {
	return fmt.Sprintf("sample %s holds %d units, requested %d", e.SampleID, e.Available, e.Requested)
}

// NotAppraisedError reports a sale or refine attempt on an unappraised sample
type NotAppraisedError struct {
	SampleID string
}

func (e *NotAppraisedError) Error() string {
	return fmt.Sprintf("sample %s has not been appraised", e.SampleID)
}
