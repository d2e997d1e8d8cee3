package sample

import (
	"time"

	"github.com/dmarrick/novaforge/internal/domain/shared"
)

// AppraisalState is the lifecycle state of an ore sample
type AppraisalState string

const (
	StateUnappraised AppraisalState = "UNAPPRAISED"
	StateAppraised   AppraisalState = "APPRAISED"
	StateSold        AppraisalState = "SOLD"
)

// OreSample is a batch of extracted resource awaiting appraisal and sale.
// Created unappraised by extraction completion; appraisal fixes a market
// value; sale removes the sample and credits currency.
type OreSample struct {
	id             string
	ownerID        shared.OwnerID
	kind           string
	amount         int
	quality        float64 // [0,1]
	state          AppraisalState
	appraisedValue int
	createdAt      time.Time
	appraisedAt    *time.Time
}

// NewOreSample creates an unappraised sample
func NewOreSample(id string, ownerID shared.OwnerID, kind string, amount int, quality float64, createdAt time.Time) *OreSample {
	return &OreSample{
		id:        id,
		ownerID:   ownerID,
		kind:      kind,
		amount:    amount,
		quality:   quality,
		state:     StateUnappraised,
		createdAt: createdAt,
	}
}

// Restore rebuilds a sample from persistence
func Restore(
	id string,
	ownerID shared.OwnerID,
	kind string,
	amount int,
	quality float64,
	state AppraisalState,
	appraisedValue int,
	createdAt time.Time,
	appraisedAt *time.Time,
) *OreSample {
	return &OreSample{
		id:             id,
		ownerID:        ownerID,
		kind:           kind,
		amount:         amount,
		quality:        quality,
		state:          state,
		appraisedValue: appraisedValue,
		createdAt:      createdAt,
		appraisedAt:    appraisedAt,
	}
}

func (s *OreSample) ID() string               { return s.id }
func (s *OreSample) OwnerID() shared.OwnerID  { return s.ownerID }
func (s *OreSample) Kind() string             { return s.kind }
func (s *OreSample) Amount() int              { return s.amount }
func (s *OreSample) Quality() float64         { return s.quality }
func (s *OreSample) State() AppraisalState    { return s.state }
func (s *OreSample) AppraisedValue() int      { return s.appraisedValue }
func (s *OreSample) CreatedAt() time.Time     { return s.createdAt }
func (s *OreSample) AppraisedAt() *time.Time  { return s.appraisedAt }

// Appraise fixes the sample's market value. A sample is appraised at most
// once; the stored value is what a later sale pays out.
func (s *OreSample) Appraise(value int, at time.Time) error {
	if s.state != StateUnappraised {
		return &AlreadyAppraisedError{SampleID: s.id}
	}
	s.state = StateAppraised
	s.appraisedValue = value
	s.appraisedAt = &at
	return nil
}

// MarkSold transitions an appraised sample to sold
func (s *OreSample) MarkSold() error {
	if s.state != StateAppraised {
		return &NotAppraisedError{SampleID: s.id}
	}
	s.state = StateSold
	return nil
}
