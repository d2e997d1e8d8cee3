package persistence

import (
	"time"
)

// LedgerEntryModel represents the ledger_entries table
// One row per (owner, material kind); quantity is the current balance
type LedgerEntryModel struct {
	OwnerID  int    `gorm:"column:owner_id;primaryKey;not null"`
	Kind     string `gorm:"column:kind;primaryKey;not null"`
	Quantity int    `gorm:"column:quantity;not null;default:0"`
}

func (LedgerEntryModel) TableName() string {
	return "ledger_entries"
}

// ReservationModel represents the reservations table
type ReservationModel struct {
	ID         string     `gorm:"column:id;primaryKey;not null"`
	OwnerID    int        `gorm:"column:owner_id;not null;index"`
	Materials  string     `gorm:"column:materials;type:text;not null"` // JSON map as text
	CreatedAt  time.Time  `gorm:"column:created_at;not null"`
	RefundedAt *time.Time `gorm:"column:refunded_at"`
}

func (ReservationModel) TableName() string {
	return "reservations"
}

// JobModel represents the jobs table
// The deadline column is the durable source of truth for completion timers
type JobModel struct {
	ID                   string     `gorm:"column:id;primaryKey;not null"`
	OwnerID              int        `gorm:"column:owner_id;not null;index"`
	Kind                 string     `gorm:"column:kind;not null"`
	TargetID             string     `gorm:"column:target_id;not null"`
	HostID               string     `gorm:"column:host_id;not null;index"`
	ResourceKind         string     `gorm:"column:resource_kind"`
	Quantity             int        `gorm:"column:quantity;not null"`
	Quality              string     `gorm:"column:quality;not null"`
	ReservationID        string     `gorm:"column:reservation_id"`
	ClaimID              string     `gorm:"column:claim_id;not null"`
	SpeedMultiplier      float64    `gorm:"column:speed_multiplier;not null;default:1"`
	YieldMultiplier      float64    `gorm:"column:yield_multiplier;not null;default:1"`
	EfficiencyMultiplier float64    `gorm:"column:efficiency_multiplier;not null;default:1"`
	RareFindBonus        float64    `gorm:"column:rare_find_bonus;not null;default:1"`
	Status               string     `gorm:"column:status;not null;index"`
	CreatedAt            time.Time  `gorm:"column:created_at;not null"`
	StartedAt            *time.Time `gorm:"column:started_at"`
	Deadline             *time.Time `gorm:"column:deadline;index"`
	FinishedAt           *time.Time `gorm:"column:finished_at"`
}

func (JobModel) TableName() string {
	return "jobs"
}

// FacilitySlotModel represents the facility_slots table
// One row per host; slots_used is the admission guard, maintained in the
// same transaction as the slot_claims rows
type FacilitySlotModel struct {
	HostID    string `gorm:"column:host_id;primaryKey;not null"`
	SlotsUsed int    `gorm:"column:slots_used;not null;default:0"`
}

func (FacilitySlotModel) TableName() string {
	return "facility_slots"
}

// SlotClaimModel represents the slot_claims table
type SlotClaimModel struct {
	ID         string     `gorm:"column:id;primaryKey;not null"`
	HostID     string     `gorm:"column:host_id;not null;index"`
	JobID      string     `gorm:"column:job_id;not null;index"`
	AcquiredAt time.Time  `gorm:"column:acquired_at;not null"`
	ReleasedAt *time.Time `gorm:"column:released_at"`
}

func (SlotClaimModel) TableName() string {
	return "slot_claims"
}

// OreSampleModel represents the ore_samples table
type OreSampleModel struct {
	ID             string     `gorm:"column:id;primaryKey;not null"`
	OwnerID        int        `gorm:"column:owner_id;not null;index"`
	Kind           string     `gorm:"column:kind;not null"`
	Amount         int        `gorm:"column:amount;not null"`
	Quality        float64    `gorm:"column:quality;not null"`
	State          string     `gorm:"column:state;not null;default:'UNAPPRAISED'"`
	AppraisedValue int        `gorm:"column:appraised_value;not null;default:0"`
	CreatedAt      time.Time  `gorm:"column:created_at;not null"`
	AppraisedAt    *time.Time `gorm:"column:appraised_at"`
}

func (OreSampleModel) TableName() string {
	return "ore_samples"
}

// EngineEventModel represents the engine_events table, an append-only audit
// log of job completions and cancellations
type EngineEventModel struct {
	ID        int       `gorm:"column:id;primaryKey;autoIncrement"`
	JobID     string    `gorm:"column:job_id;not null;index"`
	OwnerID   int       `gorm:"column:owner_id;not null"`
	Kind      string    `gorm:"column:kind;not null"`
	Status    string    `gorm:"column:status;not null"`
	Output    string    `gorm:"column:output;type:text"` // JSON map as text
	Timestamp time.Time `gorm:"column:timestamp;not null"`
}

func (EngineEventModel) TableName() string {
	return "engine_events"
}
