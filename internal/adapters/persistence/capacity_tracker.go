package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dmarrick/novaforge/internal/domain/capacity"
)

// GormCapacityTracker implements capacity.Tracker using GORM. Admission is a
// guarded increment on a per-host counter row, the same idiom as the ledger's
// debits: under READ COMMITTED two transactions racing for the last slot
// serialize on the row lock and the loser re-evaluates slots_used < maxSlots
// against the committed value. A count-then-insert would let both through on
// Postgres.
type GormCapacityTracker struct {
	db *gorm.DB
}

// NewGormCapacityTracker creates a new GORM capacity tracker
func NewGormCapacityTracker(db *gorm.DB) *GormCapacityTracker {
	return &GormCapacityTracker{db: db}
}

// TryAcquire claims one slot at hostID for jobID
func (t *GormCapacityTracker) TryAcquire(ctx context.Context, hostID, jobID string, maxSlots int) (*capacity.Claim, error) {
	claimID := uuid.New().String()
	acquiredAt := time.Now().UTC()

	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Make sure the host's counter row exists; an existing count is
		// left alone
		seed := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "host_id"}},
			DoNothing: true,
		}).Create(&FacilitySlotModel{HostID: hostID})
		if seed.Error != nil {
			return fmt.Errorf("failed to ensure slot counter: %w", seed.Error)
		}

		result := tx.Model(&FacilitySlotModel{}).
			Where("host_id = ? AND slots_used < ?", hostID, maxSlots).
			Update("slots_used", gorm.Expr("slots_used + 1"))
		if result.Error != nil {
			return fmt.Errorf("failed to claim slot: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return &capacity.CapacityExceededError{HostID: hostID, MaxSlots: maxSlots}
		}

		model := &SlotClaimModel{
			ID:         claimID,
			HostID:     hostID,
			JobID:      jobID,
			AcquiredAt: acquiredAt,
		}
		if err := tx.Create(model).Error; err != nil {
			return fmt.Errorf("failed to create claim: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return capacity.NewClaim(claimID, hostID, jobID, acquiredAt), nil
}

// Release frees a claim and gives the slot back to its host's counter. The
// released_at IS NULL guard makes a repeated release a no-op, so the counter
// is decremented at most once per claim.
func (t *GormCapacityTracker) Release(ctx context.Context, claimID string) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model SlotClaimModel
		result := tx.Where("id = ?", claimID).First(&model)
		if result.Error != nil {
			if result.Error == gorm.ErrRecordNotFound {
				return nil
			}
			return fmt.Errorf("failed to find claim: %w", result.Error)
		}

		stamp := tx.Model(&SlotClaimModel{}).
			Where("id = ? AND released_at IS NULL", claimID).
			Update("released_at", time.Now().UTC())
		if stamp.Error != nil {
			return fmt.Errorf("failed to release claim: %w", stamp.Error)
		}
		if stamp.RowsAffected == 0 {
			return nil
		}

		dec := tx.Model(&FacilitySlotModel{}).
			Where("host_id = ? AND slots_used > 0", model.HostID).
			Update("slots_used", gorm.Expr("slots_used - 1"))
		if dec.Error != nil {
			return fmt.Errorf("failed to free slot: %w", dec.Error)
		}
		return nil
	})
}

// ActiveCount returns the number of active claims at hostID
func (t *GormCapacityTracker) ActiveCount(ctx context.Context, hostID string) (int, error) {
	var count int64
	result := t.db.WithContext(ctx).Model(&SlotClaimModel{}).
		Where("host_id = ? AND released_at IS NULL", hostID).
		Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count active claims: %w", result.Error)
	}
	return int(count), nil
}

// ActiveClaims returns every unreleased claim, oldest first
func (t *GormCapacityTracker) ActiveClaims(ctx context.Context) ([]*capacity.Claim, error) {
	var models []SlotClaimModel
	result := t.db.WithContext(ctx).
		Where("released_at IS NULL").
		Order("acquired_at ASC").
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list active claims: %w", result.Error)
	}

	claims := make([]*capacity.Claim, len(models))
	for i, model := range models {
		claims[i] = capacity.RestoreClaim(model.ID, model.HostID, model.JobID, model.AcquiredAt, model.ReleasedAt)
	}
	return claims, nil
}

// FindByJob returns the claim backing a job, or nil if none exists
func (t *GormCapacityTracker) FindByJob(ctx context.Context, jobID string) (*capacity.Claim, error) {
	var model SlotClaimModel
	result := t.db.WithContext(ctx).Where("job_id = ?", jobID).First(&model)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find claim: %w", result.Error)
	}
	return capacity.RestoreClaim(model.ID, model.HostID, model.JobID, model.AcquiredAt, model.ReleasedAt), nil
}
