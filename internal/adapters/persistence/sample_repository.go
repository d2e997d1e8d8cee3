package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/dmarrick/novaforge/internal/domain/sample"
	"github.com/dmarrick/novaforge/internal/domain/shared"
)

// GormSampleRepository implements sample.Repository using GORM
type GormSampleRepository struct {
	db *gorm.DB
}

// NewGormSampleRepository creates a new GORM sample repository
func NewGormSampleRepository(db *gorm.DB) *GormSampleRepository {
	return &GormSampleRepository{db: db}
}

// Save inserts or updates a sample record
func (r *GormSampleRepository) Save(ctx context.Context, s *sample.OreSample) error {
	model := r.sampleToModel(s)
	result := r.db.WithContext(ctx).Save(model)
	if result.Error != nil {
		return fmt.Errorf("failed to save sample: %w", result.Error)
	}
	return nil
}

// FindByID retrieves a sample owned by ownerID
func (r *GormSampleRepository) FindByID(ctx context.Context, ownerID shared.OwnerID, id string) (*sample.OreSample, error) {
	var model OreSampleModel
	result := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID.Value()).
		First(&model)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, &sample.NotFoundError{ID: id}
		}
		return nil, fmt.Errorf("failed to find sample: %w", result.Error)
	}
	return r.modelToSample(&model)
}

// ListByOwner returns the owner's unsold samples, newest first
func (r *GormSampleRepository) ListByOwner(ctx context.Context, ownerID shared.OwnerID) ([]*sample.OreSample, error) {
	var models []OreSampleModel
	result := r.db.WithContext(ctx).
		Where("owner_id = ? AND state != ?", ownerID.Value(), string(sample.StateSold)).
		Order("created_at DESC").
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list samples: %w", result.Error)
	}

	samples := make([]*sample.OreSample, len(models))
	for i, model := range models {
		s, err := r.modelToSample(&model)
		if err != nil {
			return nil, err
		}
		samples[i] = s
	}
	return samples, nil
}

// TransitionState performs a compare-and-swap on the state column, mirroring
// the job repository's status transition: exactly one of several racing
// callers sees true, the rest get false.
func (r *GormSampleRepository) TransitionState(ctx context.Context, ownerID shared.OwnerID, id string, from, to sample.AppraisalState) (bool, error) {
	result := r.db.WithContext(ctx).Model(&OreSampleModel{}).
		Where("id = ? AND owner_id = ? AND state = ?", id, ownerID.Value(), string(from)).
		Update("state", string(to))
	if result.Error != nil {
		return false, fmt.Errorf("failed to transition sample state: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// ReduceAmount shrinks a sample through a guarded decrement. The amount >= ?
// guard means two callers racing over the same units see exactly one success;
// the loser gets the error the fresh row justifies.
func (r *GormSampleRepository) ReduceAmount(ctx context.Context, ownerID shared.OwnerID, id string, qty int) (int, error) {
	if qty <= 0 {
		return 0, fmt.Errorf("reduce quantity must be positive, got %d", qty)
	}

	var remaining int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&OreSampleModel{}).
			Where("id = ? AND owner_id = ? AND state = ? AND amount >= ?",
				id, ownerID.Value(), string(sample.StateUnappraised), qty).
			Update("amount", gorm.Expr("amount - ?", qty))
		if result.Error != nil {
			return fmt.Errorf("failed to reduce sample: %w", result.Error)
		}

		var model OreSampleModel
		if result.RowsAffected == 0 {
			res := tx.Where("id = ? AND owner_id = ?", id, ownerID.Value()).First(&model)
			if res.Error == gorm.ErrRecordNotFound {
				return &sample.NotFoundError{ID: id}
			}
			if res.Error != nil {
				return fmt.Errorf("failed to find sample: %w", res.Error)
			}
			if sample.AppraisalState(model.State) != sample.StateUnappraised {
				return &sample.AlreadyAppraisedError{SampleID: id}
			}
			return &sample.InsufficientAmountError{SampleID: id, Requested: qty, Available: model.Amount}
		}

		res := tx.Where("id = ? AND owner_id = ?", id, ownerID.Value()).First(&model)
		if res.Error != nil {
			return fmt.Errorf("failed to reload sample: %w", res.Error)
		}
		remaining = model.Amount
		if remaining == 0 {
			if err := tx.Where("id = ?", id).Delete(&OreSampleModel{}).Error; err != nil {
				return fmt.Errorf("failed to delete exhausted sample: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return remaining, nil
}

// Delete removes a sample record
func (r *GormSampleRepository) Delete(ctx context.Context, ownerID shared.OwnerID, id string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID.Value()).
		Delete(&OreSampleModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete sample: %w", result.Error)
	}
	return nil
}

// sampleToModel converts domain entity to database model
func (r *GormSampleRepository) sampleToModel(s *sample.OreSample) *OreSampleModel {
	return &OreSampleModel{
		ID:             s.ID(),
		OwnerID:        s.OwnerID().Value(),
		Kind:           s.Kind(),
		Amount:         s.Amount(),
		Quality:        s.Quality(),
		State:          string(s.State()),
		AppraisedValue: s.AppraisedValue(),
		CreatedAt:      s.CreatedAt(),
		AppraisedAt:    s.AppraisedAt(),
	}
}

// modelToSample converts database model to domain entity
func (r *GormSampleRepository) modelToSample(m *OreSampleModel) (*sample.OreSample, error) {
	ownerID, err := shared.NewOwnerID(m.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("invalid owner id in sample %s: %w", m.ID, err)
	}
	return sample.Restore(
		m.ID,
		ownerID,
		m.Kind,
		m.Amount,
		m.Quality,
		sample.AppraisalState(m.State),
		m.AppraisedValue,
		m.CreatedAt,
		m.AppraisedAt,
	), nil
}
