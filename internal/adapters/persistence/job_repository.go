package persistence

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/dmarrick/novaforge/internal/domain/bonus"
	"github.com/dmarrick/novaforge/internal/domain/catalog"
	"github.com/dmarrick/novaforge/internal/domain/job"
	"github.com/dmarrick/novaforge/internal/domain/shared"
)

// GormJobRepository implements job.Repository using GORM
type GormJobRepository struct {
	db *gorm.DB
}

// NewGormJobRepository creates a new GORM job repository
func NewGormJobRepository(db *gorm.DB) *GormJobRepository {
	return &GormJobRepository{db: db}
}

// Save inserts or updates a job record
func (r *GormJobRepository) Save(ctx context.Context, j *job.Job) error {
	model := r.jobToModel(j)
	result := r.db.WithContext(ctx).Save(model)
	if result.Error != nil {
		return fmt.Errorf("failed to save job: %w", result.Error)
	}
	return nil
}

// FindByID retrieves a job by its ID
func (r *GormJobRepository) FindByID(ctx context.Context, id string) (*job.Job, error) {
	var model JobModel
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&model)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, &job.NotFoundError{ID: id}
		}
		return nil, fmt.Errorf("failed to find job: %w", result.Error)
	}
	return r.modelToJob(&model)
}

// FindActive returns all active jobs ordered by deadline ascending
func (r *GormJobRepository) FindActive(ctx context.Context) ([]*job.Job, error) {
	var models []JobModel
	result := r.db.WithContext(ctx).
		Where("status = ?", string(job.StatusActive)).
		Order("deadline ASC").
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to find active jobs: %w", result.Error)
	}
	return r.modelsToJobs(models)
}

// FindActiveDueBefore returns active jobs due at or before the cutoff
func (r *GormJobRepository) FindActiveDueBefore(ctx context.Context, cutoff time.Time) ([]*job.Job, error) {
	var models []JobModel
	result := r.db.WithContext(ctx).
		Where("status = ? AND deadline <= ?", string(job.StatusActive), cutoff).
		Order("deadline ASC").
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to find due jobs: %w", result.Error)
	}
	return r.modelsToJobs(models)
}

// ListByOwner returns the owner's jobs, newest first
func (r *GormJobRepository) ListByOwner(ctx context.Context, ownerID shared.OwnerID, status *job.Status) ([]*job.Job, error) {
	query := r.db.WithContext(ctx).Where("owner_id = ?", ownerID.Value())
	if status != nil {
		query = query.Where("status = ?", string(*status))
	}

	var models []JobModel
	result := query.Order("created_at DESC").Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", result.Error)
	}
	return r.modelsToJobs(models)
}

// TransitionStatus performs a compare-and-swap on the status column. The
// WHERE status = ? guard means exactly one of several racing callers sees
// true; the rest get false and must treat the transition as already done.
func (r *GormJobRepository) TransitionStatus(ctx context.Context, id string, from, to job.Status, at time.Time) (bool, error) {
	updates := map[string]interface{}{
		"status": string(to),
	}
	if to == job.StatusCompleted || to == job.StatusCancelled {
		updates["finished_at"] = at
	}

	result := r.db.WithContext(ctx).Model(&JobModel{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(updates)
	if result.Error != nil {
		return false, fmt.Errorf("failed to transition job status: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// jobToModel converts domain entity to database model
func (r *GormJobRepository) jobToModel(j *job.Job) *JobModel {
	mods := j.Modifiers()
	return &JobModel{
		ID:                   j.ID(),
		OwnerID:              j.OwnerID().Value(),
		Kind:                 string(j.Kind()),
		TargetID:             j.TargetID(),
		HostID:               j.HostID(),
		ResourceKind:         j.ResourceKind(),
		Quantity:             j.Quantity(),
		Quality:              j.Quality().String(),
		ReservationID:        j.ReservationID(),
		ClaimID:              j.ClaimID(),
		SpeedMultiplier:      mods.SpeedMultiplier,
		YieldMultiplier:      mods.YieldMultiplier,
		EfficiencyMultiplier: mods.EfficiencyMultiplier,
		RareFindBonus:        mods.RareFindBonus,
		Status:               string(j.Status()),
		CreatedAt:            j.CreatedAt(),
		StartedAt:            j.StartedAt(),
		Deadline:             j.Deadline(),
		FinishedAt:           j.FinishedAt(),
	}
}

// modelToJob converts database model to domain entity
func (r *GormJobRepository) modelToJob(m *JobModel) (*job.Job, error) {
	ownerID, err := shared.NewOwnerID(m.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("invalid owner id in job %s: %w", m.ID, err)
	}
	quality, err := catalog.ParseQualityTier(m.Quality)
	if err != nil {
		return nil, fmt.Errorf("invalid quality in job %s: %w", m.ID, err)
	}

	return job.Restore(
		m.ID,
		ownerID,
		job.Kind(m.Kind),
		m.TargetID,
		m.HostID,
		m.ResourceKind,
		m.Quantity,
		quality,
		m.ReservationID,
		m.ClaimID,
		bonus.ModifierSet{
			SpeedMultiplier:      m.SpeedMultiplier,
			YieldMultiplier:      m.YieldMultiplier,
			EfficiencyMultiplier: m.EfficiencyMultiplier,
			RareFindBonus:        m.RareFindBonus,
		},
		job.Status(m.Status),
		m.CreatedAt,
		m.StartedAt,
		m.Deadline,
		m.FinishedAt,
	), nil
}

func (r *GormJobRepository) modelsToJobs(models []JobModel) ([]*job.Job, error) {
	jobs := make([]*job.Job, len(models))
	for i, model := range models {
		j, err := r.modelToJob(&model)
		if err != nil {
			return nil, err
		}
		jobs[i] = j
	}
	return jobs, nil
}
