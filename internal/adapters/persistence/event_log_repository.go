package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/dmarrick/novaforge/internal/application/common"
	"github.com/dmarrick/novaforge/internal/domain/job"
	"github.com/dmarrick/novaforge/internal/domain/shared"
)

// GormEventLogRepository appends completion events to the engine_events table.
// It subscribes to the event bus so every terminal job leaves an audit row.
type GormEventLogRepository struct {
	db *gorm.DB
}

// NewGormEventLogRepository creates a new GORM event log repository
func NewGormEventLogRepository(db *gorm.DB) *GormEventLogRepository {
	return &GormEventLogRepository{db: db}
}

// Append writes one event row
func (r *GormEventLogRepository) Append(ctx context.Context, event common.CompletionEvent) error {
	outputJSON, err := json.Marshal(event.Output)
	if err != nil {
		return fmt.Errorf("failed to marshal event output: %w", err)
	}

	model := &EngineEventModel{
		JobID:     event.JobID,
		OwnerID:   event.OwnerID.Value(),
		Kind:      string(event.Kind),
		Status:    string(event.Status),
		Output:    string(outputJSON),
		Timestamp: event.Timestamp,
	}
	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		return fmt.Errorf("failed to append event: %w", result.Error)
	}
	return nil
}

// FindByJob returns all events recorded for a job, oldest first
func (r *GormEventLogRepository) FindByJob(ctx context.Context, jobID string) ([]common.CompletionEvent, error) {
	var models []EngineEventModel
	result := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("timestamp ASC").
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to find events: %w", result.Error)
	}
	return r.modelsToEvents(models)
}

// FindRecent returns the most recent events for an owner, newest first
func (r *GormEventLogRepository) FindRecent(ctx context.Context, ownerID shared.OwnerID, limit int) ([]common.CompletionEvent, error) {
	var models []EngineEventModel
	result := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID.Value()).
		Order("timestamp DESC").
		Limit(limit).
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to find events: %w", result.Error)
	}
	return r.modelsToEvents(models)
}

// PruneBefore removes events older than the cutoff, returning how many rows
// were deleted
func (r *GormEventLogRepository) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("timestamp < ?", cutoff).
		Delete(&EngineEventModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to prune events: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *GormEventLogRepository) modelsToEvents(models []EngineEventModel) ([]common.CompletionEvent, error) {
	events := make([]common.CompletionEvent, len(models))
	for i, model := range models {
		var output map[string]int
		if model.Output != "" {
			if err := json.Unmarshal([]byte(model.Output), &output); err != nil {
				return nil, fmt.Errorf("failed to unmarshal event output: %w", err)
			}
		}
		ownerID, err := shared.NewOwnerID(model.OwnerID)
		if err != nil {
			return nil, fmt.Errorf("invalid owner id in event %d: %w", model.ID, err)
		}
		events[i] = common.CompletionEvent{
			JobID:     model.JobID,
			OwnerID:   ownerID,
			Kind:      job.Kind(model.Kind),
			Status:    job.Status(model.Status),
			Output:    output,
			Timestamp: model.Timestamp,
		}
	}
	return events, nil
}
