package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/internal/domain/repositories"
)

// pipelineRunRepository implements repositories.PipelineRunRepository with GORM
type pipelineRunRepository struct {
	db *gorm.DB
}

// NewPipelineRunRepository creates a new pipeline run repository
func NewPipelineRunRepository(db *gorm.DB) repositories.PipelineRunRepository {
	return &pipelineRunRepository{db: db}
}

// Create inserts a new run row
func (r *pipelineRunRepository) Create(ctx context.Context, run *entities.PipelineRun) error {
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("failed to create pipeline run: %w", err)
	}
	return nil
}

// Update saves the run row
func (r *pipelineRunRepository) Update(ctx context.Context, run *entities.PipelineRun) error {
	if err := r.db.WithContext(ctx).Save(run).Error; err != nil {
		return fmt.Errorf("failed to update pipeline run: %w", err)
	}
	return nil
}

// GetByID fetches a run by its id
func (r *pipelineRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.PipelineRun, error) {
	var run entities.PipelineRun
	if err := r.db.WithContext(ctx).First(&run, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get pipeline run: %w", err)
	}
	return &run, nil
}

// ListByMeetingID returns the most recent runs for a meeting
func (r *pipelineRunRepository) ListByMeetingID(ctx context.Context, meetingID string, limit int) ([]entities.PipelineRun, error) {
	var runs []entities.PipelineRun
	query := r.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("started_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("failed to list pipeline runs: %w", err)
	}
	return runs, nil
}
