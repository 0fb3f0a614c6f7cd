package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

// PipelineRunRepository persists the local journal of pipeline executions.
type PipelineRunRepository interface {
	Create(ctx context.Context, run *entities.PipelineRun) error
	Update(ctx context.Context, run *entities.PipelineRun) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.PipelineRun, error)
	ListByMeetingID(ctx context.Context, meetingID string, limit int) ([]entities.PipelineRun, error)
}
