package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// PipelineRun is the local journal row persisted for every pipeline
// execution, used for audit and replay.
type PipelineRun struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	MeetingID   string         `gorm:"type:varchar(64);not null;index" json:"meeting_id"`
	Status      string         `gorm:"type:varchar(32);not null;default:'pending'" json:"status"`
	Messages    datatypes.JSON `gorm:"type:jsonb" json:"messages"`
	Report      datatypes.JSON `gorm:"type:jsonb" json:"report"`
	StartedAt   time.Time      `gorm:"not null" json:"started_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName overrides the GORM table name.
func (PipelineRun) TableName() string {
	return "pipeline_runs"
}

// NewPipelineRun creates a journal row for a run that is starting now.
func NewPipelineRun(meetingID string) *PipelineRun {
	return &PipelineRun{
		ID:        uuid.New(),
		MeetingID: meetingID,
		Status:    StatusPending.String(),
		StartedAt: time.Now().UTC(),
	}
}

// MarkCompleted records the terminal status, audit trail and report payload.
func (r *PipelineRun) MarkCompleted(status PipelineStatus, messages, report datatypes.JSON) {
	now := time.Now().UTC()
	r.Status = status.String()
	r.Messages = messages
	r.Report = report
	r.CompletedAt = &now
}
