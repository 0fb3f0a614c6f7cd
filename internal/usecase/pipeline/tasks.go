package pipeline

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

// unprofessionalKeywords disqualify a task outright; workRelatedKeywords
// are required at least once. Tasks failing either check are dropped
// silently.
var unprofessionalKeywords = []string{
	"lunch", "coffee", "party", "celebration", "birthday", "personal",
	"hangout", "social", "drinks", "outing", "gift", "fun", "team building",
}

var workRelatedKeywords = []string{
	"project", "report", "meeting", "deadline", "deliverable", "client",
	"development", "analysis", "review", "document", "strategy", "task",
	"action item", "follow-up", "implementation", "research",
}

type taskPayload struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	AssignedTo  string             `json:"assignedTo"`
	Priority    string             `json:"priority"`
	Subtasks    []entities.Subtask `json:"subtasks"`
}

// generateTasks extracts validated action items from the transcript.
// Unparsable output yields zero tasks, never an error past this boundary.
func (s *pipelineService) generateTasks(ctx context.Context, st *entities.PipelineState) ([]entities.Task, error) {
	raw, err := s.generator.Generate(ctx, tasksPrompt(st.Transcript, st.Participants))
	if err != nil {
		return nil, fmt.Errorf("tasks model call failed: %w", err)
	}

	var payloads []taskPayload
	if perr := s.parser.ExtractArray(raw, &payloads); perr != nil {
		s.logger.Warn("⚠️ Task parse failed, no tasks extracted", zap.Error(perr))
		return []entities.Task{}, nil
	}

	tasks := make([]entities.Task, 0, len(payloads))
	for _, p := range payloads {
		if p.Title == "" {
			continue
		}
		if !isProfessionalTask(p) {
			s.logger.Debug("Dropping non-professional task", zap.String("title", p.Title))
			continue
		}

		task := entities.Task{
			OrganizationID: st.OrganizationID,
			DepartmentID:   st.DepartmentID,
			CreatedBy:      entities.SystemUserID,
			Title:          p.Title,
			Description:    p.Description,
			AssignedToID:   s.resolver.ResolveID(p.AssignedTo, st.Participants),
			Status:         entities.TaskStatusTodo,
			Priority:       normalizePriority(p.Priority),
			Subtasks:       p.Subtasks,
		}
		if task.Subtasks == nil {
			task.Subtasks = []entities.Subtask{}
		}
		tasks = append(tasks, task)
	}

	return tasks, nil
}

// isProfessionalTask rejects tasks touching the unprofessional list and
// requires at least one work-related keyword across title, description and
// subtask text.
func isProfessionalTask(p taskPayload) bool {
	var sb strings.Builder
	sb.WriteString(p.Title)
	sb.WriteString(" ")
	sb.WriteString(p.Description)
	for _, sub := range p.Subtasks {
		sb.WriteString(" ")
		sb.WriteString(sub.Content)
	}
	text := strings.ToLower(sb.String())

	for _, kw := range unprofessionalKeywords {
		if strings.Contains(text, kw) {
			return false
		}
	}
	for _, kw := range workRelatedKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func normalizePriority(priority string) string {
	switch strings.ToLower(strings.TrimSpace(priority)) {
	case entities.TaskPriorityLow:
		return entities.TaskPriorityLow
	case entities.TaskPriorityHigh:
		return entities.TaskPriorityHigh
	case entities.TaskPriorityUrgent:
		return entities.TaskPriorityUrgent
	default:
		return entities.TaskPriorityMedium
	}
}
