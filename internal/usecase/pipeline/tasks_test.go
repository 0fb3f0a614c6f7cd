package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

func TestGenerateTasksResolvesAssignee(t *testing.T) {
	gen := newFakeGenerator()
	gen.responses[tasksMarker] = `[{"title": "Follow up on the contract", "description": "Call the client about renewal", "assignedTo": "Sarah", "priority": "high"}]`

	svc := newTestService(newFakeBackend(), nil, nil, gen)
	st := sampleState()

	tasks, err := svc.generateTasks(context.Background(), st)
	if err != nil {
		t.Fatalf("generateTasks failed: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("tasks = %d, want 1", len(tasks))
	}
	task := tasks[0]
	if task.AssignedToID != "u1" {
		t.Errorf("assignedToId = %q, want u1", task.AssignedToID)
	}
	if task.Status != entities.TaskStatusTodo {
		t.Errorf("status = %q, want todo", task.Status)
	}
	if task.Priority != entities.TaskPriorityHigh {
		t.Errorf("priority = %q, want high", task.Priority)
	}
	if task.CreatedBy != entities.SystemUserID {
		t.Errorf("createdBy = %q, want system user", task.CreatedBy)
	}
	if task.Subtasks == nil {
		t.Error("subtasks must be an empty slice, not nil")
	}
}

func TestGenerateTasksFiltersUnprofessional(t *testing.T) {
	gen := newFakeGenerator()
	gen.responses[tasksMarker] = `[
		{"title": "Organize birthday party", "description": "Cake and drinks for the team", "assignedTo": "Mike"},
		{"title": "Book lunch venue", "description": "Team celebration for the project milestone", "assignedTo": "Mike"},
		{"title": "Prepare quarterly report", "description": "Compile the client deliverable", "assignedTo": "Sarah"}
	]`

	svc := newTestService(newFakeBackend(), nil, nil, gen)

	tasks, err := svc.generateTasks(context.Background(), sampleState())
	if err != nil {
		t.Fatalf("generateTasks failed: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("tasks = %d, want only the professional one", len(tasks))
	}
	if tasks[0].Title != "Prepare quarterly report" {
		t.Errorf("kept task = %q", tasks[0].Title)
	}
}

func TestGenerateTasksRequiresWorkKeyword(t *testing.T) {
	gen := newFakeGenerator()
	// No unprofessional words, but nothing work-related either.
	gen.responses[tasksMarker] = `[{"title": "Think about things", "description": "General musings", "assignedTo": "Sarah"}]`

	svc := newTestService(newFakeBackend(), nil, nil, gen)

	tasks, err := svc.generateTasks(context.Background(), sampleState())
	if err != nil {
		t.Fatalf("generateTasks failed: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("tasks = %d, want 0 without work-related keywords", len(tasks))
	}
}

func TestGenerateTasksSkipsEmptyTitles(t *testing.T) {
	gen := newFakeGenerator()
	gen.responses[tasksMarker] = `[{"title": "", "description": "Review the project plan"}, {"title": "Review the project plan", "description": "", "assignedTo": "Mike"}]`

	svc := newTestService(newFakeBackend(), nil, nil, gen)

	tasks, err := svc.generateTasks(context.Background(), sampleState())
	if err != nil {
		t.Fatalf("generateTasks failed: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("tasks = %d, want 1", len(tasks))
	}
	if tasks[0].AssignedToID != "u2" {
		t.Errorf("assignedToId = %q, want u2", tasks[0].AssignedToID)
	}
}

func TestGenerateTasksParseFailureYieldsEmpty(t *testing.T) {
	gen := newFakeGenerator()
	gen.responses[tasksMarker] = "no structured output"

	svc := newTestService(newFakeBackend(), nil, nil, gen)

	tasks, err := svc.generateTasks(context.Background(), sampleState())
	if err != nil {
		t.Fatalf("parse failure must not error: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("tasks = %d, want 0", len(tasks))
	}
}

func TestGenerateTasksModelError(t *testing.T) {
	gen := newFakeGenerator()
	gen.errors[tasksMarker] = fmt.Errorf("model down")

	svc := newTestService(newFakeBackend(), nil, nil, gen)

	if _, err := svc.generateTasks(context.Background(), sampleState()); err == nil {
		t.Fatal("expected error when the model call fails")
	}
}

func TestNormalizePriority(t *testing.T) {
	cases := map[string]string{
		"low":     entities.TaskPriorityLow,
		"HIGH":    entities.TaskPriorityHigh,
		"urgent":  entities.TaskPriorityUrgent,
		"":        entities.TaskPriorityMedium,
		"extreme": entities.TaskPriorityMedium,
	}
	for in, want := range cases {
		if got := normalizePriority(in); got != want {
			t.Errorf("normalizePriority(%q) = %q, want %q", in, got, want)
		}
	}
}
