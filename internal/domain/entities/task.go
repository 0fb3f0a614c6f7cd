package entities

// Task statuses accepted by the backend store.
const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"
	TaskStatusCancelled  = "cancelled"
)

// Task priorities accepted by the backend store.
const (
	TaskPriorityLow    = "low"
	TaskPriorityMedium = "medium"
	TaskPriorityHigh   = "high"
	TaskPriorityUrgent = "urgent"
)

// Subtask is one checklist entry under a task.
type Subtask struct {
	Content string `json:"content"`
	IsDone  bool   `json:"isDone"`
}

// Task is an action item extracted from the meeting. AssignedToID must be a
// real participant id or email; the "ai" sentinel is forbidden once real
// participants exist.
type Task struct {
	OrganizationID string    `json:"organizationId"`
	DepartmentID   string    `json:"departmentId,omitempty"`
	CreatedBy      string    `json:"createdBy"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	AssignedToID   string    `json:"assignedToId"`
	ReportToID     string    `json:"reportToId,omitempty"`
	Status         string    `json:"status"`
	Priority       string    `json:"priority"`
	Subtasks       []Subtask `json:"subtasks"`
}
