package entities

import "time"

// PipelineStatus is the overall outcome of a pipeline run. It is monotonic:
// once a run degrades it never reports a better status again.
type PipelineStatus int

const (
	StatusPending PipelineStatus = iota
	StatusSuccess
	StatusPartialFailure
	StatusFailure
)

// String returns the wire form used in reports and run records.
func (s PipelineStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusSuccess:
		return "success"
	case StatusPartialFailure:
		return "partial_failure"
	case StatusFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// severity orders statuses so Degrade can enforce monotonicity.
func (s PipelineStatus) severity() int {
	switch s {
	case StatusFailure:
		return 3
	case StatusPartialFailure:
		return 2
	case StatusPending:
		return 1
	default:
		return 0
	}
}

// Operation outcome labels used in the operations ledger of the final report.
const (
	OpUpdated   = "updated"
	OpCreated   = "created"
	OpNotNeeded = "not_needed"
	OpFailed    = "failed"
)

// ContentRequest describes what kind of follow-up content the analysis stage
// decided should be produced.
type ContentRequest struct {
	Type      string `json:"type"`
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
}

// InitialIDs accumulates the identifiers of rows created during a run.
// SummaryID is set at most once and never cleared afterwards; it names the
// single summary row that exists for this meeting.
type InitialIDs struct {
	SummaryID            string   `json:"summary_id"`
	TaskIDs              []string `json:"task_ids"`
	ContentIDs           []string `json:"content_ids"`
	PerformanceRecordIDs []string `json:"performance_record_ids"`
}

// PipelineState is the single context object threaded through every stage.
// Exactly one stage owns it at a time; coordinator sub-tasks return values
// that the coordinator merges back in after all of them finish.
type PipelineState struct {
	MeetingID      string
	OrganizationID string
	DepartmentID   string
	BotID          string
	MeetingDate    time.Time
	AuthToken      string

	CreatorID    string
	CreatorEmail string

	Participants   []ParticipantRecord
	Attendees      []Attendee
	AttendeeEvents []AttendeeEvent
	AudioURL       string
	Transcript     string

	GenerateSummary bool
	TasksDetected   bool
	ContentDetected bool
	ContentDetails  *ContentRequest

	InitialIDs InitialIDs

	MeetingSummary     *MeetingSummary
	Tasks              []Task
	GeneratedContent   []GeneratedContent
	PerformanceRecords []PerformanceRecord

	Messages         []string
	FailedOperations []string
	Operations       OperationsPerformed

	Status PipelineStatus
}

// OperationsPerformed records how each persistence concern ended.
type OperationsPerformed struct {
	Summary string `json:"summary"`
	Tasks   string `json:"tasks"`
	Content string `json:"content"`
}

// NewPipelineState builds the initial state for one run.
func NewPipelineState(meetingID, authToken string) *PipelineState {
	return &PipelineState{
		MeetingID: meetingID,
		AuthToken: authToken,
		Status:    StatusPending,
		Operations: OperationsPerformed{
			Summary: OpNotNeeded,
			Tasks:   OpNotNeeded,
			Content: OpNotNeeded,
		},
	}
}

// Degrade lowers the run status. Improvements are ignored so an early
// Failure can never be papered over by a later successful stage.
func (s *PipelineState) Degrade(next PipelineStatus) {
	if next.severity() > s.Status.severity() {
		s.Status = next
	}
}

// Resolve settles a still-Pending status to Success. Call once, at report time.
func (s *PipelineState) Resolve() {
	if s.Status == StatusPending {
		s.Status = StatusSuccess
	}
}

// AppendMessage adds one entry to the append-only audit trail.
func (s *PipelineState) AppendMessage(msg string) {
	s.Messages = append(s.Messages, msg)
}

// RecordFailedOperation notes a degraded operation and lowers the status.
func (s *PipelineState) RecordFailedOperation(op string) {
	s.FailedOperations = append(s.FailedOperations, op)
	s.Degrade(StatusPartialFailure)
}
