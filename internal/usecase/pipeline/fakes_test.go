package pipeline

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

// fakeBackend implements BackendStore with overridable hooks and records
// every write so tests can assert on the persistence calls. Writes run
// concurrently in the coordinator, hence the mutex.
type fakeBackend struct {
	mu sync.Mutex

	meeting    *entities.MeetingRecord
	meetingErr error

	deptMembers []entities.ParticipantRecord
	orgMembers  []entities.ParticipantRecord

	createSummaryID  string
	createSummaryErr error
	updateSummaryErr error
	bulkTasksErr     error
	bulkContentErr   error
	bulkRecordsErr   error

	createdSummaries []*entities.MeetingSummary
	updatedSummaries map[string]*entities.MeetingSummary
	createdTasks     []entities.Task
	createdContent   []entities.GeneratedContent
	createdRecords   []entities.PerformanceRecord
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		meeting: &entities.MeetingRecord{
			MeetingID:      "m1",
			BotID:          "bot1",
			OrganizationID: "org1",
			DepartmentID:   "dept1",
			StartDateTime:  time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
			CreatorID:      "u9",
			CreatorEmail:   "creator@example.com",
		},
		deptMembers:      sampleRoster(),
		createSummaryID:  "sum-1",
		updatedSummaries: make(map[string]*entities.MeetingSummary),
	}
}

func sampleRoster() []entities.ParticipantRecord {
	return []entities.ParticipantRecord{
		{ID: "u1", Email: "sarah@example.com", FirstName: "Sarah", LastName: "Chen"},
		{ID: "u2", Email: "mike@example.com", FirstName: "Mike", LastName: "Jones"},
		{ID: "u9", Email: "creator@example.com", FirstName: "Dana", LastName: "Lee"},
	}
}

func (f *fakeBackend) FetchMeetingRecord(_ context.Context, _, _ string) (*entities.MeetingRecord, error) {
	return f.meeting, f.meetingErr
}

func (f *fakeBackend) FetchDepartmentMembers(_ context.Context, _ string) ([]entities.ParticipantRecord, error) {
	return f.deptMembers, nil
}

func (f *fakeBackend) FetchOrganizationMembers(_ context.Context, _ string) ([]entities.ParticipantRecord, error) {
	return f.orgMembers, nil
}

func (f *fakeBackend) CreateSummary(_ context.Context, summary *entities.MeetingSummary) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createdSummaries = append(f.createdSummaries, summary)
	return f.createSummaryID, f.createSummaryErr
}

func (f *fakeBackend) UpdateSummary(_ context.Context, summaryID string, summary *entities.MeetingSummary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateSummaryErr != nil {
		return f.updateSummaryErr
	}
	f.updatedSummaries[summaryID] = summary
	return nil
}

func (f *fakeBackend) BulkCreateTasks(_ context.Context, tasks []entities.Task) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.bulkTasksErr != nil {
		return nil, f.bulkTasksErr
	}
	f.createdTasks = append(f.createdTasks, tasks...)
	ids := make([]string, len(tasks))
	for i := range tasks {
		ids[i] = "task-" + tasks[i].Title
	}
	return ids, nil
}

func (f *fakeBackend) BulkCreateContent(_ context.Context, contents []entities.GeneratedContent) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.bulkContentErr != nil {
		return nil, f.bulkContentErr
	}
	f.createdContent = append(f.createdContent, contents...)
	ids := make([]string, len(contents))
	for i := range contents {
		ids[i] = "content-" + contents[i].Subject
	}
	return ids, nil
}

func (f *fakeBackend) BulkCreatePerformanceRecords(_ context.Context, records []entities.PerformanceRecord) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.bulkRecordsErr != nil {
		return nil, f.bulkRecordsErr
	}
	f.createdRecords = append(f.createdRecords, records...)
	ids := make([]string, len(records))
	for i := range records {
		ids[i] = "rec-" + records[i].UserID
	}
	return ids, nil
}

type fakeRecorder struct {
	data *entities.BotData
	err  error
}

func (f *fakeRecorder) FetchBotData(_ context.Context, _ string) (*entities.BotData, error) {
	return f.data, f.err
}

func sampleBotData() *entities.BotData {
	return &entities.BotData{
		Attendees: []entities.Attendee{
			{Name: "Sarah Chen", IsHost: true},
			{Name: "Mike Jones"},
		},
		Events: []entities.AttendeeEvent{
			{Name: "Sarah Chen", Action: entities.EventJoin, TimestampRelative: 0},
			{Name: "Mike Jones", Action: entities.EventJoin, TimestampRelative: 10},
			{Name: "Mike Jones", Action: entities.EventLeave, TimestampRelative: 3600},
			{Name: "Sarah Chen", Action: entities.EventLeave, TimestampRelative: 3600},
		},
		AudioURL: "https://recordings.example.com/m1.mp3",
	}
}

type fakeTranscriber struct {
	text string
	err  error
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ string) (string, error) {
	return f.text, f.err
}

// fakeGenerator routes prompts to canned responses by substring. Unmatched
// prompts get the default response.
type fakeGenerator struct {
	mu        sync.Mutex
	responses map[string]string
	errors    map[string]error
	defaults  string
	prompts   []string
}

func newFakeGenerator() *fakeGenerator {
	return &fakeGenerator{
		responses: make(map[string]string),
		errors:    make(map[string]error),
		defaults:  `{}`,
	}
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	for key, err := range f.errors {
		if strings.Contains(prompt, key) {
			return "", err
		}
	}
	for key, resp := range f.responses {
		if strings.Contains(prompt, key) {
			return resp, nil
		}
	}
	return f.defaults, nil
}

func (f *fakeGenerator) promptCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

// Prompt fingerprints used to route fake responses. Each phrase appears in
// exactly one prompt template.
const (
	analysisMarker    = "meeting analysis assistant"
	summaryMarker     = "professional meeting summary from this transcript"
	critiqueMarker    = "Critique the following meeting summary"
	refineMarker      = "Rewrite the meeting summary applying"
	tasksMarker       = "Extract work-related action items"
	contentMarker     = "based on this meeting transcript"
	performanceMarker = "Evaluate each attendee's contribution"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func newTestService(backend *fakeBackend, recorder *fakeRecorder, transcriber *fakeTranscriber, gen *fakeGenerator) *pipelineService {
	svc := NewService(backend, recorder, transcriber, gen, testLogger(), Options{})
	return svc.(*pipelineService)
}

func sampleState() *entities.PipelineState {
	st := entities.NewPipelineState("m1", "token")
	st.OrganizationID = "org1"
	st.DepartmentID = "dept1"
	st.CreatorID = "u9"
	st.CreatorEmail = "creator@example.com"
	st.MeetingDate = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	st.Participants = sampleRoster()
	st.Attendees = sampleBotData().Attendees
	st.AttendeeEvents = sampleBotData().Events
	st.Transcript = "Sarah, please follow up on the contract with the client before the deadline."
	return st
}
