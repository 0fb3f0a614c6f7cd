package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/meeting-insights/errors"
	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/internal/domain/repositories"
	"github.com/johnquangdev/meeting-insights/pkg/ai"
	"github.com/johnquangdev/meeting-insights/pkg/runcontext"
)

// BackendStore is the org backend the pipeline reads inputs from and writes
// artifacts to. Create/update calls signal failure by error; CreateSummary
// may also return an empty id, which callers must tolerate.
type BackendStore interface {
	FetchMeetingRecord(ctx context.Context, meetingID, authToken string) (*entities.MeetingRecord, error)
	FetchDepartmentMembers(ctx context.Context, departmentID string) ([]entities.ParticipantRecord, error)
	FetchOrganizationMembers(ctx context.Context, organizationID string) ([]entities.ParticipantRecord, error)
	CreateSummary(ctx context.Context, summary *entities.MeetingSummary) (string, error)
	UpdateSummary(ctx context.Context, summaryID string, summary *entities.MeetingSummary) error
	BulkCreateTasks(ctx context.Context, tasks []entities.Task) ([]string, error)
	BulkCreateContent(ctx context.Context, contents []entities.GeneratedContent) ([]string, error)
	BulkCreatePerformanceRecords(ctx context.Context, records []entities.PerformanceRecord) ([]string, error)
}

// BotRecorder returns what the recording bot captured for a meeting.
type BotRecorder interface {
	FetchBotData(ctx context.Context, botID string) (*entities.BotData, error)
}

// Transcriber converts an audio URL into transcript text. An empty
// transcript signals failure.
type Transcriber interface {
	Transcribe(ctx context.Context, audioURL string) (string, error)
}

// RecordingArchiver copies the meeting audio into durable object storage.
type RecordingArchiver interface {
	ArchiveRecording(ctx context.Context, meetingID, audioURL string) (string, error)
}

// RunLocker prevents concurrent runs for the same meeting.
type RunLocker interface {
	AcquireRunLock(ctx context.Context, meetingID string) (bool, error)
	ReleaseRunLock(ctx context.Context, meetingID string) error
}

// RosterCache caches org member lookups between runs.
type RosterCache interface {
	GetRoster(ctx context.Context, key string) ([]entities.ParticipantRecord, bool)
	SetRoster(ctx context.Context, key string, roster []entities.ParticipantRecord)
}

// Service runs the meeting processing pipeline.
type Service interface {
	ProcessMeeting(ctx context.Context, meetingID, authToken string, sink EventSink) (*Report, error)
}

type pipelineService struct {
	backend     BackendStore
	recorder    BotRecorder
	transcriber Transcriber
	generator   ai.TextGenerator
	archiver    RecordingArchiver
	locker      RunLocker
	rosterCache RosterCache
	runRepo     repositories.PipelineRunRepository

	resolver *Resolver
	parser   *Parser
	logger   *zap.Logger

	runTimeout time.Duration
}

// Options carries the optional collaborators; any of them may be nil.
type Options struct {
	Archiver    RecordingArchiver
	Locker      RunLocker
	RosterCache RosterCache
	RunRepo     repositories.PipelineRunRepository
	RunTimeout  time.Duration
}

// NewService creates the pipeline service with its injected dependencies.
func NewService(
	backend BackendStore,
	recorder BotRecorder,
	transcriber Transcriber,
	generator ai.TextGenerator,
	logger *zap.Logger,
	opts Options,
) Service {
	return &pipelineService{
		backend:     backend,
		recorder:    recorder,
		transcriber: transcriber,
		generator:   generator,
		archiver:    opts.Archiver,
		locker:      opts.Locker,
		rosterCache: opts.RosterCache,
		runRepo:     opts.RunRepo,
		resolver:    NewResolver(),
		parser:      NewParser(logger),
		logger:      logger,
		runTimeout:  opts.RunTimeout,
	}
}

type stage struct {
	node  string
	fatal bool
	run   func(ctx context.Context, st *entities.PipelineState) error
}

// ProcessMeeting drives the fixed stage sequence for one meeting and
// returns the terminal report. Fatal stage errors short-circuit to the
// report stage; degraded errors are absorbed inside their stage.
func (s *pipelineService) ProcessMeeting(ctx context.Context, meetingID, authToken string, sink EventSink) (*Report, error) {
	runID := uuid.New()
	ctx, cancel := runcontext.RunBegin(ctx, runID, meetingID, s.runTimeout)
	defer cancel()

	if s.locker != nil {
		acquired, err := s.locker.AcquireRunLock(ctx, meetingID)
		if err != nil {
			s.logger.Warn("⚠️ Run lock check failed, continuing without lock",
				zap.String("meeting_id", meetingID), zap.Error(err))
		} else if !acquired {
			return nil, apperrors.ErrMeetingAlreadyProcessing(meetingID)
		} else {
			defer func() {
				if err := s.locker.ReleaseRunLock(context.WithoutCancel(ctx), meetingID); err != nil {
					s.logger.Warn("⚠️ Failed to release run lock", zap.Error(err))
				}
			}()
		}
	}

	var run *entities.PipelineRun
	if s.runRepo != nil {
		run = entities.NewPipelineRun(meetingID)
		run.ID = runID
		if err := s.runRepo.Create(ctx, run); err != nil {
			s.logger.Warn("⚠️ Failed to journal pipeline run", zap.Error(err))
			run = nil
		}
	}

	s.logger.Info("🔄 Starting meeting pipeline",
		zap.String("run_id", runID.String()),
		zap.String("meeting_id", meetingID))

	st := entities.NewPipelineState(meetingID, authToken)

	stages := []stage{
		{node: NodeFetch, fatal: true, run: s.runFetch},
		{node: NodeTranscribe, fatal: true, run: s.runTranscribe},
		{node: NodeAnalyze, run: s.runAnalyze},
		{node: NodeParallelGenerate, run: s.runCoordinator},
		{node: NodeFinalizeSummary, run: s.runFinalizeSummary},
		{node: NodeScorePerformance, run: s.runScorePerformance},
	}

	for _, stg := range stages {
		emit(sink, ProgressEvent{
			Message: fmt.Sprintf("Processing %s", stg.node),
			Node:    stg.node,
			Status:  "running",
		})

		err := stg.run(ctx, st)
		if err != nil {
			s.logger.Error("❌ Stage failed",
				zap.String("node", stg.node),
				zap.String("meeting_id", meetingID),
				zap.Error(err))
			st.AppendMessage(fmt.Sprintf("%s failed: %v", stg.node, err))
			if stg.fatal {
				st.Degrade(entities.StatusFailure)
				emit(sink, ProgressEvent{Message: err.Error(), Node: stg.node, Status: "failed"})
				break
			}
			st.Degrade(entities.StatusPartialFailure)
			emit(sink, ProgressEvent{Message: err.Error(), Node: stg.node, Status: "degraded"})
			continue
		}

		emit(sink, ProgressEvent{
			Message: fmt.Sprintf("Completed %s", stg.node),
			Node:    stg.node,
			Status:  "completed",
		})
	}

	report := s.buildReport(st)
	emit(sink, ProgressEvent{Message: report.Message, Node: NodeReport, Status: "completed"})

	s.journalCompletion(ctx, run, st, report)

	s.logger.Info("✅ Meeting pipeline finished",
		zap.String("run_id", runID.String()),
		zap.String("meeting_id", meetingID),
		zap.String("status", st.Status.String()))

	return report, nil
}

func (s *pipelineService) journalCompletion(ctx context.Context, run *entities.PipelineRun, st *entities.PipelineState, report *Report) {
	if s.runRepo == nil || run == nil {
		return
	}
	messages, err := json.Marshal(st.Messages)
	if err != nil {
		messages = []byte("[]")
	}
	payload, err := json.Marshal(report)
	if err != nil {
		payload = []byte("{}")
	}
	run.MarkCompleted(st.Status, messages, payload)
	if err := s.runRepo.Update(context.WithoutCancel(ctx), run); err != nil {
		s.logger.Warn("⚠️ Failed to update pipeline run journal", zap.Error(err))
	}
}

func emit(sink EventSink, ev ProgressEvent) {
	if sink != nil {
		sink(ev)
	}
}
