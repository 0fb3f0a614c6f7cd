package pipeline

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

// Keyword fallbacks used when the model's analysis cannot be parsed.
var (
	taskKeywords    = []string{"follow up", "assign", "action"}
	contentKeywords = []string{"draft email", "create document", "send email"}
)

type analysisResult struct {
	GenerateSummary bool                     `json:"generate_summary"`
	TasksDetected   bool                     `json:"tasks_detected"`
	ContentDetected bool                     `json:"content_detected"`
	ContentDetails  *entities.ContentRequest `json:"content_details"`
}

// runAnalyze decides which artifacts the run should produce, then creates
// the placeholder summary row so a record exists even if later stages fail.
func (s *pipelineService) runAnalyze(ctx context.Context, st *entities.PipelineState) error {
	result := s.analyzeTranscript(ctx, st)

	st.GenerateSummary = result.GenerateSummary
	st.TasksDetected = result.TasksDetected
	st.ContentDetected = result.ContentDetected
	st.ContentDetails = result.ContentDetails

	if st.ContentDetected && st.ContentDetails == nil {
		st.ContentDetails = s.defaultContentDetails(st)
	}

	s.logger.Info("🤖 Analysis complete",
		zap.String("meeting_id", st.MeetingID),
		zap.Bool("tasks_detected", st.TasksDetected),
		zap.Bool("content_detected", st.ContentDetected))

	s.createPlaceholderSummary(ctx, st)

	st.AppendMessage(fmt.Sprintf("Analysis: tasks=%t content=%t", st.TasksDetected, st.ContentDetected))
	return nil
}

// analyzeTranscript asks the model for the artifact flags, falling back to
// keyword detection when the call or the parse fails.
func (s *pipelineService) analyzeTranscript(ctx context.Context, st *entities.PipelineState) analysisResult {
	raw, err := s.generator.Generate(ctx, analysisPrompt(st.Transcript))
	if err == nil {
		var result analysisResult
		if perr := s.parser.ExtractObject(raw, &result); perr == nil {
			result.GenerateSummary = true
			return result
		}
	} else {
		s.logger.Warn("⚠️ Analysis model call failed, using keyword detection", zap.Error(err))
	}

	return s.keywordAnalysis(st)
}

// keywordAnalysis is the deterministic fallback: scan the transcript for
// trigger phrases.
func (s *pipelineService) keywordAnalysis(st *entities.PipelineState) analysisResult {
	lower := strings.ToLower(st.Transcript)

	result := analysisResult{GenerateSummary: true}
	for _, kw := range taskKeywords {
		if strings.Contains(lower, kw) {
			result.TasksDetected = true
			break
		}
	}
	for _, kw := range contentKeywords {
		if strings.Contains(lower, kw) {
			result.ContentDetected = true
			result.ContentDetails = s.defaultContentDetails(st)
			break
		}
	}
	return result
}

func (s *pipelineService) defaultContentDetails(st *entities.PipelineState) *entities.ContentRequest {
	recipient := ""
	for _, p := range st.Participants {
		if p.Email != "" {
			recipient = p.Email
			break
		}
	}
	return &entities.ContentRequest{
		Type:      entities.ContentTypeEmail,
		Recipient: recipient,
		Subject:   "Meeting Follow-Up",
	}
}

// createPlaceholderSummary performs the NotCreated -> Placeholder
// transition. The returned id, once stored, is never regenerated; an empty
// id is tolerated and surfaces later as a failed summary operation.
func (s *pipelineService) createPlaceholderSummary(ctx context.Context, st *entities.PipelineState) {
	attendees := make([]entities.AttendeeMatch, 0, len(st.Attendees))
	for _, a := range st.Attendees {
		attendees = append(attendees, entities.NewAttendeeMatch(a.Name, "", "", 0))
	}

	placeholder := entities.NewPlaceholderSummary(st.OrganizationID, st.DepartmentID, st.MeetingDate, attendees)
	id, err := s.backend.CreateSummary(ctx, placeholder)
	if err != nil {
		s.logger.Warn("⚠️ Placeholder summary creation failed", zap.Error(err))
		return
	}
	if id == "" {
		s.logger.Warn("⚠️ Placeholder summary creation returned empty id",
			zap.String("meeting_id", st.MeetingID))
		return
	}

	st.InitialIDs.SummaryID = id
	s.logger.Info("📝 Placeholder summary created", zap.String("summary_id", id))
}
