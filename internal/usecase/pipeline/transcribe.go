package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/meeting-insights/errors"
	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

// runTranscribe converts the recording into transcript text. An empty
// transcript is a failure. Before aborting, a failure row is written so the
// meeting still has a summary record explaining what happened.
func (s *pipelineService) runTranscribe(ctx context.Context, st *entities.PipelineState) error {
	s.logger.Info("🎙️ Transcribing recording",
		zap.String("meeting_id", st.MeetingID))

	text, err := s.transcriber.Transcribe(ctx, st.AudioURL)
	if err != nil {
		s.writeFailureSummary(ctx, st, fmt.Sprintf("Transcription failed: %v", err))
		return apperrors.ErrTranscriptionFailed(err)
	}
	if text == "" {
		s.writeFailureSummary(ctx, st, "Transcription produced no text")
		return apperrors.ErrTranscriptionFailed(fmt.Errorf("empty transcript"))
	}

	st.Transcript = text
	st.AppendMessage(fmt.Sprintf("Transcribed recording: %d characters", len(text)))
	return nil
}

// writeFailureSummary creates a summary row describing the failure.
// Best effort only; the pipeline is already aborting.
func (s *pipelineService) writeFailureSummary(ctx context.Context, st *entities.PipelineState, reason string) {
	summary := entities.NewPlaceholderSummary(st.OrganizationID, st.DepartmentID, st.MeetingDate, nil)
	summary.Title = "Meeting Processing Failed"
	summary.Summary = reason

	if _, err := s.backend.CreateSummary(ctx, summary); err != nil {
		s.logger.Warn("⚠️ Failed to write failure summary", zap.Error(err))
	}
}
