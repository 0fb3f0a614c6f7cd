package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

// runFinalizeSummary reconciles the Placeholder -> Finalized transition.
// The update itself happened in the coordinator's persistence phase; this
// stage verifies the outcome, retrying the update if it never ran, and
// degrades the run when the placeholder is missing or the update failed.
func (s *pipelineService) runFinalizeSummary(ctx context.Context, st *entities.PipelineState) error {
	if st.InitialIDs.SummaryID == "" {
		s.logger.Warn("⚠️ No placeholder summary id, cannot finalize",
			zap.String("meeting_id", st.MeetingID))
		st.Operations.Summary = entities.OpFailed
		st.RecordFailedOperation("summary_finalize: missing placeholder summary id")
		st.AppendMessage("Summary finalization skipped: placeholder was never created")
		return nil
	}

	switch st.Operations.Summary {
	case entities.OpUpdated:
		st.AppendMessage(fmt.Sprintf("Summary %s finalized", st.InitialIDs.SummaryID))
		return nil
	case entities.OpFailed:
		// Degradation was already recorded by the coordinator. The
		// placeholder row persists as-is.
		st.AppendMessage(fmt.Sprintf("Summary %s left as placeholder after failed update", st.InitialIDs.SummaryID))
		return nil
	}

	// The coordinator never attempted the update (no summary content was
	// merged). Try once here so the row is not left in the placeholder
	// state silently.
	if st.MeetingSummary == nil {
		st.Operations.Summary = entities.OpFailed
		st.RecordFailedOperation("summary_finalize: no summary content available")
		return nil
	}
	if err := s.backend.UpdateSummary(ctx, st.InitialIDs.SummaryID, st.MeetingSummary); err != nil {
		s.logger.Warn("⚠️ Summary finalize update failed",
			zap.String("summary_id", st.InitialIDs.SummaryID), zap.Error(err))
		st.Operations.Summary = entities.OpFailed
		st.RecordFailedOperation(fmt.Sprintf("summary_finalize: %v", err))
		return nil
	}
	st.Operations.Summary = entities.OpUpdated
	st.AppendMessage(fmt.Sprintf("Summary %s finalized", st.InitialIDs.SummaryID))
	return nil
}

// runScorePerformance reconciles the performance persistence outcome and
// records the final counts in the audit trail.
func (s *pipelineService) runScorePerformance(ctx context.Context, st *entities.PipelineState) error {
	generated := len(st.PerformanceRecords)
	persisted := len(st.InitialIDs.PerformanceRecordIDs)

	if generated == 0 {
		st.AppendMessage("No performance records produced")
		return nil
	}

	if persisted == 0 {
		// The coordinator already recorded the failed write; just make the
		// degradation visible in the audit trail.
		s.logger.Warn("⚠️ Performance records generated but none persisted",
			zap.Int("generated", generated))
		st.AppendMessage(fmt.Sprintf("Performance scoring degraded: %d records generated, none persisted", generated))
		return nil
	}

	st.AppendMessage(fmt.Sprintf("Performance scoring complete: %d records persisted", persisted))
	return nil
}
