package pipeline

import (
	"fmt"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

// buildReport is the terminal stage: it settles the status and shapes the
// response object. An early Failure always survives to here; success is
// claimed only when every operation went through.
func (s *pipelineService) buildReport(st *entities.PipelineState) *Report {
	st.Resolve()

	message := ""
	switch st.Status {
	case entities.StatusSuccess:
		message = "Meeting processed successfully"
	case entities.StatusPartialFailure:
		message = fmt.Sprintf("Meeting processed with %d failed operations", len(st.FailedOperations))
	default:
		message = "Meeting processing failed"
	}

	data := ReportData{
		SummaryID:           st.InitialIDs.SummaryID,
		TaskIDs:             st.InitialIDs.TaskIDs,
		ContentIDs:          st.InitialIDs.ContentIDs,
		FailedOperations:    st.FailedOperations,
		OperationsPerformed: st.Operations,
	}
	if data.TaskIDs == nil {
		data.TaskIDs = []string{}
	}
	if data.ContentIDs == nil {
		data.ContentIDs = []string{}
	}
	if data.FailedOperations == nil {
		data.FailedOperations = []string{}
	}

	return &Report{
		Success: st.Status == entities.StatusSuccess,
		Message: message,
		Status:  st.Status.String(),
		Data:    data,
	}
}
