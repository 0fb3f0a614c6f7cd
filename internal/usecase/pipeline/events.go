package pipeline

import "github.com/johnquangdev/meeting-insights/internal/domain/entities"

// ProgressEvent is emitted once per stage transition for the caller's
// event stream.
type ProgressEvent struct {
	Message string `json:"message"`
	Node    string `json:"node"`
	Status  string `json:"status"`
}

// EventSink receives progress events. A nil sink is allowed.
type EventSink func(ProgressEvent)

// Stage names used in progress events.
const (
	NodeFetch            = "data_fetching"
	NodeTranscribe       = "transcription_processing"
	NodeAnalyze          = "analysis"
	NodeParallelGenerate = "parallel_coordinator"
	NodeFinalizeSummary  = "summary_finalization"
	NodeScorePerformance = "performance_records"
	NodeReport           = "storage_response"
)

// ReportData is the payload of the terminal report.
type ReportData struct {
	SummaryID           string                       `json:"summary_id"`
	TaskIDs             []string                     `json:"task_ids"`
	ContentIDs          []string                     `json:"content_ids"`
	FailedOperations    []string                     `json:"failed_operations"`
	OperationsPerformed entities.OperationsPerformed `json:"operations_performed"`
}

// Report is the terminal object returned to the caller after a run.
type Report struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	Status  string     `json:"status"`
	Data    ReportData `json:"data"`
}

// Failed reports whether the run ended in a fatal failure, as opposed to
// success or a degraded partial result.
func (r *Report) Failed() bool {
	return r.Status == entities.StatusFailure.String()
}
