package pipeline

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

// subTaskResult captures one generation sub-task's outcome. Results are
// written before the WaitGroup releases the coordinator, so no locking is
// needed; each sub-task owns its own slot.
type subTaskResult struct {
	name    string
	err     error
	summary *entities.MeetingSummary
	tasks   []entities.Task
	content []entities.GeneratedContent
	records []entities.PerformanceRecord
}

// runCoordinator fans out the generation sub-tasks, merges their results
// into the state, runs the sentinel repair pass and issues the persistence
// calls. One sub-task failing never aborts its siblings.
func (s *pipelineService) runCoordinator(ctx context.Context, st *entities.PipelineState) error {
	results := s.runGenerationPhase(ctx, st)

	for _, res := range results {
		if res.err != nil {
			s.logger.Warn("⚠️ Generation sub-task failed",
				zap.String("sub_task", res.name), zap.Error(res.err))
			st.RecordFailedOperation(fmt.Sprintf("%s_generation: %v", res.name, res.err))
		}
		switch res.name {
		case "summary":
			if res.summary != nil {
				st.MeetingSummary = res.summary
			} else {
				fallback := s.fallbackSummary(st)
				errSummary := &entities.MeetingSummary{Title: fallback.Title, Summary: fallback.Summary}
				s.applySummaryInvariants(errSummary, st, s.enhanceAttendees(st))
				st.MeetingSummary = errSummary
			}
		case "tasks":
			st.Tasks = res.tasks
		case "content":
			st.GeneratedContent = res.content
		case "performance":
			st.PerformanceRecords = res.records
		}
	}

	s.repairSentinels(st)
	s.runPersistencePhase(ctx, st)

	subtaskCount := 0
	for _, t := range st.Tasks {
		subtaskCount += len(t.Subtasks)
	}
	st.AppendMessage(fmt.Sprintf(
		"Parallel generation complete: %d tasks (%d subtasks), %d content items, %d performance records",
		len(st.Tasks), subtaskCount, len(st.GeneratedContent), len(st.PerformanceRecords)))
	return nil
}

// runGenerationPhase schedules Summary and Performance unconditionally,
// Tasks and Content only when analysis flagged them. Panics are confined to
// the failing sub-task.
func (s *pipelineService) runGenerationPhase(ctx context.Context, st *entities.PipelineState) []*subTaskResult {
	var results []*subTaskResult
	var wg sync.WaitGroup

	schedule := func(name string, run func(res *subTaskResult)) {
		res := &subTaskResult{name: name}
		results = append(results, res)
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if p := recover(); p != nil {
					res.err = fmt.Errorf("panic in %s sub-task: %v", name, p)
				}
			}()
			run(res)
		}()
	}

	schedule("summary", func(res *subTaskResult) {
		res.summary, res.err = s.generateSummary(ctx, st)
	})
	schedule("performance", func(res *subTaskResult) {
		res.records, res.err = s.generatePerformanceRecords(ctx, st)
	})
	if st.TasksDetected {
		schedule("tasks", func(res *subTaskResult) {
			res.tasks, res.err = s.generateTasks(ctx, st)
		})
	}
	if st.ContentDetected && st.ContentDetails != nil {
		schedule("content", func(res *subTaskResult) {
			res.content, res.err = s.generateContent(ctx, st)
		})
	}

	wg.Wait()
	return results
}

// repairSentinels is the second-chance pass: any item still carrying the
// "ai" sentinel after stage-level resolution gets the resolver's fallback
// identifier.
func (s *pipelineService) repairSentinels(st *entities.PipelineState) {
	if len(st.Participants) == 0 {
		return
	}
	fallback := s.resolver.ResolveID("", st.Participants)
	if fallback == entities.SystemUserID {
		return
	}

	for i := range st.Tasks {
		if st.Tasks[i].AssignedToID == entities.SystemUserID {
			st.Tasks[i].AssignedToID = fallback
		}
	}
	for i := range st.GeneratedContent {
		if st.GeneratedContent[i].CreatedForID == entities.SystemUserID {
			st.GeneratedContent[i].CreatedForID = fallback
		}
	}
}

// runPersistencePhase issues the write calls concurrently with independent
// failure capture, then merges ids and operation outcomes single-threaded.
func (s *pipelineService) runPersistencePhase(ctx context.Context, st *entities.PipelineState) {
	var (
		wg sync.WaitGroup

		summaryErr error
		summaryRan bool

		taskIDs []string
		taskErr error
		taskRan bool

		contentIDs []string
		contentErr error
		contentRan bool

		recordIDs []string
		recordErr error
		recordRan bool
	)

	if st.InitialIDs.SummaryID != "" && st.MeetingSummary != nil {
		summaryRan = true
		wg.Add(1)
		go func() {
			defer wg.Done()
			summaryErr = s.backend.UpdateSummary(ctx, st.InitialIDs.SummaryID, st.MeetingSummary)
		}()
	}
	if len(st.Tasks) > 0 {
		taskRan = true
		wg.Add(1)
		go func() {
			defer wg.Done()
			taskIDs, taskErr = s.backend.BulkCreateTasks(ctx, st.Tasks)
		}()
	}
	if len(st.GeneratedContent) > 0 {
		contentRan = true
		wg.Add(1)
		go func() {
			defer wg.Done()
			contentIDs, contentErr = s.backend.BulkCreateContent(ctx, st.GeneratedContent)
		}()
	}
	if len(st.PerformanceRecords) > 0 {
		recordRan = true
		wg.Add(1)
		go func() {
			defer wg.Done()
			recordIDs, recordErr = s.backend.BulkCreatePerformanceRecords(ctx, st.PerformanceRecords)
		}()
	}

	wg.Wait()

	if summaryRan {
		if summaryErr != nil {
			st.Operations.Summary = entities.OpFailed
			st.RecordFailedOperation(fmt.Sprintf("summary_update: %v", summaryErr))
		} else {
			st.Operations.Summary = entities.OpUpdated
		}
	}

	if taskRan {
		if taskErr != nil {
			st.Operations.Tasks = entities.OpFailed
			st.InitialIDs.TaskIDs = []string{}
			st.RecordFailedOperation(fmt.Sprintf("task_creation: %v", taskErr))
		} else {
			st.Operations.Tasks = entities.OpCreated
			st.InitialIDs.TaskIDs = taskIDs
		}
	}

	if contentRan {
		if contentErr != nil {
			st.Operations.Content = entities.OpFailed
			st.InitialIDs.ContentIDs = []string{}
			st.RecordFailedOperation(fmt.Sprintf("content_creation: %v", contentErr))
		} else {
			st.Operations.Content = entities.OpCreated
			st.InitialIDs.ContentIDs = contentIDs
		}
	}

	if recordRan {
		if recordErr != nil {
			st.InitialIDs.PerformanceRecordIDs = []string{}
			st.RecordFailedOperation(fmt.Sprintf("performance_record_creation: %v", recordErr))
		} else {
			st.InitialIDs.PerformanceRecordIDs = recordIDs
		}
	}
}
