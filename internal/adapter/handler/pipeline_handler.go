package handler

import (
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/errors"
	"github.com/johnquangdev/meeting-insights/internal/domain/repositories"
	"github.com/johnquangdev/meeting-insights/internal/usecase/pipeline"
)

// ProcessMeetingRequest is the body of the process endpoint.
type ProcessMeetingRequest struct {
	MeetingID string `json:"meetingId" validate:"required"`
}

// PipelineHandler exposes the meeting processing pipeline over HTTP.
type PipelineHandler struct {
	service pipeline.Service
	runRepo repositories.PipelineRunRepository
	logger  *zap.Logger
}

// NewPipelineHandler creates a new pipeline handler.
func NewPipelineHandler(service pipeline.Service, runRepo repositories.PipelineRunRepository, logger *zap.Logger) *PipelineHandler {
	return &PipelineHandler{
		service: service,
		runRepo: runRepo,
		logger:  logger,
	}
}

// ProcessMeeting runs the full pipeline for one meeting and streams progress
// as server-sent events. Each stage emits an "progress" event and the final
// report arrives as a single "complete" event.
func (h *PipelineHandler) ProcessMeeting(c echo.Context) error {
	var req ProcessMeetingRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload(err))
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("meetingId is required"))
	}

	authToken := ExtractToken(c.Request())

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set("Cache-Control", "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)

	// SSE frames can be emitted from the pipeline's worker goroutines,
	// so writes to the response must be serialized.
	var mu sync.Mutex
	writeEvent := func(event string, payload interface{}) {
		mu.Lock()
		defer mu.Unlock()

		data, err := json.Marshal(payload)
		if err != nil {
			if h.logger != nil {
				h.logger.Error("❌ Failed to marshal SSE payload", zap.Error(err))
			}
			return
		}
		fmt.Fprintf(resp, "event: %s\ndata: %s\n\n", event, data)
		resp.Flush()
	}

	sink := func(ev pipeline.ProgressEvent) {
		writeEvent("progress", ev)
	}

	report, err := h.service.ProcessMeeting(c.Request().Context(), req.MeetingID, authToken, sink)
	if err != nil {
		if h.logger != nil {
			h.logger.Error("❌ Meeting processing failed",
				zap.String("meeting_id", req.MeetingID),
				zap.String("request_id", getRequestID(c)),
				zap.Error(err),
			)
		}
		writeEvent("error", errs{
			Code:    errorCodeOf(err),
			Message: err.Error(),
		})
		return nil
	}

	// Fatal runs terminate the stream as an error event; partial failures
	// still deliver a complete report.
	if report.Failed() {
		writeEvent("error", report)
		return nil
	}

	writeEvent("complete", report)
	return nil
}

// ListRuns returns the recent processing runs for a meeting.
func (h *PipelineHandler) ListRuns(c echo.Context) error {
	meetingID := c.Param("meetingId")
	if meetingID == "" {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("meetingId is required"))
	}

	limit := 20
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			return HandleError(h.logger, c, errors.ErrInvalidArgument("limit must be between 1 and 100"))
		}
		limit = parsed
	}

	if h.runRepo == nil {
		return HandleError(h.logger, c, errors.ErrNotFound("run history"))
	}

	runs, err := h.runRepo.ListByMeetingID(c.Request().Context(), meetingID, limit)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrDatabaseQuery(err))
	}

	return HandleSuccess(h.logger, c, runs)
}

func errorCodeOf(err error) errors.ErrorCode {
	var appErr errors.AppError
	if stdErrors.As(err, &appErr) {
		return appErr.Code
	}
	return errors.ErrorCode_INTERNAL
}
