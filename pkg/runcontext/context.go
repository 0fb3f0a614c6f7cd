package runcontext

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

type keyContext string

var (
	keyRunID     keyContext = "run_id"
	keyMeetingID keyContext = "meeting_id"
	keyStartTime keyContext = "run_start_time"
)

// RunMetadata holds metadata for one pipeline execution
type RunMetadata struct {
	RunID     uuid.UUID
	MeetingID string
	StartTime time.Time
}

// RunBegin initializes a run context with metadata and the run-level timeout.
// A zero timeout derives a plain cancelable context.
func RunBegin(parentCtx context.Context, runID uuid.UUID, meetingID string, timeout time.Duration) (context.Context, context.CancelFunc) {
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(parentCtx, timeout)
	} else {
		ctx, cancel = context.WithCancel(parentCtx)
	}

	ctx = context.WithValue(ctx, keyRunID, runID)
	ctx = context.WithValue(ctx, keyMeetingID, meetingID)
	ctx = context.WithValue(ctx, keyStartTime, time.Now())

	return ctx, cancel
}

// GetRunID extracts the run ID from context
func GetRunID(ctx context.Context) (uuid.UUID, bool) {
	runID, ok := ctx.Value(keyRunID).(uuid.UUID)
	return runID, ok
}

// GetMeetingID extracts the meeting ID from context
func GetMeetingID(ctx context.Context) (string, bool) {
	meetingID, ok := ctx.Value(keyMeetingID).(string)
	return meetingID, ok
}

// GetStartTime extracts the run start time from context
func GetStartTime(ctx context.Context) (time.Time, bool) {
	startTime, ok := ctx.Value(keyStartTime).(time.Time)
	return startTime, ok
}

// GetRunMetadata extracts all run metadata from context
func GetRunMetadata(ctx context.Context) *RunMetadata {
	runID, _ := GetRunID(ctx)
	meetingID, _ := GetMeetingID(ctx)
	startTime, _ := GetStartTime(ctx)

	return &RunMetadata{
		RunID:     runID,
		MeetingID: meetingID,
		StartTime: startTime,
	}
}

// IsRetryableError checks if an error should trigger a retry.
// Retryable errors include: network errors, timeouts, rate limits, 5xx.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())

	// Network errors
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "network unreachable") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "i/o timeout") {
		return true
	}

	// API rate limiting
	if strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests") ||
		strings.Contains(errStr, "429") {
		return true
	}

	// Server errors (5xx)
	if strings.Contains(errStr, "status 5") ||
		strings.Contains(errStr, "internal server error") ||
		strings.Contains(errStr, "service unavailable") ||
		strings.Contains(errStr, "bad gateway") {
		return true
	}

	// Temporary failures
	if strings.Contains(errStr, "temporary failure") ||
		strings.Contains(errStr, "try again") {
		return true
	}

	return false
}
