package entities

// Performance score types.
const (
	ScoreTypeAttendance         = "attendance"
	ScoreTypeMeetingPerformance = "meeting_performance"
)

// Grace period for attendance scoring: joining later than this after the
// meeting start, or leaving earlier than this before the end, costs a point.
const AttendanceGraceSeconds = 300

// PerformanceRecord is one per-attendee score. UserID must resolve to a real
// participant; unresolvable records are dropped, never persisted with the
// sentinel.
type PerformanceRecord struct {
	OrganizationID string `json:"organizationId"`
	UserID         string `json:"userId"`
	MeetingID      string `json:"meetingId"`
	ScoreType      string `json:"scoreType"`
	Points         int    `json:"points"`
	Comment        string `json:"comment"`
}
