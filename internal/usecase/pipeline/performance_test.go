package pipeline

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

func TestAttendanceRecordsOnTime(t *testing.T) {
	svc := newTestService(newFakeBackend(), nil, nil, newFakeGenerator())
	st := sampleState()

	records := svc.attendanceRecords(st)
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	for _, rec := range records {
		if rec.Points != 1 {
			t.Errorf("points for %s = %d, want 1", rec.UserID, rec.Points)
		}
		if rec.ScoreType != entities.ScoreTypeAttendance {
			t.Errorf("scoreType = %q", rec.ScoreType)
		}
	}
}

func TestAttendanceRecordsLateAndEarly(t *testing.T) {
	svc := newTestService(newFakeBackend(), nil, nil, newFakeGenerator())
	st := sampleState()
	st.AttendeeEvents = []entities.AttendeeEvent{
		{Name: "Sarah Chen", Action: entities.EventJoin, TimestampRelative: 0},
		{Name: "Sarah Chen", Action: entities.EventLeave, TimestampRelative: 3600},
		// Joined 6 minutes late and left 10 minutes early.
		{Name: "Mike Jones", Action: entities.EventJoin, TimestampRelative: 360},
		{Name: "Mike Jones", Action: entities.EventLeave, TimestampRelative: 3000},
	}

	records := svc.attendanceRecords(st)

	byUser := make(map[string]entities.PerformanceRecord)
	for _, rec := range records {
		byUser[rec.UserID] = rec
	}

	if rec := byUser["u1"]; rec.Points != 1 {
		t.Errorf("on-time attendee points = %d, want 1", rec.Points)
	}
	rec := byUser["u2"]
	if rec.Points != -1 {
		t.Errorf("late-and-early points = %d, want -1", rec.Points)
	}
	if !strings.Contains(rec.Comment, "late") || !strings.Contains(rec.Comment, "early") {
		t.Errorf("comment = %q, want late and early notes", rec.Comment)
	}
}

func TestAttendanceRecordsWithinGrace(t *testing.T) {
	svc := newTestService(newFakeBackend(), nil, nil, newFakeGenerator())
	st := sampleState()
	st.AttendeeEvents = []entities.AttendeeEvent{
		{Name: "Sarah Chen", Action: entities.EventJoin, TimestampRelative: 0},
		{Name: "Sarah Chen", Action: entities.EventLeave, TimestampRelative: 3600},
		// 4 minutes late is inside the 300 second grace period.
		{Name: "Mike Jones", Action: entities.EventJoin, TimestampRelative: 240},
		{Name: "Mike Jones", Action: entities.EventLeave, TimestampRelative: 3600},
	}

	for _, rec := range svc.attendanceRecords(st) {
		if rec.Points != 1 {
			t.Errorf("points for %s = %d, want 1 inside grace period", rec.UserID, rec.Points)
		}
	}
}

func TestAttendanceRecordsDropsUnresolvable(t *testing.T) {
	svc := newTestService(newFakeBackend(), nil, nil, newFakeGenerator())
	st := sampleState()
	st.Participants = nil
	st.Attendees = []entities.Attendee{{Name: "Ghost Guest"}}

	records := svc.attendanceRecords(st)
	if len(records) != 0 {
		t.Fatalf("records = %d, want 0 when nobody resolves", len(records))
	}
}

func TestContributionRecordsClampAndSkip(t *testing.T) {
	gen := newFakeGenerator()
	gen.responses[performanceMarker] = `[
		{"userName": "Sarah Chen", "score": 5, "comment": "Led the discussion"},
		{"userName": "Mike Jones", "score": -7, "comment": "Unprepared"},
		{"userName": "", "score": 1, "comment": "missing name"},
		"not an object"
	]`

	svc := newTestService(newFakeBackend(), nil, nil, gen)

	records, err := svc.contributionRecords(context.Background(), sampleState())
	if err != nil {
		t.Fatalf("contributionRecords failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2 valid entries", len(records))
	}
	if records[0].Points != 2 {
		t.Errorf("clamped high score = %d, want 2", records[0].Points)
	}
	if records[1].Points != -2 {
		t.Errorf("clamped low score = %d, want -2", records[1].Points)
	}
	for _, rec := range records {
		if rec.ScoreType != entities.ScoreTypeMeetingPerformance {
			t.Errorf("scoreType = %q", rec.ScoreType)
		}
	}
}

func TestContributionRecordsTruncatesComment(t *testing.T) {
	long := strings.Repeat("x", 900)
	gen := newFakeGenerator()
	gen.responses[performanceMarker] = `[{"userName": "Sarah Chen", "score": 1, "comment": "` + long + `"}]`

	svc := newTestService(newFakeBackend(), nil, nil, gen)

	records, err := svc.contributionRecords(context.Background(), sampleState())
	if err != nil {
		t.Fatalf("contributionRecords failed: %v", err)
	}
	if len(records[0].Comment) != performanceCommentLimit {
		t.Errorf("comment length = %d, want %d", len(records[0].Comment), performanceCommentLimit)
	}
}

func TestTruncateRunesKeepsBoundaries(t *testing.T) {
	cases := []struct {
		name  string
		in    string
		limit int
	}{
		{"ascii", strings.Repeat("x", 10), 5},
		{"two byte runes", strings.Repeat("é", 10), 5},
		{"three byte runes", strings.Repeat("日", 10), 7},
		{"four byte runes", strings.Repeat("😀", 5), 6},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := truncateRunes(tc.in, tc.limit)
			if len(got) > tc.limit {
				t.Errorf("len = %d, exceeds limit %d", len(got), tc.limit)
			}
			if !utf8.ValidString(got) {
				t.Errorf("truncation split a rune: %q", got)
			}
			if !strings.HasPrefix(tc.in, got) {
				t.Errorf("result %q is not a prefix of the input", got)
			}
		})
	}

	if got := truncateRunes("short", 100); got != "short" {
		t.Errorf("under-limit input changed: %q", got)
	}
}

func TestContributionRecordsParseFailure(t *testing.T) {
	gen := newFakeGenerator()
	gen.responses[performanceMarker] = "nothing structured"

	svc := newTestService(newFakeBackend(), nil, nil, gen)

	records, err := svc.contributionRecords(context.Background(), sampleState())
	if err != nil {
		t.Fatalf("parse failure must not error: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("records = %d, want 0", len(records))
	}
}
