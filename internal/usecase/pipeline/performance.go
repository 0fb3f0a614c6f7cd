package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

type performancePayload struct {
	UserName string `json:"userName"`
	Score    int    `json:"score"`
	Comment  string `json:"comment"`
}

// generatePerformanceRecords produces attendance scores from the bot's
// event log plus model-judged contribution scores. Records that cannot be
// tied to a real participant are dropped, never persisted with the
// sentinel.
func (s *pipelineService) generatePerformanceRecords(ctx context.Context, st *entities.PipelineState) ([]entities.PerformanceRecord, error) {
	records := s.attendanceRecords(st)

	contribution, err := s.contributionRecords(ctx, st)
	if err != nil {
		return nil, err
	}
	records = append(records, contribution...)

	return records, nil
}

// attendanceRecords scores presence: one point for attending, minus one for
// joining late or leaving early beyond the grace period.
func (s *pipelineService) attendanceRecords(st *entities.PipelineState) []entities.PerformanceRecord {
	joinTimes := make(map[string]float64)
	leaveTimes := make(map[string]float64)
	meetingEnd := 0.0

	for _, ev := range st.AttendeeEvents {
		name := ev.Name
		if name == "" {
			name = ev.ParticipantRef
		}
		switch ev.Action {
		case entities.EventJoin:
			if t, ok := joinTimes[name]; !ok || ev.TimestampRelative < t {
				joinTimes[name] = ev.TimestampRelative
			}
		case entities.EventLeave:
			if t, ok := leaveTimes[name]; !ok || ev.TimestampRelative > t {
				leaveTimes[name] = ev.TimestampRelative
			}
		}
		if ev.TimestampRelative > meetingEnd {
			meetingEnd = ev.TimestampRelative
		}
	}

	records := make([]entities.PerformanceRecord, 0, len(st.Attendees))
	for _, attendee := range st.Attendees {
		userID := s.resolver.ResolveID(attendee.Name, st.Participants)
		if userID == entities.SystemUserID {
			s.logger.Warn("⚠️ Dropping attendance record for unresolvable attendee",
				zap.String("name", attendee.Name))
			continue
		}

		points := 1
		notes := []string{"Attended the meeting"}

		if join, ok := joinTimes[attendee.Name]; ok && join > entities.AttendanceGraceSeconds {
			points--
			notes = append(notes, fmt.Sprintf("joined %.0f seconds late", join))
		}
		if leave, ok := leaveTimes[attendee.Name]; ok && meetingEnd-leave > entities.AttendanceGraceSeconds {
			points--
			notes = append(notes, fmt.Sprintf("left %.0f seconds early", meetingEnd-leave))
		}

		records = append(records, entities.PerformanceRecord{
			OrganizationID: st.OrganizationID,
			UserID:         userID,
			MeetingID:      st.MeetingID,
			ScoreType:      entities.ScoreTypeAttendance,
			Points:         points,
			Comment:        truncateComment(strings.Join(notes, "; ")),
		})
	}
	return records
}

// contributionRecords asks the model to judge each attendee's contribution.
// Non-object entries and entries without a userName are dropped with a
// warning rather than failing the batch.
func (s *pipelineService) contributionRecords(ctx context.Context, st *entities.PipelineState) ([]entities.PerformanceRecord, error) {
	raw, err := s.generator.Generate(ctx, performancePrompt(st.Transcript, st.Attendees))
	if err != nil {
		return nil, fmt.Errorf("performance model call failed: %w", err)
	}

	entries, err := s.parser.ExtractRawEntries(raw)
	if err != nil {
		s.logger.Warn("⚠️ Performance parse failed, no contribution records", zap.Error(err))
		return []entities.PerformanceRecord{}, nil
	}

	records := make([]entities.PerformanceRecord, 0, len(entries))
	for _, entry := range entries {
		var p performancePayload
		if err := json.Unmarshal(entry, &p); err != nil {
			s.logger.Warn("⚠️ Skipping malformed performance entry", zap.Error(err))
			continue
		}
		if p.UserName == "" {
			s.logger.Warn("⚠️ Skipping performance entry without userName")
			continue
		}

		userID := s.resolver.ResolveID(p.UserName, st.Participants)
		if userID == entities.SystemUserID {
			s.logger.Warn("⚠️ Dropping performance record for unresolvable user",
				zap.String("user_name", p.UserName))
			continue
		}

		records = append(records, entities.PerformanceRecord{
			OrganizationID: st.OrganizationID,
			UserID:         userID,
			MeetingID:      st.MeetingID,
			ScoreType:      entities.ScoreTypeMeetingPerformance,
			Points:         clampScore(p.Score),
			Comment:        truncateComment(p.Comment),
		})
	}
	return records, nil
}

func clampScore(score int) int {
	if score > 2 {
		return 2
	}
	if score < -2 {
		return -2
	}
	return score
}

func truncateComment(comment string) string {
	return truncateRunes(comment, performanceCommentLimit)
}

// truncateRunes shortens s to at most limit bytes without splitting a
// multi-byte rune at the cut point.
func truncateRunes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
