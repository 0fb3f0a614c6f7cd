package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/meeting-insights/errors"
	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

// runFetch loads the meeting record, the org roster and the bot capture.
// Everything later depends on these inputs, so any miss here is fatal.
func (s *pipelineService) runFetch(ctx context.Context, st *entities.PipelineState) error {
	record, err := s.backend.FetchMeetingRecord(ctx, st.MeetingID, st.AuthToken)
	if err != nil {
		return fmt.Errorf("failed to fetch meeting record: %w", err)
	}
	if record == nil || record.BotID == "" {
		return apperrors.ErrMeetingNotFound(st.MeetingID)
	}

	st.BotID = record.BotID
	st.OrganizationID = record.OrganizationID
	st.DepartmentID = record.DepartmentID
	st.MeetingDate = record.StartDateTime
	st.CreatorID = record.CreatorID
	st.CreatorEmail = record.CreatorEmail

	st.Participants = s.fetchRoster(ctx, st)
	s.logger.Info("👥 Roster loaded",
		zap.String("meeting_id", st.MeetingID),
		zap.Int("participants", len(st.Participants)))

	botData, err := s.recorder.FetchBotData(ctx, st.BotID)
	if err != nil {
		return fmt.Errorf("failed to fetch bot data: %w", err)
	}
	st.Attendees = botData.Attendees
	st.AttendeeEvents = botData.Events
	st.AudioURL = botData.AudioURL

	if st.AudioURL == "" {
		return apperrors.ErrMissingRecordingURL(st.MeetingID)
	}

	if s.archiver != nil {
		if loc, err := s.archiver.ArchiveRecording(ctx, st.MeetingID, st.AudioURL); err != nil {
			s.logger.Warn("⚠️ Recording archive failed", zap.Error(apperrors.ErrStorageFailed(err)))
		} else {
			s.logger.Info("🗄️ Recording archived", zap.String("location", loc))
		}
	}

	st.AppendMessage(fmt.Sprintf("Fetched meeting data: %d participants, %d attendees",
		len(st.Participants), len(st.Attendees)))
	return nil
}

// fetchRoster prefers department members and falls back to the whole
// organization. Lookups go through the roster cache when one is wired.
func (s *pipelineService) fetchRoster(ctx context.Context, st *entities.PipelineState) []entities.ParticipantRecord {
	if st.DepartmentID != "" {
		if roster := s.lookupRoster(ctx, "dept:"+st.DepartmentID, func() ([]entities.ParticipantRecord, error) {
			return s.backend.FetchDepartmentMembers(ctx, st.DepartmentID)
		}); len(roster) > 0 {
			return roster
		}
		s.logger.Warn("⚠️ Department roster empty, falling back to organization",
			zap.String("department_id", st.DepartmentID))
	}

	return s.lookupRoster(ctx, "org:"+st.OrganizationID, func() ([]entities.ParticipantRecord, error) {
		return s.backend.FetchOrganizationMembers(ctx, st.OrganizationID)
	})
}

func (s *pipelineService) lookupRoster(ctx context.Context, key string, fetch func() ([]entities.ParticipantRecord, error)) []entities.ParticipantRecord {
	if s.rosterCache != nil {
		if roster, ok := s.rosterCache.GetRoster(ctx, key); ok {
			return roster
		}
	}
	roster, err := fetch()
	if err != nil {
		s.logger.Warn("⚠️ Roster fetch failed", zap.String("key", key), zap.Error(err))
		return nil
	}
	if s.rosterCache != nil && len(roster) > 0 {
		s.rosterCache.SetRoster(ctx, key, roster)
	}
	return roster
}
