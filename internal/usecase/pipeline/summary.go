package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

// Attendee names matching the roster at or above this score are linked.
const attendeeMatchThreshold = 0.7

// Refined summaries are accepted only inside this word band.
const (
	summaryMinWords = 100
	summaryMaxWords = 200
)

const refinementIterations = 2

type summaryPayload struct {
	Title       string                `json:"title"`
	Summary     string                `json:"summary"`
	ActionItems []entities.ActionItem `json:"actionItems"`
}

// generateSummary produces the finalized summary content. Parse failures
// fall back to a deterministic minimal summary; this sub-task never fails
// for data-quality reasons.
func (s *pipelineService) generateSummary(ctx context.Context, st *entities.PipelineState) (*entities.MeetingSummary, error) {
	attendees := s.enhanceAttendees(st)

	raw, err := s.generator.Generate(ctx, summaryPrompt(st.Transcript, attendees))
	if err != nil {
		return nil, fmt.Errorf("summary model call failed: %w", err)
	}

	var payload summaryPayload
	if perr := s.parser.ExtractObject(raw, &payload); perr != nil {
		s.logger.Warn("⚠️ Summary parse failed, using fallback summary", zap.Error(perr))
		payload = s.fallbackSummary(st)
	} else {
		payload = s.refineSummary(ctx, payload)
	}

	summary := &entities.MeetingSummary{
		Title:       payload.Title,
		Summary:     payload.Summary,
		ActionItems: payload.ActionItems,
	}
	s.applySummaryInvariants(summary, st, attendees)
	return summary, nil
}

// refineSummary runs exactly two critique-then-refine iterations. A refined
// candidate replaces the current one only when it parses and its word count
// is inside the acceptance band; otherwise the current version is kept and
// refinement stops.
func (s *pipelineService) refineSummary(ctx context.Context, current summaryPayload) summaryPayload {
	for i := 0; i < refinementIterations; i++ {
		critique, err := s.generator.Generate(ctx, summaryCritiquePrompt(current.Summary))
		if err != nil {
			s.logger.Warn("⚠️ Summary critique failed, keeping current version",
				zap.Int("iteration", i+1), zap.Error(err))
			return current
		}

		refinedRaw, err := s.generator.Generate(ctx, summaryRefinePrompt(current.Summary, critique))
		if err != nil {
			s.logger.Warn("⚠️ Summary refine failed, keeping current version",
				zap.Int("iteration", i+1), zap.Error(err))
			return current
		}

		var refined summaryPayload
		if perr := s.parser.ExtractObject(refinedRaw, &refined); perr != nil {
			s.logger.Warn("⚠️ Refined summary did not parse, keeping current version",
				zap.Int("iteration", i+1))
			return current
		}

		words := WordCount(refined.Summary)
		if words < summaryMinWords || words > summaryMaxWords {
			s.logger.Warn("⚠️ Refined summary outside word band, keeping current version",
				zap.Int("iteration", i+1), zap.Int("words", words))
			return current
		}

		current = refined
	}
	return current
}

// applySummaryInvariants reapplies the fields the model must never control.
func (s *pipelineService) applySummaryInvariants(summary *entities.MeetingSummary, st *entities.PipelineState, attendees []entities.AttendeeMatch) {
	summary.OrganizationID = st.OrganizationID
	summary.DepartmentID = st.DepartmentID
	summary.CreatedByID = entities.SystemUserID
	summary.MeetingDate = st.MeetingDate
	summary.Attendees = attendees
	if summary.Attendees == nil {
		summary.Attendees = []entities.AttendeeMatch{}
	}
	if summary.ActionItems == nil {
		summary.ActionItems = []entities.ActionItem{}
	}
	if summary.Title == "" {
		summary.Title = "Meeting Summary"
	}
}

// fallbackSummary is the deterministic result used when the model output
// cannot be parsed.
func (s *pipelineService) fallbackSummary(st *entities.PipelineState) summaryPayload {
	return summaryPayload{
		Title:       "Meeting Summary",
		Summary:     fmt.Sprintf("A meeting with %d attendees was held. A detailed summary could not be generated automatically.", len(st.Attendees)),
		ActionItems: []entities.ActionItem{},
	}
}

// enhanceAttendees fuzzy-matches observed attendee names against the org
// roster. Exact matches score 1.0, containment 0.9, anything else the
// bigram similarity; matches below the threshold stay unlinked.
func (s *pipelineService) enhanceAttendees(st *entities.PipelineState) []entities.AttendeeMatch {
	matches := make([]entities.AttendeeMatch, 0, len(st.Attendees))

	for _, attendee := range st.Attendees {
		best := entities.NewAttendeeMatch(attendee.Name, "", "", 0)
		bestScore := 0.0

		for _, p := range st.Participants {
			score := nameScore(attendee.Name, p)
			if score > bestScore {
				bestScore = score
				best = entities.NewAttendeeMatch(attendee.Name, p.ID, p.Email, score)
			}
		}

		if bestScore < attendeeMatchThreshold {
			best = entities.NewAttendeeMatch(attendee.Name, "", "", bestScore)
		}
		matches = append(matches, best)
	}
	return matches
}

func nameScore(name string, p entities.ParticipantRecord) float64 {
	candidates := []string{p.FullName(), p.Name, p.FirstName, p.LastName}

	best := 0.0
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		score := pairScore(name, candidate)
		if score > best {
			best = score
		}
	}
	return best
}

func pairScore(a, b string) float64 {
	na := normalizeName(a)
	nb := normalizeName(b)
	switch {
	case na == "" || nb == "":
		return 0
	case na == nb:
		return 1.0
	case containsEither(na, nb):
		return 0.9
	default:
		return similarity(na, nb)
	}
}
