package pipeline

import (
	"fmt"
	"strings"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

// Transcript lengths are capped for length-limited model calls.
const (
	performanceTranscriptLimit = 5000
	performanceCommentLimit    = 500
)

func analysisPrompt(transcript string) string {
	return fmt.Sprintf(`You are a meeting analysis assistant. Read the transcript and decide what follow-up artifacts are needed.

Respond with ONLY a JSON object:
{
  "generate_summary": true,
  "tasks_detected": <true if action items, assignments or follow-ups were discussed>,
  "content_detected": <true if an email or document should be drafted>,
  "content_details": {"type": "email", "recipient": "<who it is for>", "subject": "<subject line>"}
}
Omit content_details when content_detected is false.

Transcript:
%s`, transcript)
}

func summaryPrompt(transcript string, attendees []entities.AttendeeMatch) string {
	names := make([]string, 0, len(attendees))
	for _, a := range attendees {
		names = append(names, a.Name)
	}
	return fmt.Sprintf(`Write a professional meeting summary from this transcript.

Respond with ONLY a JSON object:
{
  "title": "<concise meeting title>",
  "summary": "<summary of decisions, discussion points and outcomes, 100-200 words>",
  "actionItems": [{"description": "<what>", "assignee": "<who>"}]
}

Attendees: %s

Transcript:
%s`, strings.Join(names, ", "), transcript)
}

func summaryCritiquePrompt(summary string) string {
	return fmt.Sprintf(`Critique the following meeting summary for accuracy, completeness and professional tone. List concrete improvements as short bullet points.

Summary:
%s`, summary)
}

func summaryRefinePrompt(summary, critique string) string {
	return fmt.Sprintf(`Rewrite the meeting summary applying this critique. Keep the summary between 100 and 200 words.

Respond with ONLY a JSON object:
{"title": "...", "summary": "...", "actionItems": [{"description": "...", "assignee": "..."}]}

Current summary:
%s

Critique:
%s`, summary, critique)
}

func tasksPrompt(transcript string, participants []entities.ParticipantRecord) string {
	names := make([]string, 0, len(participants))
	for _, p := range participants {
		names = append(names, p.FullName())
	}
	return fmt.Sprintf(`Extract work-related action items from this meeting transcript. Only include concrete professional tasks (projects, reports, deliverables, follow-ups). Ignore social events and personal matters.

Respond with ONLY a JSON array:
[{"title": "<short title>", "description": "<what needs doing>", "assignedTo": "<participant name>", "priority": "low|medium|high|urgent", "subtasks": [{"content": "<step>", "isDone": false}]}]

Participants: %s

Transcript:
%s`, strings.Join(names, ", "), transcript)
}

func contentPrompt(transcript string, details entities.ContentRequest) string {
	return fmt.Sprintf(`Draft a %s based on this meeting transcript.

Intended recipient: %s
Subject: %s

Respond with ONLY a JSON array:
[{"type": "%s", "subject": "<subject>", "content": "<full plain-text body>", "recipients": ["<participant name>"]}]

Transcript:
%s`, details.Type, details.Recipient, details.Subject, details.Type, transcript)
}

func contentCritiquePrompt(content string) string {
	return fmt.Sprintf(`Critique the following draft for clarity, tone and completeness. List concrete improvements as short bullet points.

Draft:
%s`, content)
}

func contentRefinePrompt(content, critique string) string {
	return fmt.Sprintf(`Rewrite the draft applying this critique.

Respond with ONLY a JSON object:
{"subject": "<subject>", "content": "<full plain-text body>"}

Current draft:
%s

Critique:
%s`, content, critique)
}

func performancePrompt(transcript string, attendees []entities.Attendee) string {
	names := make([]string, 0, len(attendees))
	for _, a := range attendees {
		names = append(names, a.Name)
	}
	transcript = truncateRunes(transcript, performanceTranscriptLimit)
	return fmt.Sprintf(`Evaluate each attendee's contribution to this meeting.

Score from -2 to +2:
+2 exceptional contribution, +1 good contribution, 0 neutral,
-1 disruptive or unprepared, -2 seriously unprofessional behavior.

Respond with ONLY a JSON array:
[{"userName": "<attendee name>", "score": <-2..2>, "comment": "<one-sentence justification>"}]

Attendees: %s

Transcript (may be truncated):
%s`, strings.Join(names, ", "), transcript)
}
