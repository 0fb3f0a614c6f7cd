package entities

import (
	"fmt"
	"time"
)

// SystemUserID is the reserved sentinel meaning "no human participant could
// be resolved". It must be replaced by a real participant id wherever one
// exists.
const SystemUserID = "ai"

// PlaceholderSummaryTitle marks a summary row that has been created but not
// yet finalized.
const PlaceholderSummaryTitle = "Processing Meeting Summary..."

// AttendeeMatch links an observed attendee display name to an org member.
// Role and Department are plain strings so absence serializes as "" and
// never as null; MatchConfidence is string-encoded for the same reason.
type AttendeeMatch struct {
	Name            string `json:"name"`
	ID              string `json:"id,omitempty"`
	Email           string `json:"email,omitempty"`
	Role            string `json:"role"`
	Department      string `json:"department"`
	MatchConfidence string `json:"matchConfidence"`
}

// NewAttendeeMatch builds a match with the confidence formatted to two
// decimal places, matching the stored form.
func NewAttendeeMatch(name, id, email string, confidence float64) AttendeeMatch {
	return AttendeeMatch{
		Name:            name,
		ID:              id,
		Email:           email,
		MatchConfidence: fmt.Sprintf("%.2f", confidence),
	}
}

// ActionItem is a single follow-up extracted into the summary body.
type ActionItem struct {
	Description string `json:"description"`
	Assignee    string `json:"assignee"`
}

// MeetingSummary is the summary row held in the backend store. It is created
// once as a placeholder and later overwritten in place under the same id.
type MeetingSummary struct {
	ID             string          `json:"id,omitempty"`
	OrganizationID string          `json:"organizationId"`
	DepartmentID   string          `json:"departmentId,omitempty"`
	CreatedByID    string          `json:"createdById"`
	Title          string          `json:"title"`
	Summary        string          `json:"summary"`
	MeetingDate    time.Time       `json:"meetingDate"`
	Attendees      []AttendeeMatch `json:"attendees"`
	ActionItems    []ActionItem    `json:"actionItems"`
}

// NewPlaceholderSummary builds the provisional row written right after
// analysis so a summary record exists even if later stages fail.
func NewPlaceholderSummary(orgID, deptID string, meetingDate time.Time, attendees []AttendeeMatch) *MeetingSummary {
	if attendees == nil {
		attendees = []AttendeeMatch{}
	}
	return &MeetingSummary{
		OrganizationID: orgID,
		DepartmentID:   deptID,
		CreatedByID:    SystemUserID,
		Title:          PlaceholderSummaryTitle,
		Summary:        "The meeting summary is being generated and will be available shortly.",
		MeetingDate:    meetingDate,
		Attendees:      attendees,
		ActionItems:    []ActionItem{},
	}
}
