package entities

import "time"

// MeetingRecord is the backend's view of a scheduled meeting.
type MeetingRecord struct {
	MeetingID      string    `json:"meetingId"`
	BotID          string    `json:"botId"`
	OrganizationID string    `json:"organizationId"`
	DepartmentID   string    `json:"departmentId"`
	StartDateTime  time.Time `json:"startDateTime"`
	EndDateTime    time.Time `json:"endDateTime"`
	CreatorID      string    `json:"creatorId"`
	CreatorEmail   string    `json:"creatorEmail"`
}

// ParticipantRecord is a canonical org member used for identity resolution.
// The resolver only reads these, it never mutates them.
type ParticipantRecord struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Name      string `json:"name"`
}

// FullName returns "firstName lastName" when both parts exist, otherwise
// whichever single name field is populated.
func (p ParticipantRecord) FullName() string {
	switch {
	case p.FirstName != "" && p.LastName != "":
		return p.FirstName + " " + p.LastName
	case p.Name != "":
		return p.Name
	case p.FirstName != "":
		return p.FirstName
	default:
		return p.LastName
	}
}

// Attendee is a person the recording bot observed in the call.
type Attendee struct {
	Name                string `json:"name"`
	StaticParticipantID string `json:"staticParticipantId"`
	IsHost              bool   `json:"isHost"`
}

// AttendeeEvent is one join/leave/speech transition captured by the bot.
type AttendeeEvent struct {
	ParticipantRef      string    `json:"id"`
	Name                string    `json:"name"`
	Action              string    `json:"action"`
	IsHost              bool      `json:"isHost"`
	StaticParticipantID string    `json:"staticParticipantId"`
	TimestampAbsolute   time.Time `json:"timestampAbsolute"`
	TimestampRelative   float64   `json:"timestampRelative"`
}

// Attendee event actions.
const (
	EventJoin      = "join"
	EventLeave     = "leave"
	EventSpeechOn  = "speech_on"
	EventSpeechOff = "speech_off"
)

// BotData is what the recording service returns for one bot session.
type BotData struct {
	Attendees []Attendee      `json:"participants"`
	Events    []AttendeeEvent `json:"events"`
	AudioURL  string          `json:"audioUrl"`
	VideoURL  string          `json:"videoUrl"`
}
