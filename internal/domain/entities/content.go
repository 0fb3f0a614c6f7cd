package entities

// Generated content types.
const (
	ContentTypeEmail    = "email"
	ContentTypeDocument = "document"
)

// GeneratedContent is a follow-up artifact (email or document) produced for
// the meeting creator. The creator's own address never appears in
// RecipientEmail.
type GeneratedContent struct {
	OrganizationID string `json:"organizationId"`
	DepartmentID   string `json:"departmentId,omitempty"`
	CreatedForID   string `json:"createdForId"`
	Type           string `json:"type"`
	Subject        string `json:"subject,omitempty"`
	Content        string `json:"content"`
	RecipientEmail string `json:"recipientEmail,omitempty"`
}
