package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

type contentPayload struct {
	Type       string          `json:"type"`
	Subject    string          `json:"subject"`
	Content    json.RawMessage `json:"content"`
	Recipients []string        `json:"recipients"`
}

// nestedContentBody is the structured shape some models return instead of a
// plain string body.
type nestedContentBody struct {
	Greeting string `json:"greeting"`
	Sections []struct {
		Heading string `json:"heading"`
		Text    string `json:"text"`
	} `json:"sections"`
	Closing string `json:"closing"`
}

// generateContent drafts the requested follow-up artifacts. The first item
// goes through the critique/refine loop; recipient resolution always
// excludes the meeting creator.
func (s *pipelineService) generateContent(ctx context.Context, st *entities.PipelineState) ([]entities.GeneratedContent, error) {
	if st.ContentDetails == nil {
		return []entities.GeneratedContent{}, nil
	}

	raw, err := s.generator.Generate(ctx, contentPrompt(st.Transcript, *st.ContentDetails))
	if err != nil {
		return nil, fmt.Errorf("content model call failed: %w", err)
	}

	var payloads []contentPayload
	if perr := s.parser.ExtractArray(raw, &payloads); perr != nil {
		s.logger.Warn("⚠️ Content parse failed, no content generated", zap.Error(perr))
		return []entities.GeneratedContent{}, nil
	}

	createdForID := st.CreatorID
	if createdForID == "" {
		createdForID = s.resolver.ResolveID("", st.Participants)
	}

	contents := make([]entities.GeneratedContent, 0, len(payloads))
	for _, p := range payloads {
		body := flattenContentBody(p.Content)
		if body == "" {
			continue
		}

		recipients := p.Recipients
		if len(recipients) == 0 && st.ContentDetails.Recipient != "" {
			recipients = []string{st.ContentDetails.Recipient}
		}

		item := entities.GeneratedContent{
			OrganizationID: st.OrganizationID,
			DepartmentID:   st.DepartmentID,
			CreatedForID:   createdForID,
			Type:           normalizeContentType(p.Type, st.ContentDetails.Type),
			Subject:        firstNonEmpty(p.Subject, st.ContentDetails.Subject),
			Content:        body,
			RecipientEmail: s.resolver.ResolveEmails(recipients, st.Participants, st.CreatorEmail),
		}
		contents = append(contents, item)
	}

	if len(contents) > 0 {
		contents[0] = s.refineContent(ctx, contents[0])
	}
	return contents, nil
}

// refineContent runs the two critique-then-refine iterations on one item.
func (s *pipelineService) refineContent(ctx context.Context, current entities.GeneratedContent) entities.GeneratedContent {
	for i := 0; i < refinementIterations; i++ {
		critique, err := s.generator.Generate(ctx, contentCritiquePrompt(current.Content))
		if err != nil {
			s.logger.Warn("⚠️ Content critique failed, keeping current version",
				zap.Int("iteration", i+1), zap.Error(err))
			return current
		}

		refinedRaw, err := s.generator.Generate(ctx, contentRefinePrompt(current.Content, critique))
		if err != nil {
			s.logger.Warn("⚠️ Content refine failed, keeping current version",
				zap.Int("iteration", i+1), zap.Error(err))
			return current
		}

		var refined struct {
			Subject string          `json:"subject"`
			Content json.RawMessage `json:"content"`
		}
		if perr := s.parser.ExtractObject(refinedRaw, &refined); perr != nil {
			s.logger.Warn("⚠️ Refined content did not parse, keeping current version",
				zap.Int("iteration", i+1))
			return current
		}
		body := flattenContentBody(refined.Content)
		if body == "" {
			return current
		}

		current.Content = body
		if refined.Subject != "" {
			current.Subject = refined.Subject
		}
	}
	return current
}

// flattenContentBody accepts either a plain string body or the nested
// greeting/sections/closing shape and flattens the latter deterministically
// into newline-joined text.
func flattenContentBody(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return strings.TrimSpace(plain)
	}

	var nested nestedContentBody
	if err := json.Unmarshal(raw, &nested); err != nil {
		return ""
	}

	var parts []string
	if nested.Greeting != "" {
		parts = append(parts, nested.Greeting)
	}
	for _, section := range nested.Sections {
		if section.Heading != "" {
			parts = append(parts, section.Heading)
		}
		if section.Text != "" {
			parts = append(parts, section.Text)
		}
	}
	if nested.Closing != "" {
		parts = append(parts, nested.Closing)
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

func normalizeContentType(modelType, requestedType string) string {
	switch strings.ToLower(strings.TrimSpace(modelType)) {
	case entities.ContentTypeEmail:
		return entities.ContentTypeEmail
	case entities.ContentTypeDocument:
		return entities.ContentTypeDocument
	}
	if requestedType == entities.ContentTypeDocument {
		return entities.ContentTypeDocument
	}
	return entities.ContentTypeEmail
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
