package pipeline

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// Parser extracts structured payloads from raw model output. Model text is
// untrusted: it may be wrapped in code fences or surrounded by prose, so
// extraction never raises past this boundary; callers get a typed result.
type Parser struct {
	logger *zap.Logger
}

// NewParser creates a new Parser instance
func NewParser(logger *zap.Logger) *Parser {
	return &Parser{logger: logger}
}

var (
	arrayPattern  = regexp.MustCompile(`(?s)\[.*\]`)
	objectPattern = regexp.MustCompile(`(?s)\{.*\}`)
)

// ExtractObject finds and unmarshals the first braced JSON object in the
// raw text into dst.
func (p *Parser) ExtractObject(raw string, dst interface{}) error {
	cleaned := stripCodeFences(raw)

	span := objectPattern.FindString(cleaned)
	if span == "" {
		return fmt.Errorf("no JSON object found in response")
	}

	if err := json.Unmarshal([]byte(span), dst); err != nil {
		if p.logger != nil {
			p.logger.Warn("⚠️ Failed to parse JSON object from model output", zap.Error(err))
		}
		return fmt.Errorf("failed to parse JSON object: %w", err)
	}
	return nil
}

// ExtractArray finds the first bracketed JSON array in the raw text and
// unmarshals it into dst. A bare object where an array was expected is
// wrapped into a one-element array.
func (p *Parser) ExtractArray(raw string, dst interface{}) error {
	cleaned := stripCodeFences(raw)

	span := arrayPattern.FindString(cleaned)
	if span == "" {
		if obj := objectPattern.FindString(cleaned); obj != "" {
			span = "[" + obj + "]"
		}
	}
	if span == "" {
		return fmt.Errorf("no JSON array found in response")
	}

	if err := json.Unmarshal([]byte(span), dst); err != nil {
		if p.logger != nil {
			p.logger.Warn("⚠️ Failed to parse JSON array from model output", zap.Error(err))
		}
		return fmt.Errorf("failed to parse JSON array: %w", err)
	}
	return nil
}

// ExtractRawEntries returns the array entries as raw messages so callers can
// skip malformed or non-object entries individually instead of rejecting
// the whole payload.
func (p *Parser) ExtractRawEntries(raw string) ([]json.RawMessage, error) {
	var entries []json.RawMessage
	if err := p.ExtractArray(raw, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// stripCodeFences removes markdown code fence markers from model output.
func stripCodeFences(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
	}
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	return strings.TrimSpace(cleaned)
}

// WordCount counts whitespace-separated words.
func WordCount(s string) int {
	return len(strings.Fields(s))
}
