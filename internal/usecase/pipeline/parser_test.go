package pipeline

import (
	"testing"

	"go.uber.org/zap"
)

func TestExtractObjectWithCodeFences(t *testing.T) {
	p := NewParser(zap.NewNop())

	raw := "```json\n{\"title\": \"Weekly Sync\", \"summary\": \"Short recap\"}\n```"
	var dst struct {
		Title   string `json:"title"`
		Summary string `json:"summary"`
	}
	if err := p.ExtractObject(raw, &dst); err != nil {
		t.Fatalf("ExtractObject failed: %v", err)
	}
	if dst.Title != "Weekly Sync" {
		t.Errorf("title = %q", dst.Title)
	}
}

func TestExtractObjectSurroundedByProse(t *testing.T) {
	p := NewParser(zap.NewNop())

	raw := "Sure! Here is the JSON you asked for:\n{\"title\": \"Kickoff\"}\nLet me know if you need anything else."
	var dst struct {
		Title string `json:"title"`
	}
	if err := p.ExtractObject(raw, &dst); err != nil {
		t.Fatalf("ExtractObject failed: %v", err)
	}
	if dst.Title != "Kickoff" {
		t.Errorf("title = %q", dst.Title)
	}
}

func TestExtractObjectNoJSON(t *testing.T) {
	p := NewParser(zap.NewNop())

	var dst map[string]interface{}
	if err := p.ExtractObject("no structured data here", &dst); err == nil {
		t.Fatal("expected error for prose-only input")
	}
}

func TestExtractArrayWrapsLoneObject(t *testing.T) {
	p := NewParser(zap.NewNop())

	var dst []struct {
		Title string `json:"title"`
	}
	if err := p.ExtractArray(`{"title": "Only One"}`, &dst); err != nil {
		t.Fatalf("ExtractArray failed: %v", err)
	}
	if len(dst) != 1 || dst[0].Title != "Only One" {
		t.Errorf("dst = %+v, want single wrapped element", dst)
	}
}

func TestExtractArrayMalformed(t *testing.T) {
	p := NewParser(zap.NewNop())

	var dst []map[string]interface{}
	if err := p.ExtractArray(`[{"broken": }]`, &dst); err == nil {
		t.Fatal("expected error for malformed array")
	}
}

func TestExtractRawEntries(t *testing.T) {
	p := NewParser(zap.NewNop())

	entries, err := p.ExtractRawEntries(`[{"userName": "Sarah"}, "not an object", {"userName": "Mike"}]`)
	if err != nil {
		t.Fatalf("ExtractRawEntries failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3 raw entries including the invalid one", len(entries))
	}
}

func TestWordCount(t *testing.T) {
	if got := WordCount("one two  three\nfour"); got != 4 {
		t.Errorf("WordCount = %d, want 4", got)
	}
	if got := WordCount("   "); got != 0 {
		t.Errorf("WordCount of spaces = %d, want 0", got)
	}
}
