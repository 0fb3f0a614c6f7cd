package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

func TestAnalyzeTranscriptModelResult(t *testing.T) {
	gen := newFakeGenerator()
	gen.responses[analysisMarker] = `{"generate_summary": false, "tasks_detected": true, "content_detected": false}`

	svc := newTestService(newFakeBackend(), nil, nil, gen)
	st := sampleState()

	result := svc.analyzeTranscript(context.Background(), st)
	if !result.GenerateSummary {
		t.Error("generate_summary is forced on whenever analysis parses")
	}
	if !result.TasksDetected || result.ContentDetected {
		t.Errorf("result = %+v", result)
	}
}

func TestAnalyzeTranscriptKeywordFallback(t *testing.T) {
	gen := newFakeGenerator()
	gen.errors[analysisMarker] = fmt.Errorf("model down")

	svc := newTestService(newFakeBackend(), nil, nil, gen)
	st := sampleState()
	st.Transcript = "We should follow up with the vendor and draft email to the client."

	result := svc.analyzeTranscript(context.Background(), st)
	if !result.TasksDetected {
		t.Error("keyword fallback must detect the follow up phrase")
	}
	if !result.ContentDetected {
		t.Error("keyword fallback must detect the draft email phrase")
	}
	if result.ContentDetails == nil {
		t.Fatal("keyword detection must supply default content details")
	}
	if result.ContentDetails.Type != entities.ContentTypeEmail {
		t.Errorf("default type = %q", result.ContentDetails.Type)
	}
	if result.ContentDetails.Recipient != "sarah@example.com" {
		t.Errorf("default recipient = %q, want first participant email", result.ContentDetails.Recipient)
	}
}

func TestAnalyzeTranscriptNoTriggers(t *testing.T) {
	gen := newFakeGenerator()
	gen.errors[analysisMarker] = fmt.Errorf("model down")

	svc := newTestService(newFakeBackend(), nil, nil, gen)
	st := sampleState()
	st.Transcript = "We talked about the weather."

	result := svc.analyzeTranscript(context.Background(), st)
	if result.TasksDetected || result.ContentDetected {
		t.Errorf("result = %+v, want nothing detected", result)
	}
	if !result.GenerateSummary {
		t.Error("a summary is always generated")
	}
}

func TestRunAnalyzeDefaultsContentDetails(t *testing.T) {
	gen := newFakeGenerator()
	// Content flagged but no details supplied.
	gen.responses[analysisMarker] = `{"generate_summary": true, "tasks_detected": false, "content_detected": true}`

	svc := newTestService(newFakeBackend(), nil, nil, gen)
	st := sampleState()

	if err := svc.runAnalyze(context.Background(), st); err != nil {
		t.Fatalf("runAnalyze failed: %v", err)
	}
	if st.ContentDetails == nil {
		t.Fatal("content details must be defaulted when the flag is set")
	}
	if st.InitialIDs.SummaryID != "sum-1" {
		t.Errorf("placeholder summary id = %q, want sum-1", st.InitialIDs.SummaryID)
	}
}

func TestRunAnalyzeToleratesPlaceholderFailure(t *testing.T) {
	gen := newFakeGenerator()
	gen.responses[analysisMarker] = `{"generate_summary": true, "tasks_detected": false, "content_detected": false}`

	backend := newFakeBackend()
	backend.createSummaryErr = fmt.Errorf("backend down")

	svc := newTestService(backend, nil, nil, gen)
	st := sampleState()

	if err := svc.runAnalyze(context.Background(), st); err != nil {
		t.Fatalf("placeholder failure must not abort analysis: %v", err)
	}
	if st.InitialIDs.SummaryID != "" {
		t.Errorf("summary id = %q, want empty after failed create", st.InitialIDs.SummaryID)
	}
}
