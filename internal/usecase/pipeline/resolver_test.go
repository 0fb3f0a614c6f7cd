package pipeline

import (
	"strings"
	"testing"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

func TestResolveIDExactAndPartial(t *testing.T) {
	r := NewResolver()
	roster := sampleRoster()

	cases := []struct {
		name string
		want string
	}{
		{"Sarah Chen", "u1"},
		{"sarah chen", "u1"},
		{"Sarah", "u1"},
		{"Chen", "u1"},
		{"Mike", "u2"},
		{"  Mike Jones  ", "u2"},
	}
	for _, tc := range cases {
		if got := r.ResolveID(tc.name, roster); got != tc.want {
			t.Errorf("ResolveID(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestResolveIDContainment(t *testing.T) {
	r := NewResolver()
	roster := sampleRoster()

	// Model output with a title around the real name still matches.
	if got := r.ResolveID("Dr. Sarah Chen", roster); got != "u1" {
		t.Errorf("ResolveID with surrounding text = %q, want u1", got)
	}
}

func TestResolveIDFallback(t *testing.T) {
	r := NewResolver()
	roster := sampleRoster()

	// Unknown names fall back to the first participant with a real id.
	if got := r.ResolveID("Nobody Known", roster); got != "u1" {
		t.Errorf("ResolveID unknown name = %q, want fallback u1", got)
	}
	// Empty roster yields the sentinel.
	if got := r.ResolveID("Sarah", nil); got != entities.SystemUserID {
		t.Errorf("ResolveID empty roster = %q, want sentinel", got)
	}
}

func TestResolveIDPrefersIDOverEmail(t *testing.T) {
	r := NewResolver()
	roster := []entities.ParticipantRecord{
		{Email: "noid@example.com", FirstName: "Pat", LastName: "Low"},
		{ID: "u5", Email: "hasid@example.com", FirstName: "Alex", LastName: "High"},
	}

	if got := r.ResolveID("Pat Low", roster); got != "noid@example.com" {
		t.Errorf("ResolveID without id = %q, want email", got)
	}
	// Fallback skips the id-less entry in favor of a real id.
	if got := r.ResolveID("nobody", roster); got != "u5" {
		t.Errorf("fallback = %q, want u5", got)
	}
}

func TestResolveEmailsExcludesCreator(t *testing.T) {
	r := NewResolver()
	roster := sampleRoster()

	got := r.ResolveEmails([]string{"Sarah Chen", "Dana Lee", "Mike"}, roster, "creator@example.com")
	if strings.Contains(got, "creator@example.com") {
		t.Fatalf("creator email must be excluded, got %q", got)
	}
	if got != "sarah@example.com,mike@example.com" {
		t.Errorf("ResolveEmails = %q", got)
	}
}

func TestResolveEmailsDeduplicates(t *testing.T) {
	r := NewResolver()
	roster := sampleRoster()

	got := r.ResolveEmails([]string{"Sarah", "Sarah Chen", "sarah chen"}, roster, "")
	if got != "sarah@example.com" {
		t.Errorf("ResolveEmails = %q, want single sarah@example.com", got)
	}
}

func TestResolveEmailsFallback(t *testing.T) {
	r := NewResolver()
	roster := sampleRoster()

	// Nothing resolves: first non-creator email wins.
	got := r.ResolveEmails([]string{"Unknown Person"}, roster, "sarah@example.com")
	if got != "mike@example.com" {
		t.Errorf("ResolveEmails fallback = %q, want mike@example.com", got)
	}
}

func TestSimilarity(t *testing.T) {
	cases := []struct {
		a, b string
		min  float64
		max  float64
	}{
		{"sarah", "sarah", 1.0, 1.0},
		{"sarah", "sara", 0.7, 1.0},
		{"sarah", "zxqw", 0.0, 0.0},
		{"a", "b", 0.0, 0.0},
		{"", "", 0.0, 0.0},
	}
	for _, tc := range cases {
		got := similarity(tc.a, tc.b)
		if got < tc.min || got > tc.max {
			t.Errorf("similarity(%q, %q) = %v, want in [%v, %v]", tc.a, tc.b, got, tc.min, tc.max)
		}
	}
}
