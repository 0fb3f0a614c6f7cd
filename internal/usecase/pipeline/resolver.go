package pipeline

import (
	"strings"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

// Resolver maps free-text names produced by the model to canonical
// participant identifiers. Pure lookup, no I/O; every generation stage
// shares this one implementation.
type Resolver struct{}

// NewResolver creates a Resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// ResolveID matches a free-text name against the roster and returns the
// participant's id (email when no id). Matching order: exact full name,
// first or last name alone, substring containment, then the fallback
// participant. With no usable match it returns the "ai" sentinel.
func (r *Resolver) ResolveID(name string, participants []entities.ParticipantRecord) string {
	query := strings.ToLower(strings.TrimSpace(name))
	if query == "" || len(participants) == 0 {
		return r.fallbackID(participants)
	}

	// Exact match on full name or single name field.
	for _, p := range participants {
		full := strings.ToLower(strings.TrimSpace(p.FirstName + " " + p.LastName))
		single := strings.ToLower(strings.TrimSpace(p.Name))
		if (full != "" && query == full) || (single != "" && query == single) {
			return identifierOf(p)
		}
	}

	// Partial match on first or last name alone.
	for _, p := range participants {
		first := strings.ToLower(strings.TrimSpace(p.FirstName))
		last := strings.ToLower(strings.TrimSpace(p.LastName))
		if (first != "" && query == first) || (last != "" && query == last) {
			return identifierOf(p)
		}
	}

	// Containment in either direction.
	for _, p := range participants {
		combined := strings.ToLower(strings.TrimSpace(p.FullName()))
		if combined == "" {
			continue
		}
		if strings.Contains(combined, query) || strings.Contains(query, combined) {
			return identifierOf(p)
		}
	}

	return r.fallbackID(participants)
}

// ResolveEmails matches each name to a participant email, excluding the
// creator's address, de-duplicating, and joining with commas. When nothing
// resolves it falls back to the first non-creator, non-sentinel email.
func (r *Resolver) ResolveEmails(names []string, participants []entities.ParticipantRecord, creatorEmail string) string {
	creator := strings.ToLower(strings.TrimSpace(creatorEmail))

	seen := make(map[string]bool)
	var emails []string

	addEmail := func(email string) {
		e := strings.TrimSpace(email)
		if e == "" || e == entities.SystemUserID {
			return
		}
		if strings.ToLower(e) == creator {
			return
		}
		if !seen[e] {
			seen[e] = true
			emails = append(emails, e)
		}
	}

	for _, name := range names {
		query := strings.ToLower(strings.TrimSpace(name))
		if query == "" {
			continue
		}
		if p, ok := r.matchParticipant(query, participants); ok {
			addEmail(p.Email)
		}
	}

	if len(emails) == 0 {
		for _, p := range participants {
			addEmail(p.Email)
			if len(emails) > 0 {
				break
			}
		}
	}

	return strings.Join(emails, ",")
}

// matchParticipant runs the same exact/partial/containment ladder as
// ResolveID but returns the record instead of an identifier.
func (r *Resolver) matchParticipant(query string, participants []entities.ParticipantRecord) (entities.ParticipantRecord, bool) {
	for _, p := range participants {
		full := strings.ToLower(strings.TrimSpace(p.FirstName + " " + p.LastName))
		single := strings.ToLower(strings.TrimSpace(p.Name))
		if (full != "" && query == full) || (single != "" && query == single) {
			return p, true
		}
	}
	for _, p := range participants {
		first := strings.ToLower(strings.TrimSpace(p.FirstName))
		last := strings.ToLower(strings.TrimSpace(p.LastName))
		if (first != "" && query == first) || (last != "" && query == last) {
			return p, true
		}
	}
	for _, p := range participants {
		combined := strings.ToLower(strings.TrimSpace(p.FullName()))
		if combined == "" {
			continue
		}
		if strings.Contains(combined, query) || strings.Contains(query, combined) {
			return p, true
		}
	}
	return entities.ParticipantRecord{}, false
}

// fallbackID picks the first participant whose id (then email) is not the
// sentinel; with none, returns the sentinel itself.
func (r *Resolver) fallbackID(participants []entities.ParticipantRecord) string {
	for _, p := range participants {
		if p.ID != "" && p.ID != entities.SystemUserID {
			return p.ID
		}
	}
	for _, p := range participants {
		if p.Email != "" && p.Email != entities.SystemUserID {
			return p.Email
		}
	}
	return entities.SystemUserID
}

func identifierOf(p entities.ParticipantRecord) string {
	if p.ID != "" {
		return p.ID
	}
	return p.Email
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func containsEither(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// similarity is a character-bigram Dice coefficient used for attendee
// matching. Identical strings score 1.0, disjoint strings 0.0.
func similarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == b {
		if a == "" {
			return 0
		}
		return 1.0
	}
	if len(a) < 2 || len(b) < 2 {
		return 0
	}

	bigrams := make(map[string]int)
	for i := 0; i < len(a)-1; i++ {
		bigrams[a[i:i+2]]++
	}
	overlap := 0
	for i := 0; i < len(b)-1; i++ {
		bg := b[i : i+2]
		if bigrams[bg] > 0 {
			bigrams[bg]--
			overlap++
		}
	}
	return 2.0 * float64(overlap) / float64(len(a)+len(b)-2)
}
