package triage

import (
	"strings"

	"github.com/linnemanlabs/helpdesk/internal/ticket"
)

// Normalized is a triage result coerced into canonical form: the priority
// is always a valid enum value and the skill list is cleaned.
type Normalized struct {
	Summary       string
	Priority      ticket.Priority
	HelpfulNotes  string
	RelatedSkills []string
}

// Normalize coerces a raw result (possibly the fallback, possibly
// malformed model output) into canonical fields. It is pure and total:
// any malformed input degrades to safe defaults, never to an error.
func Normalize(r *Result) Normalized {
	if r == nil {
		r = &Result{}
	}

	priority, ok := ticket.ParsePriority(r.Priority)
	if !ok {
		priority = ticket.PriorityMedium
	}

	return Normalized{
		Summary:       r.Summary,
		Priority:      priority,
		HelpfulNotes:  r.HelpfulNotes,
		RelatedSkills: cleanSkills(r.RelatedSkills),
	}
}

// cleanSkills drops blank entries and removes duplicates, preserving
// first-seen order. Duplicate detection is case-insensitive so "Go" and
// "go" collapse to the first spelling.
func cleanSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}
