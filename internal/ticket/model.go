package ticket

import (
	"strings"
	"time"
)

// Status tracks where a ticket is in the intake pipeline.
type Status string

const (
	// StatusCreated means accepted by intake, triage not yet started.
	StatusCreated Status = "created"

	// StatusAnalyzing means the triage workflow is working on it.
	StatusAnalyzing Status = "analyzing_by_ai"

	// StatusSentToModerator means triaged and assigned to a handler.
	StatusSentToModerator Status = "sent_to_moderator"

	// StatusResolved means closed by an operator. The workflow never sets
	// this; it only refuses to move a resolved ticket backwards.
	StatusResolved Status = "resolved"
)

// Priority is the triage urgency class.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority matches s case-insensitively against the known priorities.
// It reports false for anything else, including the empty string.
func ParsePriority(s string) (Priority, bool) {
	switch Priority(strings.ToLower(strings.TrimSpace(s))) {
	case PriorityLow:
		return PriorityLow, true
	case PriorityMedium:
		return PriorityMedium, true
	case PriorityHigh:
		return PriorityHigh, true
	}
	return "", false
}

// Ticket is one support request tracked through intake, triage, and
// assignment. Title, Description, and CreatedBy are immutable after
// creation; the triage workflow owns the remaining mutable fields.
type Ticket struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Status        Status    `json:"status"`
	Priority      Priority  `json:"priority"`
	HelpfulNotes  string    `json:"helpful_notes,omitempty"`
	RelatedSkills []string  `json:"related_skills,omitempty"`
	AssignedTo    string    `json:"assigned_to,omitempty"`
	CreatedBy     string    `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Update is a partial ticket update. Nil fields are untouched; non-nil
// fields are written with absolute-value semantics ("set status to X"),
// so re-applying the same Update is a no-op in effect.
type Update struct {
	Status        *Status
	Priority      *Priority
	HelpfulNotes  *string
	RelatedSkills *[]string
	AssignedTo    *string
}

// IsZero reports whether the update would write nothing.
func (u Update) IsZero() bool {
	return u.Status == nil && u.Priority == nil && u.HelpfulNotes == nil &&
		u.RelatedSkills == nil && u.AssignedTo == nil
}
