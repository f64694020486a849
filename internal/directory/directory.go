// Package directory provides read-only lookup of ticket handlers
// (moderators and admins) with skill-based filtering. Handler records are
// owned by user management; this service never writes them.
package directory

import (
	"context"
	"regexp"
	"strings"
)

// Role classifies a directory entry. Only moderators and admins are
// assignment targets.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Handler is a person eligible to receive assigned tickets.
type Handler struct {
	ID     string   `json:"id"`
	Email  string   `json:"email"`
	Role   Role     `json:"role"`
	Skills []string `json:"skills,omitempty"`
}

// Filter selects handlers. Role is required. When Skills is non-empty the
// handler must have at least one skill that contains any of the entries,
// case-insensitively.
type Filter struct {
	Role   Role
	Skills []string
}

// Directory is the read-only query interface over handlers.
type Directory interface {
	// FindHandler returns one handler matching the filter. Selection among
	// several matches is unspecified but deterministic for a given
	// directory state.
	FindHandler(ctx context.Context, f Filter) (*Handler, bool, error)

	// Get returns the handler with the given ID.
	Get(ctx context.Context, id string) (*Handler, bool, error)
}

// SkillPattern builds a case-insensitive-ready alternation from a skill
// list. Every entry is metacharacter-escaped first: the skills come from
// model output and from users, so they must never reach a regex engine
// verbatim. Returns "" when no usable entry remains.
func SkillPattern(skills []string) string {
	parts := make([]string, 0, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		parts = append(parts, regexp.QuoteMeta(s))
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "|")
}

// CompileSkillPattern compiles the alternation for in-process matching,
// case-insensitive substring semantics. Returns nil when skills is empty.
func CompileSkillPattern(skills []string) (*regexp.Regexp, error) {
	pattern := SkillPattern(skills)
	if pattern == "" {
		return nil, nil
	}
	return regexp.Compile(`(?i)` + pattern)
}
