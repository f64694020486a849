// Package assign picks a handler for an analyzed ticket by walking a
// fallback chain over the handler directory.
package assign

import (
	"context"
	"errors"
	"fmt"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/helpdesk/internal/directory"
)

// ErrNoHandler means the directory has no moderator and no admin, so the
// ticket cannot be assigned. Callers treat this as a permanent failure.
var ErrNoHandler = errors.New("no handler available for assignment")

// Resolver assigns tickets to handlers. The chain is: a moderator whose
// skills match the ticket's related skills, then any moderator, then any
// admin. Each lookup is deterministic for a fixed directory state.
type Resolver struct {
	dir    directory.Directory
	logger log.Logger
}

// NewResolver creates a resolver over the given handler directory.
func NewResolver(dir directory.Directory, logger log.Logger) *Resolver {
	if logger == nil {
		logger = log.Nop()
	}
	return &Resolver{dir: dir, logger: logger}
}

// Resolve returns the handler a ticket with the given related skills
// should be assigned to. It returns ErrNoHandler when the chain is
// exhausted.
func (r *Resolver) Resolve(ctx context.Context, skills []string) (*directory.Handler, error) {
	if len(skills) > 0 {
		h, ok, err := r.dir.FindHandler(ctx, directory.Filter{
			Role:   directory.RoleModerator,
			Skills: skills,
		})
		if err != nil {
			return nil, fmt.Errorf("find moderator by skills: %w", err)
		}
		if ok {
			return h, nil
		}
	}

	h, ok, err := r.dir.FindHandler(ctx, directory.Filter{Role: directory.RoleModerator})
	if err != nil {
		return nil, fmt.Errorf("find moderator: %w", err)
	}
	if ok {
		return h, nil
	}

	h, ok, err = r.dir.FindHandler(ctx, directory.Filter{Role: directory.RoleAdmin})
	if err != nil {
		return nil, fmt.Errorf("find admin: %w", err)
	}
	if ok {
		r.logger.Warn(ctx, "no moderator available, assigning to admin", "handler_id", h.ID)
		return h, nil
	}

	return nil, ErrNoHandler
}
