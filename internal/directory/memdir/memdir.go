// Package memdir provides an in-memory implementation of
// directory.Directory. Suitable for dev/testing; handlers are registered at
// construction or via Add and matched in registration order, which keeps
// FindHandler deterministic.
package memdir

import (
	"context"
	"regexp"
	"slices"
	"sync"

	"github.com/linnemanlabs/helpdesk/internal/directory"
)

// Directory holds handlers in memory.
type Directory struct {
	mu       sync.RWMutex
	handlers []*directory.Handler
}

// New initializes the directory with the given handlers.
func New(handlers ...*directory.Handler) *Directory {
	d := &Directory{}
	for _, h := range handlers {
		d.Add(h)
	}
	return d
}

// Add registers a handler. Used by dev seeding and tests.
func (d *Directory) Add(h *directory.Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers = append(d.handlers, clone(h))
}

// FindHandler returns the first registered handler matching the filter.
func (d *Directory) FindHandler(_ context.Context, f directory.Filter) (*directory.Handler, bool, error) {
	re, err := directory.CompileSkillPattern(f.Skills)
	if err != nil {
		return nil, false, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, h := range d.handlers {
		if h.Role != f.Role {
			continue
		}
		if re != nil && !matchesAny(re, h.Skills) {
			continue
		}
		return clone(h), true, nil
	}
	return nil, false, nil
}

// Get returns the handler with the given ID.
func (d *Directory) Get(_ context.Context, id string) (*directory.Handler, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, h := range d.handlers {
		if h.ID == id {
			return clone(h), true, nil
		}
	}
	return nil, false, nil
}

func matchesAny(re *regexp.Regexp, skills []string) bool {
	for _, s := range skills {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

func clone(h *directory.Handler) *directory.Handler {
	cp := *h
	cp.Skills = slices.Clone(h.Skills)
	return &cp
}
