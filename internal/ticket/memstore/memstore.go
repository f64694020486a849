// Package memstore provides an in-memory implementation of ticket.Store.
package memstore

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/linnemanlabs/helpdesk/internal/ticket"
)

// Store holds tickets in memory. Suitable for dev/testing.
type Store struct {
	mu      sync.RWMutex
	tickets map[string]*ticket.Ticket
	order   []string // insertion order for List
}

// New initializes a new in-memory Store.
func New() *Store {
	return &Store{
		tickets: make(map[string]*ticket.Ticket),
	}
}

// Create stores a copy of the ticket.
func (s *Store) Create(_ context.Context, t *ticket.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tickets[t.ID]; !exists {
		s.order = append(s.order, t.ID)
	}
	cp := clone(t)
	s.tickets[t.ID] = cp
	return nil
}

// Get retrieves a ticket by ID. Returns a copy.
func (s *Store) Get(_ context.Context, id string) (*ticket.Ticket, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tickets[id]
	if !ok {
		return nil, false, nil
	}
	return clone(t), true, nil
}

// List returns tickets matching the filter in creation order.
func (s *Store) List(_ context.Context, f ticket.ListFilter) ([]*ticket.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*ticket.Ticket, 0, len(s.order))
	for _, id := range s.order {
		t := s.tickets[id]
		if f.CreatedBy != "" && t.CreatedBy != f.CreatedBy {
			continue
		}
		out = append(out, clone(t))
	}
	return out, nil
}

// Update applies the non-nil fields of u to the stored ticket.
func (s *Store) Update(_ context.Context, id string, u ticket.Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[id]
	if !ok {
		return ticket.ErrNotFound
	}
	if u.Status != nil {
		t.Status = *u.Status
	}
	if u.Priority != nil {
		t.Priority = *u.Priority
	}
	if u.HelpfulNotes != nil {
		t.HelpfulNotes = *u.HelpfulNotes
	}
	if u.RelatedSkills != nil {
		t.RelatedSkills = slices.Clone(*u.RelatedSkills)
	}
	if u.AssignedTo != nil {
		t.AssignedTo = *u.AssignedTo
	}
	t.UpdatedAt = time.Now()
	return nil
}

func clone(t *ticket.Ticket) *ticket.Ticket {
	cp := *t
	cp.RelatedSkills = slices.Clone(t.RelatedSkills)
	return &cp
}
