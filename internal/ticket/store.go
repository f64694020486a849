package ticket

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Update when the ticket does not exist.
var ErrNotFound = errors.New("ticket not found")

// ListFilter narrows List results. The zero value matches everything.
type ListFilter struct {
	// CreatedBy restricts results to tickets created by this identity.
	CreatedBy string
}

// Store is the persistence interface for tickets.
type Store interface {
	Create(ctx context.Context, t *Ticket) error
	Get(ctx context.Context, id string) (*Ticket, bool, error)
	List(ctx context.Context, f ListFilter) ([]*Ticket, error)
	Update(ctx context.Context, id string, u Update) error
}
