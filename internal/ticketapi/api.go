// Package ticketapi exposes the ticket intake HTTP API.
package ticketapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/linnemanlabs/helpdesk/internal/ticket"
	"github.com/linnemanlabs/helpdesk/internal/workflow"
)

// WorkflowService defines the workflow operations the API needs.
type WorkflowService interface {
	HandleEvent(ctx context.Context, ev workflow.Event) error
}

// API holds dependencies for HTTP handlers.
type API struct {
	logger  log.Logger
	tickets ticket.Store
	wf      WorkflowService
}

// New creates a new API handler.
func New(logger log.Logger, tickets ticket.Store, wf WorkflowService) *API {
	if logger == nil {
		logger = log.Nop()
	}
	if tickets == nil {
		panic(xerrors.New("ticket store is required"))
	}
	if wf == nil {
		panic(xerrors.New("workflow service is required"))
	}
	return &API{
		logger:  logger,
		tickets: tickets,
		wf:      wf,
	}
}

// RegisterRoutes attaches API endpoints to the router.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/tickets", a.handleCreateTicket)
		r.Get("/tickets", a.handleListTickets)
		r.Get("/tickets/{id}", a.handleGetTicket)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// nothing to do with errors here
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
