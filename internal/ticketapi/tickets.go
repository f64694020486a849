package ticketapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/linnemanlabs/helpdesk/internal/ticket"
	"github.com/linnemanlabs/helpdesk/internal/workflow"
)

type createTicketRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CreatedBy   string `json:"created_by"`
}

func (a *API) handleCreateTicket(w http.ResponseWriter, r *http.Request) {
	var req createTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.CreatedBy = strings.TrimSpace(req.CreatedBy)
	switch {
	case req.Title == "":
		writeError(w, http.StatusBadRequest, "title is required")
		return
	case req.Description == "":
		writeError(w, http.StatusBadRequest, "description is required")
		return
	case req.CreatedBy == "":
		writeError(w, http.StatusBadRequest, "created_by is required")
		return
	}

	now := time.Now()
	t := &ticket.Ticket{
		ID:          ulid.Make().String(),
		Title:       req.Title,
		Description: req.Description,
		Status:      ticket.StatusCreated,
		Priority:    ticket.PriorityMedium,
		CreatedBy:   req.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := a.tickets.Create(r.Context(), t); err != nil {
		a.logger.Error(r.Context(), err, "failed to create ticket")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	ev := workflow.Event{
		Name: workflow.EventTicketCreated,
		Data: workflow.EventData{TicketID: t.ID},
	}
	if err := a.wf.HandleEvent(r.Context(), ev); err != nil {
		// the ticket is persisted; an operator can replay the event
		a.logger.Error(r.Context(), err, "failed to dispatch ticket event", "ticket_id", t.ID)
	}

	a.logger.Info(r.Context(), "ticket created", "ticket_id", t.ID, "created_by", t.CreatedBy)
	writeJSON(w, http.StatusAccepted, t)
}

func (a *API) handleListTickets(w http.ResponseWriter, r *http.Request) {
	f := ticket.ListFilter{
		CreatedBy: r.URL.Query().Get("created_by"),
	}

	tickets, err := a.tickets.List(r.Context(), f)
	if err != nil {
		a.logger.Error(r.Context(), err, "failed to list tickets")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"tickets": tickets})
}

func (a *API) handleGetTicket(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.String("helpdesk.ticket.id", id))

	t, ok, err := a.tickets.Get(r.Context(), id)
	if err != nil {
		a.logger.Error(r.Context(), err, "failed to get ticket", "ticket_id", id)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	span.SetAttributes(attribute.String("helpdesk.ticket.status", string(t.Status)))
	writeJSON(w, http.StatusOK, t)
}
