package ticketapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/helpdesk/internal/ticket"
	"github.com/linnemanlabs/helpdesk/internal/ticket/memstore"
	"github.com/linnemanlabs/helpdesk/internal/workflow"
)

// fakeWorkflow records dispatched events.
type fakeWorkflow struct {
	mu     sync.Mutex
	events []workflow.Event
	err    error
}

func (f *fakeWorkflow) HandleEvent(_ context.Context, ev workflow.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeWorkflow) dispatched() []workflow.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]workflow.Event(nil), f.events...)
}

func newTestAPI(t *testing.T) (*memstore.Store, *fakeWorkflow, http.Handler) {
	t.Helper()

	store := memstore.New()
	wf := &fakeWorkflow{}
	api := New(log.Nop(), store, wf)

	r := chi.NewRouter()
	api.RegisterRoutes(r)
	return store, wf, r
}

func TestCreateTicket(t *testing.T) {
	t.Parallel()

	store, wf, h := newTestAPI(t)

	body := `{"title":"Login broken","description":"cannot log in","created_by":"u-1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tickets", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusAccepted, rec.Body.String())
	}

	var got ticket.Ticket
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.ID == "" {
		t.Error("response missing ticket id")
	}
	if got.Status != ticket.StatusCreated {
		t.Errorf("Status = %q, want created", got.Status)
	}
	if got.Priority != ticket.PriorityMedium {
		t.Errorf("Priority = %q, want medium", got.Priority)
	}

	stored, ok, err := store.Get(context.Background(), got.ID)
	if err != nil || !ok {
		t.Fatalf("ticket not persisted: ok=%v err=%v", ok, err)
	}
	if stored.Title != "Login broken" {
		t.Errorf("stored Title = %q", stored.Title)
	}

	events := wf.dispatched()
	if len(events) != 1 {
		t.Fatalf("dispatched %d events, want 1", len(events))
	}
	if events[0].Name != workflow.EventTicketCreated || events[0].Data.TicketID != got.ID {
		t.Errorf("event = %+v", events[0])
	}
}

func TestCreateTicket_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"not json", "not json"},
		{"missing title", `{"description":"d","created_by":"u"}`},
		{"blank title", `{"title":"  ","description":"d","created_by":"u"}`},
		{"missing description", `{"title":"t","created_by":"u"}`},
		{"missing created_by", `{"title":"t","description":"d"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, wf, h := newTestAPI(t)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/tickets", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
			if len(wf.dispatched()) != 0 {
				t.Error("no event should be dispatched for invalid input")
			}
		})
	}
}

func TestCreateTicket_DispatchFailureStillAccepts(t *testing.T) {
	t.Parallel()

	store, wf, h := newTestAPI(t)
	wf.err = context.DeadlineExceeded

	body := `{"title":"t","description":"d","created_by":"u"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tickets", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusAccepted)
	}

	// the ticket must survive even when the event dispatch fails
	tickets, err := store.List(context.Background(), ticket.ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tickets) != 1 {
		t.Errorf("stored %d tickets, want 1", len(tickets))
	}
}

func TestGetTicket(t *testing.T) {
	t.Parallel()

	store, _, h := newTestAPI(t)
	seed := &ticket.Ticket{ID: "t-1", Title: "x", Description: "y", Status: ticket.StatusCreated, Priority: ticket.PriorityMedium, CreatedBy: "u-1"}
	if err := store.Create(context.Background(), seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tickets/t-1", http.NoBody)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var got ticket.Ticket
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != "t-1" || got.Title != "x" {
		t.Errorf("got %+v", got)
	}
}

func TestGetTicket_NotFound(t *testing.T) {
	t.Parallel()

	_, _, h := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tickets/nope", http.NoBody)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestListTickets_FiltersByCreator(t *testing.T) {
	t.Parallel()

	store, _, h := newTestAPI(t)
	for _, tk := range []*ticket.Ticket{
		{ID: "t-1", Title: "a", Description: "d", Status: ticket.StatusCreated, CreatedBy: "u-1"},
		{ID: "t-2", Title: "b", Description: "d", Status: ticket.StatusCreated, CreatedBy: "u-2"},
		{ID: "t-3", Title: "c", Description: "d", Status: ticket.StatusCreated, CreatedBy: "u-1"},
	} {
		if err := store.Create(context.Background(), tk); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tickets?created_by=u-1", http.NoBody)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var got struct {
		Tickets []*ticket.Ticket `json:"tickets"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Tickets) != 2 {
		t.Errorf("listed %d tickets, want 2", len(got.Tickets))
	}
	for _, tk := range got.Tickets {
		if tk.CreatedBy != "u-1" {
			t.Errorf("ticket %s created by %q, want u-1", tk.ID, tk.CreatedBy)
		}
	}
}

func TestRoutes_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	_, _, h := newTestAPI(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/tickets", http.NoBody)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}
