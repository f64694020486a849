package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/helpdesk/internal/assign"
	"github.com/linnemanlabs/helpdesk/internal/directory"
	"github.com/linnemanlabs/helpdesk/internal/ticket"
	"github.com/linnemanlabs/helpdesk/internal/triage"
)

// Analyzer produces a triage result for ticket text. It never fails; the
// implementation degrades to a fallback result instead.
type Analyzer interface {
	Analyze(ctx context.Context, title, description string) *triage.Result
}

// Assigner picks the handler a ticket should go to.
type Assigner interface {
	Resolve(ctx context.Context, skills []string) (*directory.Handler, error)
}

// Notifier delivers an assignment notification.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

// EngineHooks are optional observation callbacks, wired to Prometheus by
// main. Outcomes are "ok", "failed", or "permanent".
type EngineHooks struct {
	OnRun           func(outcome string, seconds float64)
	OnStep          func(step, outcome string)
	OnNotifyFailure func()
}

// Engine executes one triage-and-assignment run for a ticket. Every step
// persists its effect before the next one starts, and completed steps are
// detected from the persisted ticket so a replayed run never redoes work.
type Engine struct {
	tickets  ticket.Store
	analyzer Analyzer
	assigner Assigner
	dir      directory.Directory
	notifier Notifier
	logger   log.Logger
	hooks    EngineHooks
}

// NewEngine creates a workflow engine with the given dependencies.
func NewEngine(
	tickets ticket.Store,
	analyzer Analyzer,
	assigner Assigner,
	dir directory.Directory,
	notifier Notifier,
	logger log.Logger,
	hooks EngineHooks,
) *Engine {
	if logger == nil {
		logger = log.Nop()
	}
	return &Engine{
		tickets:  tickets,
		analyzer: analyzer,
		assigner: assigner,
		dir:      dir,
		notifier: notifier,
		logger:   logger,
		hooks:    hooks,
	}
}

// Run executes the steps for one ticket: fetch, mark analyzing, analyze,
// persist the triage fields, assign a handler, and notify them. A
// PermanentError means a retry cannot help.
func (e *Engine) Run(ctx context.Context, ticketID string) error {
	start := time.Now()
	L := e.logger.With("ticket_id", ticketID)

	err := e.run(ctx, L, ticketID)
	switch {
	case err == nil:
		e.observeRun("ok", start)
		L.Info(ctx, "workflow run complete", "duration", time.Since(start).Seconds())
	case IsPermanent(err):
		e.observeRun("permanent", start)
		L.Error(ctx, err, "workflow run failed permanently")
	default:
		e.observeRun("failed", start)
		L.Error(ctx, err, "workflow run failed")
	}
	return err
}

func (e *Engine) run(ctx context.Context, L log.Logger, ticketID string) error {
	t, err := e.fetchTicket(ctx, ticketID)
	if err != nil {
		return err
	}

	// never move a resolved ticket backwards
	if t.Status == ticket.StatusResolved {
		L.Info(ctx, "ticket already resolved, nothing to do")
		return nil
	}

	if err := e.markAnalyzing(ctx, t); err != nil {
		return err
	}

	if err := e.analyzeAndPersist(ctx, L, t); err != nil {
		return err
	}

	handler, err := e.assignHandler(ctx, L, t)
	if err != nil {
		return err
	}

	e.notify(ctx, L, t, handler)
	return nil
}

// fetchTicket loads the ticket. A missing ticket is permanent: the event
// referenced something that does not exist, and retrying will not create it.
func (e *Engine) fetchTicket(ctx context.Context, id string) (*ticket.Ticket, error) {
	t, ok, err := e.tickets.Get(ctx, id)
	if err != nil {
		e.observeStep("fetch-ticket", "failed")
		return nil, fmt.Errorf("fetch ticket: %w", err)
	}
	if !ok {
		e.observeStep("fetch-ticket", "permanent")
		return nil, Permanent(fmt.Errorf("fetch ticket %s: %w", id, ticket.ErrNotFound))
	}
	e.observeStep("fetch-ticket", "ok")
	return t, nil
}

// markAnalyzing writes the analyzing status unless the ticket has already
// moved past it.
func (e *Engine) markAnalyzing(ctx context.Context, t *ticket.Ticket) error {
	if t.Status != ticket.StatusCreated {
		e.observeStep("mark-analyzing", "skipped")
		return nil
	}

	status := ticket.StatusAnalyzing
	if err := e.tickets.Update(ctx, t.ID, ticket.Update{Status: &status}); err != nil {
		e.observeStep("mark-analyzing", "failed")
		return fmt.Errorf("mark analyzing: %w", err)
	}
	t.Status = status
	e.observeStep("mark-analyzing", "ok")
	return nil
}

// analyzeAndPersist runs the analysis and writes the triage fields. A
// ticket that already carries helpful notes was analyzed by an earlier
// attempt, so both steps are skipped.
func (e *Engine) analyzeAndPersist(ctx context.Context, L log.Logger, t *ticket.Ticket) error {
	if t.HelpfulNotes != "" {
		e.observeStep("analyze", "skipped")
		e.observeStep("persist-triage", "skipped")
		return nil
	}

	result := e.analyzer.Analyze(ctx, t.Title, t.Description)
	e.observeStep("analyze", "ok")

	n := triage.Normalize(result)
	upd := ticket.Update{
		Priority:      &n.Priority,
		HelpfulNotes:  &n.HelpfulNotes,
		RelatedSkills: &n.RelatedSkills,
	}
	if err := e.tickets.Update(ctx, t.ID, upd); err != nil {
		e.observeStep("persist-triage", "failed")
		return fmt.Errorf("persist triage: %w", err)
	}
	t.Priority = n.Priority
	t.HelpfulNotes = n.HelpfulNotes
	t.RelatedSkills = n.RelatedSkills
	e.observeStep("persist-triage", "ok")

	L.Info(ctx, "triage persisted",
		"priority", n.Priority,
		"skills", len(n.RelatedSkills),
	)
	return nil
}

// assignHandler resolves and persists the assignment. On a replay of an
// already-assigned ticket it looks the handler up by ID so the notify step
// still has an address to work with.
func (e *Engine) assignHandler(ctx context.Context, L log.Logger, t *ticket.Ticket) (*directory.Handler, error) {
	if t.Status == ticket.StatusSentToModerator && t.AssignedTo != "" {
		e.observeStep("assign", "skipped")
		h, ok, err := e.dir.Get(ctx, t.AssignedTo)
		if err != nil || !ok {
			L.Warn(ctx, "assigned handler not found in directory", "handler_id", t.AssignedTo)
			return nil, nil
		}
		return h, nil
	}

	h, err := e.assigner.Resolve(ctx, t.RelatedSkills)
	if err != nil {
		if errors.Is(err, assign.ErrNoHandler) {
			e.observeStep("assign", "permanent")
			return nil, Permanent(fmt.Errorf("assign ticket %s: %w", t.ID, err))
		}
		e.observeStep("assign", "failed")
		return nil, fmt.Errorf("assign: %w", err)
	}

	status := ticket.StatusSentToModerator
	upd := ticket.Update{
		Status:     &status,
		AssignedTo: &h.ID,
	}
	if err := e.tickets.Update(ctx, t.ID, upd); err != nil {
		e.observeStep("assign", "failed")
		return nil, fmt.Errorf("persist assignment: %w", err)
	}
	t.Status = status
	t.AssignedTo = h.ID
	e.observeStep("assign", "ok")

	L.Info(ctx, "ticket assigned", "handler_id", h.ID, "role", h.Role)
	return h, nil
}

// notify emails the handler. Delivery is best effort: a failure is logged
// and counted but never fails the run, since the assignment already stuck.
func (e *Engine) notify(ctx context.Context, L log.Logger, t *ticket.Ticket, h *directory.Handler) {
	if h == nil || h.Email == "" {
		e.observeStep("notify", "skipped")
		return
	}

	subject := fmt.Sprintf("Ticket assigned: %s", t.Title)
	body := fmt.Sprintf("A new ticket has been assigned to you.\n\nTitle: %s\nPriority: %s\n\n%s\n",
		t.Title, t.Priority, t.HelpfulNotes)

	if err := e.notifier.Send(ctx, h.Email, subject, body); err != nil {
		L.Error(ctx, err, "assignment notification failed", "handler_id", h.ID)
		e.observeStep("notify", "failed")
		if e.hooks.OnNotifyFailure != nil {
			e.hooks.OnNotifyFailure()
		}
		return
	}
	e.observeStep("notify", "ok")
}

func (e *Engine) observeRun(outcome string, start time.Time) {
	if e.hooks.OnRun != nil {
		e.hooks.OnRun(outcome, time.Since(start).Seconds())
	}
}

func (e *Engine) observeStep(step, outcome string) {
	if e.hooks.OnStep != nil {
		e.hooks.OnStep(step, outcome)
	}
}
