package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/linnemanlabs/go-core/log"
)

const maxAttempts = 3

// ServiceHooks observe event intake. Outcome is "accepted" or "rejected".
type ServiceHooks struct {
	OnEvent func(outcome string)
}

// Service is the business boundary for workflow runs: it validates trigger
// events and dispatches engine runs asynchronously with bounded retry.
type Service struct {
	engine *Engine
	logger log.Logger
	hooks  ServiceHooks

	// retryDelay is shortened by tests.
	retryDelay time.Duration
}

// NewService creates a workflow service around the given engine.
func NewService(engine *Engine, logger log.Logger, hooks ServiceHooks) *Service {
	if logger == nil {
		logger = log.Nop()
	}
	return &Service{
		engine:     engine,
		logger:     logger,
		hooks:      hooks,
		retryDelay: time.Second,
	}
}

// HandleEvent accepts a trigger event and starts the run in the
// background. Validation errors are returned to the caller; run failures
// are handled by the retry loop and surface only in logs and metrics.
func (s *Service) HandleEvent(ctx context.Context, ev Event) error {
	if ev.Name != EventTicketCreated {
		s.observeEvent("rejected")
		return fmt.Errorf("unsupported event %q", ev.Name)
	}
	if ev.Data.TicketID == "" {
		s.observeEvent("rejected")
		return fmt.Errorf("event %s: missing ticket id", ev.Name)
	}
	s.observeEvent("accepted")

	// detach from the request context so an HTTP client disconnect does
	// not abort the run
	go s.run(context.WithoutCancel(ctx), ev.Data.TicketID)
	return nil
}

func (s *Service) run(ctx context.Context, ticketID string) {
	L := s.logger.With("ticket_id", ticketID)

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := s.engine.Run(ctx, ticketID)
		if err == nil {
			return
		}
		if IsPermanent(err) {
			L.Warn(ctx, "run failed permanently, not retrying", "attempt", attempt)
			return
		}
		if attempt == maxAttempts {
			L.Error(ctx, err, "run failed after final attempt", "attempts", attempt)
			return
		}

		L.Warn(ctx, "run failed, retrying",
			"attempt", attempt,
			"error", err.Error(),
		)
		select {
		case <-time.After(s.retryDelay):
		case <-ctx.Done():
			return
		}
	}
}

func (s *Service) observeEvent(outcome string) {
	if s.hooks.OnEvent != nil {
		s.hooks.OnEvent(outcome)
	}
}
