// Package pgstore provides a PostgreSQL implementation of ticket.Store.
package pgstore

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/linnemanlabs/helpdesk/internal/ticket"
)

var tracer = otel.Tracer("github.com/linnemanlabs/helpdesk/internal/ticket/pgstore")

//go:embed schema.sql
var schema string

// Store persists tickets in PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// New applies the schema on the given pool and returns a ready Store.
// The pool remains owned by the caller.
func New(ctx context.Context, pool *pgxpool.Pool) (*Store, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

const ticketColumns = `id, title, description, status, priority, helpful_notes,
	related_skills, assigned_to, created_by, created_at, updated_at`

// Create inserts a new ticket.
func (s *Store) Create(ctx context.Context, t *ticket.Ticket) error {
	ctx, span := tracer.Start(ctx, "pgstore.Create", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "INSERT"),
	))
	defer span.End()

	query := `INSERT INTO tickets (` + ticketColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`

	_, err := s.pool.Exec(ctx, query,
		t.ID, t.Title, t.Description, string(t.Status), string(t.Priority),
		t.HelpfulNotes, skillsOrEmpty(t.RelatedSkills), t.AssignedTo,
		t.CreatedBy, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("insert ticket: %w", err)
	}
	return nil
}

// Get retrieves a ticket by ID.
func (s *Store) Get(ctx context.Context, id string) (*ticket.Ticket, bool, error) {
	ctx, span := tracer.Start(ctx, "pgstore.Get", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`
	t, err := scanTicketRow(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, false, err
	}
	if t == nil {
		return nil, false, nil
	}
	return t, true, nil
}

// List returns tickets matching the filter, newest first.
func (s *Store) List(ctx context.Context, f ticket.ListFilter) ([]*ticket.Ticket, error) {
	ctx, span := tracer.Start(ctx, "pgstore.List", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	query := `SELECT ` + ticketColumns + ` FROM tickets`
	var args []any
	if f.CreatedBy != "" {
		query += ` WHERE created_by = $1`
		args = append(args, f.CreatedBy)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("query tickets: %w", err)
	}
	defer rows.Close()

	var out []*ticket.Ticket
	for rows.Next() {
		t, err := scanTicketRow(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("iterate tickets: %w", err)
	}
	return out, nil
}

// Update applies the non-nil fields of u to the ticket row. Each field is
// written with its absolute target value, so replays are no-ops in effect.
func (s *Store) Update(ctx context.Context, id string, u ticket.Update) error {
	ctx, span := tracer.Start(ctx, "pgstore.Update", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "UPDATE"),
	))
	defer span.End()

	if u.IsZero() {
		return nil
	}

	sets := []string{"updated_at = $2"}
	args := []any{id, time.Now()}
	add := func(col string, val any) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if u.Status != nil {
		add("status", string(*u.Status))
	}
	if u.Priority != nil {
		add("priority", string(*u.Priority))
	}
	if u.HelpfulNotes != nil {
		add("helpful_notes", *u.HelpfulNotes)
	}
	if u.RelatedSkills != nil {
		add("related_skills", skillsOrEmpty(*u.RelatedSkills))
	}
	if u.AssignedTo != nil {
		add("assigned_to", *u.AssignedTo)
	}

	query := `UPDATE tickets SET ` + strings.Join(sets, ", ") + ` WHERE id = $1`
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("update ticket: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ticket.ErrNotFound
	}
	return nil
}

// scanTicketRow scans a single row into a ticket. Returns (nil, nil) when
// no row is found.
func scanTicketRow(row pgx.Row) (*ticket.Ticket, error) {
	var (
		t        ticket.Ticket
		status   string
		priority string
	)
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &status, &priority, &t.HelpfulNotes,
		&t.RelatedSkills, &t.AssignedTo, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan: %w", err)
	}
	t.Status = ticket.Status(status)
	t.Priority = ticket.Priority(priority)
	return &t, nil
}

// skillsOrEmpty keeps the text[] column NOT NULL-friendly.
func skillsOrEmpty(skills []string) []string {
	if skills == nil {
		return []string{}
	}
	return skills
}
