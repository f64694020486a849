// Package pgdir provides a PostgreSQL implementation of
// directory.Directory.
package pgdir

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/linnemanlabs/helpdesk/internal/directory"
)

var tracer = otel.Tracer("github.com/linnemanlabs/helpdesk/internal/directory/pgdir")

//go:embed schema.sql
var schema string

// Directory reads handlers from PostgreSQL.
type Directory struct {
	pool *pgxpool.Pool
}

// New applies the schema on the given pool and returns a ready Directory.
// The pool remains owned by the caller.
func New(ctx context.Context, pool *pgxpool.Pool) (*Directory, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Directory{pool: pool}, nil
}

// FindHandler returns the lowest-ID handler matching the filter. Ordering
// by id keeps selection deterministic for a given directory state. The
// skill alternation is escaped by directory.SkillPattern before it reaches
// the ~* operator and matches as a case-insensitive substring, the same
// semantics memdir applies in-process.
func (d *Directory) FindHandler(ctx context.Context, f directory.Filter) (*directory.Handler, bool, error) {
	ctx, span := tracer.Start(ctx, "pgdir.FindHandler", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
		attribute.String("helpdesk.handler.role", string(f.Role)),
	))
	defer span.End()

	pattern := directory.SkillPattern(f.Skills)
	query := `SELECT id, email, role, skills FROM handlers
		WHERE role = $1
		  AND ($2 = '' OR EXISTS (SELECT 1 FROM unnest(skills) AS s WHERE s ~* $2))
		ORDER BY id
		LIMIT 1`

	h, err := scanHandlerRow(d.pool.QueryRow(ctx, query, string(f.Role), pattern))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, false, err
	}
	if h == nil {
		return nil, false, nil
	}
	return h, true, nil
}

// Get returns the handler with the given ID.
func (d *Directory) Get(ctx context.Context, id string) (*directory.Handler, bool, error) {
	ctx, span := tracer.Start(ctx, "pgdir.Get", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	query := `SELECT id, email, role, skills FROM handlers WHERE id = $1`
	h, err := scanHandlerRow(d.pool.QueryRow(ctx, query, id))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, false, err
	}
	if h == nil {
		return nil, false, nil
	}
	return h, true, nil
}

func scanHandlerRow(row pgx.Row) (*directory.Handler, error) {
	var (
		h    directory.Handler
		role string
	)
	if err := row.Scan(&h.ID, &h.Email, &role, &h.Skills); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan: %w", err)
	}
	h.Role = directory.Role(role)
	return &h, nil
}
