// Package pgstore provides a PostgreSQL implementation of triage.Store.
package pgstore

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/linnemanlabs/counsel/internal/chat"
	"github.com/linnemanlabs/counsel/internal/triage"
)

var tracer = otel.Tracer("github.com/linnemanlabs/counsel/internal/triage/pgstore")

//go:embed schema.sql
var schema string

// Store persists triage runs in PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// New applies the schema and returns a ready Store. The pool is shared
// with the caller and not closed by the store.
func New(ctx context.Context, pool *pgxpool.Pool) (*Store, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("apply triage schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

const runColumns = `id, status, conversation, employee_email, decision,
	failed_stage, error, created_at, completed_at, duration_s`

// Get retrieves a triage run by ID.
func (s *Store) Get(ctx context.Context, id string) (*triage.Run, bool, error) {
	ctx, span := tracer.Start(ctx, "pgstore.Get", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	query := `SELECT ` + runColumns + ` FROM triage_runs WHERE id = $1`
	r, err := scanRun(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, false, err
	}
	if r == nil {
		return nil, false, nil
	}
	return r, true, nil
}

// Put inserts or updates a triage run (upsert on id).
func (s *Store) Put(ctx context.Context, r *triage.Run) error {
	ctx, span := tracer.Start(ctx, "pgstore.Put", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "UPSERT"),
	))
	defer span.End()

	convJSON, err := json.Marshal(r.Conversation)
	if err != nil {
		err = fmt.Errorf("marshal conversation: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	var decisionJSON []byte
	if r.Decision != nil {
		if decisionJSON, err = json.Marshal(r.Decision); err != nil {
			err = fmt.Errorf("marshal decision: %w", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
	}

	var completedAt *time.Time
	if !r.CompletedAt.IsZero() {
		completedAt = &r.CompletedAt
	}

	query := `INSERT INTO triage_runs (
		id, status, conversation, employee_email, decision,
		failed_stage, error, created_at, completed_at, duration_s
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	ON CONFLICT (id) DO UPDATE SET
		status       = EXCLUDED.status,
		conversation = EXCLUDED.conversation,
		decision     = EXCLUDED.decision,
		failed_stage = EXCLUDED.failed_stage,
		error        = EXCLUDED.error,
		completed_at = EXCLUDED.completed_at,
		duration_s   = EXCLUDED.duration_s`

	_, err = s.pool.Exec(ctx, query,
		r.ID, string(r.Status), convJSON, r.EmployeeEmail, decisionJSON,
		r.FailedStage, r.Error, r.CreatedAt, completedAt, r.Duration,
	)
	if err != nil {
		err = fmt.Errorf("upsert run: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// scanRun scans a single row into a triage.Run. Returns (nil, nil) when
// no row is found.
func scanRun(row pgx.Row) (*triage.Run, error) {
	var (
		r            triage.Run
		status       string
		convJSON     []byte
		decisionJSON []byte
		completedAt  *time.Time
	)

	err := row.Scan(
		&r.ID, &status, &convJSON, &r.EmployeeEmail, &decisionJSON,
		&r.FailedStage, &r.Error, &r.CreatedAt, &completedAt, &r.Duration,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan: %w", err)
	}

	r.Status = triage.Status(status)
	if completedAt != nil {
		r.CompletedAt = *completedAt
	}

	var conv chat.Conversation
	if err := json.Unmarshal(convJSON, &conv); err != nil {
		return nil, fmt.Errorf("unmarshal conversation: %w", err)
	}
	r.Conversation = conv

	if len(decisionJSON) > 0 {
		r.Decision = &triage.Decision{}
		if err := json.Unmarshal(decisionJSON, r.Decision); err != nil {
			return nil, fmt.Errorf("unmarshal decision: %w", err)
		}
	}

	return &r, nil
}
