// Package pgsource provides a PostgreSQL implementation of refdata.Source.
// Each Load reads the rule table, roster, and vocabulary in one pass so a
// run sees a consistent snapshot.
package pgsource

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/linnemanlabs/counsel/internal/refdata"
	"github.com/linnemanlabs/counsel/internal/roster"
	"github.com/linnemanlabs/counsel/internal/rules"
	"github.com/linnemanlabs/counsel/internal/term"
)

var tracer = otel.Tracer("github.com/linnemanlabs/counsel/internal/refdata/pgsource")

//go:embed schema.sql
var schema string

// Source reads reference data from PostgreSQL.
type Source struct {
	pool *pgxpool.Pool
}

// New applies the reference-data schema and returns a ready Source.
func New(ctx context.Context, pool *pgxpool.Pool) (*Source, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("apply refdata schema: %w", err)
	}
	return &Source{pool: pool}, nil
}

// Load reads a full snapshot. Rules come back ordered by priority with
// id as the tie-breaker, which fixes the table order the matcher relies on.
func (s *Source) Load(ctx context.Context) (*refdata.Snapshot, error) {
	ctx, span := tracer.Start(ctx, "pgsource.Load", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	snap := &refdata.Snapshot{}

	var err error
	if snap.Rules, err = s.loadRules(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if snap.Specialists, err = s.loadSpecialists(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if snap.Terms, err = s.loadTerms(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("counsel.refdata.rules", len(snap.Rules)),
		attribute.Int("counsel.refdata.specialists", len(snap.Specialists)),
		attribute.Int("counsel.refdata.terms", len(snap.Terms)),
	)
	return snap, nil
}

func (s *Source) loadRules(ctx context.Context) ([]rules.Rule, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, conditions, assignee, priority, enabled
		 FROM triage_rules ORDER BY priority, id`)
	if err != nil {
		return nil, fmt.Errorf("query rules: %w", err)
	}
	defer rows.Close()

	var out []rules.Rule
	for rows.Next() {
		var (
			r         rules.Rule
			condsJSON []byte
		)
		if err := rows.Scan(&r.ID, &r.Name, &condsJSON, &r.Assignee, &r.Priority, &r.Enabled); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		if err := json.Unmarshal(condsJSON, &r.Conditions); err != nil {
			return nil, fmt.Errorf("unmarshal conditions for rule %s: %w", r.ID, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rules: %w", err)
	}
	return out, nil
}

func (s *Source) loadSpecialists(ctx context.Context) ([]roster.Specialist, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, email, name, specialties, locations, departments, tags, availability
		 FROM specialists ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query specialists: %w", err)
	}
	defer rows.Close()

	var out []roster.Specialist
	for rows.Next() {
		var (
			sp        roster.Specialist
			availJSON []byte
		)
		if err := rows.Scan(&sp.ID, &sp.Email, &sp.Name, &sp.Specialties, &sp.Locations, &sp.Departments, &sp.Tags, &availJSON); err != nil {
			return nil, fmt.Errorf("scan specialist: %w", err)
		}
		if len(availJSON) > 0 {
			if err := json.Unmarshal(availJSON, &sp.Availability); err != nil {
				return nil, fmt.Errorf("unmarshal availability for specialist %s: %w", sp.ID, err)
			}
		}
		out = append(out, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate specialists: %w", err)
	}
	return out, nil
}

func (s *Source) loadTerms(ctx context.Context) ([]term.LegalTerm, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT canonical, category, synonyms FROM legal_terms ORDER BY category, canonical`)
	if err != nil {
		return nil, fmt.Errorf("query terms: %w", err)
	}
	defer rows.Close()

	var out []term.LegalTerm
	for rows.Next() {
		var lt term.LegalTerm
		if err := rows.Scan(&lt.Canonical, &lt.Category, &lt.Synonyms); err != nil {
			return nil, fmt.Errorf("scan term: %w", err)
		}
		out = append(out, lt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate terms: %w", err)
	}
	return out, nil
}
