// Package refdata supplies the read-only reference data a triage run
// consumes: the rule list, the specialist roster, and the legal vocabulary.
// A Source loads a complete Snapshot before each run, so an edit made
// mid-run never affects an in-flight triage.
package refdata

import (
	"context"

	"github.com/linnemanlabs/counsel/internal/roster"
	"github.com/linnemanlabs/counsel/internal/rules"
	"github.com/linnemanlabs/counsel/internal/term"
)

// Snapshot is one consistent view of the reference data. Rules are sorted
// ascending by priority, ties in table order.
type Snapshot struct {
	Rules       []rules.Rule      `json:"rules"`
	Specialists []roster.Specialist `json:"specialists"`
	Terms       []term.LegalTerm  `json:"terms"`
}

// Source loads reference-data snapshots.
type Source interface {
	Load(ctx context.Context) (*Snapshot, error)
}
