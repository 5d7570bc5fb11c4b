// Package memsource provides an in-memory refdata.Source. Suitable for
// dev/testing and for deployments that seed reference data from a file.
package memsource

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/linnemanlabs/counsel/internal/refdata"
	"github.com/linnemanlabs/counsel/internal/roster"
	"github.com/linnemanlabs/counsel/internal/rules"
	"github.com/linnemanlabs/counsel/internal/term"
)

// Source holds a snapshot in memory and hands out copies.
type Source struct {
	mu   sync.RWMutex
	snap refdata.Snapshot
}

// New creates a Source from a snapshot. Rules are sorted ascending by
// priority with a stable sort so equal priorities keep their order.
func New(snap refdata.Snapshot) *Source {
	s := &Source{snap: snap}
	sort.SliceStable(s.snap.Rules, func(i, j int) bool {
		return s.snap.Rules[i].Priority < s.snap.Rules[j].Priority
	})
	return s
}

// LoadFile reads a JSON snapshot file.
func LoadFile(path string) (*Source, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is from trusted config, not user input
	if err != nil {
		return nil, fmt.Errorf("read refdata file: %w", err)
	}
	var snap refdata.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse refdata file: %w", err)
	}
	return New(snap), nil
}

// Replace swaps the held snapshot. In-flight runs keep the copy they
// loaded.
func (s *Source) Replace(snap refdata.Snapshot) {
	next := New(snap)
	s.mu.Lock()
	s.snap = next.snap
	s.mu.Unlock()
}

// Load returns a copy of the current snapshot.
func (s *Source) Load(_ context.Context) (*refdata.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cp := refdata.Snapshot{
		Rules:       append([]rules.Rule(nil), s.snap.Rules...),
		Specialists: append([]roster.Specialist(nil), s.snap.Specialists...),
		Terms:       append([]term.LegalTerm(nil), s.snap.Terms...),
	}
	return &cp, nil
}
