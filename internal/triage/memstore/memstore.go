// Package memstore provides an in-memory implementation of triage.Store.
package memstore

import (
	"context"
	"sync"

	"github.com/linnemanlabs/counsel/internal/triage"
)

// Store holds triage runs in memory. Suitable for dev/testing.
type Store struct {
	mu   sync.RWMutex
	runs map[string]*triage.Run // run ID -> run
}

// New initializes a new in-memory Store.
func New() *Store {
	return &Store{runs: make(map[string]*triage.Run)}
}

// Get retrieves a triage run by its ID. Returns a copy.
func (s *Store) Get(_ context.Context, id string) (*triage.Run, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.runs[id]
	if !ok {
		return nil, false, nil
	}
	cp := *r
	return &cp, true, nil
}

// Put stores a copy of the triage run.
func (s *Store) Put(_ context.Context, r *triage.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.runs[r.ID] = &cp
	return nil
}
