package triage

import "context"

// Store persists triage runs. Implementations must be safe for
// concurrent use; Put overwrites by ID.
type Store interface {
	Get(ctx context.Context, id string) (*Run, bool, error)
	Put(ctx context.Context, run *Run) error
}
