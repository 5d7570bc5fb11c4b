package triage

import (
	"context"
	"errors"
	"time"

	"github.com/linnemanlabs/go-core/log"
	"github.com/oklog/ulid/v2"

	"github.com/linnemanlabs/counsel/internal/chat"
	"github.com/linnemanlabs/counsel/internal/directory"
	"github.com/linnemanlabs/counsel/internal/refdata"
)

// Notifier posts a completed run to an external channel. Implementations
// must tolerate partial runs; a nil notifier disables notification.
type Notifier interface {
	Notify(ctx context.Context, run *Run)
}

// ErrEmptyConversation is returned by Submit for a conversation with no
// user message to triage.
var ErrEmptyConversation = errors.New("conversation has no user message")

// DefaultRunTimeout bounds a single async triage run.
const DefaultRunTimeout = 2 * time.Minute

// Service is the business boundary for triage operations. Submit is
// asynchronous: it persists a pending run and returns its ID while the
// engine works in the background.
type Service struct {
	store      Store
	engine     *Engine
	source     refdata.Source
	directory  directory.Directory
	notifier   Notifier
	logger     log.Logger
	runTimeout time.Duration
}

// NewService creates a new triage service. The directory and notifier
// are optional.
func NewService(store Store, engine *Engine, source refdata.Source, dir directory.Directory, notifier Notifier, runTimeout time.Duration, logger log.Logger) *Service {
	if runTimeout <= 0 {
		runTimeout = DefaultRunTimeout
	}
	if logger == nil {
		logger = log.Nop()
	}
	return &Service{
		store:      store,
		engine:     engine,
		source:     source,
		directory:  dir,
		notifier:   notifier,
		logger:     logger,
		runTimeout: runTimeout,
	}
}

// Submit accepts a conversation for triage and returns the run ID. The
// employee email is optional; an unknown email degrades to a run without
// employee context rather than an error.
func (s *Service) Submit(ctx context.Context, conv chat.Conversation, employeeEmail string) (string, error) {
	if conv.LatestUserMessage() == "" {
		return "", ErrEmptyConversation
	}

	id := ulid.Make().String()
	run := &Run{
		ID:            id,
		Status:        StatusPending,
		Conversation:  conv,
		EmployeeEmail: employeeEmail,
		CreatedAt:     time.Now(),
	}

	if err := s.store.Put(ctx, run); err != nil {
		return "", err
	}

	// kick off async triage - pass only the ID to avoid sharing the Run pointer.
	go s.runTriage(context.WithoutCancel(ctx), id)

	return id, nil
}

// Get retrieves a triage run by ID.
func (s *Service) Get(ctx context.Context, id string) (*Run, bool, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) runTriage(ctx context.Context, id string) {
	ctx, cancel := context.WithTimeout(ctx, s.runTimeout)
	defer cancel()

	L := s.logger.With("triage_id", id)

	run, ok, err := s.store.Get(ctx, id)
	if err != nil || !ok {
		L.Error(ctx, err, "failed to fetch run for triage")
		return
	}

	run.Status = StatusInProgress
	if err := s.store.Put(ctx, run); err != nil {
		L.Error(ctx, err, "failed to update status to in_progress")
		return
	}

	emp := s.lookupEmployee(ctx, L, run.EmployeeEmail)

	snap, err := s.source.Load(ctx)
	if err != nil {
		s.fail(ctx, L, run, "", err)
		return
	}

	start := time.Now()
	decision, err := s.engine.Run(ctx, run.Conversation, emp, snap)
	if err != nil {
		var se *StageError
		stage := ""
		if errors.As(err, &se) {
			stage = string(se.Stage)
		}
		s.fail(ctx, L, run, stage, err)
		return
	}

	run.Status = StatusComplete
	run.Decision = decision
	run.CompletedAt = time.Now()
	run.Duration = time.Since(start).Seconds()

	if err := s.store.Put(ctx, run); err != nil {
		L.Error(ctx, err, "failed to persist triage run")
		return
	}

	if s.notifier != nil {
		s.notifier.Notify(ctx, run)
	}

	L.Info(ctx, "triage complete",
		"outcome", decision.Outcome(),
		"assigned_to", decision.AssignedTo,
		"duration", run.Duration,
	)
}

func (s *Service) lookupEmployee(ctx context.Context, L log.Logger, email string) *directory.Employee {
	if email == "" || s.directory == nil {
		return nil
	}
	emp, ok, err := s.directory.Lookup(ctx, email)
	if err != nil {
		L.Warn(ctx, "employee lookup failed, continuing without context", "error", err)
		return nil
	}
	if !ok {
		L.Warn(ctx, "employee not found in directory", "email", email)
		return nil
	}
	return emp
}

func (s *Service) fail(ctx context.Context, L log.Logger, run *Run, stage string, cause error) {
	run.Status = StatusFailed
	run.FailedStage = stage
	run.Error = cause.Error()
	run.CompletedAt = time.Now()

	if err := s.store.Put(ctx, run); err != nil {
		L.Error(ctx, err, "failed to persist failed run")
		return
	}
	L.Error(ctx, cause, "triage failed", "stage", stage)
}
