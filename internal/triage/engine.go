package triage

import (
	"context"
	"time"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/counsel/internal/chat"
	"github.com/linnemanlabs/counsel/internal/directory"
	"github.com/linnemanlabs/counsel/internal/llm"
	"github.com/linnemanlabs/counsel/internal/refdata"
	"github.com/linnemanlabs/counsel/internal/rules"
	"github.com/linnemanlabs/counsel/internal/scoring"
	"github.com/linnemanlabs/counsel/internal/term"
)

// IntentClassifier decides whether the conversation is a document
// question. Implementations must never fail; inconclusive means false.
type IntentClassifier interface {
	IsDocumentQuestion(ctx context.Context, conv chat.Conversation) bool
}

// Knowledge runs the document path: search the corpus and compose a
// grounded answer, returning the answer and its source titles.
type Knowledge interface {
	Answer(ctx context.Context, question string, conv chat.Conversation, emp *directory.Employee) (string, []string, error)
}

// EngineHooks are observability callbacks fired at stage boundaries.
// They must not influence control flow; nil hooks are skipped.
type EngineHooks struct {
	OnStage     func(stage Stage, duration float64)
	OnNormalize func(field string, applied bool)
	OnComplete  func(outcome string, duration float64)
}

// EngineConfig tunes the engine. Zero values select the defaults.
type EngineConfig struct {
	Scoring            scoring.Config
	NormalizeThreshold float64

	// Now overrides the clock, for deterministic availability windows in
	// tests.
	Now func() time.Time
}

// Engine is the triage state machine. It holds no per-run state: every
// Run gets its own snapshot and conversation, so concurrent runs need no
// coordination.
type Engine struct {
	provider  llm.Provider
	intent    IntentClassifier
	knowledge Knowledge
	cfg       EngineConfig
	logger    log.Logger
	hooks     EngineHooks
}

// NewEngine creates a triage engine with the given collaborators.
func NewEngine(provider llm.Provider, intent IntentClassifier, knowledge Knowledge, cfg EngineConfig, logger log.Logger, hooks EngineHooks) *Engine {
	if logger == nil {
		logger = log.Nop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Engine{
		provider:  provider,
		intent:    intent,
		knowledge: knowledge,
		cfg:       cfg,
		logger:    logger,
		hooks:     hooks,
	}
}

// Run executes one triage over a conversation. The employee context is
// optional. The snapshot is read-only and private to this run. A run
// either produces a well-formed decision or returns a StageError; it
// never does both.
func (e *Engine) Run(ctx context.Context, conv chat.Conversation, emp *directory.Employee, snap *refdata.Snapshot) (*Decision, error) {
	start := e.cfg.Now()

	L := e.logger.With("messages", len(conv))
	if emp != nil {
		L = L.With("employee", emp.Email)
	}

	// CLASSIFYING: decide document question vs service request. The
	// classifier recovers internally; only cancellation aborts here.
	stageStart := e.cfg.Now()
	isDoc := e.intent.IsDocumentQuestion(ctx, conv)
	e.observeStage(StageClassify, stageStart)
	if err := ctx.Err(); err != nil {
		return nil, stageErr(StageClassify, err)
	}

	if isDoc {
		decision, err := e.runDocumentPath(ctx, conv, emp)
		if err != nil {
			return nil, err
		}
		e.complete(ctx, L, decision, start)
		return decision, nil
	}

	// EXTRACTING: best-effort field extraction, then employee defaults
	// for anything the user did not state. User-stated values win.
	stageStart = e.cfg.Now()
	info, err := e.extract(ctx, conv)
	e.observeStage(StageExtract, stageStart)
	if err != nil {
		return nil, stageErr(StageExtract, err)
	}
	if emp != nil {
		if info.Location == "" {
			info.Location = emp.Location
		}
		if info.Department == "" {
			info.Department = emp.Department
		}
	}

	// NORMALIZING: map raw terms onto the canonical vocabulary. Fields
	// below the confidence threshold keep their raw value.
	stageStart = e.cfg.Now()
	info, matches := e.normalize(info, snap.Terms)
	e.observeStage(StageNormalize, stageStart)

	decision := &Decision{
		Extracted:            info,
		Employee:             metadataFor(emp),
		NormalizationMatches: matches,
	}

	// SCORING: pick the best specialist if one qualifies.
	stageStart = e.cfg.Now()
	sel, qualified := scoring.SelectBest(
		scoring.Request{RequestType: info.RequestType, Location: info.Location, Department: info.Department},
		emp, snap.Specialists, e.cfg.Scoring, e.cfg.Now(),
	)
	e.observeStage(StageScore, stageStart)
	if err := ctx.Err(); err != nil {
		return nil, stageErr(StageScore, err)
	}

	if qualified {
		decision.AssignedTo = sel.Specialist.Email
		decision.MatchScore = sel.Score
		decision.MatchReason = sel.Reason
		decision.IsComplete = true
		e.complete(ctx, L, decision, start)
		return decision, nil
	}

	// RULE_FALLBACK: the older static assignment surface. A rule match
	// carries no score or reason.
	stageStart = e.cfg.Now()
	fields := info.Fields()
	rule, matched := rules.FindMatching(fields, snap.Rules)
	decision.RulesEvaluated = len(snap.Rules)
	e.observeStage(StageRules, stageStart)

	if matched {
		decision.AssignedTo = rule.Assignee
		decision.IsComplete = true
		e.complete(ctx, L, decision, start)
		return decision, nil
	}

	// NEEDS_INFO: ask for at most one more field. An empty result with
	// no assignment is the "escalate manually" terminal state.
	stageStart = e.cfg.Now()
	decision.MissingFields = rules.MissingFields(fields, snap.Rules)
	decision.NeedsMoreInfo = len(decision.MissingFields) > 0
	decision.IsComplete = false
	e.observeStage(StageMissing, stageStart)

	e.complete(ctx, L, decision, start)
	return decision, nil
}

// runDocumentPath delegates search and answer generation. Unlike
// classification and extraction there is no local recovery: a failure
// here is a stage failure.
func (e *Engine) runDocumentPath(ctx context.Context, conv chat.Conversation, emp *directory.Employee) (*Decision, error) {
	stageStart := e.cfg.Now()
	question := conv.LatestUserMessage()

	answer, sources, err := e.knowledge.Answer(ctx, question, conv, emp)
	e.observeStage(StageDocument, stageStart)
	if err != nil {
		return nil, stageErr(StageDocument, err)
	}

	return &Decision{
		Extracted:       ExtractedInfo{IsDocumentQuestion: true},
		Employee:        metadataFor(emp),
		DocumentAnswer:  answer,
		DocumentSources: sources,
		IsComplete:      true,
	}, nil
}

// normalize applies the vocabulary to each recognized field and reports
// which fields changed, for observability only.
func (e *Engine) normalize(info ExtractedInfo, terms []term.LegalTerm) (ExtractedInfo, map[string]FieldMatch) {
	table := term.NewTable(terms, e.cfg.NormalizeThreshold)
	matches := make(map[string]FieldMatch)

	apply := func(field, raw string, category term.Category) string {
		if raw == "" {
			return raw
		}
		m := table.Normalize(raw, category)
		applied := m.Confidence > 0 && m.Canonical != raw
		if applied {
			matches[field] = FieldMatch{Original: raw, Matched: m.Canonical, Confidence: m.Confidence}
		}
		if e.hooks.OnNormalize != nil {
			e.hooks.OnNormalize(field, applied)
		}
		if m.Confidence > 0 {
			return m.Canonical
		}
		return raw
	}

	info.RequestType = apply("requestType", info.RequestType, term.CategoryRequestType)
	info.Location = apply("location", info.Location, term.CategoryLocation)
	info.Department = apply("department", info.Department, term.CategoryDepartment)

	if len(matches) == 0 {
		return info, nil
	}
	return info, matches
}

func (e *Engine) observeStage(stage Stage, start time.Time) {
	if e.hooks.OnStage != nil {
		e.hooks.OnStage(stage, e.cfg.Now().Sub(start).Seconds())
	}
}

func (e *Engine) complete(ctx context.Context, L log.Logger, d *Decision, start time.Time) {
	duration := e.cfg.Now().Sub(start).Seconds()
	if e.hooks.OnComplete != nil {
		e.hooks.OnComplete(d.Outcome(), duration)
	}
	L.Info(ctx, "triage decision",
		"outcome", d.Outcome(),
		"assigned_to", d.AssignedTo,
		"missing_fields", d.MissingFields,
		"duration", duration,
	)
}

func metadataFor(emp *directory.Employee) *EmployeeMetadata {
	if emp == nil {
		return nil
	}
	return &EmployeeMetadata{
		ID:    emp.ID,
		Name:  emp.Name,
		Role:  emp.Role,
		Email: emp.Email,
	}
}
