package triage

import (
	"time"

	"github.com/linnemanlabs/counsel/internal/chat"
)

// Status tracks where a triage run is in its lifecycle.
type Status string

const (
	// StatusPending means created, not yet started
	StatusPending Status = "pending"

	// StatusInProgress means currently being processed
	StatusInProgress Status = "in_progress"

	// StatusComplete means finished with a well-formed decision
	StatusComplete Status = "complete"

	// StatusFailed means a stage raised an unexpected error
	StatusFailed Status = "failed"
)

// Stage names the steps of the triage state machine. They appear in
// StageError, metrics labels, and logs.
type Stage string

const (
	StageClassify  Stage = "classifying"
	StageDocument  Stage = "document_path"
	StageExtract   Stage = "extracting"
	StageNormalize Stage = "normalizing"
	StageScore     Stage = "scoring"
	StageRules     Stage = "rule_fallback"
	StageMissing   Stage = "missing_fields"
)

// Outcomes of a completed run, used for metrics and notifications.
const (
	OutcomeAssigned         = "assigned"
	OutcomeDocumentAnswered = "document_answered"
	OutcomeNeedsInfo        = "needs_info"
)

// ExtractedInfo holds the recognized request fields pulled from the
// conversation. Only these fields are ever compared by the rule matcher
// and scorer.
type ExtractedInfo struct {
	RequestType        string `json:"requestType,omitempty"`
	Location           string `json:"location,omitempty"`
	Department         string `json:"department,omitempty"`
	IsDocumentQuestion bool   `json:"isDocumentQuestion,omitempty"`
}

// Fields returns the matchable field map handed to the rule matcher.
// Employee metadata is deliberately absent: it lives on EmployeeMetadata
// and can never collide with a rule's condition field.
func (i ExtractedInfo) Fields() map[string]string {
	m := make(map[string]string, 3)
	if i.RequestType != "" {
		m["requestType"] = i.RequestType
	}
	if i.Location != "" {
		m["location"] = i.Location
	}
	if i.Department != "" {
		m["department"] = i.Department
	}
	return m
}

// EmployeeMetadata is the employee-derived side channel recorded on a
// decision for observability and notification rendering. It is typed
// separately from ExtractedInfo so it cannot leak into matching.
type EmployeeMetadata struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"`
	Email string `json:"email,omitempty"`
}

// FieldMatch records one normalization applied during a run. Advisory
// only: downstream consumers must never let it influence decisions.
type FieldMatch struct {
	Original   string  `json:"original"`
	Matched    string  `json:"matched"`
	Confidence float64 `json:"confidence"`
}

// Decision is the terminal output of one engine run. Exactly one of
// AssignedTo, DocumentAnswer, or a non-empty MissingFields is set, and
// IsComplete is true iff one of the first two holds.
type Decision struct {
	Extracted     ExtractedInfo     `json:"extracted_info"`
	Employee      *EmployeeMetadata `json:"employee,omitempty"`
	AssignedTo    string            `json:"assigned_to,omitempty"`
	IsComplete    bool              `json:"is_complete"`
	NeedsMoreInfo bool              `json:"needs_more_info"`
	MissingFields []string          `json:"missing_fields,omitempty"`
	MatchReason   string            `json:"match_reason,omitempty"`
	MatchScore    int               `json:"match_score,omitempty"`

	DocumentAnswer  string   `json:"document_answer,omitempty"`
	DocumentSources []string `json:"document_sources,omitempty"`

	// Observability only.
	NormalizationMatches map[string]FieldMatch `json:"normalization_matches,omitempty"`
	RulesEvaluated       int                   `json:"rules_evaluated,omitempty"`
}

// Outcome names which of the three terminal outcomes this decision is.
func (d *Decision) Outcome() string {
	switch {
	case d.AssignedTo != "":
		return OutcomeAssigned
	case d.DocumentAnswer != "":
		return OutcomeDocumentAnswered
	default:
		return OutcomeNeedsInfo
	}
}

// Run is one triage run: the submitted conversation, its lifecycle
// status, and the decision once complete.
type Run struct {
	ID            string            `json:"id"`
	Status        Status            `json:"status"`
	Conversation  chat.Conversation `json:"conversation"`
	EmployeeEmail string            `json:"employee_email,omitempty"`
	Decision      *Decision         `json:"decision,omitempty"`
	FailedStage   string            `json:"failed_stage,omitempty"`
	Error         string            `json:"error,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	CompletedAt   time.Time         `json:"completed_at,omitempty"`
	Duration      float64           `json:"duration_seconds,omitempty"`
}
