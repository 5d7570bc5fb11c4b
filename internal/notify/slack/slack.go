// Package slack sends triage notifications to Slack via incoming webhooks.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/counsel/internal/triage"
)

const (
	maxAnswerLen = 3000
	httpTimeout  = 10 * time.Second
)

// Notifier posts completed triage runs to a Slack webhook.
type Notifier struct {
	webhookURL string
	client     *http.Client
	logger     log.Logger
}

// New creates a new Slack notifier. If webhookURL is empty, Notify is a no-op.
func New(webhookURL string, logger log.Logger) *Notifier {
	if logger == nil {
		logger = log.Nop()
	}
	return &Notifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: httpTimeout},
		logger:     logger,
	}
}

// Notify posts the run to the configured webhook. Delivery failures are
// logged, never propagated: notification is best effort and must not
// affect the run's stored outcome.
func (n *Notifier) Notify(ctx context.Context, run *triage.Run) {
	if err := n.send(ctx, run); err != nil {
		n.logger.Error(ctx, err, "slack notification failed", "triage_id", run.ID)
	}
}

func (n *Notifier) send(ctx context.Context, run *triage.Run) error {
	if n.webhookURL == "" {
		return nil
	}

	body, err := json.Marshal(buildMessage(run))
	if err != nil {
		return fmt.Errorf("slack: marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req) //nolint:gosec // G704: webhookURL is from trusted config, not user input
	if err != nil {
		return fmt.Errorf("slack: post webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("slack: webhook returned %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

func buildMessage(run *triage.Run) map[string]any {
	return map[string]any{
		"blocks": []map[string]any{
			headerBlock(run),
			{"type": "divider"},
			fieldsBlock(run),
			{"type": "divider"},
			bodyBlock(run),
			{"type": "divider"},
			contextBlock(run),
		},
	}
}

func headerBlock(run *triage.Run) map[string]any {
	return map[string]any{
		"type": "header",
		"text": map[string]any{
			"type": "plain_text",
			"text": fmt.Sprintf("%s %s", outcomeEmoji(run), headerTitle(run)),
		},
	}
}

func headerTitle(run *triage.Run) string {
	if run.Status == triage.StatusFailed || run.Decision == nil {
		return "Triage Failed"
	}
	switch run.Decision.Outcome() {
	case triage.OutcomeAssigned:
		return "Request Assigned"
	case triage.OutcomeDocumentAnswered:
		return "Question Answered"
	default:
		return "More Info Needed"
	}
}

func fieldsBlock(run *triage.Run) map[string]any {
	fields := []map[string]any{
		{"type": "mrkdwn", "text": fmt.Sprintf("*Status:* %s", run.Status)},
		{"type": "mrkdwn", "text": fmt.Sprintf("*Duration:* %.1fs", run.Duration)},
	}

	if run.EmployeeEmail != "" {
		fields = append(fields, map[string]any{
			"type": "mrkdwn", "text": fmt.Sprintf("*Employee:* %s", run.EmployeeEmail),
		})
	}

	if d := run.Decision; d != nil {
		if d.Extracted.RequestType != "" {
			fields = append(fields, map[string]any{
				"type": "mrkdwn", "text": fmt.Sprintf("*Request:* %s", d.Extracted.RequestType),
			})
		}
		if d.AssignedTo != "" {
			fields = append(fields, map[string]any{
				"type": "mrkdwn", "text": fmt.Sprintf("*Assigned to:* %s", d.AssignedTo),
			})
		}
		if d.MatchScore > 0 {
			fields = append(fields, map[string]any{
				"type": "mrkdwn", "text": fmt.Sprintf("*Match score:* %d", d.MatchScore),
			})
		}
	}

	return map[string]any{
		"type":   "section",
		"fields": fields,
	}
}

func bodyBlock(run *triage.Run) map[string]any {
	text := bodyText(run)
	return map[string]any{
		"type": "section",
		"text": map[string]any{
			"type": "mrkdwn",
			"text": text,
		},
	}
}

func bodyText(run *triage.Run) string {
	if run.Status == triage.StatusFailed || run.Decision == nil {
		return fmt.Sprintf("*Error*\n\n%s", run.Error)
	}

	d := run.Decision
	switch d.Outcome() {
	case triage.OutcomeAssigned:
		if d.MatchReason != "" {
			return fmt.Sprintf("*Match reason*\n\n%s", d.MatchReason)
		}
		return "_Assigned by routing rule._"
	case triage.OutcomeDocumentAnswered:
		text := fmt.Sprintf("*Answer*\n\n%s", truncate(d.DocumentAnswer, maxAnswerLen))
		if len(d.DocumentSources) > 0 {
			text += fmt.Sprintf("\n\n_Sources: %s_", strings.Join(d.DocumentSources, ", "))
		}
		return text
	default:
		if len(d.MissingFields) > 0 {
			return fmt.Sprintf("*Waiting on*\n\n%s", strings.Join(d.MissingFields, ", "))
		}
		return "_No routing match; escalate manually._"
	}
}

func contextBlock(run *triage.Run) map[string]any {
	ts := run.CompletedAt
	if ts.IsZero() {
		ts = run.CreatedAt
	}

	return map[string]any{
		"type": "context",
		"elements": []map[string]any{
			{
				"type": "mrkdwn",
				"text": fmt.Sprintf("counsel • triage %s • %s", run.ID, ts.UTC().Format("2006-01-02 15:04 UTC")),
			},
		},
	}
}

func outcomeEmoji(run *triage.Run) string {
	if run.Status == triage.StatusFailed || run.Decision == nil {
		return "\U0001f534" // red circle
	}
	switch run.Decision.Outcome() {
	case triage.OutcomeAssigned, triage.OutcomeDocumentAnswered:
		return "\U0001f7e2" // green circle
	default:
		return "\U0001f7e1" // yellow circle
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit-3] + "..."
}
