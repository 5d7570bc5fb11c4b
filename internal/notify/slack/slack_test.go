package slack

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/counsel/internal/triage"
)

func completedRun() *triage.Run {
	return &triage.Run{
		ID:            "01RUN",
		Status:        triage.StatusComplete,
		EmployeeEmail: "dana@example.com",
		Decision: &triage.Decision{
			Extracted:   triage.ExtractedInfo{RequestType: "Sales Contract", Location: "Australia"},
			AssignedTo:  "mira@example.com",
			IsComplete:  true,
			MatchScore:  111,
			MatchReason: "available this week, specialty match, location match",
		},
		CreatedAt:   time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		CompletedAt: time.Date(2026, 3, 2, 9, 0, 2, 0, time.UTC),
		Duration:    2.0,
	}
}

func capturePayload(t *testing.T, run *triage.Run) string {
	t.Helper()

	var payload string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		payload = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := New(srv.URL, log.Nop())
	n.Notify(context.Background(), run)
	return payload
}

func TestNotify_AssignedRun(t *testing.T) {
	t.Parallel()

	payload := capturePayload(t, completedRun())

	var msg map[string]any
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if _, ok := msg["blocks"]; !ok {
		t.Fatal("payload missing blocks")
	}
	for _, want := range []string{
		"Request Assigned",
		"mira@example.com",
		"dana@example.com",
		"available this week, specialty match, location match",
		"counsel • triage 01RUN",
		"2026-03-02 09:00 UTC",
	} {
		if !strings.Contains(payload, want) {
			t.Errorf("payload missing %q", want)
		}
	}
}

func TestNotify_DocumentAnswered(t *testing.T) {
	t.Parallel()

	run := completedRun()
	run.Decision = &triage.Decision{
		Extracted:       triage.ExtractedInfo{IsDocumentQuestion: true},
		IsComplete:      true,
		DocumentAnswer:  "The NDA policy requires sign-off from legal.",
		DocumentSources: []string{"NDA Policy", "Signing Authority Matrix"},
	}

	payload := capturePayload(t, run)
	for _, want := range []string{
		"Question Answered",
		"The NDA policy requires sign-off from legal.",
		"Sources: NDA Policy, Signing Authority Matrix",
	} {
		if !strings.Contains(payload, want) {
			t.Errorf("payload missing %q", want)
		}
	}
}

func TestNotify_NeedsInfo(t *testing.T) {
	t.Parallel()

	run := completedRun()
	run.Decision = &triage.Decision{
		Extracted:     triage.ExtractedInfo{RequestType: "NDA"},
		NeedsMoreInfo: true,
		MissingFields: []string{"location"},
	}

	payload := capturePayload(t, run)
	if !strings.Contains(payload, "More Info Needed") {
		t.Error("payload missing needs-info header")
	}
	if !strings.Contains(payload, "location") {
		t.Error("payload missing the missing field")
	}
}

func TestNotify_FailedRun(t *testing.T) {
	t.Parallel()

	run := &triage.Run{
		ID:        "01FAIL",
		Status:    triage.StatusFailed,
		Error:     "search unreachable",
		CreatedAt: time.Now(),
	}

	payload := capturePayload(t, run)
	if !strings.Contains(payload, "Triage Failed") {
		t.Error("payload missing failure header")
	}
	if !strings.Contains(payload, "search unreachable") {
		t.Error("payload missing error text")
	}
}

func TestNotify_NoWebhookIsNoop(t *testing.T) {
	t.Parallel()

	n := New("", log.Nop())
	// Must not panic or attempt a network call.
	n.Notify(context.Background(), completedRun())
}

func TestNotify_ServerErrorLogged(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "channel_not_found", http.StatusNotFound)
	}))
	defer srv.Close()

	n := New(srv.URL, log.Nop())
	// Failure is swallowed; the caller's run must not be affected.
	n.Notify(context.Background(), completedRun())
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate(short) = %q", got)
	}
	long := strings.Repeat("a", 100)
	got := truncate(long, 50)
	if len(got) != 50 || !strings.HasSuffix(got, "...") {
		t.Errorf("truncate long = %q (len %d)", got, len(got))
	}
}
