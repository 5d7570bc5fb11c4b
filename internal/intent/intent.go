// Package intent decides whether the latest user utterance is an
// informational question answerable from the document corpus, or a service
// request that needs routing to a specialist. A cheap heuristic fast path
// runs first; the completion service is only consulted when the heuristics
// are inconclusive, and a failure there falls back to the heuristic result.
// Classification never returns an error.
package intent

import (
	"context"
	"regexp"
	"strings"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/counsel/internal/chat"
	"github.com/linnemanlabs/counsel/internal/llm"
)

const fallbackMaxTokens = 16

// greetings that short-circuit to "not a document question".
var greetings = map[string]bool{
	"hi":             true,
	"hello":          true,
	"hey":            true,
	"good morning":   true,
	"good afternoon": true,
	"good evening":   true,
	"thanks":         true,
	"thank you":      true,
}

// questionPatterns are substrings that mark an utterance as a question on
// their own.
var questionPatterns = []string{
	"what is",
	"what are",
	"what does",
	"tell me about",
	"explain",
	"how do i",
	"how does",
	"can you tell me",
	"wondering what",
	"where can i find",
	"is there a policy",
}

// policyNouns mark informational subject matter. A WH-word plus one of
// these classifies as a document question even without a question pattern,
// so "which compliance steps apply?" is caught while "I need an NDA for a
// vendor" is not.
var policyNouns = []string{
	"policy",
	"policies",
	"procedure",
	"process",
	"guideline",
	"compliance",
	"requirement",
	"regulation",
}

var whWord = regexp.MustCompile(`\b(what|how|why|when|where|which|who)\b`)

const fallbackSystemPrompt = `You classify the intent of an employee message sent to the legal team.
Reply with exactly one word:
- "question" if the message asks for information that could be answered from legal policies or documents
- "request" if the message asks for legal work or help with a specific matter
- "greeting" if the message is only a greeting or pleasantry

Examples:
"What is the NDA policy?" -> question
"I need an NDA for a new vendor" -> request
"How long do we retain contracts?" -> question
"Can someone review this sales agreement?" -> request
"Hi there" -> greeting`

// Classifier decides document-question intent for a conversation.
type Classifier struct {
	provider llm.Provider
	logger   log.Logger
}

// New creates a Classifier. The provider may be nil, in which case only
// the fast path runs.
func New(provider llm.Provider, logger log.Logger) *Classifier {
	if logger == nil {
		logger = log.Nop()
	}
	return &Classifier{provider: provider, logger: logger}
}

// IsDocumentQuestion reports whether the latest user utterance should be
// answered from documents rather than routed.
func (c *Classifier) IsDocumentQuestion(ctx context.Context, conv chat.Conversation) bool {
	utterance := strings.ToLower(strings.TrimSpace(conv.LatestUserMessage()))

	if len(utterance) < 5 || greetings[utterance] {
		return false
	}

	if fastPath(utterance) {
		return true
	}

	if c.provider == nil {
		return false
	}

	out, err := c.provider.Complete(ctx, &llm.Request{
		System:      fallbackSystemPrompt,
		Messages:    []llm.Message{{Role: chat.RoleUser, Content: conv.LatestUserMessage()}},
		Temperature: 0,
		MaxTokens:   fallbackMaxTokens,
	})
	if err != nil {
		// The fast-path result stands; classification never fails.
		c.logger.Warn(ctx, "intent fallback unavailable, using heuristic result", "error", err)
		return false
	}

	return strings.Contains(strings.ToLower(out), "question")
}

// fastPath applies the two-tier heuristic to a lower-cased, trimmed
// utterance: any question pattern matches outright; otherwise both a
// WH-word and a policy noun are required.
func fastPath(utterance string) bool {
	for _, p := range questionPatterns {
		if strings.Contains(utterance, p) {
			return true
		}
	}

	if !whWord.MatchString(utterance) {
		return false
	}
	for _, n := range policyNouns {
		if strings.Contains(utterance, n) {
			return true
		}
	}
	return false
}
