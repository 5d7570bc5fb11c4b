package triage

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/linnemanlabs/counsel/internal/chat"
	"github.com/linnemanlabs/counsel/internal/llm"
)

const extractMaxTokens = 256

const extractSystemPrompt = `You extract structured fields from an employee's conversation with the
legal team. Return ONLY a JSON object with these keys, omitting any you
cannot determine from the conversation:

{"requestType": "<kind of legal work requested, e.g. Sales Contract, NDA, Employment Agreement>",
 "location": "<country or region the matter concerns>",
 "department": "<the employee's department if stated>"}

Do not invent values. Do not add commentary.`

// extract pulls request fields from the conversation via the completion
// service. Extraction is best effort: a provider error or malformed
// response yields an empty extraction, never a failure. Only context
// cancellation aborts, reported through the returned error.
func (e *Engine) extract(ctx context.Context, conv chat.Conversation) (ExtractedInfo, error) {
	raw, err := e.provider.Complete(ctx, &llm.Request{
		System:      extractSystemPrompt,
		Messages:    []llm.Message{{Role: chat.RoleUser, Content: conv.Transcript()}},
		Temperature: 0,
		MaxTokens:   extractMaxTokens,
	})
	if err != nil {
		if ctx.Err() != nil {
			return ExtractedInfo{}, ctx.Err()
		}
		e.logger.Warn(ctx, "field extraction unavailable, continuing with empty extraction", "error", err)
		return ExtractedInfo{}, nil
	}

	return parseExtraction(raw), nil
}

// parseExtraction decodes the provider output defensively: the JSON
// object is located by substring so surrounding prose is tolerated, and
// anything unparseable degrades to an empty extraction.
func parseExtraction(raw string) ExtractedInfo {
	blob := jsonObject(raw)
	if blob == "" {
		return ExtractedInfo{}
	}

	var out struct {
		RequestType string `json:"requestType"`
		Location    string `json:"location"`
		Department  string `json:"department"`
	}
	if err := json.Unmarshal([]byte(blob), &out); err != nil {
		return ExtractedInfo{}
	}

	return ExtractedInfo{
		RequestType: strings.TrimSpace(out.RequestType),
		Location:    strings.TrimSpace(out.Location),
		Department:  strings.TrimSpace(out.Department),
	}
}

// jsonObject returns the first top-level {...} span in s, or "".
func jsonObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}
