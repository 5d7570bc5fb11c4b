package knowledge

import (
	"context"
	"fmt"
	"strings"

	"github.com/linnemanlabs/counsel/internal/chat"
	"github.com/linnemanlabs/counsel/internal/directory"
	"github.com/linnemanlabs/counsel/internal/llm"
)

const (
	answerMaxTokens = 1024
	defaultTopK     = 4
)

// Searcher is the search half of the document path; Client implements it.
type Searcher interface {
	Search(ctx context.Context, query string, topK int) ([]Document, error)
}

const answerSystemPrompt = `You are the legal team's assistant. Answer the employee's question using
ONLY the provided document excerpts. Cite the document title when you rely
on it. If the excerpts do not contain the answer, say so plainly and
suggest reaching out to the legal team instead of guessing.`

// Service runs the document path: search the corpus, then compose a
// grounded answer for the question.
type Service struct {
	searcher Searcher
	provider llm.Provider
	topK     int
}

// NewService creates an answer service. topK <= 0 selects the default.
func NewService(searcher Searcher, provider llm.Provider, topK int) *Service {
	if topK <= 0 {
		topK = defaultTopK
	}
	return &Service{searcher: searcher, provider: provider, topK: topK}
}

// Answer searches the corpus for the question and generates a grounded
// answer, returning the answer text and the source document titles.
func (s *Service) Answer(ctx context.Context, question string, conv chat.Conversation, emp *directory.Employee) (string, []string, error) {
	docs, err := s.searcher.Search(ctx, question, s.topK)
	if err != nil {
		return "", nil, fmt.Errorf("document search: %w", err)
	}

	answer, err := s.provider.Complete(ctx, &llm.Request{
		System:      answerSystemPrompt,
		Messages:    []llm.Message{{Role: chat.RoleUser, Content: buildAnswerPrompt(question, docs, conv, emp)}},
		Temperature: 0,
		MaxTokens:   answerMaxTokens,
	})
	if err != nil {
		return "", nil, fmt.Errorf("answer generation: %w", err)
	}

	sources := make([]string, 0, len(docs))
	for _, d := range docs {
		sources = append(sources, d.Title)
	}
	return answer, sources, nil
}

func buildAnswerPrompt(question string, docs []Document, conv chat.Conversation, emp *directory.Employee) string {
	var b strings.Builder

	b.WriteString("Question: ")
	b.WriteString(question)
	b.WriteString("\n\n")

	if emp != nil {
		fmt.Fprintf(&b, "Asked by: %s (%s, %s)\n\n", emp.Name, emp.Role, emp.Department)
	}

	if len(conv) > 1 {
		b.WriteString("Conversation so far:\n")
		b.WriteString(conv.Transcript())
		b.WriteString("\n\n")
	}

	if len(docs) == 0 {
		b.WriteString("No relevant documents were found.\n")
		return b.String()
	}

	b.WriteString("Document excerpts:\n")
	for i, d := range docs {
		fmt.Fprintf(&b, "\n[%d] %s (%s)\n%s\n", i+1, d.Title, d.Category, d.Content)
	}
	return b.String()
}
