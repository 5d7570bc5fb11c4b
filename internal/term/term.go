// Package term maps noisy user-supplied terms to the canonical legal
// vocabulary. Matching is string-similarity over a read-only synonym table;
// the table is part of the per-run reference-data snapshot and is never
// mutated by a lookup.
package term

import "strings"

// Category identifies which vocabulary a term belongs to.
type Category string

const (
	CategoryRequestType Category = "request_type"
	CategoryLocation    Category = "location"
	CategoryDepartment  Category = "department"
)

// DefaultThreshold is the minimum confidence at which a normalization is
// accepted.
const DefaultThreshold = 0.7

// LegalTerm is one canonical vocabulary entry with its synonyms.
type LegalTerm struct {
	Canonical string   `json:"canonical"`
	Category  Category `json:"category"`
	Synonyms  []string `json:"synonyms"`
}

// Match is the outcome of a normalization attempt. Confidence 0 means no
// normalization was applied and Canonical echoes the raw input.
type Match struct {
	Canonical  string  `json:"canonical"`
	Confidence float64 `json:"confidence"`
}

// Table is a read-only synonym lookup keyed by category.
type Table struct {
	byCategory map[Category][]LegalTerm
	threshold  float64
}

// NewTable builds a lookup table from vocabulary entries. A threshold <= 0
// selects DefaultThreshold.
func NewTable(terms []LegalTerm, threshold float64) *Table {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	t := &Table{
		byCategory: make(map[Category][]LegalTerm),
		threshold:  threshold,
	}
	for _, lt := range terms {
		t.byCategory[lt.Category] = append(t.byCategory[lt.Category], lt)
	}
	return t
}

// Normalize maps a raw value to its canonical form within a category.
// An exact case-insensitive match against a canonical term or synonym
// short-circuits at confidence 1.0. Otherwise the best similarity seen
// across all terms and synonyms wins, but only if it reaches the table's
// threshold; below threshold the raw value is returned unchanged with
// confidence 0, which callers must treat as "no normalization applied".
// A nil table degrades the same way. Never returns an error.
func (t *Table) Normalize(raw string, category Category) Match {
	cleaned := strings.ToLower(strings.TrimSpace(raw))
	if t == nil || cleaned == "" {
		return Match{Canonical: raw, Confidence: 0}
	}

	best := Match{Canonical: raw, Confidence: 0}
	for _, lt := range t.byCategory[category] {
		candidates := append([]string{lt.Canonical}, lt.Synonyms...)
		for _, cand := range candidates {
			c := strings.ToLower(strings.TrimSpace(cand))
			if c == cleaned {
				return Match{Canonical: lt.Canonical, Confidence: 1.0}
			}
			if s := similarity(cleaned, c); s > best.Confidence {
				best = Match{Canonical: lt.Canonical, Confidence: s}
			}
		}
	}

	if best.Confidence < t.threshold {
		return Match{Canonical: raw, Confidence: 0}
	}
	return best
}

// similarity is normalized edit distance: 1 - lev(a,b)/max(len(a),len(b)).
// Two empty strings compare as identical.
func similarity(a, b string) float64 {
	la, lb := len(a), len(b)
	if la == 0 && lb == 0 {
		return 1
	}
	maxLen := la
	if lb > maxLen {
		maxLen = lb
	}
	return 1 - float64(levenshtein(a, b))/float64(maxLen)
}

// levenshtein computes edit distance with a two-row DP over bytes.
// Inputs are already lower-cased and trimmed by the caller.
func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			min := del
			if ins < min {
				min = ins
			}
			if sub < min {
				min = sub
			}
			curr[j] = min
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
