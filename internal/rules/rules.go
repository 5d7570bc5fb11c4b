// Package rules evaluates declarative triage rules against canonical
// request fields. Rules are authored in the admin surface, stored in the
// rule table, and handed to the engine pre-sorted by priority as part of
// the per-run reference-data snapshot; this package never mutates them.
package rules

import "strings"

// Operator is the comparison a condition performs.
type Operator string

const (
	OpEquals   Operator = "equals"
	OpContains Operator = "contains"
)

// Condition compares one canonical field against a value. Values are
// compared case-insensitively after trimming on both sides.
type Condition struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    string   `json:"value"`
}

// Rule is a static assignment: when every condition matches, the request
// goes to Assignee. Lower Priority wins; ties keep table order.
type Rule struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Conditions []Condition `json:"conditions"`
	Assignee   string      `json:"assignee"`
	Priority   int         `json:"priority"`
	Enabled    bool        `json:"enabled"`
}

// FindMatching returns the first enabled rule (in the given order, which
// the supplier sorts ascending by priority) whose conditions all match.
// A rule with zero conditions is treated as misconfigured and never
// matches. No match is a normal terminal state, not an error.
func FindMatching(fields map[string]string, ruleSet []Rule) (*Rule, bool) {
	for i := range ruleSet {
		r := &ruleSet[i]
		if !r.Enabled || len(r.Conditions) == 0 {
			continue
		}
		if matchesAll(fields, r.Conditions) {
			return r, true
		}
	}
	return nil, false
}

// MissingFields determines which single field, if supplied, would most
// likely complete a match. Policy: if a rule already matches, nothing is
// missing. Otherwise a rule is "close" when at least one but not all of
// its condition fields are absent; the first missing field across close
// rules (in rule order) is returned. With no close rule, fall back to the
// first field referenced by any rule that is not already present. The
// result has at most one element: the engine asks for one field at a
// time to keep the conversation natural.
func MissingFields(fields map[string]string, ruleSet []Rule) []string {
	if _, ok := FindMatching(fields, ruleSet); ok {
		return nil
	}

	for i := range ruleSet {
		r := &ruleSet[i]
		if !r.Enabled || len(r.Conditions) == 0 {
			continue
		}
		absent := absentFields(fields, r.Conditions)
		if len(absent) > 0 && len(absent) < countFields(r.Conditions) {
			return absent[:1]
		}
	}

	// No rule is close: ask for the first referenced field we don't have.
	seen := make(map[string]bool)
	for i := range ruleSet {
		r := &ruleSet[i]
		if !r.Enabled {
			continue
		}
		for _, c := range r.Conditions {
			if seen[c.Field] {
				continue
			}
			seen[c.Field] = true
			if v, ok := fields[c.Field]; !ok || strings.TrimSpace(v) == "" {
				return []string{c.Field}
			}
		}
	}
	return nil
}

func matchesAll(fields map[string]string, conds []Condition) bool {
	for _, c := range conds {
		v, ok := fields[c.Field]
		if !ok {
			return false
		}
		got := canon(v)
		want := canon(c.Value)
		switch c.Operator {
		case OpEquals:
			if got != want {
				return false
			}
		case OpContains:
			if !strings.Contains(got, want) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// absentFields lists the distinct condition fields that are missing or
// empty in the request, in condition order.
func absentFields(fields map[string]string, conds []Condition) []string {
	var out []string
	seen := make(map[string]bool)
	for _, c := range conds {
		if seen[c.Field] {
			continue
		}
		seen[c.Field] = true
		if v, ok := fields[c.Field]; !ok || strings.TrimSpace(v) == "" {
			out = append(out, c.Field)
		}
	}
	return out
}

func countFields(conds []Condition) int {
	seen := make(map[string]bool)
	for _, c := range conds {
		seen[c.Field] = true
	}
	return len(seen)
}

func canon(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
