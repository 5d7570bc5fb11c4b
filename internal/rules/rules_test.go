package rules

import "testing"

func salesRules() []Rule {
	return []Rule{
		{
			ID:       "r-1",
			Name:     "Sales contracts in Australia",
			Priority: 1,
			Enabled:  true,
			Conditions: []Condition{
				{Field: "requestType", Operator: OpEquals, Value: "Sales Contract"},
				{Field: "location", Operator: OpEquals, Value: "Australia"},
			},
			Assignee: "john@example.com",
		},
		{
			ID:       "r-2",
			Name:     "All employment matters",
			Priority: 2,
			Enabled:  true,
			Conditions: []Condition{
				{Field: "requestType", Operator: OpContains, Value: "employment"},
			},
			Assignee: "mary@example.com",
		},
	}
}

func TestFindMatching_FullMatch(t *testing.T) {
	t.Parallel()

	fields := map[string]string{
		"requestType": "Sales Contract",
		"location":    "Australia",
	}

	r, ok := FindMatching(fields, salesRules())
	if !ok {
		t.Fatal("expected a match")
	}
	if r.ID != "r-1" {
		t.Errorf("rule = %q, want r-1", r.ID)
	}
	if r.Assignee != "john@example.com" {
		t.Errorf("assignee = %q, want john@example.com", r.Assignee)
	}
}

func TestFindMatching_CaseAndWhitespaceInsensitive(t *testing.T) {
	t.Parallel()

	fields := map[string]string{
		"requestType": "  sales contract ",
		"location":    "AUSTRALIA",
	}

	if _, ok := FindMatching(fields, salesRules()); !ok {
		t.Fatal("expected a match despite case and whitespace differences")
	}
}

func TestFindMatching_PartialIsNoMatch(t *testing.T) {
	t.Parallel()

	fields := map[string]string{"requestType": "Sales Contract"}

	if _, ok := FindMatching(fields, salesRules()); ok {
		t.Fatal("expected no match when a condition field is absent")
	}
}

func TestFindMatching_Contains(t *testing.T) {
	t.Parallel()

	fields := map[string]string{"requestType": "Employment Agreement"}

	r, ok := FindMatching(fields, salesRules())
	if !ok {
		t.Fatal("expected contains match")
	}
	if r.ID != "r-2" {
		t.Errorf("rule = %q, want r-2", r.ID)
	}
}

func TestFindMatching_SkipsDisabled(t *testing.T) {
	t.Parallel()

	rs := salesRules()
	rs[0].Enabled = false

	fields := map[string]string{
		"requestType": "Sales Contract",
		"location":    "Australia",
	}

	if _, ok := FindMatching(fields, rs); ok {
		t.Fatal("expected disabled rule to be skipped")
	}
}

func TestFindMatching_ZeroConditionsNeverMatches(t *testing.T) {
	t.Parallel()

	rs := []Rule{{ID: "r-empty", Priority: 0, Enabled: true, Assignee: "x@example.com"}}

	if _, ok := FindMatching(map[string]string{"requestType": "anything"}, rs); ok {
		t.Fatal("zero-condition rule must never match")
	}
}

func TestFindMatching_PriorityOrderFirstWins(t *testing.T) {
	t.Parallel()

	rs := []Rule{
		{
			ID: "r-low", Priority: 1, Enabled: true, Assignee: "first@example.com",
			Conditions: []Condition{{Field: "requestType", Operator: OpContains, Value: "contract"}},
		},
		{
			ID: "r-high", Priority: 5, Enabled: true, Assignee: "second@example.com",
			Conditions: []Condition{{Field: "requestType", Operator: OpContains, Value: "contract"}},
		},
	}

	r, ok := FindMatching(map[string]string{"requestType": "Sales Contract"}, rs)
	if !ok {
		t.Fatal("expected a match")
	}
	if r.ID != "r-low" {
		t.Errorf("rule = %q, want r-low (first in priority order)", r.ID)
	}
}

func TestMissingFields_CloseRule(t *testing.T) {
	t.Parallel()

	fields := map[string]string{"requestType": "Sales Contract"}

	got := MissingFields(fields, salesRules())
	if len(got) != 1 || got[0] != "location" {
		t.Errorf("MissingFields = %v, want [location]", got)
	}
}

func TestMissingFields_EmptyWhenRuleMatches(t *testing.T) {
	t.Parallel()

	fields := map[string]string{
		"requestType": "Sales Contract",
		"location":    "Australia",
	}

	if got := MissingFields(fields, salesRules()); len(got) != 0 {
		t.Errorf("MissingFields = %v, want empty", got)
	}
}

func TestMissingFields_OneAtATime(t *testing.T) {
	t.Parallel()

	rs := []Rule{{
		ID: "r-3", Priority: 1, Enabled: true, Assignee: "z@example.com",
		Conditions: []Condition{
			{Field: "requestType", Operator: OpEquals, Value: "IP Filing"},
			{Field: "location", Operator: OpEquals, Value: "Germany"},
			{Field: "department", Operator: OpEquals, Value: "Research"},
		},
	}}

	// Two fields absent; the policy still asks for exactly one.
	got := MissingFields(map[string]string{"requestType": "IP Filing"}, rs)
	if len(got) != 1 {
		t.Fatalf("MissingFields = %v, want exactly one field", got)
	}
	if got[0] != "location" {
		t.Errorf("field = %q, want location (first absent in condition order)", got[0])
	}
}

func TestMissingFields_FallbackWhenNoCloseRule(t *testing.T) {
	t.Parallel()

	// Nothing extracted at all: no rule is close, fall back to the first
	// field any rule references.
	got := MissingFields(map[string]string{}, salesRules())
	if len(got) != 1 || got[0] != "requestType" {
		t.Errorf("MissingFields = %v, want [requestType]", got)
	}
}

func TestMissingFields_NoRules(t *testing.T) {
	t.Parallel()

	if got := MissingFields(map[string]string{}, nil); got != nil {
		t.Errorf("MissingFields = %v, want nil", got)
	}
}
