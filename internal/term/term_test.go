package term

import "testing"

func testTable() *Table {
	return NewTable([]LegalTerm{
		{Canonical: "United States", Category: CategoryLocation, Synonyms: []string{"US", "USA", "America"}},
		{Canonical: "Australia", Category: CategoryLocation, Synonyms: []string{"Aus", "AU"}},
		{Canonical: "Sales Contract", Category: CategoryRequestType, Synonyms: []string{"sales agreement", "sale contract"}},
		{Canonical: "NDA", Category: CategoryRequestType, Synonyms: []string{"non-disclosure agreement", "confidentiality agreement"}},
		{Canonical: "Engineering", Category: CategoryDepartment, Synonyms: []string{"eng", "R&D"}},
	}, 0)
}

func TestNormalize_ExactSynonym(t *testing.T) {
	t.Parallel()

	m := testTable().Normalize("US", CategoryLocation)
	if m.Canonical != "United States" {
		t.Errorf("canonical = %q, want %q", m.Canonical, "United States")
	}
	if m.Confidence != 1.0 {
		t.Errorf("confidence = %v, want 1.0", m.Confidence)
	}
}

func TestNormalize_ExactCanonicalCaseInsensitive(t *testing.T) {
	t.Parallel()

	m := testTable().Normalize("  australia ", CategoryLocation)
	if m.Canonical != "Australia" {
		t.Errorf("canonical = %q, want %q", m.Canonical, "Australia")
	}
	if m.Confidence != 1.0 {
		t.Errorf("confidence = %v, want 1.0", m.Confidence)
	}
}

func TestNormalize_FuzzyMatch(t *testing.T) {
	t.Parallel()

	// One edit away from "Australia": confidence 1 - 1/9.
	m := testTable().Normalize("Astralia", CategoryLocation)
	if m.Canonical != "Australia" {
		t.Errorf("canonical = %q, want %q", m.Canonical, "Australia")
	}
	if m.Confidence >= 1.0 || m.Confidence < 0.7 {
		t.Errorf("confidence = %v, want in [0.7, 1.0)", m.Confidence)
	}
}

func TestNormalize_BelowThreshold(t *testing.T) {
	t.Parallel()

	m := testTable().Normalize("xyz123", CategoryLocation)
	if m.Canonical != "xyz123" {
		t.Errorf("canonical = %q, want raw input back", m.Canonical)
	}
	if m.Confidence != 0 {
		t.Errorf("confidence = %v, want 0", m.Confidence)
	}
}

func TestNormalize_WrongCategory(t *testing.T) {
	t.Parallel()

	// "US" exists only in the location vocabulary.
	m := testTable().Normalize("US", CategoryRequestType)
	if m.Canonical != "US" || m.Confidence != 0 {
		t.Errorf("got {%q %v}, want raw input with confidence 0", m.Canonical, m.Confidence)
	}
}

func TestNormalize_NilTable(t *testing.T) {
	t.Parallel()

	var tbl *Table
	m := tbl.Normalize("US", CategoryLocation)
	if m.Canonical != "US" || m.Confidence != 0 {
		t.Errorf("got {%q %v}, want raw input with confidence 0", m.Canonical, m.Confidence)
	}
}

func TestNormalize_EmptyInput(t *testing.T) {
	t.Parallel()

	m := testTable().Normalize("", CategoryLocation)
	if m.Canonical != "" || m.Confidence != 0 {
		t.Errorf("got {%q %v}, want empty with confidence 0", m.Canonical, m.Confidence)
	}
}

func TestNormalize_CustomThreshold(t *testing.T) {
	t.Parallel()

	strict := NewTable([]LegalTerm{
		{Canonical: "Australia", Category: CategoryLocation},
	}, 0.95)

	// 1 - 1/9 ≈ 0.889, below a 0.95 threshold.
	m := strict.Normalize("Astralia", CategoryLocation)
	if m.Canonical != "Astralia" || m.Confidence != 0 {
		t.Errorf("got {%q %v}, want raw input with confidence 0", m.Canonical, m.Confidence)
	}
}

func TestLevenshtein(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"abc", "abc", 0},
		{"kitten", "sitting", 3},
		{"astralia", "australia", 1},
		{"nda", "dna", 2},
	}

	for _, tt := range tests {
		if got := levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSimilarity_BothEmpty(t *testing.T) {
	t.Parallel()

	if got := similarity("", ""); got != 1 {
		t.Errorf("similarity(\"\", \"\") = %v, want 1", got)
	}
}
