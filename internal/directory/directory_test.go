package directory

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestStatic_Lookup(t *testing.T) {
	t.Parallel()

	d := NewStatic([]Employee{
		{ID: "e-1", Email: "Jane.Doe@example.com", Name: "Jane Doe", Department: "Engineering", Location: "Australia", Tags: []string{"vip"}},
	})

	e, ok, err := d.Lookup(context.Background(), " jane.doe@EXAMPLE.com ")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !ok {
		t.Fatal("expected employee to be found")
	}
	if e.Name != "Jane Doe" {
		t.Errorf("name = %q, want %q", e.Name, "Jane Doe")
	}

	// Returned value is a copy.
	e.Department = "mutated"
	e2, _, _ := d.Lookup(context.Background(), "jane.doe@example.com")
	if e2.Department != "Engineering" {
		t.Errorf("department = %q, want %q (lookup must return a copy)", e2.Department, "Engineering")
	}
}

func TestStatic_LookupMissing(t *testing.T) {
	t.Parallel()

	d := NewStatic(nil)
	e, ok, err := d.Lookup(context.Background(), "nobody@example.com")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if ok || e != nil {
		t.Error("expected not found without error")
	}
}

func TestLoadStatic(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "employees.json")
	payload := `[{"id":"e-9","email":"sam@example.com","name":"Sam","department":"Sales","location":"United States"}]`
	if err := os.WriteFile(path, []byte(payload), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	d, err := LoadStatic(path)
	if err != nil {
		t.Fatalf("LoadStatic: %v", err)
	}
	e, ok, _ := d.Lookup(context.Background(), "sam@example.com")
	if !ok {
		t.Fatal("expected employee from file")
	}
	if e.Department != "Sales" {
		t.Errorf("department = %q, want Sales", e.Department)
	}
}

func TestLoadStatic_BadJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if _, err := LoadStatic(path); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}
