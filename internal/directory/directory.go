// Package directory provides optional employee-context lookup. Absence of
// an employee record is never an error: the engine simply runs without
// profile defaults or tag affinity.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Employee is the profile context attached to a triage run. It supplies
// default values when the conversation does not state them and tag-based
// affinity (e.g. VIP) for scoring. It is never merged into the extracted
// request fields.
type Employee struct {
	ID         string   `json:"id"`
	Email      string   `json:"email"`
	Name       string   `json:"name"`
	Role       string   `json:"role"`
	Department string   `json:"department"`
	Location   string   `json:"location"`
	Tags       []string `json:"tags"`
}

// Directory looks up employee context by email.
type Directory interface {
	Lookup(ctx context.Context, email string) (*Employee, bool, error)
}

// Static is an in-memory Directory keyed by lower-cased email.
type Static struct {
	byEmail map[string]Employee
}

// NewStatic builds a Static directory from a list of employees.
func NewStatic(employees []Employee) *Static {
	d := &Static{byEmail: make(map[string]Employee, len(employees))}
	for _, e := range employees {
		d.byEmail[strings.ToLower(e.Email)] = e
	}
	return d
}

// LoadStatic reads a JSON array of employees from a file.
func LoadStatic(path string) (*Static, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is from trusted config, not user input
	if err != nil {
		return nil, fmt.Errorf("read directory file: %w", err)
	}
	var employees []Employee
	if err := json.Unmarshal(data, &employees); err != nil {
		return nil, fmt.Errorf("parse directory file: %w", err)
	}
	return NewStatic(employees), nil
}

// Lookup returns a copy of the employee record, if present.
func (d *Static) Lookup(_ context.Context, email string) (*Employee, bool, error) {
	e, ok := d.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, false, nil
	}
	cp := e
	return &cp, true, nil
}
