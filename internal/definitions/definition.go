// Package definitions implements the workflow definition domain for Docket.
// It provides types, data access, and HTTP handlers for the stored designer
// payloads, plus deserialization into the immutable ordered step sequence
// the execution engine runs against.
package definitions

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/docketworks/docket/internal/steps"
)

// Workflow is the stored form of a workflow definition: the designer
// payload as a JSON array of step records.
type Workflow struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name"`
	Steps     []steps.Record `json:"steps"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Definition is a workflow definition loaded for execution: an ordered,
// immutable sequence of steps. Executions pin the stored row, not a
// versioned snapshot, so a Definition is always parsed fresh on demand.
type Definition struct {
	ID    uuid.UUID
	Name  string
	steps []steps.Step
}

// CreateCommand carries the data needed to create a workflow definition.
// Grants maps policy actions (review, approve) to the roles allowed to
// perform them; when present a workflow-scoped policy is deployed.
type CreateCommand struct {
	Name   string              `json:"name"`
	Steps  []steps.Record      `json:"steps"`
	Grants map[string][]string `json:"grants,omitempty"`
}

// UpdateCommand carries the data needed to replace a workflow definition.
// Structural edits always produce a brand-new stored payload; in-flight
// executions referencing the row observe the edit (a known hazard the
// designer surface owns).
type UpdateCommand struct {
	Name   string              `json:"name"`
	Steps  []steps.Record      `json:"steps"`
	Grants map[string][]string `json:"grants,omitempty"`
}

// Parse builds a Definition from a stored payload. The whole load fails
// with ErrMalformedDefinition when the payload cannot be deserialized into
// an ordered step list; no partial definition is ever returned. Duplicate
// step names fail with ErrDuplicateStepName since execution status is
// tracked by name.
func Parse(id uuid.UUID, name string, data []byte) (*Definition, error) {
	var records []steps.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDefinition, err)
	}

	return build(id, name, records)
}

func build(id uuid.UUID, name string, records []steps.Record) (*Definition, error) {
	// Position is authoritative, but tolerate hand-edited payloads that
	// carry explicit order values.
	ordered := slices.Clone(records)
	slices.SortStableFunc(ordered, func(a, b steps.Record) int {
		return a.Order - b.Order
	})

	def := &Definition{
		ID:    id,
		Name:  name,
		steps: make([]steps.Step, 0, len(ordered)),
	}

	seen := make(map[string]struct{}, len(ordered))
	for _, rec := range ordered {
		if _, dup := seen[rec.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateStepName, rec.Name)
		}
		seen[rec.Name] = struct{}{}

		step, err := steps.FromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedDefinition, err)
		}
		def.steps = append(def.steps, step)
	}

	return def, nil
}

// StepCount returns the number of steps; it is the sole source of truth
// for the "is execution finished" check (currentStepIndex >= StepCount).
func (d *Definition) StepCount() int {
	return len(d.steps)
}

// StepAt returns the step at the given index, or nil when out of range.
// Callers probe past the end to detect the completion sentinel.
func (d *Definition) StepAt(index int) steps.Step {
	if index < 0 || index >= len(d.steps) {
		return nil
	}
	return d.steps[index]
}

// Steps returns the ordered step sequence.
func (d *Definition) Steps() []steps.Step {
	return d.steps
}

// FirstIndexOf returns the index of the first step of the given kind,
// or -1 when the definition has none.
func (d *Definition) FirstIndexOf(kind steps.Kind) int {
	return slices.IndexFunc(d.steps, func(s steps.Step) bool {
		return s.Kind() == kind
	})
}

// encode serializes step records for storage, rewriting each record's
// order value from its position.
func encode(records []steps.Record) ([]byte, error) {
	out := make([]steps.Record, len(records))
	for i, rec := range records {
		rec.Order = i
		out[i] = rec
	}
	return json.Marshal(out)
}
