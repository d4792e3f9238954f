package definitions

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/docketworks/docket/internal/steps"
	"github.com/docketworks/docket/pkg/query"
	"github.com/docketworks/docket/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "workflows", "w").
	Project("id", "ID").
	Project("name", "Name").
	Project("data", "Data").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "UpdatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for workflow queries.
// Nil fields are ignored; Name uses case-insensitive contains matching.
type Filters struct {
	Name *string `json:"name,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.WhereContains("Name", f.Name)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if n := values.Get("name"); n != "" {
		f.Name = &n
	}

	return f
}

func scanWorkflow(s repository.Scanner) (Workflow, error) {
	var (
		w   Workflow
		raw []byte
	)

	err := s.Scan(
		&w.ID,
		&w.Name,
		&raw,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err != nil {
		return w, err
	}

	var records []steps.Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return w, fmt.Errorf("%w: %w", ErrMalformedDefinition, err)
	}
	w.Steps = records

	return w, nil
}
