package steps

import (
	"fmt"
	"maps"
)

// Record is the stored representation of a step inside a workflow
// definition payload. Order is written on save for readability; position
// within the array is authoritative on load.
type Record struct {
	Name        string            `json:"name"`
	Type        Kind              `json:"type"`
	Description string            `json:"description"`
	Props       map[string]string `json:"props"`
	Order       int               `json:"order"`
}

// New creates an empty step of the given kind.
// Returns ErrUnknownKind for unrecognized tags; the factory treats the
// variant set as closed.
func New(kind Kind) (Step, error) {
	c := core{properties: make(map[string]string)}

	switch kind {
	case KindUpload:
		return &Upload{core: c}, nil
	case KindReview:
		return &Review{core: c}, nil
	case KindApproval:
		return &Approval{core: c}, nil
	case KindCustomField:
		return &CustomField{core: c}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// FromRecord creates a step from its stored representation, copying name,
// description, and properties. Status is not part of the step; it lives in
// the owning execution record's status map.
func FromRecord(rec Record) (Step, error) {
	step, err := New(rec.Type)
	if err != nil {
		return nil, err
	}

	c := stepCore(step)
	c.name = rec.Name
	c.description = rec.Description
	if rec.Props != nil {
		maps.Copy(c.properties, rec.Props)
	}

	return step, nil
}

func stepCore(s Step) *core {
	switch v := s.(type) {
	case *Upload:
		return &v.core
	case *Review:
		return &v.core
	case *Approval:
		return &v.core
	case *CustomField:
		return &v.core
	}
	return nil
}
