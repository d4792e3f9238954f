package steps

// CustomField collects a free-text value keyed by customField_<label>.
// Save persists the value and advances; skip advances without persisting.
// It has no document dependency and no authorization gate.
type CustomField struct {
	core
}

func (s *CustomField) Kind() Kind { return KindCustomField }

func (s *CustomField) Authorization() *AuthSpec { return nil }

// Label returns the configured field label, defaulting to "Custom Field".
func (s *CustomField) Label() string {
	return s.property("label", "Custom Field")
}

// DataKey returns the workflow data key this field's value is stored under.
func (s *CustomField) DataKey() string {
	return KeyCustomFieldBase + s.Label()
}

// CurrentValue returns the saved value for this field, falling back to the
// configured default when the execution has none.
func (s *CustomField) CurrentValue(data map[string]any) string {
	if v, ok := data[s.DataKey()].(string); ok {
		return v
	}
	return s.property("value", "")
}

func (s *CustomField) Apply(state State, req Request) (*Outcome, error) {
	switch req.Action {
	case ActionSave:
		return &Outcome{
			Advance:    true,
			StepStatus: StatusCompleted,
			Data:       map[string]any{s.DataKey(): req.Value},
		}, nil
	case ActionSkip:
		return &Outcome{
			Advance:    true,
			StepStatus: StatusSkipped,
		}, nil
	default:
		return nil, ErrActionNotSupported
	}
}
