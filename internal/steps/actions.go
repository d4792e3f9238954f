package steps

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Action names a user interaction against the current step.
type Action string

// Valid step actions. Each variant accepts a subset; Apply rejects the rest.
const (
	ActionSubmit   Action = "submit"
	ActionSkip     Action = "skip"
	ActionComplete Action = "complete"
	ActionReturn   Action = "return"
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionSave     Action = "save"
)

var actions = []Action{
	ActionSubmit,
	ActionSkip,
	ActionComplete,
	ActionReturn,
	ActionApprove,
	ActionReject,
	ActionSave,
}

// ParseAction validates a raw action string, for inputs that do not
// travel through JSON decoding (form fields).
func ParseAction(raw string) (Action, error) {
	v := Action(raw)
	if !slices.Contains(actions, v) {
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, raw)
	}
	return v, nil
}

// UnmarshalJSON validates that the decoded string is a known action.
func (a *Action) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v := Action(raw)
	if !slices.Contains(actions, v) {
		return ErrUnknownAction
	}
	*a = v
	return nil
}

// Request carries a single user action against the current step.
// Notes backs review/approval decisions, Value backs custom field saves,
// Confirm acknowledges destructive actions (rejection), and Document
// carries an already-stored attachment for upload submissions.
type Request struct {
	Action   Action      `json:"action"`
	Notes    string      `json:"notes,omitempty"`
	Value    string      `json:"value,omitempty"`
	Confirm  bool        `json:"confirm,omitempty"`
	Document *Attachment `json:"-"`
}

// Outcome is what a completed step action asks the engine to do.
// StepStatus overrides the default Completed status for the finished step.
// WorkflowStatus, when non-empty, overrides the execution's aggregate status.
// Data entries are merged into the execution's workflow data map.
type Outcome struct {
	Advance        bool
	ReturnToUpload bool
	StepStatus     Status
	WorkflowStatus string
	Data           map[string]any
	Document       *Attachment
}

// Workflow data keys written by step variants. The decision and notes keys
// are additionally promoted to first-class execution record fields.
const (
	KeyReviewDecision   = "reviewDecision"
	KeyReviewNotes      = "reviewNotes"
	KeyApprovalDecision = "approvalDecision"
	KeyApprovalNotes    = "approvalNotes"
	KeyUploadedDocument = "uploadedDocument"
	KeyCustomFieldBase  = "customField_"
)

// Decision values recorded in workflow data.
const (
	DecisionComplete = "Complete"
	DecisionReturn   = "Return"
	DecisionApproved = "Approved"
	DecisionRejected = "Rejected"
)
