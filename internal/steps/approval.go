package steps

import "strings"

// Approval is the approve-or-reject gate on the attached document.
// Rejection requires non-empty notes and an explicit confirmation, marks
// the whole execution Rejected, and sends it back to the upload step.
// With no document attached only skip is accepted. Gated by the
// workflow-scoped policy for action "approve".
type Approval struct {
	core
}

func (s *Approval) Kind() Kind { return KindApproval }

func (s *Approval) Authorization() *AuthSpec {
	return &AuthSpec{Action: "approve", Scope: ScopeWorkflow}
}

// ApproverRole returns the role granted the approve action, defaulting
// to "senior_manager".
func (s *Approval) ApproverRole() string {
	return s.property("approverRole", "senior_manager")
}

func (s *Approval) Apply(state State, req Request) (*Outcome, error) {
	switch req.Action {
	case ActionApprove:
		return s.approve(state, req)
	case ActionReject:
		return s.reject(state, req)
	case ActionSkip:
		return s.skip(state)
	default:
		return nil, ErrActionNotSupported
	}
}

func (s *Approval) approve(state State, req Request) (*Outcome, error) {
	if !state.HasDocument {
		return nil, ErrDocumentRequired
	}

	return &Outcome{
		Advance:    true,
		StepStatus: StatusCompleted,
		Data: map[string]any{
			KeyApprovalNotes:    req.Notes,
			KeyApprovalDecision: DecisionApproved,
		},
	}, nil
}

func (s *Approval) reject(state State, req Request) (*Outcome, error) {
	if !state.HasDocument {
		return nil, ErrDocumentRequired
	}
	if strings.TrimSpace(req.Notes) == "" {
		return nil, ErrNotesRequired
	}
	if !req.Confirm {
		return nil, ErrConfirmationRequired
	}

	return &Outcome{
		Advance:        true,
		ReturnToUpload: true,
		StepStatus:     StatusRejected,
		WorkflowStatus: "Rejected",
		Data: map[string]any{
			KeyApprovalNotes:    req.Notes,
			KeyApprovalDecision: DecisionRejected,
		},
	}, nil
}

func (s *Approval) skip(state State) (*Outcome, error) {
	if state.HasDocument {
		return nil, ErrDocumentAttached
	}

	return &Outcome{
		Advance:    true,
		StepStatus: StatusSkipped,
	}, nil
}
