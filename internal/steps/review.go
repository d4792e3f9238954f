package steps

import "strings"

// Review inspects the attached document and either completes the review or
// returns the execution to the upload step for changes. Returning requires
// non-empty notes; with no document attached only skip is accepted.
// Gated by the workflow-scoped policy for action "review".
type Review struct {
	core
}

func (s *Review) Kind() Kind { return KindReview }

func (s *Review) Authorization() *AuthSpec {
	return &AuthSpec{Action: "review", Scope: ScopeWorkflow}
}

// ReviewerRole returns the role granted the review action, defaulting
// to "manager".
func (s *Review) ReviewerRole() string {
	return s.property("reviewerRole", "manager")
}

func (s *Review) Apply(state State, req Request) (*Outcome, error) {
	switch req.Action {
	case ActionComplete:
		return s.complete(state, req)
	case ActionReturn:
		return s.returnForChanges(state, req)
	case ActionSkip:
		return s.skip(state)
	default:
		return nil, ErrActionNotSupported
	}
}

func (s *Review) complete(state State, req Request) (*Outcome, error) {
	if !state.HasDocument {
		return nil, ErrDocumentRequired
	}

	return &Outcome{
		Advance:    true,
		StepStatus: StatusCompleted,
		Data: map[string]any{
			KeyReviewNotes:    req.Notes,
			KeyReviewDecision: DecisionComplete,
		},
	}, nil
}

func (s *Review) returnForChanges(state State, req Request) (*Outcome, error) {
	if !state.HasDocument {
		return nil, ErrDocumentRequired
	}
	if strings.TrimSpace(req.Notes) == "" {
		return nil, ErrNotesRequired
	}

	return &Outcome{
		Advance:        true,
		ReturnToUpload: true,
		StepStatus:     StatusReturned,
		Data: map[string]any{
			KeyReviewNotes:    req.Notes,
			KeyReviewDecision: DecisionReturn,
		},
	}, nil
}

func (s *Review) skip(state State) (*Outcome, error) {
	if state.HasDocument {
		return nil, ErrDocumentAttached
	}

	return &Outcome{
		Advance:    true,
		StepStatus: StatusSkipped,
	}, nil
}
