package steps

// Upload requires a document attachment before its submit action is
// accepted. Submission clears any prior return/rejection decision so the
// re-uploaded document flows forward cleanly; a rejection re-upload also
// restores the execution to In Progress. Gated by the execution-scoped
// policy: only the execution's initiator may upload.
type Upload struct {
	core
}

func (s *Upload) Kind() Kind { return KindUpload }

func (s *Upload) Authorization() *AuthSpec {
	return &AuthSpec{Action: "upload", Scope: ScopeExecution}
}

func (s *Upload) Apply(state State, req Request) (*Outcome, error) {
	switch req.Action {
	case ActionSubmit:
		return s.submit(state, req)
	case ActionSkip:
		return s.skip(state)
	default:
		return nil, ErrActionNotSupported
	}
}

func (s *Upload) submit(state State, req Request) (*Outcome, error) {
	if req.Document == nil {
		return nil, ErrDocumentRequired
	}

	out := &Outcome{
		Advance:    true,
		StepStatus: StatusCompleted,
		Document:   req.Document,
		Data: map[string]any{
			KeyUploadedDocument: map[string]any{
				"fileName": req.Document.Filename,
				"mimeType": req.Document.ContentType,
				"size":     req.Document.Size,
			},
		},
	}

	// A re-upload resolves the decision that sent the execution back.
	if s.dataString(state.Data, KeyReviewDecision) == DecisionReturn {
		out.Data[KeyReviewDecision] = ""
	}
	if s.dataString(state.Data, KeyApprovalDecision) == DecisionRejected {
		out.Data[KeyApprovalDecision] = ""
		out.Data[KeyApprovalNotes] = ""
		out.WorkflowStatus = "In Progress"
	}

	return out, nil
}

func (s *Upload) skip(state State) (*Outcome, error) {
	if state.HasDocument {
		return nil, ErrDocumentAttached
	}

	return &Outcome{
		Advance:    true,
		StepStatus: StatusSkipped,
	}, nil
}
