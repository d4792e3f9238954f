// Package executions implements the workflow execution domain for Docket.
// It provides the persisted, mutable state of one run of a workflow
// definition: current position, per-step status map, aggregate status,
// accumulated workflow data, and the uploaded document attachment.
package executions

import (
	"time"

	"github.com/google/uuid"

	"github.com/docketworks/docket/internal/steps"
)

// Status is the aggregate status of one execution.
type Status string

// Execution statuses. Completed and Rejected are terminal; rejection takes
// precedence over natural completion.
const (
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
	StatusRejected   Status = "Rejected"
)

// Terminal reports whether the status accepts no further advancement.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusRejected
}

// Execution is the mutable state of one run of a workflow definition.
//
// StepStatuses is keyed by step name; every step that has ever been current
// has an entry, steps never visited remain absent. WorkflowData accumulates
// decisions, notes, custom field values, and document metadata. The decision
// and notes fields mirror their workflow data entries for queryability.
// Version backs optimistic concurrency: every persisted update increments
// it, and a stale writer is rejected rather than silently dropped.
type Execution struct {
	ID               uuid.UUID               `json:"id"`
	WorkflowID       uuid.UUID               `json:"workflow_id"`
	CurrentStepIndex int                     `json:"current_step_index"`
	Status           Status                  `json:"status"`
	StepStatuses     map[string]steps.Status `json:"step_statuses"`
	WorkflowData     map[string]any          `json:"workflow_data"`
	Document         *steps.Attachment       `json:"document,omitempty"`
	ReviewDecision   *string                 `json:"review_decision,omitempty"`
	ReviewNotes      *string                 `json:"review_notes,omitempty"`
	ApprovalDecision *string                 `json:"approval_decision,omitempty"`
	ApprovalNotes    *string                 `json:"approval_notes,omitempty"`
	CreatedBy        string                  `json:"created_by"`
	OrganizationID   uuid.UUID               `json:"organization_id"`
	Version          int                     `json:"version"`
	CreatedAt        time.Time               `json:"created_at"`
	UpdatedAt        time.Time               `json:"updated_at"`
}

// HasDocument reports whether a document is attached to the execution.
func (e *Execution) HasDocument() bool {
	return e.Document != nil && e.Document.Key != ""
}

// CreateCommand carries the data needed to start a new execution.
// StepStatuses seeds the status map with step 0 In Progress and the
// remaining steps Pending.
type CreateCommand struct {
	WorkflowID     uuid.UUID
	StepStatuses   map[string]steps.Status
	CreatedBy      string
	OrganizationID uuid.UUID
}
