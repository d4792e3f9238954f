package engine

import (
	"github.com/google/uuid"

	"github.com/docketworks/docket/internal/executions"
	"github.com/docketworks/docket/internal/steps"
)

// StepContext describes the current step for rendering.
type StepContext struct {
	Index       int               `json:"index"`
	Name        string            `json:"name"`
	Type        steps.Kind        `json:"type"`
	Description string            `json:"description"`
	Properties  map[string]string `json:"properties"`

	// Authorized is the gate verdict for this caller and step. Denied
	// rendering is the caller's concern; the verdict is computed here.
	Authorized bool `json:"authorized"`
}

// Context is the render payload assembled fresh from an execution record
// and its definition before each user interaction. It is a snapshot, not
// a live handle; it is discarded and rebuilt after every advance.
type Context struct {
	ExecutionID  uuid.UUID               `json:"execution_id"`
	WorkflowID   uuid.UUID               `json:"workflow_id"`
	Status       executions.Status       `json:"status"`
	CurrentStep  *StepContext            `json:"current_step,omitempty"`
	StepStatuses map[string]steps.Status `json:"step_statuses"`
	WorkflowData map[string]any          `json:"workflow_data"`
	Document     *steps.Attachment       `json:"document,omitempty"`
	Finished     bool                    `json:"finished"`
}
