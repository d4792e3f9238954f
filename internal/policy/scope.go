package policy

import (
	"strings"

	"github.com/google/uuid"
)

// Scope identifies one policy package in OPA. Rego package names cannot
// contain dashes, so UUID segments are joined with underscores.
type Scope string

// WorkflowScope is the policy package for workflow-level actions
// (review, approve) of one workflow definition.
func WorkflowScope(workflowID uuid.UUID) Scope {
	return Scope("workflow_" + flatten(workflowID))
}

// ExecutionScope is the policy package for execution-level actions
// (upload) of one execution of a workflow.
func ExecutionScope(workflowID, executionID uuid.UUID) Scope {
	return Scope("workflow_" + flatten(workflowID) + "_" + flatten(executionID))
}

func flatten(id uuid.UUID) string {
	return strings.ReplaceAll(id.String(), "-", "_")
}
