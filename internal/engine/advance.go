package engine

import (
	"fmt"

	"github.com/docketworks/docket/internal/definitions"
	"github.com/docketworks/docket/internal/executions"
	"github.com/docketworks/docket/internal/steps"
)

// advance applies a step outcome to the in-memory execution record.
// It mutates only the record; persistence is the caller's single durable
// effect. Any failure wraps ErrAdvanceFailed and the record must then be
// discarded, never written.
func advance(
	exec *executions.Execution,
	def *definitions.Definition,
	out *steps.Outcome,
) error {
	if !out.Advance {
		return nil
	}

	current := def.StepAt(exec.CurrentStepIndex)
	if current == nil {
		return fmt.Errorf(
			"%w: no step at index %d",
			ErrAdvanceFailed, exec.CurrentStepIndex,
		)
	}

	finished := out.StepStatus
	if finished == "" {
		finished = steps.StatusCompleted
	}

	if exec.StepStatuses == nil {
		exec.StepStatuses = make(map[string]steps.Status)
	}
	exec.StepStatuses[current.Name()] = finished

	if out.ReturnToUpload {
		// Branch-back always targets the first upload step, not the
		// nearest preceding one.
		index := def.FirstIndexOf(steps.KindUpload)
		if index < 0 {
			return fmt.Errorf("%w: definition has no upload step", ErrAdvanceFailed)
		}
		exec.CurrentStepIndex = index
		exec.StepStatuses[def.StepAt(index).Name()] = steps.StatusInProgress
	} else {
		exec.CurrentStepIndex++
		if next := def.StepAt(exec.CurrentStepIndex); next != nil {
			exec.StepStatuses[next.Name()] = steps.StatusInProgress
		}
	}

	if out.WorkflowStatus != "" {
		exec.Status = executions.Status(out.WorkflowStatus)
	}

	if out.Document != nil {
		exec.Document = out.Document
	}

	mergeData(exec, out.Data)

	// Rejection takes precedence over positional completion.
	if exec.CurrentStepIndex >= def.StepCount() &&
		exec.Status != executions.StatusRejected {
		exec.Status = executions.StatusCompleted
	}

	return nil
}

// mergeData folds outcome data into the record's workflow data map.
// Empty string values clear the key; decision and notes keys are also
// promoted to first-class record fields.
func mergeData(exec *executions.Execution, data map[string]any) {
	if exec.WorkflowData == nil {
		exec.WorkflowData = make(map[string]any)
	}

	for key, value := range data {
		if s, ok := value.(string); ok && s == "" {
			delete(exec.WorkflowData, key)
			promote(exec, key, nil)
			continue
		}

		exec.WorkflowData[key] = value
		if s, ok := value.(string); ok {
			v := s
			promote(exec, key, &v)
		}
	}
}

func promote(exec *executions.Execution, key string, value *string) {
	switch key {
	case steps.KeyReviewDecision:
		exec.ReviewDecision = value
	case steps.KeyReviewNotes:
		exec.ReviewNotes = value
	case steps.KeyApprovalDecision:
		exec.ApprovalDecision = value
	case steps.KeyApprovalNotes:
		exec.ApprovalNotes = value
	}
}
