// Package engine implements the workflow execution state machine: starting
// executions, authorizing and applying step actions, and advancing the
// record through the definition until a terminal status.
//
// Each user action is one synchronous operation: load, authorize, validate,
// apply, persist. The persisted write is the only durable effect, and the
// optimistic version check in the executions store is the serialization
// point that linearizes concurrent advances; a losing writer observes
// ErrStale and nothing else happens.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"maps"

	"github.com/google/uuid"

	"github.com/docketworks/docket/internal/auth"
	"github.com/docketworks/docket/internal/definitions"
	"github.com/docketworks/docket/internal/executions"
	"github.com/docketworks/docket/internal/policy"
	"github.com/docketworks/docket/internal/steps"
	"github.com/docketworks/docket/internal/tenants"
)

// System defines the public contract for execution engine operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	// Start creates a new execution of the given workflow for the caller:
	// step 0 In Progress, all other steps Pending, aggregate status
	// In Progress. It also deploys the execution-scoped policy granting
	// the upload action to the caller alone.
	Start(ctx context.Context, workflowID uuid.UUID, id auth.Identity) (*executions.Execution, error)

	// Act applies one user action to the execution's current step and,
	// when the step signals completion, advances the record.
	Act(ctx context.Context, executionID uuid.UUID, id auth.Identity, req steps.Request) (*executions.Execution, error)

	// Context assembles the render payload for the execution's current
	// state, including the authorization verdict for the current step.
	Context(ctx context.Context, executionID uuid.UUID, id auth.Identity) (*Context, error)
}

type engine struct {
	definitions definitions.System
	executions  executions.System
	policies    policy.System
	tenants     tenants.System
	logger      *slog.Logger
}

// New creates the execution engine over its collaborating systems.
func New(
	defs definitions.System,
	execs executions.System,
	policies policy.System,
	orgs tenants.System,
	logger *slog.Logger,
) System {
	return &engine{
		definitions: defs,
		executions:  execs,
		policies:    policies,
		tenants:     orgs,
		logger:      logger.With("system", "engine"),
	}
}

func (e *engine) Handler(maxUploadSize int64) *Handler {
	return NewHandler(e, e.executions, e.logger, maxUploadSize)
}

func (e *engine) Start(
	ctx context.Context,
	workflowID uuid.UUID,
	id auth.Identity,
) (*executions.Execution, error) {
	def, err := e.definitions.Load(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	statuses := make(map[string]steps.Status, def.StepCount())
	for i, step := range def.Steps() {
		if i == 0 {
			statuses[step.Name()] = steps.StatusInProgress
		} else {
			statuses[step.Name()] = steps.StatusPending
		}
	}

	org := e.tenants.Resolve(ctx, id.Domain)

	exec, err := e.executions.Create(ctx, executions.CreateCommand{
		WorkflowID:     workflowID,
		StepStatuses:   statuses,
		CreatedBy:      id.Username,
		OrganizationID: org.ID,
	})
	if err != nil {
		return nil, err
	}

	e.policies.DeployExecutionPolicy(ctx, workflowID, exec.ID, id.Username)

	return exec, nil
}

func (e *engine) Act(
	ctx context.Context,
	executionID uuid.UUID,
	id auth.Identity,
	req steps.Request,
) (*executions.Execution, error) {
	exec, err := e.executions.Find(ctx, executionID)
	if err != nil {
		return nil, err
	}

	def, err := e.definitions.Load(ctx, exec.WorkflowID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAdvanceFailed, err)
	}

	step := def.StepAt(exec.CurrentStepIndex)

	if exec.Status.Terminal() && !recoverable(exec, step) {
		return nil, ErrExecutionFinished
	}

	if step == nil {
		return nil, fmt.Errorf(
			"%w: no step at index %d",
			ErrAdvanceFailed, exec.CurrentStepIndex,
		)
	}

	if !e.authorize(ctx, step, exec, id) {
		return nil, ErrDenied
	}

	outcome, err := step.Apply(state(exec), req)
	if err != nil {
		return nil, err
	}

	if !outcome.Advance {
		return exec, nil
	}

	if err := advance(exec, def, outcome); err != nil {
		return nil, err
	}

	updated, err := e.executions.Update(ctx, exec)
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (e *engine) Context(
	ctx context.Context,
	executionID uuid.UUID,
	id auth.Identity,
) (*Context, error) {
	exec, err := e.executions.Find(ctx, executionID)
	if err != nil {
		return nil, err
	}

	def, err := e.definitions.Load(ctx, exec.WorkflowID)
	if err != nil {
		return nil, err
	}

	result := &Context{
		ExecutionID:  exec.ID,
		WorkflowID:   exec.WorkflowID,
		Status:       exec.Status,
		StepStatuses: maps.Clone(exec.StepStatuses),
		WorkflowData: maps.Clone(exec.WorkflowData),
		Document:     exec.Document,
		Finished:     exec.CurrentStepIndex >= def.StepCount(),
	}

	if step := def.StepAt(exec.CurrentStepIndex); step != nil {
		result.CurrentStep = &StepContext{
			Index:       exec.CurrentStepIndex,
			Name:        step.Name(),
			Type:        step.Kind(),
			Description: step.Description(),
			Properties:  step.Properties(),
			Authorized:  e.authorize(ctx, step, exec, id),
		}
	}

	return result, nil
}

// authorize evaluates the step's policy gate for the caller. Ungated steps
// always pass; everything else resolves through OPA and denies on failure.
func (e *engine) authorize(
	ctx context.Context,
	step steps.Step,
	exec *executions.Execution,
	id auth.Identity,
) bool {
	spec := step.Authorization()
	if spec == nil {
		return true
	}

	org := e.tenants.Resolve(ctx, id.Domain)

	switch spec.Scope {
	case steps.ScopeExecution:
		scope := policy.ExecutionScope(exec.WorkflowID, exec.ID)
		return e.policies.Allowed(
			ctx, scope, spec.Action,
			id.Username, policy.FieldUsername, org.ID,
		)
	default:
		scope := policy.WorkflowScope(exec.WorkflowID)
		return e.policies.AllowedForRoles(ctx, scope, spec.Action, id.Roles, org.ID)
	}
}

// recoverable reports whether a terminal execution still accepts an action.
// A rejection branches back to the first upload step; submitting a fresh
// document there restores the execution to In Progress. Completed
// executions accept nothing.
func recoverable(exec *executions.Execution, step steps.Step) bool {
	return exec.Status == executions.StatusRejected &&
		step != nil &&
		step.Kind() == steps.KindUpload
}

func state(exec *executions.Execution) steps.State {
	return steps.State{
		WorkflowID:  exec.WorkflowID,
		ExecutionID: exec.ID,
		HasDocument: exec.HasDocument(),
		Data:        exec.WorkflowData,
	}
}
