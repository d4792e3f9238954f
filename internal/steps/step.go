// Package steps implements the step domain for Docket. A step is one unit
// of work in a workflow definition; the four variants (upload, review,
// approval, custom field) form a closed set dispatched by kind tag through
// the factory. Each variant validates a user action against the current
// execution state and produces an Outcome the execution engine consumes.
package steps

import "github.com/google/uuid"

// Kind identifies a step variant. The tag values are the persisted type
// strings in workflow definition payloads.
type Kind string

// Valid step kinds.
const (
	KindUpload      Kind = "Upload"
	KindReview      Kind = "Document Review"
	KindApproval    Kind = "Approve/Reject"
	KindCustomField Kind = "Custom Field"
)

var kinds = []Kind{
	KindUpload,
	KindReview,
	KindApproval,
	KindCustomField,
}

// Kinds returns the list of valid step kinds.
func Kinds() []Kind {
	return kinds
}

// ScopeKind selects which policy scope an authorization check runs against.
type ScopeKind string

// Authorization scope flavors. Workflow-scoped checks evaluate the caller's
// roles against the workflow policy; execution-scoped checks evaluate the
// caller's username against the single-initiator execution policy.
const (
	ScopeWorkflow  ScopeKind = "workflow"
	ScopeExecution ScopeKind = "execution"
)

// AuthSpec names the policy action and scope flavor that gates a step.
type AuthSpec struct {
	Action string
	Scope  ScopeKind
}

// Attachment describes a document stored in blob storage and referenced
// by an execution record.
type Attachment struct {
	Key         string `json:"key"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	PageCount   *int   `json:"page_count,omitempty"`
}

// State is the read-only view of an execution a step validates against.
// Data is the accumulated workflow data map; steps must not mutate it
// directly — mutations travel through Outcome.Data.
type State struct {
	WorkflowID  uuid.UUID
	ExecutionID uuid.UUID
	HasDocument bool
	Data        map[string]any
}

// Step is a single unit of work within a workflow definition.
//
// Apply validates the request against the current state and returns the
// Outcome the engine merges into the execution record. Validation failures
// return an error wrapping ErrValidation and leave all state untouched;
// the caller re-prompts without engaging the engine.
type Step interface {
	Kind() Kind
	Name() string
	Description() string
	Properties() map[string]string

	// Authorization returns the policy gate for this step, or nil when
	// the step is ungated.
	Authorization() *AuthSpec

	Apply(state State, req Request) (*Outcome, error)
}

// core carries the definition-sourced fields shared by all variants.
type core struct {
	name        string
	description string
	properties  map[string]string
}

func (c core) Name() string                  { return c.name }
func (c core) Description() string           { return c.description }
func (c core) Properties() map[string]string { return c.properties }

func (c core) property(key, fallback string) string {
	if v, ok := c.properties[key]; ok && v != "" {
		return v
	}
	return fallback
}

func (c core) dataString(data map[string]any, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}
