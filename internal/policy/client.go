// Package policy implements the authorization gate against an Open Policy
// Agent instance. Decisions are requested over OPA's REST data API and
// generated Rego policies are deployed over its policy API.
//
// The gate fails closed: any transport, status, or decode problem is
// logged and treated as a deny. Policy deployment failures are logged and
// never fail the operation that triggered them; the affected actions
// simply deny until a policy lands.
package policy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Input field names matched by generated policies.
const (
	FieldRole     = "role"
	FieldUsername = "username"
)

// System is the authorization gate and policy deployment client.
type System interface {
	// Allowed reports whether the given action is permitted in the scope
	// for a single subject value. Never returns an error: failures deny.
	Allowed(ctx context.Context, scope Scope, action, value, field string, orgID uuid.UUID) bool

	// AllowedForRoles checks the action against each role and reports
	// whether any of them is permitted.
	AllowedForRoles(ctx context.Context, scope Scope, action string, roles []string, orgID uuid.UUID) bool

	// DeployWorkflowPolicy compiles the grant map into a workflow-scoped
	// policy and deploys it.
	DeployWorkflowPolicy(ctx context.Context, workflowID uuid.UUID, grants map[string][]string)

	// DeployExecutionPolicy deploys the execution-scoped policy that
	// permits the upload action for the initiating user only.
	DeployExecutionPolicy(ctx context.Context, workflowID, executionID uuid.UUID, username string)
}

type client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// New creates a policy System against the configured OPA instance.
func New(cfg Config, logger *slog.Logger) System {
	return &client{
		baseURL: strings.TrimSuffix(cfg.URL, "/"),
		http:    &http.Client{Timeout: cfg.TimeoutDuration()},
		logger:  logger.With("system", "policy"),
	}
}

type decisionResponse struct {
	Result bool `json:"result"`
}

func (c *client) Allowed(
	ctx context.Context,
	scope Scope,
	action, value, field string,
	orgID uuid.UUID,
) bool {
	input := map[string]any{
		"action":          action,
		field:             value,
		"organization_id": orgID,
	}

	allowed, err := c.decide(ctx, scope, input)
	if err != nil {
		c.logger.Warn(
			"policy decision failed; denying",
			"scope", scope,
			"action", action,
			"error", err,
		)
		return false
	}

	c.logger.Debug(
		"policy decision",
		"scope", scope,
		"action", action,
		"field", field,
		"allowed", allowed,
	)
	return allowed
}

func (c *client) AllowedForRoles(
	ctx context.Context,
	scope Scope,
	action string,
	roles []string,
	orgID uuid.UUID,
) bool {
	for _, role := range roles {
		if c.Allowed(ctx, scope, action, role, FieldRole, orgID) {
			return true
		}
	}
	return false
}

func (c *client) decide(ctx context.Context, scope Scope, input map[string]any) (bool, error) {
	body, err := json.Marshal(map[string]any{"input": input})
	if err != nil {
		return false, fmt.Errorf("encode input: %w", err)
	}

	url := fmt.Sprintf("%s/v1/data/%s/allow", c.baseURL, scope)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return false, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return false, fmt.Errorf("unexpected status %d", res.StatusCode)
	}

	var decision decisionResponse
	if err := json.NewDecoder(res.Body).Decode(&decision); err != nil {
		return false, fmt.Errorf("decode decision: %w", err)
	}

	return decision.Result, nil
}

func (c *client) DeployWorkflowPolicy(
	ctx context.Context,
	workflowID uuid.UUID,
	grants map[string][]string,
) {
	scope := WorkflowScope(workflowID)
	c.deploy(ctx, scope, compileRego(scope, FieldRole, grants))
}

func (c *client) DeployExecutionPolicy(
	ctx context.Context,
	workflowID, executionID uuid.UUID,
	username string,
) {
	scope := ExecutionScope(workflowID, executionID)
	grants := map[string][]string{"upload": {username}}
	c.deploy(ctx, scope, compileRego(scope, FieldUsername, grants))
}

func (c *client) deploy(ctx context.Context, scope Scope, rego string) {
	url := fmt.Sprintf("%s/v1/policies/%s", c.baseURL, scope)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, strings.NewReader(rego))
	if err != nil {
		c.logger.Warn("policy deployment failed", "scope", scope, "error", err)
		return
	}
	req.Header.Set("Content-Type", "text/plain")

	res, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("policy deployment failed", "scope", scope, "error", err)
		return
	}
	defer res.Body.Close()
	io.Copy(io.Discard, res.Body)

	if res.StatusCode != http.StatusOK {
		c.logger.Warn(
			"policy deployment rejected",
			"scope", scope,
			"status", res.StatusCode,
		)
		return
	}

	c.logger.Info("policy deployed", "scope", scope)
}

// compileRego renders a deny-by-default policy with one allow rule per
// action/subject grant. Actions are emitted in sorted order so repeated
// deployments of the same grants produce identical documents.
func compileRego(scope Scope, field string, grants map[string][]string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "package %s\n\n", scope)
	b.WriteString("import rego.v1\n\n")
	b.WriteString("default allow := false\n")

	actions := make([]string, 0, len(grants))
	for action := range grants {
		actions = append(actions, action)
	}
	sort.Strings(actions)

	for _, action := range actions {
		for _, subject := range grants[action] {
			fmt.Fprintf(
				&b,
				"\nallow if {\n\tinput.action == %q\n\tinput.%s == %q\n}\n",
				action, field, subject,
			)
		}
	}

	return b.String()
}
