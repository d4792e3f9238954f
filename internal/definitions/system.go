package definitions

import (
	"context"

	"github.com/google/uuid"

	"github.com/docketworks/docket/pkg/pagination"
)

// System defines the public contract for workflow definition operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Workflow], error)

	Find(ctx context.Context, id uuid.UUID) (*Workflow, error)
	Load(ctx context.Context, id uuid.UUID) (*Definition, error)
	Create(ctx context.Context, cmd CreateCommand) (*Workflow, error)
	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Workflow, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// PolicyDeployer deploys a workflow-scoped authorization policy compiled
// from role grants. Deployment failures are logged by the implementation
// and never fail the definition write.
type PolicyDeployer interface {
	DeployWorkflowPolicy(ctx context.Context, workflowID uuid.UUID, grants map[string][]string)
}
