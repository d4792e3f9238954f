package definitions

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/docketworks/docket/internal/steps"
	"github.com/docketworks/docket/pkg/pagination"
	"github.com/docketworks/docket/pkg/query"
	"github.com/docketworks/docket/pkg/repository"
)

type repo struct {
	db         *sql.DB
	policies   PolicyDeployer
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a workflow definition repository implementing the System interface.
func New(
	db *sql.DB,
	policies PolicyDeployer,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		policies:   policies,
		logger:     logger.With("system", "definitions"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Workflow], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Name")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count workflows: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	workflows, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanWorkflow)
	if err != nil {
		return nil, fmt.Errorf("query workflows: %w", err)
	}

	result := pagination.NewPageResult(workflows, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Workflow, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	w, err := repository.QueryOne(ctx, r.db, q, args, scanWorkflow)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &w, nil
}

// Load fetches a stored workflow and deserializes it into an executable
// Definition. Definitions are parsed fresh on every load, never cached.
func (r *repo) Load(ctx context.Context, id uuid.UUID) (*Definition, error) {
	w, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	return build(w.ID, w.Name, w.Steps)
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Workflow, error) {
	if err := validateSteps(cmd.Steps); err != nil {
		return nil, err
	}

	data, err := encode(cmd.Steps)
	if err != nil {
		return nil, fmt.Errorf("encode workflow steps: %w", err)
	}

	q := `
		INSERT INTO workflows(id, name, data)
		VALUES ($1, $2, $3)
		RETURNING id, name, data, created_at, updated_at`

	id := uuid.New()
	w, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Workflow, error) {
		return repository.QueryOne(ctx, tx, q, []any{id, cmd.Name, data}, scanWorkflow)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if grants := compileGrants(cmd.Steps, cmd.Grants); len(grants) > 0 {
		r.policies.DeployWorkflowPolicy(ctx, w.ID, grants)
	}

	r.logger.Info("workflow created", "id", w.ID, "name", w.Name, "steps", len(w.Steps))
	return &w, nil
}

func (r *repo) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Workflow, error) {
	if err := validateSteps(cmd.Steps); err != nil {
		return nil, err
	}

	data, err := encode(cmd.Steps)
	if err != nil {
		return nil, fmt.Errorf("encode workflow steps: %w", err)
	}

	q := `
		UPDATE workflows
		SET name = $1, data = $2, updated_at = now()
		WHERE id = $3
		RETURNING id, name, data, created_at, updated_at`

	w, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Workflow, error) {
		return repository.QueryOne(ctx, tx, q, []any{cmd.Name, data, id}, scanWorkflow)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if grants := compileGrants(cmd.Steps, cmd.Grants); len(grants) > 0 {
		r.policies.DeployWorkflowPolicy(ctx, w.ID, grants)
	}

	r.logger.Info("workflow updated", "id", w.ID, "name", w.Name, "steps", len(w.Steps))
	return &w, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM workflows WHERE id = $1",
			id,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("workflow deleted", "id", id)
	return nil
}

// validateSteps runs the same checks a load would: the payload must build
// into a definition with at least one step and unique step names.
func validateSteps(records []steps.Record) error {
	if len(records) == 0 {
		return ErrEmptyDefinition
	}
	_, err := build(uuid.Nil, "", records)
	return err
}
