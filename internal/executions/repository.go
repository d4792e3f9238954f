package executions

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/docketworks/docket/internal/steps"
	"github.com/docketworks/docket/pkg/pagination"
	"github.com/docketworks/docket/pkg/query"
	"github.com/docketworks/docket/pkg/repository"
	"github.com/docketworks/docket/pkg/storage"
)

// returningColumns mirrors the projection order for RETURNING clauses,
// which cannot use the query alias.
const returningColumns = `id, workflow_id, current_step_index, status,
	step_statuses, workflow_data,
	document_key, document_filename, document_content_type,
	document_size, document_page_count,
	review_decision, review_notes, approval_decision, approval_notes,
	created_by, organization_id, version, created_at, updated_at`

type repo struct {
	db         *sql.DB
	storage    storage.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates an execution repository implementing the System interface.
func New(
	db *sql.DB,
	store storage.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		storage:    store,
		logger:     logger.With("system", "executions"),
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
) (*pagination.PageResult[Execution], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "CreatedBy", "DocumentFilename")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count executions: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	execs, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanExecution)
	if err != nil {
		return nil, fmt.Errorf("query executions: %w", err)
	}

	result := pagination.NewPageResult(execs, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Execution, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	e, err := repository.QueryOne(ctx, r.db, q, args, scanExecution)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &e, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Execution, error) {
	statuses, err := json.Marshal(cmd.StepStatuses)
	if err != nil {
		return nil, fmt.Errorf("encode step statuses: %w", err)
	}

	q := `
		INSERT INTO workflow_executions(
			id, workflow_id, current_step_index, status,
			step_statuses, workflow_data, created_by, organization_id
		)
		VALUES ($1, $2, 0, $3, $4, '{}', $5, $6)
		RETURNING ` + returningColumns

	args := []any{
		uuid.New(),
		cmd.WorkflowID,
		StatusInProgress,
		statuses,
		cmd.CreatedBy,
		cmd.OrganizationID,
	}

	e, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Execution, error) {
		return repository.QueryOne(ctx, tx, q, args, scanExecution)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info(
		"execution started",
		"id", e.ID,
		"workflow", e.WorkflowID,
		"created_by", e.CreatedBy,
	)
	return &e, nil
}

func (r *repo) Update(ctx context.Context, exec *Execution) (*Execution, error) {
	statuses, err := json.Marshal(exec.StepStatuses)
	if err != nil {
		return nil, fmt.Errorf("encode step statuses: %w", err)
	}

	data, err := json.Marshal(exec.WorkflowData)
	if err != nil {
		return nil, fmt.Errorf("encode workflow data: %w", err)
	}

	docKey, docFilename, docMIME, docSize, docPages := documentColumns(exec.Document)

	q := `
		UPDATE workflow_executions
		SET current_step_index = $1, status = $2,
			step_statuses = $3, workflow_data = $4,
			document_key = $5, document_filename = $6,
			document_content_type = $7, document_size = $8,
			document_page_count = $9,
			review_decision = $10, review_notes = $11,
			approval_decision = $12, approval_notes = $13,
			version = version + 1, updated_at = now()
		WHERE id = $14 AND version = $15
		RETURNING ` + returningColumns

	args := []any{
		exec.CurrentStepIndex,
		exec.Status,
		statuses,
		data,
		docKey,
		docFilename,
		docMIME,
		docSize,
		docPages,
		exec.ReviewDecision,
		exec.ReviewNotes,
		exec.ApprovalDecision,
		exec.ApprovalNotes,
		exec.ID,
		exec.Version,
	}

	e, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Execution, error) {
		return repository.QueryOne(ctx, tx, q, args, scanExecution)
	})

	if err != nil {
		// A version mismatch yields no row; the record was either advanced
		// by a concurrent writer or deleted. Both are conflicts here.
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStale
		}
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info(
		"execution advanced",
		"id", e.ID,
		"index", e.CurrentStepIndex,
		"status", e.Status,
		"version", e.Version,
	)
	return &e, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	exec, err := r.Find(ctx, id)
	if err != nil {
		return err
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM workflow_executions WHERE id = $1",
			id,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if exec.HasDocument() {
		if delErr := r.storage.Delete(ctx, exec.Document.Key); delErr != nil {
			r.logger.Warn(
				"blob delete failed after DB delete",
				"key", exec.Document.Key,
				"error", delErr,
			)
		}
	}

	r.logger.Info("execution deleted", "id", id)
	return nil
}

func (r *repo) AttachDocument(
	ctx context.Context,
	id uuid.UUID,
	filename, contentType string,
	data []byte,
) (*steps.Attachment, error) {
	key := buildDocumentKey(id, sanitizeFilename(filename))

	if err := r.storage.Upload(ctx, key, bytes.NewReader(data), contentType); err != nil {
		return nil, fmt.Errorf("upload execution document: %w", err)
	}

	return &steps.Attachment{
		Key:         key,
		Filename:    filename,
		ContentType: contentType,
		Size:        int64(len(data)),
	}, nil
}

func (r *repo) DetachDocument(ctx context.Context, att *steps.Attachment) {
	if att == nil || att.Key == "" {
		return
	}
	if err := r.storage.Delete(ctx, att.Key); err != nil {
		r.logger.Warn("compensating blob delete failed", "key", att.Key, "error", err)
	}
}

func (r *repo) OpenDocument(ctx context.Context, id uuid.UUID) (*DocumentStream, error) {
	exec, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if !exec.HasDocument() {
		return nil, ErrNoDocument
	}

	result, err := r.storage.Download(ctx, exec.Document.Key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNoDocument
		}
		return nil, fmt.Errorf("download execution document: %w", err)
	}

	return &DocumentStream{
		Body:        result.Body,
		Filename:    exec.Document.Filename,
		ContentType: exec.Document.ContentType,
		Size:        exec.Document.Size,
	}, nil
}

func buildDocumentKey(id uuid.UUID, filename string) string {
	return fmt.Sprintf("executions/%s/%s", id, filename)
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	if name == "." || name == "" {
		name = "document"
	}
	return url.PathEscape(name)
}
