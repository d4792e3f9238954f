package executions

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/docketworks/docket/internal/steps"
	"github.com/docketworks/docket/pkg/pagination"
)

// DocumentStream is an open download of an execution's attached document.
// The caller must close Body.
type DocumentStream struct {
	Body        io.ReadCloser
	Filename    string
	ContentType string
	Size        int64
}

// System defines the public contract for execution record operations.
//
// Update applies an optimistic version check: the write succeeds only when
// the stored version matches the one the record was loaded with, otherwise
// ErrStale is returned and nothing is persisted. This is the per-execution
// serialization point that linearizes concurrent advances.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Execution], error)

	Find(ctx context.Context, id uuid.UUID) (*Execution, error)
	Create(ctx context.Context, cmd CreateCommand) (*Execution, error)
	Update(ctx context.Context, exec *Execution) (*Execution, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// AttachDocument stores document bytes in blob storage under the
	// execution's key space and returns the attachment reference. The
	// record itself is not modified; the engine merges the attachment
	// during advance.
	AttachDocument(
		ctx context.Context,
		id uuid.UUID,
		filename, contentType string,
		data []byte,
	) (*steps.Attachment, error)

	// DetachDocument removes a stored blob after a failed advance so no
	// orphaned attachment outlives the action that uploaded it.
	DetachDocument(ctx context.Context, att *steps.Attachment)

	// OpenDocument streams the execution's attached document.
	OpenDocument(ctx context.Context, id uuid.UUID) (*DocumentStream, error)
}
