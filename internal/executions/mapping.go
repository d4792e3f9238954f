package executions

import (
	"encoding/json"
	"net/url"

	"github.com/google/uuid"

	"github.com/docketworks/docket/internal/steps"
	"github.com/docketworks/docket/pkg/query"
	"github.com/docketworks/docket/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "workflow_executions", "e").
	Project("id", "ID").
	Project("workflow_id", "WorkflowID").
	Project("current_step_index", "CurrentStepIndex").
	Project("status", "Status").
	Project("step_statuses", "StepStatuses").
	Project("workflow_data", "WorkflowData").
	Project("document_key", "DocumentKey").
	Project("document_filename", "DocumentFilename").
	Project("document_content_type", "DocumentContentType").
	Project("document_size", "DocumentSize").
	Project("document_page_count", "DocumentPageCount").
	Project("review_decision", "ReviewDecision").
	Project("review_notes", "ReviewNotes").
	Project("approval_decision", "ApprovalDecision").
	Project("approval_notes", "ApprovalNotes").
	Project("created_by", "CreatedBy").
	Project("organization_id", "OrganizationID").
	Project("version", "Version").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

// Recency ordering backs the default listing.
var defaultSort = query.SortField{
	Field:      "UpdatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for execution queries.
// Nil fields are ignored; all fields use exact matching.
type Filters struct {
	Status     *string    `json:"status,omitempty"`
	WorkflowID *uuid.UUID `json:"workflow_id,omitempty"`
	CreatedBy  *string    `json:"created_by,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Status", f.Status).
		WhereEquals("WorkflowID", f.WorkflowID).
		WhereEquals("CreatedBy", f.CreatedBy)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("status"); s != "" {
		f.Status = &s
	}

	if wid := values.Get("workflow_id"); wid != "" {
		if v, err := uuid.Parse(wid); err == nil {
			f.WorkflowID = &v
		}
	}

	if cb := values.Get("created_by"); cb != "" {
		f.CreatedBy = &cb
	}

	return f
}

func scanExecution(s repository.Scanner) (Execution, error) {
	var (
		e            Execution
		rawStatuses  []byte
		rawData      []byte
		docKey       *string
		docFilename  *string
		docMIME      *string
		docSize      *int64
		docPageCount *int
	)

	err := s.Scan(
		&e.ID,
		&e.WorkflowID,
		&e.CurrentStepIndex,
		&e.Status,
		&rawStatuses,
		&rawData,
		&docKey,
		&docFilename,
		&docMIME,
		&docSize,
		&docPageCount,
		&e.ReviewDecision,
		&e.ReviewNotes,
		&e.ApprovalDecision,
		&e.ApprovalNotes,
		&e.CreatedBy,
		&e.OrganizationID,
		&e.Version,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return e, err
	}

	// Unparseable accumulated state degrades to empty maps so the record
	// stays loadable; it is rebuilt on the next advance.
	e.StepStatuses = make(map[string]steps.Status)
	if len(rawStatuses) > 0 {
		_ = json.Unmarshal(rawStatuses, &e.StepStatuses)
	}

	e.WorkflowData = make(map[string]any)
	if len(rawData) > 0 {
		_ = json.Unmarshal(rawData, &e.WorkflowData)
	}

	if docKey != nil && *docKey != "" {
		e.Document = &steps.Attachment{
			Key:       *docKey,
			PageCount: docPageCount,
		}
		if docFilename != nil {
			e.Document.Filename = *docFilename
		}
		if docMIME != nil {
			e.Document.ContentType = *docMIME
		}
		if docSize != nil {
			e.Document.Size = *docSize
		}
	}

	return e, nil
}

// documentColumns explodes the optional attachment into nullable values
// for insert and update statements.
func documentColumns(doc *steps.Attachment) (key, filename, mime *string, size *int64, pages *int) {
	if doc == nil || doc.Key == "" {
		return nil, nil, nil, nil, nil
	}
	return &doc.Key, &doc.Filename, &doc.ContentType, &doc.Size, doc.PageCount
}
