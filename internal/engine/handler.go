package engine

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/docketworks/docket/internal/auth"
	"github.com/docketworks/docket/internal/executions"
	"github.com/docketworks/docket/internal/steps"
	"github.com/docketworks/docket/pkg/handlers"
	"github.com/docketworks/docket/pkg/routes"
)

// Handler provides HTTP endpoints for engine operations: starting
// executions, acting on the current step, and fetching the step context.
type Handler struct {
	engine        System
	executions    executions.System
	logger        *slog.Logger
	maxUploadSize int64
}

// NewHandler creates a Handler with the given engine, execution store,
// logger, and upload size limit.
func NewHandler(
	engine System,
	execs executions.System,
	logger *slog.Logger,
	maxUploadSize int64,
) *Handler {
	return &Handler{
		engine:        engine,
		executions:    execs,
		logger:        logger.With("handler", "engine"),
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for engine endpoints.
// Patterns span the workflows and executions prefixes, so the group
// carries no prefix of its own.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/workflows/{id}/executions", Handler: h.Start},
			{Method: "POST", Pattern: "/executions/{id}/actions", Handler: h.Act},
			{Method: "GET", Pattern: "/executions/{id}/context", Handler: h.Context},
		},
	}
}

// Start creates a new execution of the workflow identified by the path.
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.FromContext(r.Context())
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, ErrDenied)
		return
	}

	workflowID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, executions.ErrInvalidRequest)
		return
	}

	exec, err := h.engine.Start(r.Context(), workflowID, identity)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, exec)
}

// Act applies one user action to the execution's current step. Accepts a
// JSON body for plain actions, or a multipart form with a "file" part for
// upload submissions.
func (h *Handler) Act(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.FromContext(r.Context())
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, ErrDenied)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, executions.ErrInvalidRequest)
		return
	}

	var req steps.Request
	if isMultipart(r) {
		req, err = h.parseMultipartAction(r, id)
	} else {
		err = json.NewDecoder(r.Body).Decode(&req)
		if err != nil && !errors.Is(err, steps.ErrUnknownAction) {
			err = errors.Join(executions.ErrInvalidRequest, err)
		}
	}
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	exec, err := h.engine.Act(r.Context(), id, identity, req)
	if err != nil {
		// An attachment stored for this action must not outlive it.
		if req.Document != nil {
			h.executions.DetachDocument(r.Context(), req.Document)
		}
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, exec)
}

// Context returns the render payload for the execution's current state.
func (h *Handler) Context(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.FromContext(r.Context())
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, ErrDenied)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, executions.ErrInvalidRequest)
		return
	}

	result, err := h.engine.Context(r.Context(), id, identity)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) parseMultipartAction(r *http.Request, id uuid.UUID) (steps.Request, error) {
	var req steps.Request

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		return req, errors.Join(executions.ErrInvalidRequest, err)
	}

	action, err := steps.ParseAction(r.FormValue("action"))
	if err != nil {
		return req, err
	}

	req.Action = action
	req.Notes = r.FormValue("notes")
	req.Value = r.FormValue("value")
	req.Confirm, _ = strconv.ParseBool(r.FormValue("confirm"))

	file, header, err := r.FormFile("file")
	if err == http.ErrMissingFile {
		return req, nil
	}
	if err != nil {
		return req, errors.Join(executions.ErrInvalidRequest, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return req, errors.Join(executions.ErrInvalidRequest, err)
	}

	contentType := detectContentType(header.Header.Get("Content-Type"), data)

	att, err := h.executions.AttachDocument(
		r.Context(), id,
		header.Filename, contentType, data,
	)
	if err != nil {
		return req, err
	}

	att.PageCount = extractPDFPageCount(h.logger, data, contentType)
	req.Document = att
	return req, nil
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

func detectContentType(header string, data []byte) string {
	header = strings.TrimSpace(header)
	if header != "" && header != "application/octet-stream" {
		return header
	}
	return http.DetectContentType(data)
}

func extractPDFPageCount(logger *slog.Logger, data []byte, contentType string) *int {
	if contentType != "application/pdf" {
		return nil
	}

	count, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		logger.Warn("failed to extract PDF page count", "error", err)
		return nil
	}

	return &count
}
