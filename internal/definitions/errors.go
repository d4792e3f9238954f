package definitions

import (
	"errors"
	"net/http"
)

// Domain errors for workflow definition operations.
var (
	ErrNotFound            = errors.New("workflow not found")
	ErrDuplicate           = errors.New("workflow name already exists")
	ErrMalformedDefinition = errors.New("malformed workflow definition")
	ErrDuplicateStepName   = errors.New("step names must be unique within a workflow")
	ErrEmptyDefinition     = errors.New("workflow must contain at least one step")
)

// MapHTTPStatus maps definition domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrMalformedDefinition) ||
		errors.Is(err, ErrDuplicateStepName) ||
		errors.Is(err, ErrEmptyDefinition) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
