package executions

import (
	"errors"
	"net/http"
)

// Domain errors for execution operations.
var (
	ErrNotFound   = errors.New("execution not found")
	ErrDuplicate  = errors.New("execution already exists")
	ErrStale      = errors.New("execution was modified concurrently")
	ErrNoDocument = errors.New("execution has no document attached")

	ErrInvalidRequest = errors.New("invalid execution request")
)

// MapHTTPStatus maps execution domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrNoDocument) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) || errors.Is(err, ErrStale) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidRequest) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
