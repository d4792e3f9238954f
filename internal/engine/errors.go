package engine

import (
	"errors"
	"net/http"

	"github.com/docketworks/docket/internal/definitions"
	"github.com/docketworks/docket/internal/executions"
	"github.com/docketworks/docket/internal/steps"
)

// Domain errors for engine operations.
var (
	// ErrAdvanceFailed wraps any failure inside the advance protocol.
	// Nothing is persisted when it is returned; the record is left at
	// its last stored state.
	ErrAdvanceFailed = errors.New("advance failed")

	// ErrExecutionFinished rejects actions against terminal executions.
	// The one exception is a rejected execution sitting at an upload step,
	// which still accepts the recovery re-upload.
	ErrExecutionFinished = errors.New("execution already finished")

	// ErrDenied is returned when the authorization gate denies the
	// caller the current step's action.
	ErrDenied = errors.New("access denied")
)

// MapHTTPStatus maps engine errors, and the domain errors an engine
// operation can surface, to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrDenied):
		return http.StatusForbidden
	case errors.Is(err, ErrExecutionFinished):
		return http.StatusConflict
	case errors.Is(err, ErrAdvanceFailed):
		return http.StatusInternalServerError
	}

	if status := steps.MapHTTPStatus(err); status != http.StatusInternalServerError {
		return status
	}
	if status := definitions.MapHTTPStatus(err); status != http.StatusInternalServerError {
		return status
	}
	return executions.MapHTTPStatus(err)
}
