package steps

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain errors for step operations. Validation errors wrap ErrValidation
// so callers can distinguish re-promptable input problems from data faults.
var (
	ErrUnknownKind   = errors.New("unknown step type")
	ErrUnknownAction = errors.New("unknown step action")

	ErrValidation           = errors.New("step action validation failed")
	ErrActionNotSupported   = fmt.Errorf("%w: action not supported by step", ErrValidation)
	ErrDocumentRequired     = fmt.Errorf("%w: a document must be attached", ErrValidation)
	ErrDocumentAttached     = fmt.Errorf("%w: a document is already attached", ErrValidation)
	ErrNotesRequired        = fmt.Errorf("%w: notes must not be empty", ErrValidation)
	ErrConfirmationRequired = fmt.Errorf("%w: rejection must be confirmed", ErrValidation)
)

// MapHTTPStatus maps step domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrValidation) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrUnknownKind) || errors.Is(err, ErrUnknownAction) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
