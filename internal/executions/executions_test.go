package executions_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/docketworks/docket/internal/executions"
	"github.com/docketworks/docket/internal/steps"
)

func TestStatusTerminal(t *testing.T) {
	tests := []struct {
		status executions.Status
		want   bool
	}{
		{executions.StatusInProgress, false},
		{executions.StatusCompleted, true},
		{executions.StatusRejected, true},
		{executions.Status("Pending"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.Terminal(); got != tt.want {
				t.Errorf("Terminal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasDocument(t *testing.T) {
	exec := &executions.Execution{}
	if exec.HasDocument() {
		t.Error("empty execution should have no document")
	}

	exec.Document = &steps.Attachment{}
	if exec.HasDocument() {
		t.Error("attachment without a key is not a stored document")
	}

	exec.Document.Key = "executions/x/report.pdf"
	if !exec.HasDocument() {
		t.Error("attachment with a key is a stored document")
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", executions.ErrNotFound, http.StatusNotFound},
		{"no document", executions.ErrNoDocument, http.StatusNotFound},
		{"stale", executions.ErrStale, http.StatusConflict},
		{"duplicate", executions.ErrDuplicate, http.StatusConflict},
		{"invalid request", executions.ErrInvalidRequest, http.StatusBadRequest},
		{"wrapped stale", fmt.Errorf("update: %w", executions.ErrStale), http.StatusConflict},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := executions.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}
