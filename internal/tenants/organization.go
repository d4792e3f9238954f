// Package tenants resolves the organization a caller belongs to.
// Organizations partition policy decisions; every authorization input
// carries the caller's organization id. Resolution is best-effort and
// never blocks a request: callers that match no organization act under
// the default organization.
package tenants

import (
	"time"

	"github.com/google/uuid"
)

// DefaultName is the name of the catch-all organization assigned to
// callers whose identity matches no registered mail domain.
const DefaultName = "default"

// Organization is a registered tenant keyed by mail domain.
type Organization struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Domain    string    `json:"domain"`
	CreatedAt time.Time `json:"created_at"`
}
