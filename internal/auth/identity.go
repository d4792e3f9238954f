// Package auth establishes the caller identity for each request.
// Identity is resolved once by the middleware and carried explicitly on the
// request context; downstream systems receive it as a value, never by
// reaching back into ambient session state.
package auth

import (
	"context"
	"strings"
)

// Identity is the authenticated caller of a request.
type Identity struct {
	// Username is the principal name, typically the token subject or
	// preferred_username claim.
	Username string `json:"username"`

	// Roles are the group or role claims carried by the token.
	Roles []string `json:"roles"`

	// Domain is the mail domain of the caller, used for organization
	// resolution. Empty when the token carries no email claim.
	Domain string `json:"domain"`
}

// DomainOf extracts the mail domain from an email address.
// Returns "" for values without an "@".
func DomainOf(email string) string {
	if _, domain, ok := strings.Cut(email, "@"); ok {
		return strings.ToLower(domain)
	}
	return ""
}

type contextKey struct{}

// WithIdentity returns a context carrying the given identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext extracts the identity established by the middleware.
// The second return is false for requests that never passed through it.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}
