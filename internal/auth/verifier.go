package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/docketworks/docket/pkg/handlers"
)

// System verifies bearer tokens and resolves caller identities.
type System interface {
	// Middleware returns the identity-stamping HTTP middleware. Requests
	// without a verifiable token are rejected with 401 unless verification
	// is disabled.
	Middleware() func(http.Handler) http.Handler
}

type system struct {
	cfg      Config
	verifier *oidc.IDTokenVerifier
	logger   *slog.Logger
}

// New creates an auth System. With verification enabled it performs OIDC
// discovery against the configured issuer, so it requires network access
// at startup.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (System, error) {
	s := &system{
		cfg:    cfg,
		logger: logger.With("system", "auth"),
	}

	if !cfg.Enabled {
		s.logger.Warn(
			"token verification disabled; using fallback identity",
			"username", cfg.FallbackUsername,
		)
		return s, nil
	}

	provider, err := oidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery: %w", err)
	}

	oidcCfg := &oidc.Config{ClientID: cfg.ClientID}
	if cfg.ClientID == "" {
		oidcCfg = &oidc.Config{SkipClientIDCheck: true}
	}

	s.verifier = provider.Verifier(oidcCfg)
	return s, nil
}

func (s *system) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := s.resolve(r)
			if err != nil {
				handlers.RespondError(w, s.logger, http.StatusUnauthorized, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

type claims struct {
	PreferredUsername string   `json:"preferred_username"`
	Email             string   `json:"email"`
	Roles             []string `json:"roles"`
	Groups            []string `json:"groups"`
}

func (s *system) resolve(r *http.Request) (Identity, error) {
	if !s.cfg.Enabled {
		return Identity{
			Username: s.cfg.FallbackUsername,
			Roles:    s.cfg.FallbackRoles,
		}, nil
	}

	raw, ok := bearerToken(r)
	if !ok {
		return Identity{}, fmt.Errorf("missing bearer token")
	}

	token, err := s.verifier.Verify(r.Context(), raw)
	if err != nil {
		return Identity{}, fmt.Errorf("verify token: %w", err)
	}

	var c claims
	if err := token.Claims(&c); err != nil {
		return Identity{}, fmt.Errorf("parse claims: %w", err)
	}

	username := c.PreferredUsername
	if username == "" {
		username = c.Email
	}
	if username == "" {
		username = token.Subject
	}

	roles := c.Roles
	if len(roles) == 0 {
		roles = c.Groups
	}

	return Identity{
		Username: username,
		Roles:    roles,
		Domain:   DomainOf(c.Email),
	}, nil
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
