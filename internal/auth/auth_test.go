package auth_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/docketworks/docket/internal/auth"
)

func TestDomainOf(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  string
	}{
		{"plain address", "alice@example.com", "example.com"},
		{"uppercase domain", "alice@EXAMPLE.COM", "example.com"},
		{"no at sign", "alice", ""},
		{"empty", "", ""},
		{"multiple at signs", "a@b@example.com", "b@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := auth.DomainOf(tt.email); got != tt.want {
				t.Errorf("DomainOf(%q) = %q, want %q", tt.email, got, tt.want)
			}
		})
	}
}

func TestIdentityContextRoundTrip(t *testing.T) {
	id := auth.Identity{
		Username: "alice",
		Roles:    []string{"manager"},
		Domain:   "example.com",
	}

	ctx := auth.WithIdentity(context.Background(), id)

	got, ok := auth.FromContext(ctx)
	if !ok {
		t.Fatal("identity missing from context")
	}
	if got.Username != "alice" || got.Domain != "example.com" {
		t.Errorf("identity = %+v", got)
	}

	if _, ok := auth.FromContext(context.Background()); ok {
		t.Error("bare context should carry no identity")
	}
}

func TestDisabledMiddlewareStampsFallback(t *testing.T) {
	cfg := auth.Config{
		FallbackUsername: "dev",
		FallbackRoles:    []string{"manager", "senior_manager"},
	}

	sys, err := auth.New(context.Background(), cfg, slog.Default())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var got auth.Identity
	var ok bool
	handler := sys.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = auth.FromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/executions", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !ok {
		t.Fatal("identity missing from request context")
	}
	if got.Username != "dev" {
		t.Errorf("username = %s, want dev", got.Username)
	}
	if !slices.Equal(got.Roles, []string{"manager", "senior_manager"}) {
		t.Errorf("roles = %v", got.Roles)
	}
}

func TestEnabledWithoutIssuerFailsDiscovery(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	cfg := auth.Config{Enabled: true, IssuerURL: srv.URL}

	if _, err := auth.New(context.Background(), cfg, slog.Default()); err == nil {
		t.Fatal("expected discovery error against non-OIDC endpoint")
	}
}

func TestEnabledMiddlewareRejectsMissingToken(t *testing.T) {
	// A minimal OIDC discovery document is enough to construct the
	// verifier; token verification itself never runs without a token.
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"issuer": "` + srv.URL + `",
			"authorization_endpoint": "` + srv.URL + `/auth",
			"token_endpoint": "` + srv.URL + `/token",
			"jwks_uri": "` + srv.URL + `/keys"
		}`))
	})

	cfg := auth.Config{Enabled: true, IssuerURL: srv.URL}
	sys, err := auth.New(context.Background(), cfg, slog.Default())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	handler := sys.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run without a token")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/executions", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
