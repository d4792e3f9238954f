// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"fmt"
	"net/http"

	"github.com/docketworks/docket/internal/config"
	"github.com/docketworks/docket/internal/infrastructure"
	"github.com/docketworks/docket/pkg/middleware"
	"github.com/docketworks/docket/pkg/module"
	"github.com/docketworks/docket/pkg/openapi"
)

// NewModule creates the API module with all domain handlers and middleware.
// Every request passes CORS, request logging, and identity resolution
// before reaching a handler.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(cfg, runtime)

	mux := http.NewServeMux()
	registerRoutes(mux, domain, cfg)

	spec, err := buildSpec(cfg)
	if err != nil {
		return nil, fmt.Errorf("build openapi spec: %w", err)
	}
	specBytes, err := openapi.MarshalJSON(spec)
	if err != nil {
		return nil, fmt.Errorf("marshal openapi spec: %w", err)
	}
	mux.HandleFunc("GET /openapi.json", openapi.ServeSpec(specBytes))

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Infrastructure.Logger))
	m.Use(runtime.Auth.Middleware())

	return m, nil
}
