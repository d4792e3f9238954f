package api

import (
	"net/http"

	"github.com/docketworks/docket/internal/config"
	"github.com/docketworks/docket/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
) {
	routes.Register(
		mux,
		domain.Definitions.Handler().Routes(),
		domain.Executions.Handler().Routes(),
		domain.Engine.Handler(cfg.API.MaxUploadSizeBytes()).Routes(),
	)
}
