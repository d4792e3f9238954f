// Package infrastructure provides core service initialization for application startup.
// It assembles common dependencies (logging, database, storage, auth) that domain
// systems require.
package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/docketworks/docket/internal/auth"
	"github.com/docketworks/docket/internal/config"
	"github.com/docketworks/docket/pkg/database"
	"github.com/docketworks/docket/pkg/lifecycle"
	"github.com/docketworks/docket/pkg/storage"
)

// Infrastructure holds the core systems required by all domain modules.
// It provides a single point of initialization for lifecycle coordination,
// logging, database access, file storage, and identity resolution.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
	Auth      auth.System
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
// With token verification enabled, OIDC discovery runs here and requires
// the issuer to be reachable.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	authSystem, err := auth.New(context.Background(), cfg.Auth, logger)
	if err != nil {
		return nil, fmt.Errorf("auth init failed: %w", err)
	}

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Database:  db,
		Storage:   store,
		Auth:      authSystem,
	}, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
// Database and storage hooks are registered for startup and shutdown coordination.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	return nil
}
