package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/docketworks/docket/internal/config"
)

const baseConfig = `
shutdown_timeout = "30s"
version = "0.1.0"

[server]
host = "0.0.0.0"
port = 8080
read_timeout = "1m"
write_timeout = "15m"
shutdown_timeout = "30s"

[database]
host = "localhost"
port = 5432
name = "docket"
user = "docket"
password = "docket"
ssl_mode = "disable"
max_open_conns = 25
max_idle_conns = 5
conn_max_lifetime = "15m"
conn_timeout = "5s"

[storage]
container_name = "documents"
connection_string = "DefaultEndpointsProtocol=http;AccountName=docketstore;AccountKey=key;BlobEndpoint=http://127.0.0.1:10000/docketstore;"

[policy]
url = "http://opa:8181"
timeout = "10s"

[auth]
enabled = false
fallback_username = "dev"
fallback_roles = ["manager"]

[api]
base_path = "/api"

[api.cors]
enabled = false

[api.pagination]
default_page_size = 25
max_page_size = 50
`

const overlayConfig = `
[server]
port = 9090

[database]
host = "prodhost"
`

// minimalConfig provides the minimum fields required for validation to
// pass (db name, db user, storage connection string).
const minimalConfig = `
shutdown_timeout = "30s"

[server]
port = 8080

[database]
name = "docket"
user = "docket"

[storage]
connection_string = "conn"

[api]
base_path = "/api"
`

func writeConfig(t *testing.T, dir, filename, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", filename, err)
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(orig) })
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Host != "localhost" {
		t.Errorf("db host: got %s, want localhost", cfg.Database.Host)
	}
	if cfg.Storage.ContainerName != "documents" {
		t.Errorf("storage container: got %s, want documents", cfg.Storage.ContainerName)
	}
	if cfg.Policy.URL != "http://opa:8181" {
		t.Errorf("policy url: got %s, want http://opa:8181", cfg.Policy.URL)
	}
	if cfg.Policy.TimeoutDuration() != 10*time.Second {
		t.Errorf("policy timeout: got %v, want 10s", cfg.Policy.TimeoutDuration())
	}
	if cfg.Auth.Enabled {
		t.Error("auth should be disabled")
	}
	if cfg.Auth.FallbackUsername != "dev" {
		t.Errorf("auth fallback_username: got %s, want dev", cfg.Auth.FallbackUsername)
	}
	if cfg.API.BasePath != "/api" {
		t.Errorf("api base_path: got %s, want /api", cfg.API.BasePath)
	}
	if cfg.API.Pagination.DefaultPageSize != 25 {
		t.Errorf("pagination default_page_size: got %d, want 25", cfg.API.Pagination.DefaultPageSize)
	}
	if cfg.API.Pagination.MaxPageSize != 50 {
		t.Errorf("pagination max_page_size: got %d, want 50", cfg.API.Pagination.MaxPageSize)
	}
}

func TestLoadWithOverlay(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	writeConfig(t, dir, "config.staging.toml", overlayConfig)
	chdir(t, dir)

	t.Setenv("DOCKET_ENV", "staging")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("server port: got %d, want overlay 9090", cfg.Server.Port)
	}
	if cfg.Database.Host != "prodhost" {
		t.Errorf("db host: got %s, want overlay prodhost", cfg.Database.Host)
	}

	// Fields the overlay does not touch keep their base values.
	if cfg.Database.Name != "docket" {
		t.Errorf("db name: got %s, want docket", cfg.Database.Name)
	}
	if cfg.Storage.ContainerName != "documents" {
		t.Errorf("storage container: got %s, want documents", cfg.Storage.ContainerName)
	}
}

func TestLoadWithoutConfigFile(t *testing.T) {
	chdir(t, t.TempDir())

	t.Setenv("DOCKET_DB_NAME", "testdb")
	t.Setenv("DOCKET_DB_USER", "testuser")
	t.Setenv("DOCKET_STORAGE_CONNECTION_STRING", "conn")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port: got %d, want default 8080", cfg.Server.Port)
	}
	if cfg.Database.Name != "testdb" {
		t.Errorf("db name: got %s, want testdb", cfg.Database.Name)
	}
	if cfg.Policy.URL != "http://localhost:8181" {
		t.Errorf("policy url: got %s, want default", cfg.Policy.URL)
	}
	if cfg.Auth.FallbackUsername != "local" {
		t.Errorf("auth fallback_username: got %s, want default local", cfg.Auth.FallbackUsername)
	}
	if cfg.ShutdownTimeout != "30s" {
		t.Errorf("shutdown_timeout: got %s, want default 30s", cfg.ShutdownTimeout)
	}
}

func TestEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	t.Setenv("DOCKET_VERSION", "2.0.0")
	t.Setenv("DOCKET_SERVER_PORT", "3000")
	t.Setenv("DOCKET_POLICY_URL", "http://opa.internal:8181")
	t.Setenv("DOCKET_AUTH_FALLBACK_ROLES", "manager,senior_manager")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Version != "2.0.0" {
		t.Errorf("version: got %s, want 2.0.0", cfg.Version)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("server port: got %d, want 3000", cfg.Server.Port)
	}
	if cfg.Policy.URL != "http://opa.internal:8181" {
		t.Errorf("policy url: got %s, want env override", cfg.Policy.URL)
	}
	want := []string{"manager", "senior_manager"}
	if len(cfg.Auth.FallbackRoles) != len(want) {
		t.Fatalf("fallback_roles: got %v, want %v", cfg.Auth.FallbackRoles, want)
	}
	for i, role := range want {
		if cfg.Auth.FallbackRoles[i] != role {
			t.Errorf("fallback_roles[%d]: got %s, want %s", i, cfg.Auth.FallbackRoles[i], role)
		}
	}
}

func TestMinimalConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", minimalConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("server host: got %s, want default 0.0.0.0", cfg.Server.Host)
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("db port: got %d, want default 5432", cfg.Database.Port)
	}
	if cfg.Storage.ContainerName != "documents" {
		t.Errorf("storage container: got %s, want default documents", cfg.Storage.ContainerName)
	}
	if cfg.API.MaxUploadSize != "50MB" {
		t.Errorf("max_upload_size: got %s, want default 50MB", cfg.API.MaxUploadSize)
	}
	if cfg.API.MaxUploadSizeBytes() != 50*1024*1024 {
		t.Errorf("max_upload_size bytes: got %d", cfg.API.MaxUploadSizeBytes())
	}
}

func TestAuthEnabledRequiresIssuer(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", minimalConfig)
	chdir(t, dir)

	t.Setenv("DOCKET_AUTH_ENABLED", "true")

	_, err := config.Load()
	if err == nil {
		t.Fatal("expected error when auth is enabled without issuer_url")
	}
	if !strings.Contains(err.Error(), "issuer_url") {
		t.Errorf("error %q does not mention issuer_url", err.Error())
	}
}

func TestMalformedConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", "not valid toml [")
	chdir(t, dir)

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for malformed config")
	}
}

func TestEnvName(t *testing.T) {
	cfg := &config.Config{}

	if got := cfg.Env(); got != "local" {
		t.Errorf("Env() = %s, want local", got)
	}

	t.Setenv("DOCKET_ENV", "production")
	if got := cfg.Env(); got != "production" {
		t.Errorf("Env() = %s, want production", got)
	}
}
