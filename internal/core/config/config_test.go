package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/leadr/internal/core/session"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	dataDir := t.TempDir()

	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"), dataDir)
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, cfg.API.BaseURL)
	assert.Equal(t, session.DefaultProtectedRoutes, cfg.ProtectedRoutes)
	assert.False(t, cfg.Dashboard.ClearDraftOnDelete)
	assert.True(t, cfg.Dashboard.ConfirmDelete)
	assert.Equal(t, dataDir, cfg.DataDir)
	assert.Equal(t, filepath.Join(dataDir, "session.json"), cfg.SessionFile())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, `
api:
  base_url: https://crm.example.com/api
  timeout: 5s
  rate_limit: 10
dashboard:
  clear_draft_on_delete: true
  confirm_delete: false
protected_routes:
  - /
dev_server:
  addr: 127.0.0.1:9000
`)

	cfg, err := Load(path, t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "https://crm.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.InDelta(t, 10.0, cfg.API.RateLimit, 0.0001)
	assert.Equal(t, 1, cfg.API.RateBurst, "zero burst falls back to default")
	assert.True(t, cfg.Dashboard.ClearDraftOnDelete)
	assert.False(t, cfg.Dashboard.ConfirmDelete)
	assert.Equal(t, []string{"/"}, cfg.ProtectedRoutes)
	assert.Equal(t, "127.0.0.1:9000", cfg.DevServer.Addr)
	assert.Equal(t, 24*time.Hour, cfg.DevServer.TokenTTL)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "api: [")

	_, err := Load(path, t.TempDir())
	assert.ErrorContains(t, err, "parse config file")
}

func TestLoad_InvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, `
api:
  base_url: localhost:5000
  rate_limit: -1
protected_routes:
  - "/[bad"
`)

	_, err := Load(path, t.TempDir())

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Len(t, fieldErrs, 3)
	assert.ErrorContains(t, err, "invalid config")
}

func TestLoad_EmptyDataDir(t *testing.T) {
	_, err := Load("", "")
	assert.ErrorContains(t, err, "data directory cannot be empty")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("LEADR_API_URL", "https://env.example.com")

	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "api:\n  base_url: https://file.example.com\n")

	cfg, err := Load(path, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com", cfg.API.BaseURL)
}

func TestLoad_DotEnvNextToConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "")
	writeFile(t, filepath.Join(dir, ".env"), "LEADR_DEV_SECRET=from-dotenv\n")
	t.Cleanup(func() { _ = os.Unsetenv("LEADR_DEV_SECRET") })

	cfg, err := Load(path, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.DevServer.Secret)
}
