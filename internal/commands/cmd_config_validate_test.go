package commands

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/leadr/internal/core/config"
	"github.com/hay-kot/leadr/internal/core/session"
)

func newValidateCmd(t *testing.T, mutate func(*config.Config)) (*ConfigValidateCmd, *config.Config) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	if mutate != nil {
		mutate(&cfg)
	}
	flags := &Flags{
		ConfigPath: filepath.Join(t.TempDir(), "config.yaml"),
		Config:     &cfg,
	}
	return NewConfigValidateCmd(flags), &cfg
}

func TestConfigValidate_DefaultsReport(t *testing.T) {
	cmd, cfg := newValidateCmd(t, nil)

	report := cmd.buildReport(cfg)

	assert.True(t, report.Valid)
	assert.Empty(t, report.Problems)
	assert.Equal(t, cfg.SessionFile(), report.SessionFile)
	assert.Equal(t, config.DefaultBaseURL, report.BaseURL)
	assert.Equal(t, []viewAccess{
		{Route: session.RouteDashboard, Protected: true},
		{Route: session.RouteExternal, Protected: true},
		{Route: session.RouteLogin, Protected: false},
	}, report.Views)
}

func TestConfigValidate_ProblemsKeyedByField(t *testing.T) {
	cmd, cfg := newValidateCmd(t, func(c *config.Config) {
		c.API.BaseURL = "ftp://crm.example.com"
		c.DevServer.Secret = ""
	})

	report := cmd.buildReport(cfg)

	require.False(t, report.Valid)
	keys := make([]string, len(report.Problems))
	for i, p := range report.Problems {
		keys[i] = p.Key
	}
	assert.ElementsMatch(t, []string{"api.base_url", "dev_server.secret"}, keys)
}

func TestConfigValidate_UnprotectedViewReported(t *testing.T) {
	cmd, cfg := newValidateCmd(t, func(c *config.Config) {
		c.ProtectedRoutes = []string{session.RouteDashboard}
	})

	report := cmd.buildReport(cfg)

	assert.True(t, report.Valid)
	assert.Contains(t, report.Views, viewAccess{Route: session.RouteExternal, Protected: false})
	require.NotEmpty(t, report.Warnings)
	assert.Equal(t, session.RouteExternal, report.Warnings[0].Item)
}
