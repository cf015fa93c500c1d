package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/hay-kot/leadr/internal/core/config"
	"github.com/hay-kot/leadr/internal/core/session"
	"github.com/hay-kot/leadr/internal/crm"
	"github.com/hay-kot/leadr/internal/dashboard"
	"github.com/hay-kot/leadr/internal/printer"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	DataDir    string
	APIURL     string

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config

	// Session holds the persisted token and notifies subscribers on change
	Session *session.Manager

	// Gate decides which routes and commands require a login
	Gate *session.Gate

	// Client is the CRM API client, reading its token from Session
	Client *crm.Client
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "leadr", "config.yaml")
}

// DefaultDataDir returns the default data directory using XDG_DATA_HOME.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "leadr")
}

// requireRoute consults the gate for the view a command stands in for. A
// redirect prints a login hint and returns session.ErrUnauthenticated.
func (f *Flags) requireRoute(ctx context.Context, route string) error {
	if f.Gate.CanEnter(route) == session.Allow {
		return nil
	}
	printer.Ctx(ctx).Hintf("Run 'leadr login' first")
	return fmt.Errorf("%s: %w", route, session.ErrUnauthenticated)
}

// handleAuthError logs out when the server rejected the stored token, so the
// next command is gated instead of failing the same way.
func (f *Flags) handleAuthError(ctx context.Context, err error) error {
	if errors.Is(err, session.ErrUnauthenticated) && f.Session.Current().LoggedIn() {
		f.Session.Logout(ctx)
		printer.Ctx(ctx).Warnf("Session expired, logged out")
		printer.Ctx(ctx).Hintf("Run 'leadr login' to sign in again")
	}
	return err
}

// newDashboard creates a reconciler bound to the CRM client.
func (f *Flags) newDashboard() *dashboard.Reconciler {
	return dashboard.New(f.Client, dashboard.Options{
		ClearDraftOnDelete: f.Config.Dashboard.ClearDraftOnDelete,
		Logger:             log.With().Str("component", "dashboard").Logger(),
	})
}
