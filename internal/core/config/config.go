// Package config handles configuration loading and validation for leadr.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hay-kot/criterio"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/hay-kot/leadr/internal/core/session"
)

// DefaultBaseURL is the API root used when none is configured.
const DefaultBaseURL = "http://localhost:5000"

// Config holds the application configuration.
type Config struct {
	API             APIConfig       `yaml:"api"`
	ProtectedRoutes []string        `yaml:"protected_routes"`
	Dashboard       DashboardConfig `yaml:"dashboard"`
	DevServer       DevServerConfig `yaml:"dev_server"`
	DataDir         string          `yaml:"-"` // set by caller, not from config file
}

// APIConfig configures the CRM API client.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	// Timeout bounds a whole request. Zero means no timeout.
	Timeout time.Duration `yaml:"timeout"`
	// RateLimit is requests per second. Zero disables limiting.
	RateLimit float64 `yaml:"rate_limit"`
	RateBurst int     `yaml:"rate_burst"`
}

// DashboardConfig tunes dashboard behavior.
type DashboardConfig struct {
	// ClearDraftOnDelete resets the form when the lead being edited is deleted.
	ClearDraftOnDelete bool `yaml:"clear_draft_on_delete"`
	// ConfirmDelete asks before deleting a lead in the TUI.
	ConfirmDelete bool `yaml:"confirm_delete"`
}

// DevServerConfig configures the local fake API.
type DevServerConfig struct {
	Addr     string        `yaml:"addr"`
	Username string        `yaml:"username"`
	Password string        `yaml:"password"`
	Secret   string        `yaml:"secret"`
	TokenTTL time.Duration `yaml:"token_ttl"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL:   DefaultBaseURL,
			RateBurst: 1,
		},
		ProtectedRoutes: slices.Clone(session.DefaultProtectedRoutes),
		Dashboard: DashboardConfig{
			ConfirmDelete: true,
		},
		DevServer: DevServerConfig{
			Addr:     ":5000",
			Username: "admin",
			Password: "admin",
			Secret:   "leadr-dev-secret",
			TokenTTL: 24 * time.Hour,
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
//
// A .env file next to the config file, or in the working directory, is loaded
// into the process environment first. Existing variables are not overridden.
func Load(configPath, dataDir string) (*Config, error) {
	if err := loadDotEnv(configPath); err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func loadDotEnv(configPath string) error {
	candidates := []string{".env"}
	if configPath != "" {
		candidates = append([]string{filepath.Join(filepath.Dir(configPath), ".env")}, candidates...)
	}

	for _, path := range candidates {
		err := godotenv.Load(path)
		if err == nil || errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// applyEnv lets the environment override file values for the settings most
// often changed per shell.
func (c *Config) applyEnv() {
	if v := os.Getenv("LEADR_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("LEADR_DEV_USERNAME"); v != "" {
		c.DevServer.Username = v
	}
	if v := os.Getenv("LEADR_DEV_PASSWORD"); v != "" {
		c.DevServer.Password = v
	}
	if v := os.Getenv("LEADR_DEV_SECRET"); v != "" {
		c.DevServer.Secret = v
	}
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.API.BaseURL == "" {
		c.API.BaseURL = defaults.API.BaseURL
	}
	if c.API.RateBurst == 0 {
		c.API.RateBurst = defaults.API.RateBurst
	}
	if c.ProtectedRoutes == nil {
		c.ProtectedRoutes = defaults.ProtectedRoutes
	}
	if c.DevServer.Addr == "" {
		c.DevServer.Addr = defaults.DevServer.Addr
	}
	if c.DevServer.TokenTTL == 0 {
		c.DevServer.TokenTTL = defaults.DevServer.TokenTTL
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	var errs criterio.FieldErrorsBuilder

	if c.DataDir == "" {
		errs = errs.Append("data_dir", errors.New("data directory cannot be empty"))
	}

	if u, err := url.Parse(c.API.BaseURL); err != nil {
		errs = errs.Append("api.base_url", fmt.Errorf("invalid url: %w", err))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = errs.Append("api.base_url", fmt.Errorf("scheme must be http or https, got %q", u.Scheme))
	} else if u.Host == "" {
		errs = errs.Append("api.base_url", errors.New("host is required"))
	}

	if c.API.Timeout < 0 {
		errs = errs.Append("api.timeout", errors.New("must not be negative"))
	}
	if c.API.RateLimit < 0 {
		errs = errs.Append("api.rate_limit", errors.New("must not be negative"))
	}
	if c.API.RateBurst < 1 {
		errs = errs.Append("api.rate_burst", errors.New("must be at least 1"))
	}

	for i, pattern := range c.ProtectedRoutes {
		if !doublestar.ValidatePattern(pattern) {
			errs = errs.Append(fmt.Sprintf("protected_routes[%d]", i), fmt.Errorf("invalid pattern %q", pattern))
		}
	}

	return errs.ToError()
}

// SessionFile returns the path to the persisted session.
func (c *Config) SessionFile() string {
	return filepath.Join(c.DataDir, "session.json")
}
