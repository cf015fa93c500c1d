package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hay-kot/criterio"

	"github.com/hay-kot/leadr/internal/core/session"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// ValidateDeep performs comprehensive validation of the configuration.
// Unlike Validate(), this also checks file access and the dev server settings.
func (c *Config) ValidateDeep(configPath string) error {
	var errs criterio.FieldErrorsBuilder

	if err := c.Validate(); err != nil {
		var fieldErrs criterio.FieldErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			errs = errs.Append(fe.Field, fe.Err)
		}
	}

	errs = c.validateFileAccess(errs, configPath)
	errs = c.validateDevServer(errs)

	return errs.ToError()
}

func (c *Config) validateFileAccess(errs criterio.FieldErrorsBuilder, configPath string) criterio.FieldErrorsBuilder {
	if configPath != "" {
		info, err := os.Stat(configPath)
		switch {
		case err == nil && info.IsDir():
			errs = errs.Append("config", fmt.Errorf("%s is a directory, not a file", configPath))
		case err != nil && !os.IsNotExist(err):
			errs = errs.Append("config", fmt.Errorf("cannot access %s: %w", configPath, err))
		}
	}

	if c.DataDir != "" {
		info, err := os.Stat(c.DataDir)
		switch {
		case err == nil && !info.IsDir():
			errs = errs.Append("data_dir", fmt.Errorf("%s exists but is not a directory", c.DataDir))
		case err != nil && !os.IsNotExist(err):
			errs = errs.Append("data_dir", fmt.Errorf("cannot access %s: %w", c.DataDir, err))
		}
	}

	return errs
}

func (c *Config) validateDevServer(errs criterio.FieldErrorsBuilder) criterio.FieldErrorsBuilder {
	if c.DevServer.Username == "" {
		errs = errs.Append("dev_server.username", errors.New("cannot be empty"))
	}
	if c.DevServer.Password == "" {
		errs = errs.Append("dev_server.password", errors.New("cannot be empty"))
	}
	if c.DevServer.Secret == "" {
		errs = errs.Append("dev_server.secret", errors.New("cannot be empty"))
	}
	if _, _, err := net.SplitHostPort(c.DevServer.Addr); err != nil {
		errs = errs.Append("dev_server.addr", fmt.Errorf("invalid address %q: %w", c.DevServer.Addr, err))
	}
	if c.DevServer.TokenTTL < 0 {
		errs = errs.Append("dev_server.token_ttl", errors.New("must not be negative"))
	}
	return errs
}

// Warnings returns non-fatal issues with the configuration.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if u, err := url.Parse(c.API.BaseURL); err == nil && u.Scheme == "http" && !isLoopback(u.Hostname()) {
		warnings = append(warnings, ValidationWarning{
			Category: "API",
			Item:     "api.base_url",
			Message:  "bearer tokens will be sent over plain http",
		})
	}

	if len(c.ProtectedRoutes) == 0 {
		warnings = append(warnings, ValidationWarning{
			Category: "Routes",
			Item:     "protected_routes",
			Message:  "no routes are protected; every view is reachable without logging in",
		})
	}

	if len(c.ProtectedRoutes) > 0 {
		for _, route := range []string{session.RouteDashboard, session.RouteExternal} {
			if !session.NewGate(nil, c.ProtectedRoutes).IsProtected(route) {
				warnings = append(warnings, ValidationWarning{
					Category: "Routes",
					Item:     route,
					Message:  "not protected; the view opens without a login and its requests fail",
				})
			}
		}
	}

	for _, pattern := range c.ProtectedRoutes {
		if ok, _ := doublestar.Match(pattern, session.RouteLogin); ok {
			warnings = append(warnings, ValidationWarning{
				Category: "Routes",
				Item:     pattern,
				Message:  "matches the login route, which is always reachable",
			})
		}
	}

	if c.DevServer.Secret == DefaultConfig().DevServer.Secret {
		warnings = append(warnings, ValidationWarning{
			Category: "Dev Server",
			Item:     "dev_server.secret",
			Message:  "using the built-in signing secret",
		})
	}

	return warnings
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
