package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/leadr/internal/core/config"
	"github.com/hay-kot/leadr/internal/core/session"
	"github.com/hay-kot/leadr/internal/printer"
)

type ConfigValidateCmd struct {
	flags  *Flags
	format string
}

// NewConfigValidateCmd creates a new config validate command.
func NewConfigValidateCmd(flags *Flags) *ConfigValidateCmd {
	return &ConfigValidateCmd{flags: flags}
}

// Register adds the config validate command to the application.
func (cmd *ConfigValidateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate configuration file",
				UsageText:   "leadr config validate [--format text|json]",
				Description: "Reports the effective API target, which views require a login, and any invalid or risky settings.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.run,
			},
		},
	})

	return app
}

// configReport is the result of validating the loaded configuration.
type configReport struct {
	File        string                     `json:"file"`
	SessionFile string                     `json:"session_file"`
	BaseURL     string                     `json:"base_url"`
	Views       []viewAccess               `json:"views"`
	Valid       bool                       `json:"valid"`
	Problems    []configProblem            `json:"problems,omitempty"`
	Warnings    []config.ValidationWarning `json:"warnings,omitempty"`
}

// viewAccess says whether a TUI view needs a login under the configured patterns.
type viewAccess struct {
	Route     string `json:"route"`
	Protected bool   `json:"protected"`
}

type configProblem struct {
	Key     string `json:"key"`
	Message string `json:"message"`
}

func (cmd *ConfigValidateCmd) run(ctx context.Context, c *cli.Command) error {
	cfg := cmd.flags.Config
	if cfg == nil {
		return errors.New("configuration not loaded")
	}

	report := cmd.buildReport(cfg)

	if cmd.format == "json" {
		enc := json.NewEncoder(c.Root().Writer)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		printReport(printer.Ctx(ctx), report)
	}

	if !report.Valid {
		return cli.Exit("", 1)
	}
	return nil
}

func (cmd *ConfigValidateCmd) buildReport(cfg *config.Config) configReport {
	gate := session.NewGate(nil, cfg.ProtectedRoutes)

	report := configReport{
		File:        cmd.flags.ConfigPath,
		SessionFile: cfg.SessionFile(),
		BaseURL:     cfg.API.BaseURL,
		Warnings:    cfg.Warnings(),
	}
	for _, route := range []string{session.RouteDashboard, session.RouteExternal, session.RouteLogin} {
		report.Views = append(report.Views, viewAccess{Route: route, Protected: gate.IsProtected(route)})
	}

	err := cfg.ValidateDeep(cmd.flags.ConfigPath)
	report.Valid = err == nil

	var fieldErrs criterio.FieldErrors
	switch {
	case err == nil:
	case errors.As(err, &fieldErrs):
		for _, fe := range fieldErrs {
			report.Problems = append(report.Problems, configProblem{Key: fe.Field, Message: fe.Err.Error()})
		}
	default:
		report.Problems = append(report.Problems, configProblem{Message: err.Error()})
	}

	return report
}

func printReport(p *printer.Printer, r configReport) {
	p.Section("Configuration")
	p.Field("file", r.File)
	p.Field("session", r.SessionFile)
	p.Field("api", r.BaseURL)
	p.Printf("")

	p.Section("Views")
	for _, v := range r.Views {
		access := "open"
		if v.Protected {
			access = "login required"
		}
		p.Field(v.Route, access)
	}
	p.Printf("")

	if len(r.Problems) > 0 {
		p.Section("Problems")
		for _, pr := range r.Problems {
			key := pr.Key
			if key == "" {
				key = "config"
			}
			p.FailItem(key, pr.Message)
		}
		p.Printf("")
	}

	if len(r.Warnings) > 0 {
		p.Section("Warnings")
		for _, w := range r.Warnings {
			label := w.Category
			if w.Item != "" {
				label += " (" + w.Item + ")"
			}
			p.WarnItem(label, w.Message)
		}
		p.Printf("")
	}

	if r.Valid {
		p.Successf("Configuration is valid%s", warningSuffix(len(r.Warnings)))
		return
	}
	p.Errorf("%d problem(s)%s", len(r.Problems), warningSuffix(len(r.Warnings)))
}

func warningSuffix(n int) string {
	switch n {
	case 0:
		return ""
	case 1:
		return " (1 warning)"
	default:
		return fmt.Sprintf(" (%d warnings)", n)
	}
}
