package commands

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/leadr/internal/core/session"
	"github.com/hay-kot/leadr/internal/tui"
)

type TuiCmd struct {
	flags *Flags

	// flag values
	noConfirm bool
}

// NewTuiCmd creates a new tui command
func NewTuiCmd(flags *Flags) *TuiCmd {
	return &TuiCmd{
		flags: flags,
	}
}

// Flags returns the TUI-specific flags for registration on the root command
func (cmd *TuiCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:        "no-confirm",
			Usage:       "delete leads without a confirmation prompt",
			Sources:     cli.EnvVars("LEADR_NO_CONFIRM"),
			Destination: &cmd.noConfirm,
		},
	}
}

// Run executes the TUI. Exported for use as default command.
func (cmd *TuiCmd) Run(ctx context.Context, c *cli.Command) error {
	return cmd.run(ctx, c)
}

func (cmd *TuiCmd) run(_ context.Context, _ *cli.Command) error {
	cfg := cmd.flags.Config

	opts := tui.Options{
		ConfirmDelete:      cfg.Dashboard.ConfirmDelete && !cmd.noConfirm,
		ClearDraftOnDelete: cfg.Dashboard.ClearDraftOnDelete,
		Logger:             log.With().Str("component", "tui").Logger(),
	}

	m := tui.New(cmd.flags.Client, cmd.flags.Session, cmd.flags.Gate, opts)
	p := tea.NewProgram(m, tea.WithAltScreen())

	// Login and logout also happen inside Update, so Send must not block it.
	unsubscribe := cmd.flags.Session.Subscribe(func(s session.Session) {
		go p.Send(tui.SessionChanged(s))
	})
	defer unsubscribe()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}

	return nil
}
