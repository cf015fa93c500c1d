package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/leadr/internal/core/feed"
	"github.com/hay-kot/leadr/internal/core/session"
	"github.com/hay-kot/leadr/internal/printer"
)

type ExternalCmd struct {
	flags  *Flags
	format string
}

// NewExternalCmd creates a new external command
func NewExternalCmd(flags *Flags) *ExternalCmd {
	return &ExternalCmd{flags: flags}
}

// Register adds the external command to the application
func (cmd *ExternalCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "external",
		Usage:       "Show the external user feed",
		UsageText:   "leadr external [--format table|json]",
		Description: "Fetches the read-only list of external users. Nothing is cached.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (table, json)",
				Value:       "table",
				Destination: &cmd.format,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ExternalCmd) run(ctx context.Context, c *cli.Command) error {
	viewer := feed.NewViewer(cmd.flags.Gate, cmd.flags.Client)
	defer viewer.Leave()

	users, err := viewer.Enter(ctx)
	if err != nil {
		if errors.Is(err, session.ErrUnauthenticated) && !cmd.flags.Session.Current().LoggedIn() {
			printer.Ctx(ctx).Hintf("Run 'leadr login' first")
			return err
		}
		return cmd.flags.handleAuthError(ctx, err)
	}

	out := c.Root().Writer

	if cmd.format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(users)
	}

	if len(users) == 0 {
		printer.Ctx(ctx).Infof("No external users")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tEMAIL\tPHONE\tCITY\tCOMPANY")
	for _, u := range users {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", u.Name, u.Email, u.Phone, u.Address.City, u.Company.Name)
	}
	return w.Flush()
}
