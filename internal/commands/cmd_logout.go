package commands

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/leadr/internal/printer"
)

type LogoutCmd struct {
	flags *Flags
}

// NewLogoutCmd creates a new logout command
func NewLogoutCmd(flags *Flags) *LogoutCmd {
	return &LogoutCmd{flags: flags}
}

// Register adds the logout command to the application
func (cmd *LogoutCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "logout",
		Usage:       "Forget the stored token",
		UsageText:   "leadr logout",
		Description: "Clears the session. Logging out while logged out is a no-op.",
		Action:      cmd.run,
	})

	return app
}

func (cmd *LogoutCmd) run(ctx context.Context, _ *cli.Command) error {
	p := printer.Ctx(ctx)

	if !cmd.flags.Session.Current().LoggedIn() {
		p.Infof("Not logged in")
		return nil
	}

	cmd.flags.Session.Logout(ctx)
	p.Successf("Logged out")
	return nil
}
