package commands

import (
	"context"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/leadr/internal/core/session"
	"github.com/hay-kot/leadr/internal/printer"
)

type WhoamiCmd struct {
	flags *Flags
}

// NewWhoamiCmd creates a new whoami command
func NewWhoamiCmd(flags *Flags) *WhoamiCmd {
	return &WhoamiCmd{flags: flags}
}

// Register adds the whoami command to the application
func (cmd *WhoamiCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "whoami",
		Usage:     "Show the current session",
		UsageText: "leadr whoami",
		Description: `Shows whether a token is stored and, for JWT tokens, the subject and
expiry it claims. Claims are decoded locally and not verified.`,
		Action: cmd.run,
	})

	return app
}

func (cmd *WhoamiCmd) run(ctx context.Context, _ *cli.Command) error {
	p := printer.Ctx(ctx)

	token, ok := cmd.flags.Session.CurrentToken()
	if !ok {
		p.Infof("Not logged in")
		return nil
	}

	p.Successf("Logged in")
	p.Field("api", cmd.flags.Client.BaseURL())

	claims, ok := session.ParseClaims(token)
	if !ok {
		p.Field("token", "opaque")
		return nil
	}

	if claims.Subject != "" {
		p.Field("subject", claims.Subject)
	}
	if !claims.IssuedAt.IsZero() {
		p.Field("issued", claims.IssuedAt.Local().Format(time.DateTime))
	}
	if !claims.ExpiresAt.IsZero() {
		p.Field("expires", claims.ExpiresAt.Local().Format(time.DateTime))
	}
	if claims.Expired(time.Now()) {
		p.Warnf("Token has expired; the server will reject it")
	}

	return nil
}
