package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/hay-kot/leadr/internal/core/validate"
	"github.com/hay-kot/leadr/internal/crm"
	"github.com/hay-kot/leadr/internal/printer"
)

type LoginCmd struct {
	flags    *Flags
	username string
	password string
}

// NewLoginCmd creates a new login command
func NewLoginCmd(flags *Flags) *LoginCmd {
	return &LoginCmd{flags: flags}
}

// Register adds the login command to the application
func (cmd *LoginCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "login",
		Usage:     "Sign in to the CRM API",
		UsageText: "leadr login [options]",
		Description: `Exchanges a username and password for a token and stores it in the data
directory. Missing values are prompted for when stdin is a terminal; the
password is never echoed.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "username",
				Aliases:     []string{"u"},
				Usage:       "account username",
				Sources:     cli.EnvVars("LEADR_USERNAME"),
				Destination: &cmd.username,
			},
			&cli.StringFlag{
				Name:        "password",
				Aliases:     []string{"p"},
				Usage:       "account password (prompted when omitted)",
				Sources:     cli.EnvVars("LEADR_PASSWORD"),
				Destination: &cmd.password,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *LoginCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	username, password, err := cmd.credentials(c.Root().Writer)
	if err != nil {
		return err
	}

	if err := validate.Credentials(username, password); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	token, err := cmd.flags.Client.Login(ctx, username, password)
	if err != nil {
		p.Errorf("%s", crm.Message(err))
		return cli.Exit("", 1)
	}

	cmd.flags.Session.Login(ctx, token)
	p.Successf("Logged in as %s", username)
	return nil
}

// credentials fills in missing values from the terminal.
func (cmd *LoginCmd) credentials(out io.Writer) (string, string, error) {
	username, password := cmd.username, cmd.password

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return username, password, nil
	}

	if username == "" {
		_, _ = fmt.Fprint(out, "Username: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && err != io.EOF {
			return "", "", fmt.Errorf("read username: %w", err)
		}
		username = strings.TrimSpace(line)
	}

	if password == "" {
		_, _ = fmt.Fprint(out, "Password: ")
		raw, err := term.ReadPassword(fd)
		_, _ = fmt.Fprintln(out)
		if err != nil {
			return "", "", fmt.Errorf("read password: %w", err)
		}
		password = string(raw)
	}

	return username, password, nil
}
