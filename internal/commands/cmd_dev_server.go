package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/leadr/internal/devserver"
	"github.com/hay-kot/leadr/internal/printer"
)

type DevServerCmd struct {
	flags *Flags
	addr  string
}

// NewDevServerCmd creates a new dev-server command
func NewDevServerCmd(flags *Flags) *DevServerCmd {
	return &DevServerCmd{flags: flags}
}

// Register adds the dev-server command to the application
func (cmd *DevServerCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "dev-server",
		Usage:     "Run an in-memory CRM API for local development",
		UsageText: "leadr dev-server [--addr :5000]",
		Description: `Serves the login, leads and external-data endpoints from memory. Data is
lost on exit. Credentials and the token secret come from the dev_server
section of the config file.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address (defaults to dev_server.addr)",
				Sources:     cli.EnvVars("LEADR_DEV_ADDR"),
				Destination: &cmd.addr,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *DevServerCmd) run(ctx context.Context, _ *cli.Command) error {
	p := printer.Ctx(ctx)
	dev := cmd.flags.Config.DevServer

	cfg := devserver.Config{
		Username: dev.Username,
		Password: dev.Password,
		Secret:   dev.Secret,
		TokenTTL: dev.TokenTTL,
		Logger:   log.With().Str("component", "devserver").Logger(),
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("dev server: %w", err)
	}

	addr := dev.Addr
	if cmd.addr != "" {
		addr = cmd.addr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           devserver.New(cfg).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	p.Successf("Dev server listening on %s", addr)
	p.Infof("Log in with username %q", dev.Username)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("dev server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown dev server: %w", err)
	}

	p.Infof("Dev server stopped")
	return nil
}
