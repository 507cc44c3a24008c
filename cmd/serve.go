package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/songbook/internal/server"
	"github.com/desertthunder/songbook/internal/shared"
	"github.com/desertthunder/songbook/internal/web"
)

// Serve runs the JSON API and HTML pages until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	cfg := r.config.Server
	if cmd.IsSet("host") {
		cfg.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Port = cmd.Int("port")
	}

	router := server.NewAPI(r.db, r.config.Display, shared.WithLogger(r.logger, "component", "api"))

	if !cmd.Bool("api-only") {
		pages, err := web.NewHandler(r.songs, r.config.Display, shared.WithLogger(r.logger, "component", "web"))
		if err != nil {
			return fmt.Errorf("failed to load web pages: %w", err)
		}
		router.Handler(pages)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Serve(ctx, server.New(cfg.Addr(), router), r.logger)
}

// serveCommand runs the HTTP server
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the songbook API and tab pages over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Host to bind (default from config)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (default from config)",
			},
			&cli.BoolFlag{
				Name:  "api-only",
				Usage: "Skip the HTML pages",
			},
		},
		Action: r.Serve,
	}
}
