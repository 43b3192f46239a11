package main

import (
	"context"
	"errors"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/starford/ansuz/internal/mcpserver"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Expose the repository over MCP on stdin/stdout",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			org, _, err := openOrg(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := mcpserver.New(org)
			g, gCtx := errgroup.WithContext(ctx)
			g.Go(func() error {
				if err := srv.Serve(gCtx); err != nil && !errors.Is(err, context.Canceled) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gCtx.Done()
				slog.Info("shutting down MCP server")
				return nil
			})
			return g.Wait()
		},
	}
}
