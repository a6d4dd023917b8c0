package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/domdrift/internal/mcp"
	"github.com/dshills/domdrift/internal/storage"
)

func serveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// stdout is reserved for the MCP protocol; the logger writes to stderr
			a.log.Info("domdrift MCP server starting",
				"version", version,
				"build_mode", storage.BuildMode,
				"driver", storage.DriverName)

			server, err := mcp.NewServer(a.cfg, a.log)
			if err != nil {
				a.log.Error("failed to create MCP server", "error", err)
				return err
			}

			// Set up graceful shutdown
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigChan)

			errChan := make(chan error, 1)
			go func() {
				a.log.Info("MCP server ready, listening on stdio")
				errChan <- server.Serve(ctx)
			}()

			select {
			case sig := <-sigChan:
				a.log.Info("received signal, shutting down", "signal", sig)
				cancel()
			case err := <-errChan:
				if err != nil {
					a.log.Error("server error", "error", err)
					return err
				}
			}

			a.log.Info("server stopped")
			return nil
		},
	}
}
