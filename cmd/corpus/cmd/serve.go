package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/corpuskit/corpus/internal/config"
	"github.com/corpuskit/corpus/internal/errors"
	"github.com/corpuskit/corpus/internal/server"
)

// newServeCmd creates the serve command.
func newServeCmd() *cobra.Command {
	var (
		transport string
		addr      string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the retrieval API",
		Long: `Serve exposes list, file retrieval and ranked search over the registered
collections. The stdio transport speaks MCP for agent clients; the http
transport exposes the same operations as a JSON API.

The catalog file is watched for changes, so collections added or removed by
other corpus invocations are picked up without a restart.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load("")
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}

			store, err := openStore()
			if err != nil {
				return err
			}
			svc, err := server.NewService(store, cfg.Server.CacheSize)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := svc.WatchCatalog(ctx); err != nil {
				// The server still works without the watcher; caches just go
				// stale until restart.
				cmd.PrintErrf("warning: catalog watch disabled: %s\n", err)
			}

			switch transport {
			case "stdio":
				return server.NewMCPServer(svc).Run(ctx)
			case "http":
				return server.NewHTTPServer(svc, server.HTTPConfig{
					Addr:           addr,
					RequestTimeout: cfg.Server.RequestTimeout,
				}).Start(ctx)
			default:
				return errors.Validation("unknown transport: "+transport, nil).
					WithSuggestion("valid transports are stdio and http")
			}
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport: stdio (MCP) or http")
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (default from config)")
	return cmd
}
