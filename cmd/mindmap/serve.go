package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	_ "hackverse-mindmap/docs/swagger"
	"hackverse-mindmap/internal/di"
	"hackverse-mindmap/internal/interfaces/http/rest"
)

func newServeCommand(g *globals) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the resource service in-process",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.config()
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Server.Port = port
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			container, cleanup, err := di.InitializeContainer(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			brand.Fprintf(cmd.ErrOrStderr(), "Serving on %s\n", cfg.Server.Addr())
			return rest.Serve(ctx, cfg.Server, container.Router, container.Logging.Logger)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "Override the configured port")
	return cmd
}
