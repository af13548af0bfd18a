package cli

import (
	"github.com/spf13/cobra"

	"github.com/osmtree/osmtree/internal/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve search, relation lookup and export over HTTP:

  GET  /healthz
  GET  /api/search?q=...
  GET  /api/relations/{id}
  GET  /api/relations/{id}/geojson
  POST /api/export`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.Config.Server.Addr
			}
			ctx := cmd.Context()

			backend := c.openCache(ctx)
			defer backend.Close()

			srv := server.New(server.Options{
				Relations: c.newOverpass(backend),
				Search:    c.newNominatim(backend),
				Runner:    c.newRunner(backend),
				Logger:    c.Logger.WithPrefix("http"),
			})
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")

	return cmd
}
