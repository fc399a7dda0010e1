package commands

import (
	"github.com/spf13/cobra"

	"github.com/mosaic-portal/mosaic/cmd/mosaic/handlers"
)

// Serve returns the command that runs the API server.
//
// Flags:
//
//	--config, -c: Path to the service configuration file (default "mosaic.yaml")
func Serve() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the orchestrator API server",
		Long: `Serve runs the Mosaic orchestrator API.

On startup the command connects to Postgres, applies pending schema
migrations, and starts serving the template and dashboard API. Template
provisioning calls out to NocoDB and Grafana using the credentials from
the configuration file (or their environment overrides).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Serve(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "mosaic.yaml", "Path to configuration file")

	return cmd
}
