package commands

import (
	"github.com/spf13/cobra"

	"github.com/mosaic-portal/mosaic/cmd/mosaic/handlers"
)

// Init returns the command for interactively creating a service configuration.
//
// Flags:
//
//	--output, -o: Path to output file (default "mosaic.yaml")
func Init() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Interactively create a service configuration",
		Long: `Interactively create a service configuration file.

The wizard asks for the listen address, the Postgres connection string,
and the NocoDB and Grafana endpoints and credentials. Secrets may be
left empty and supplied at runtime via NOCODB_TOKEN, GRAFANA_TOKEN and
MOSAIC_AUTH_SECRET.

When stdin is not a terminal, a commented starter configuration is
written instead.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Init(cmd.Context(), outputPath)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "mosaic.yaml", "Output file path")

	return cmd
}
