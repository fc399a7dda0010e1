package commands

import (
	"github.com/spf13/cobra"

	"github.com/mosaic-portal/mosaic/cmd/mosaic/handlers"
)

// Migrate returns the command that applies database migrations and exits.
func Migrate() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Migrate(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "mosaic.yaml", "Path to configuration file")

	return cmd
}
