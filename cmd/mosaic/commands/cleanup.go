package commands

import (
	"github.com/spf13/cobra"

	"github.com/mosaic-portal/mosaic/cmd/mosaic/handlers"
)

// Cleanup returns the command that tears down a template's external
// resources.
//
// Provisioning compensates only the table stage; a dashboard-stage failure
// or a crash mid-saga can leave orphaned tables or dashboards behind. This
// command lets an operator finish the teardown for a given template record,
// or delete stray resources by explicit id when no record exists.
func Cleanup() *cobra.Command {
	var (
		configPath   string
		templateID   string
		tableID      string
		dashboardUID string
		keepRecord   bool
	)

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete a template's external resources",
		Long: `Cleanup deletes the NocoDB table and Grafana dashboard belonging to a
template, then removes the template record.

Example:
  mosaic cleanup -c mosaic.yaml --template 1b4e28ba-2fa1-11d2-883f-0016d3cca427

Orphaned resources without a template record can be targeted directly:
  mosaic cleanup -c mosaic.yaml --table tbl_abc123
  mosaic cleanup -c mosaic.yaml --dashboard mosaic-weight-log

Deletion is best-effort: failures are logged and the remaining resources
are still attempted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Cleanup(cmd.Context(), handlers.CleanupOptions{
				ConfigPath:   configPath,
				TemplateID:   templateID,
				TableID:      tableID,
				DashboardUID: dashboardUID,
				KeepRecord:   keepRecord,
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "mosaic.yaml", "Path to configuration file")
	cmd.Flags().StringVar(&templateID, "template", "", "Template id to deprovision")
	cmd.Flags().StringVar(&tableID, "table", "", "Orphaned NocoDB table id to delete")
	cmd.Flags().StringVar(&dashboardUID, "dashboard", "", "Orphaned Grafana dashboard uid to delete")
	cmd.Flags().BoolVar(&keepRecord, "keep-record", false, "Keep the template record after deleting resources")

	return cmd
}
