package handlers

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mosaic-portal/mosaic/internal/config"
	"github.com/mosaic-portal/mosaic/internal/platform/grafana"
	"github.com/mosaic-portal/mosaic/internal/platform/nocodb"
	"github.com/mosaic-portal/mosaic/internal/provisioning"
	"github.com/mosaic-portal/mosaic/internal/store"
)

// CleanupOptions selects what to tear down. Exactly one of TemplateID or an
// explicit resource id (TableID / DashboardUID) must be set.
type CleanupOptions struct {
	ConfigPath   string
	TemplateID   string
	TableID      string
	DashboardUID string
	KeepRecord   bool
}

// Cleanup deletes the external resources of a template, or explicitly named
// orphaned resources. Resource deletion is best-effort.
func Cleanup(ctx context.Context, opts CleanupOptions) error {
	if opts.TemplateID == "" && opts.TableID == "" && opts.DashboardUID == "" {
		return fmt.Errorf("one of --template, --table or --dashboard is required")
	}
	if opts.TemplateID != "" && (opts.TableID != "" || opts.DashboardUID != "") {
		return fmt.Errorf("--template cannot be combined with --table or --dashboard")
	}

	cfg, err := config.LoadFile(opts.ConfigPath)
	if err != nil {
		return err
	}

	tables := nocodb.NewClient(cfg.NocoDB.BaseURL, cfg.NocoDB.Token)
	dashboards := grafana.NewClient(cfg.Grafana.BaseURL, cfg.Grafana.Token, cfg.Grafana.DatasourceUID)

	if opts.TemplateID == "" {
		return cleanupOrphans(ctx, tables, dashboards, opts)
	}

	id, err := uuid.Parse(opts.TemplateID)
	if err != nil {
		return fmt.Errorf("invalid template id: %w", err)
	}

	db, err := store.Open(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	tpl, err := db.GetTemplate(ctx, id)
	if err != nil {
		return fmt.Errorf("load template: %w", err)
	}

	orchestrator := provisioning.NewOrchestrator(tables, dashboards, db, db)
	orchestrator.Deprovision(ctx, tpl)

	if opts.KeepRecord {
		fmt.Printf("Resources of template %s deleted; record kept.\n", id)
		return nil
	}

	if err := db.DeleteTemplate(ctx, id); err != nil {
		return fmt.Errorf("delete template record: %w", err)
	}
	fmt.Printf("Template %s deleted.\n", id)
	return nil
}

func cleanupOrphans(ctx context.Context, tables *nocodb.Client, dashboards *grafana.Client, opts CleanupOptions) error {
	if opts.TableID != "" {
		if err := tables.DeleteTable(ctx, opts.TableID); err != nil {
			fmt.Printf("Failed to delete table %s: %v\n", opts.TableID, err)
		} else {
			fmt.Printf("Table %s deleted.\n", opts.TableID)
		}
	}
	if opts.DashboardUID != "" {
		if err := dashboards.DeleteDashboard(ctx, opts.DashboardUID); err != nil {
			fmt.Printf("Failed to delete dashboard %s: %v\n", opts.DashboardUID, err)
		} else {
			fmt.Printf("Dashboard %s deleted.\n", opts.DashboardUID)
		}
	}
	return nil
}
