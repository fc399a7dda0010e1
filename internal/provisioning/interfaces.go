package provisioning

import (
	"context"

	"github.com/google/uuid"

	"github.com/mosaic-portal/mosaic/internal/dataset"
	"github.com/mosaic-portal/mosaic/internal/platform/grafana"
	"github.com/mosaic-portal/mosaic/internal/platform/nocodb"
	"github.com/mosaic-portal/mosaic/internal/store"
)

// TableService is the subset of the table-service API the saga depends on.
// Implemented by nocodb.Client.
type TableService interface {
	// FirstBaseID resolves the container the table is created in.
	FirstBaseID(ctx context.Context) (string, error)

	// CreateTable creates the table with all columns in one call and does
	// not return until the table is queryable (or the consistency wait
	// gives up).
	CreateTable(ctx context.Context, baseID, title string, fields []dataset.Field) (*nocodb.CreatedTable, error)

	// CreateSharedForm creates a form view on the table and enables public
	// sharing, returning the embeddable share token.
	CreateSharedForm(ctx context.Context, tableID, title string) (*nocodb.SharedForm, error)

	// DeleteTable deletes the table. Used for compensation and deprovisioning.
	DeleteTable(ctx context.Context, tableID string) error
}

// DashboardService is the subset of the dashboard-service API the saga
// depends on. Implemented by grafana.Client.
type DashboardService interface {
	CreateDashboard(ctx context.Context, title, tableName string, fields []dataset.Field) (*grafana.CreatedDashboard, error)
	DeleteDashboard(ctx context.Context, uid string) error
}

// TemplateStore persists the final provisioned record.
// Implemented by store.Client.
type TemplateStore interface {
	CreateTemplate(ctx context.Context, params store.CreateTemplateParams) (*store.Template, error)
}

// VisualizationStore creates portal dashboards and panels. Used only by the
// best-effort auto-visualize step. Implemented by store.Client.
type VisualizationStore interface {
	CreateDashboard(ctx context.Context, ownerID uuid.UUID, params store.CreateDashboardParams) (*store.Dashboard, error)
	CreatePanel(ctx context.Context, dashboardID uuid.UUID, params store.CreatePanelParams) (*store.Panel, error)
}
