package provisioning

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mosaic-portal/mosaic/internal/dataset"
	"github.com/mosaic-portal/mosaic/internal/platform/grafana"
	"github.com/mosaic-portal/mosaic/internal/platform/nocodb"
	"github.com/mosaic-portal/mosaic/internal/store"
)

// mockTableService records calls and fails on demand per method.
type mockTableService struct {
	failBase   bool
	failCreate bool
	failForm   bool
	failDelete bool

	createCalls  int
	formCalls    int
	deleteCalls  []string
	createdTitle string
	formTitle    string
}

func (m *mockTableService) FirstBaseID(context.Context) (string, error) {
	if m.failBase {
		return "", fmt.Errorf("base lookup down")
	}
	return "b_default", nil
}

func (m *mockTableService) CreateTable(_ context.Context, _, title string, _ []dataset.Field) (*nocodb.CreatedTable, error) {
	m.createCalls++
	if m.failCreate {
		return nil, fmt.Errorf("table create down")
	}
	m.createdTitle = title
	return &nocodb.CreatedTable{ID: "md_table1", TableName: "nc_p_table1"}, nil
}

func (m *mockTableService) CreateSharedForm(_ context.Context, _, title string) (*nocodb.SharedForm, error) {
	m.formCalls++
	if m.failForm {
		return nil, fmt.Errorf("form create down")
	}
	m.formTitle = title
	return &nocodb.SharedForm{ViewID: "vw_form1", ShareToken: "share-token-1"}, nil
}

func (m *mockTableService) DeleteTable(_ context.Context, tableID string) error {
	m.deleteCalls = append(m.deleteCalls, tableID)
	if m.failDelete {
		return fmt.Errorf("table delete down")
	}
	return nil
}

// mockDashboardService records calls and fails on demand per method.
type mockDashboardService struct {
	failCreate bool
	failDelete bool

	createCalls int
	deleteCalls []string
}

func (m *mockDashboardService) CreateDashboard(_ context.Context, _, _ string, _ []dataset.Field) (*grafana.CreatedDashboard, error) {
	m.createCalls++
	if m.failCreate {
		return nil, fmt.Errorf("dashboard create down")
	}
	return &grafana.CreatedDashboard{UID: "dash-uid-1", URL: "/d/dash-uid-1/weight-log"}, nil
}

func (m *mockDashboardService) DeleteDashboard(_ context.Context, uid string) error {
	m.deleteCalls = append(m.deleteCalls, uid)
	if m.failDelete {
		return fmt.Errorf("dashboard delete down")
	}
	return nil
}

// mockTemplateStore returns the params it was given as a stored record.
type mockTemplateStore struct {
	failCreate bool

	created []store.CreateTemplateParams
}

func (m *mockTemplateStore) CreateTemplate(_ context.Context, params store.CreateTemplateParams) (*store.Template, error) {
	if m.failCreate {
		return nil, fmt.Errorf("database down")
	}
	m.created = append(m.created, params)
	return &store.Template{
		ID:                  uuid.New(),
		Name:                params.Name,
		Description:         params.Description,
		Fields:              params.Fields,
		CreatedBy:           params.CreatedBy,
		NocoDBTableID:       params.NocoDBTableID,
		NocoDBFormID:        params.NocoDBFormID,
		GrafanaDashboardUID: params.GrafanaDashboardUID,
	}, nil
}

// mockVisualizationStore records portal dashboards and panels.
type mockVisualizationStore struct {
	failDashboard bool
	failPanel     bool

	dashboards []store.CreateDashboardParams
	panels     []store.CreatePanelParams
}

func (m *mockVisualizationStore) CreateDashboard(_ context.Context, ownerID uuid.UUID, params store.CreateDashboardParams) (*store.Dashboard, error) {
	if m.failDashboard {
		return nil, fmt.Errorf("portal dashboard create down")
	}
	m.dashboards = append(m.dashboards, params)
	return &store.Dashboard{ID: uuid.New(), OwnerID: ownerID, Title: params.Title}, nil
}

func (m *mockVisualizationStore) CreatePanel(_ context.Context, _ uuid.UUID, params store.CreatePanelParams) (*store.Panel, error) {
	if m.failPanel {
		return nil, fmt.Errorf("portal panel create down")
	}
	m.panels = append(m.panels, params)
	return &store.Panel{ID: uuid.New(), PanelType: params.PanelType}, nil
}

func newTestOrchestrator(tables *mockTableService, dashboards *mockDashboardService, templates *mockTemplateStore, portal *mockVisualizationStore) *Orchestrator {
	return NewOrchestrator(tables, dashboards, templates, portal)
}

func weightLogDefinition() dataset.Definition {
	return dataset.Definition{
		Name:        "Weight Log",
		Description: "daily weigh-ins",
		Fields: []dataset.Field{
			{Name: "weight", Type: dataset.FieldNumber, Unit: "kg"},
			{Name: "mood", Type: dataset.FieldText},
			{Name: "measured_at", Type: dataset.FieldDate},
		},
	}
}
