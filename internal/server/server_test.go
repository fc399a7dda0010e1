package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mosaic-portal/mosaic/internal/dataset"
	"github.com/mosaic-portal/mosaic/internal/store"
)

type mockProvisioner struct {
	failProvision bool

	provisioned   []dataset.Definition
	deprovisioned []*store.Template
}

func (m *mockProvisioner) Provision(_ context.Context, def dataset.Definition, requester uuid.UUID) (*store.Template, error) {
	if m.failProvision {
		return nil, fmt.Errorf("table stage failed: service down")
	}
	m.provisioned = append(m.provisioned, def)
	fields, _ := json.Marshal(def.Fields)
	return &store.Template{
		ID:                  uuid.New(),
		Name:                def.Name,
		Fields:              fields,
		CreatedBy:           requester,
		NocoDBTableID:       "md_table1",
		NocoDBFormID:        "share-token-1",
		GrafanaDashboardUID: "dash-uid-1",
	}, nil
}

func (m *mockProvisioner) Deprovision(_ context.Context, tpl *store.Template) {
	m.deprovisioned = append(m.deprovisioned, tpl)
}

type mockTemplateDirectory struct {
	templates map[uuid.UUID]*store.Template
	deleted   []uuid.UUID
}

func newMockTemplateDirectory() *mockTemplateDirectory {
	return &mockTemplateDirectory{templates: make(map[uuid.UUID]*store.Template)}
}

func (m *mockTemplateDirectory) GetTemplate(_ context.Context, id uuid.UUID) (*store.Template, error) {
	tpl, ok := m.templates[id]
	if !ok {
		return nil, fmt.Errorf("template %s: %w", id, store.ErrNotFound)
	}
	return tpl, nil
}

func (m *mockTemplateDirectory) ListTemplates(context.Context) ([]*store.Template, error) {
	var tpls []*store.Template
	for _, tpl := range m.templates {
		tpls = append(tpls, tpl)
	}
	return tpls, nil
}

func (m *mockTemplateDirectory) DeleteTemplate(_ context.Context, id uuid.UUID) error {
	if _, ok := m.templates[id]; !ok {
		return fmt.Errorf("template %s: %w", id, store.ErrNotFound)
	}
	delete(m.templates, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type mockPortalStore struct {
	dashboards map[uuid.UUID]*store.Dashboard
	panels     map[uuid.UUID]*store.Panel
}

func newMockPortalStore() *mockPortalStore {
	return &mockPortalStore{
		dashboards: make(map[uuid.UUID]*store.Dashboard),
		panels:     make(map[uuid.UUID]*store.Panel),
	}
}

func (m *mockPortalStore) CreateDashboard(_ context.Context, ownerID uuid.UUID, params store.CreateDashboardParams) (*store.Dashboard, error) {
	dash := &store.Dashboard{
		ID:       uuid.New(),
		OwnerID:  ownerID,
		Title:    params.Title,
		Slug:     store.Slugify(params.Title),
		IsShared: params.IsShared,
	}
	m.dashboards[dash.ID] = dash
	return dash, nil
}

func (m *mockPortalStore) GetDashboard(_ context.Context, id uuid.UUID) (*store.Dashboard, error) {
	dash, ok := m.dashboards[id]
	if !ok {
		return nil, fmt.Errorf("dashboard %s: %w", id, store.ErrNotFound)
	}
	return dash, nil
}

func (m *mockPortalStore) ListDashboards(_ context.Context, userID uuid.UUID) ([]*store.Dashboard, error) {
	var dashes []*store.Dashboard
	for _, dash := range m.dashboards {
		if dash.OwnerID == userID || dash.IsShared {
			dashes = append(dashes, dash)
		}
	}
	return dashes, nil
}

func (m *mockPortalStore) DeleteDashboard(_ context.Context, id uuid.UUID) error {
	if _, ok := m.dashboards[id]; !ok {
		return fmt.Errorf("dashboard %s: %w", id, store.ErrNotFound)
	}
	delete(m.dashboards, id)
	return nil
}

func (m *mockPortalStore) CreatePanel(_ context.Context, dashboardID uuid.UUID, params store.CreatePanelParams) (*store.Panel, error) {
	panel := &store.Panel{
		ID:          uuid.New(),
		DashboardID: dashboardID,
		Title:       params.Title,
		PanelType:   params.PanelType,
		SourceURL:   params.SourceURL,
	}
	m.panels[panel.ID] = panel
	return panel, nil
}

func (m *mockPortalStore) GetPanel(_ context.Context, id uuid.UUID) (*store.Panel, error) {
	panel, ok := m.panels[id]
	if !ok {
		return nil, fmt.Errorf("panel %s: %w", id, store.ErrNotFound)
	}
	return panel, nil
}

func (m *mockPortalStore) ListPanels(_ context.Context, dashboardID uuid.UUID) ([]*store.Panel, error) {
	var panels []*store.Panel
	for _, p := range m.panels {
		if p.DashboardID == dashboardID {
			panels = append(panels, p)
		}
	}
	return panels, nil
}

func (m *mockPortalStore) DeletePanel(_ context.Context, id uuid.UUID) error {
	if _, ok := m.panels[id]; !ok {
		return fmt.Errorf("panel %s: %w", id, store.ErrNotFound)
	}
	delete(m.panels, id)
	return nil
}

type testServer struct {
	handler     http.Handler
	provisioner *mockProvisioner
	templates   *mockTemplateDirectory
	portal      *mockPortalStore
}

// newTestServer builds a server with header-trusting identity resolution.
func newTestServer() *testServer {
	provisioner := &mockProvisioner{}
	templates := newMockTemplateDirectory()
	portal := newMockPortalStore()
	srv := New(provisioner, templates, portal, "")
	return &testServer{
		handler:     srv.Handler(),
		provisioner: provisioner,
		templates:   templates,
		portal:      portal,
	}
}

func (ts *testServer) request(t *testing.T, method, path string, body any, userID uuid.UUID, role string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if userID != uuid.Nil {
		req.Header.Set("X-User-Id", userID.String())
	}
	if role != "" {
		req.Header.Set("X-User-Role", role)
	}

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func TestCreateTemplate(t *testing.T) {
	t.Parallel()

	ts := newTestServer()
	userID := uuid.New()

	rec := ts.request(t, http.MethodPost, "/api/templates", dataset.Definition{
		Name: "Weight Log",
		Fields: []dataset.Field{
			{Name: "weight", Type: dataset.FieldNumber, Unit: "kg"},
		},
	}, userID, "")

	require.Equal(t, http.StatusCreated, rec.Code)

	var tpl store.Template
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tpl))
	assert.Equal(t, "Weight Log", tpl.Name)
	assert.Equal(t, userID, tpl.CreatedBy)
	assert.Equal(t, "md_table1", tpl.NocoDBTableID)
	require.Len(t, ts.provisioner.provisioned, 1)
}

func TestCreateTemplate_InvalidDefinition(t *testing.T) {
	t.Parallel()

	ts := newTestServer()

	rec := ts.request(t, http.MethodPost, "/api/templates", dataset.Definition{
		Name:   "Bad",
		Fields: []dataset.Field{{Name: "123bad", Type: dataset.FieldNumber}},
	}, uuid.New(), "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	// Validation rejects before the saga starts.
	assert.Empty(t, ts.provisioner.provisioned)
}

func TestCreateTemplate_InvalidBody(t *testing.T) {
	t.Parallel()

	ts := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/api/templates", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateTemplate_ProvisionFailure(t *testing.T) {
	t.Parallel()

	ts := newTestServer()
	ts.provisioner.failProvision = true

	rec := ts.request(t, http.MethodPost, "/api/templates", dataset.Definition{
		Name:   "Weight Log",
		Fields: []dataset.Field{{Name: "weight", Type: dataset.FieldNumber}},
	}, uuid.New(), "")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestGetTemplate(t *testing.T) {
	t.Parallel()

	ts := newTestServer()
	id := uuid.New()
	ts.templates.templates[id] = &store.Template{ID: id, Name: "Weight Log"}

	rec := ts.request(t, http.MethodGet, "/api/templates/"+id.String(), nil, uuid.New(), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var tpl store.Template
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tpl))
	assert.Equal(t, id, tpl.ID)
}

func TestGetTemplate_NotFound(t *testing.T) {
	t.Parallel()

	ts := newTestServer()
	rec := ts.request(t, http.MethodGet, "/api/templates/"+uuid.NewString(), nil, uuid.New(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetTemplate_BadID(t *testing.T) {
	t.Parallel()

	ts := newTestServer()
	rec := ts.request(t, http.MethodGet, "/api/templates/not-a-uuid", nil, uuid.New(), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteTemplate_AdminOnly(t *testing.T) {
	t.Parallel()

	ts := newTestServer()
	id := uuid.New()
	ts.templates.templates[id] = &store.Template{ID: id, NocoDBTableID: "md_table1"}

	rec := ts.request(t, http.MethodDelete, "/api/templates/"+id.String(), nil, uuid.New(), "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, ts.provisioner.deprovisioned)
}

func TestDeleteTemplate(t *testing.T) {
	t.Parallel()

	ts := newTestServer()
	id := uuid.New()
	ts.templates.templates[id] = &store.Template{ID: id, NocoDBTableID: "md_table1"}

	rec := ts.request(t, http.MethodDelete, "/api/templates/"+id.String(), nil, uuid.New(), "admin")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// External resources are torn down before the record is removed.
	require.Len(t, ts.provisioner.deprovisioned, 1)
	assert.Equal(t, id, ts.provisioner.deprovisioned[0].ID)
	assert.Equal(t, []uuid.UUID{id}, ts.templates.deleted)
}

func TestListTemplates(t *testing.T) {
	t.Parallel()

	ts := newTestServer()
	id := uuid.New()
	ts.templates.templates[id] = &store.Template{ID: id, Name: "Weight Log"}

	rec := ts.request(t, http.MethodGet, "/api/templates", nil, uuid.New(), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var tpls []*store.Template
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tpls))
	assert.Len(t, tpls, 1)
}

func TestCreateDashboard(t *testing.T) {
	t.Parallel()

	ts := newTestServer()
	userID := uuid.New()

	rec := ts.request(t, http.MethodPost, "/api/dashboards", store.CreateDashboardParams{
		Title: "Crew Overview",
	}, userID, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var dash store.Dashboard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dash))
	assert.Equal(t, "Crew Overview", dash.Title)
	assert.Equal(t, "crew-overview", dash.Slug)
	assert.Equal(t, userID, dash.OwnerID)
}

func TestCreateDashboard_MissingTitle(t *testing.T) {
	t.Parallel()

	ts := newTestServer()
	rec := ts.request(t, http.MethodPost, "/api/dashboards", store.CreateDashboardParams{}, uuid.New(), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteDashboard_OwnerOnly(t *testing.T) {
	t.Parallel()

	ts := newTestServer()
	owner := uuid.New()
	dash, err := ts.portal.CreateDashboard(context.Background(), owner, store.CreateDashboardParams{Title: "Mine"})
	require.NoError(t, err)

	rec := ts.request(t, http.MethodDelete, "/api/dashboards/"+dash.ID.String(), nil, uuid.New(), "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.request(t, http.MethodDelete, "/api/dashboards/"+dash.ID.String(), nil, owner, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestDeleteDashboard_AdminOverride(t *testing.T) {
	t.Parallel()

	ts := newTestServer()
	dash, err := ts.portal.CreateDashboard(context.Background(), uuid.New(), store.CreateDashboardParams{Title: "Theirs"})
	require.NoError(t, err)

	rec := ts.request(t, http.MethodDelete, "/api/dashboards/"+dash.ID.String(), nil, uuid.New(), "admin")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestPanels_CRUD(t *testing.T) {
	t.Parallel()

	ts := newTestServer()
	owner := uuid.New()
	dash, err := ts.portal.CreateDashboard(context.Background(), owner, store.CreateDashboardParams{Title: "Stats"})
	require.NoError(t, err)

	rec := ts.request(t, http.MethodPost, "/api/dashboards/"+dash.ID.String()+"/panels", store.CreatePanelParams{
		PanelType: "grafana_panel",
		SourceURL: "/proxy/grafana/d/u/s?viewPanel=panel-1",
	}, owner, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var panel store.Panel
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &panel))
	assert.Equal(t, dash.ID, panel.DashboardID)

	rec = ts.request(t, http.MethodGet, "/api/dashboards/"+dash.ID.String()+"/panels", nil, owner, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var panels []*store.Panel
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &panels))
	assert.Len(t, panels, 1)

	rec = ts.request(t, http.MethodGet, "/api/panels/"+panel.ID.String(), nil, owner, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.request(t, http.MethodDelete, "/api/panels/"+panel.ID.String(), nil, owner, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCreatePanel_MissingType(t *testing.T) {
	t.Parallel()

	ts := newTestServer()
	dash, err := ts.portal.CreateDashboard(context.Background(), uuid.New(), store.CreateDashboardParams{Title: "Stats"})
	require.NoError(t, err)

	rec := ts.request(t, http.MethodPost, "/api/dashboards/"+dash.ID.String()+"/panels",
		store.CreatePanelParams{}, uuid.New(), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreatePanel_DashboardNotFound(t *testing.T) {
	t.Parallel()

	ts := newTestServer()
	rec := ts.request(t, http.MethodPost, "/api/dashboards/"+uuid.NewString()+"/panels",
		store.CreatePanelParams{PanelType: "grafana_panel"}, uuid.New(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	t.Parallel()

	ts := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetrics(t *testing.T) {
	t.Parallel()

	ts := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
