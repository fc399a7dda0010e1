// Package server exposes the HTTP API: template provisioning and lookup,
// portal dashboard and panel CRUD, health, and metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mosaic-portal/mosaic/internal/auth"
	"github.com/mosaic-portal/mosaic/internal/dataset"
	"github.com/mosaic-portal/mosaic/internal/store"
)

// Provisioner runs the dataset provisioning saga. Implemented by
// provisioning.Orchestrator.
type Provisioner interface {
	Provision(ctx context.Context, def dataset.Definition, requester uuid.UUID) (*store.Template, error)
	Deprovision(ctx context.Context, tpl *store.Template)
}

// TemplateDirectory is the template lookup/removal surface of the store.
type TemplateDirectory interface {
	GetTemplate(ctx context.Context, id uuid.UUID) (*store.Template, error)
	ListTemplates(ctx context.Context) ([]*store.Template, error)
	DeleteTemplate(ctx context.Context, id uuid.UUID) error
}

// PortalStore is the dashboard/panel surface of the store.
type PortalStore interface {
	CreateDashboard(ctx context.Context, ownerID uuid.UUID, params store.CreateDashboardParams) (*store.Dashboard, error)
	GetDashboard(ctx context.Context, id uuid.UUID) (*store.Dashboard, error)
	ListDashboards(ctx context.Context, userID uuid.UUID) ([]*store.Dashboard, error)
	DeleteDashboard(ctx context.Context, id uuid.UUID) error
	CreatePanel(ctx context.Context, dashboardID uuid.UUID, params store.CreatePanelParams) (*store.Panel, error)
	GetPanel(ctx context.Context, id uuid.UUID) (*store.Panel, error)
	ListPanels(ctx context.Context, dashboardID uuid.UUID) ([]*store.Panel, error)
	DeletePanel(ctx context.Context, id uuid.UUID) error
}

// Server holds the API dependencies.
type Server struct {
	provisioner Provisioner
	templates   TemplateDirectory
	portal      PortalStore
	authSecret  string
}

// New creates an API server.
func New(provisioner Provisioner, templates TemplateDirectory, portal PortalStore, authSecret string) *Server {
	return &Server{
		provisioner: provisioner,
		templates:   templates,
		portal:      portal,
		authSecret:  authSecret,
	}
}

// Handler builds the route table. All /api routes pass the identity
// middleware; health and metrics are open.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()

	api.HandleFunc("GET /api/templates", s.handleListTemplates)
	api.HandleFunc("POST /api/templates", s.handleCreateTemplate)
	api.HandleFunc("GET /api/templates/{id}", s.handleGetTemplate)
	api.HandleFunc("DELETE /api/templates/{id}", s.handleDeleteTemplate)

	api.HandleFunc("GET /api/dashboards", s.handleListDashboards)
	api.HandleFunc("POST /api/dashboards", s.handleCreateDashboard)
	api.HandleFunc("GET /api/dashboards/{id}", s.handleGetDashboard)
	api.HandleFunc("DELETE /api/dashboards/{id}", s.handleDeleteDashboard)

	api.HandleFunc("GET /api/dashboards/{id}/panels", s.handleListPanels)
	api.HandleFunc("POST /api/dashboards/{id}/panels", s.handleCreatePanel)
	api.HandleFunc("GET /api/panels/{id}", s.handleGetPanel)
	api.HandleFunc("DELETE /api/panels/{id}", s.handleDeletePanel)

	mux := http.NewServeMux()
	mux.Handle("/api/", auth.Middleware(s.authSecret)(api))
	mux.HandleFunc("GET /health", handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// pathID parses the {id} path segment as a UUID, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// storeStatus maps a store error onto an HTTP status.
func storeStatus(err error) int {
	if errors.Is(err, store.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
