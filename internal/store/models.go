package store

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Template is a provisioned dataset template. It is created only after all
// three external resources exist, and is immutable apart from deletion.
type Template struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Fields      json.RawMessage `json:"fields"`
	CreatedBy   uuid.UUID       `json:"created_by"`

	// External resource references captured at provisioning time. Any of
	// them may be empty on records that predate a schema change or were
	// only partially deprovisioned; deprovisioning skips absent ids.
	NocoDBTableID       string `json:"nocodb_table_id,omitempty"`
	NocoDBFormID        string `json:"nocodb_form_id,omitempty"`
	GrafanaDashboardUID string `json:"grafana_dashboard_uid,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateTemplateParams holds the values persisted for a new template.
type CreateTemplateParams struct {
	Name                string
	Description         string
	Fields              json.RawMessage
	CreatedBy           uuid.UUID
	NocoDBTableID       string
	NocoDBFormID        string
	GrafanaDashboardUID string
}

// Dashboard is a portal dashboard page.
type Dashboard struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Icon      string    `json:"icon,omitempty"`
	SortOrder int       `json:"sort_order"`
	IsShared  bool      `json:"is_shared"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateDashboardParams holds the values persisted for a new dashboard.
// An empty Slug is auto-generated from the title.
type CreateDashboardParams struct {
	Title     string `json:"title"`
	Slug      string `json:"slug,omitempty"`
	Icon      string `json:"icon,omitempty"`
	SortOrder int    `json:"sort_order,omitempty"`
	IsShared  bool   `json:"is_shared,omitempty"`
}

// Panel is a single cell on a portal dashboard.
type Panel struct {
	ID          uuid.UUID       `json:"id"`
	DashboardID uuid.UUID       `json:"dashboard_id"`
	Title       string          `json:"title,omitempty"`
	PanelType   string          `json:"panel_type"`
	SourceURL   string          `json:"source_url,omitempty"`
	Config      json.RawMessage `json:"config"`
	GridX       int             `json:"grid_x"`
	GridY       int             `json:"grid_y"`
	GridW       int             `json:"grid_w"`
	GridH       int             `json:"grid_h"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CreatePanelParams holds the values persisted for a new panel.
type CreatePanelParams struct {
	Title     string          `json:"title,omitempty"`
	PanelType string          `json:"panel_type"`
	SourceURL string          `json:"source_url,omitempty"`
	Config    json.RawMessage `json:"config,omitempty"`
	GridX     int             `json:"grid_x"`
	GridY     int             `json:"grid_y"`
	GridW     int             `json:"grid_w,omitempty"`
	GridH     int             `json:"grid_h,omitempty"`
}
