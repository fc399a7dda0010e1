package provisioning

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/mosaic-portal/mosaic/internal/dataset"
	"github.com/mosaic-portal/mosaic/internal/store"
)

// The pipeline encodes provisioning progress as distinct state types with
// one transition method per valid edge. A state can only be produced by
// completing the remote call for its stage, and each transition consumes
// its receiver, so stages cannot be skipped, reordered, or replayed on a
// stale state.

// StageError is a stage failure bundled with the last valid state. The
// orchestrator uses the carried state to issue a precise compensating
// action without re-querying the external systems.
type StageError[S any] struct {
	Stage string
	State S
	Err   error
}

func (e *StageError[S]) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError[S]) Unwrap() error {
	return e.Err
}

func stageErr[S any](stage string, state S, err error) *StageError[S] {
	return &StageError[S]{Stage: stage, State: state, Err: err}
}

// Unstarted is the initial state: only the definition and requester identity.
type Unstarted struct {
	Definition dataset.Definition
	Requester  uuid.UUID
}

// NewPipeline starts a provisioning pipeline for the given definition.
// The definition must already be validated; see ValidateDefinition.
func NewPipeline(def dataset.Definition, requester uuid.UUID) Unstarted {
	return Unstarted{Definition: def, Requester: requester}
}

// TableReady is reached once the remote table with all its columns exists
// and is queryable.
type TableReady struct {
	Definition dataset.Definition
	Requester  uuid.UUID

	BaseID    string
	TableID   string
	TableName string
}

// FormReady is reached once the form view exists and is publicly shared.
type FormReady struct {
	Definition dataset.Definition
	Requester  uuid.UUID

	BaseID    string
	TableID   string
	TableName string

	FormViewID     string
	FormShareToken string
}

// DashboardReady is reached once the dashboard exists. It is the last state
// before the local record is written.
type DashboardReady struct {
	Definition dataset.Definition
	Requester  uuid.UUID

	TableID   string
	TableName string

	FormViewID     string
	FormShareToken string

	DashboardUID string
	DashboardURL string
}

// CreateTable resolves the target base and creates the table with all
// columns in a single call. On failure nothing is assumed to exist and the
// unchanged state is returned with the error.
func (s Unstarted) CreateTable(ctx context.Context, tables TableService) (TableReady, *StageError[Unstarted]) {
	baseID, err := tables.FirstBaseID(ctx)
	if err != nil {
		return TableReady{}, stageErr("table", s, err)
	}

	created, err := tables.CreateTable(ctx, baseID, s.Definition.Name, s.Definition.Fields)
	if err != nil {
		return TableReady{}, stageErr("table", s, err)
	}

	return TableReady{
		Definition: s.Definition,
		Requester:  s.Requester,
		BaseID:     baseID,
		TableID:    created.ID,
		TableName:  created.TableName,
	}, nil
}

// CreateForm creates a form view on the table and enables public sharing.
// Both sub-calls must succeed; a view left behind by a failed share call is
// not surfaced.
func (s TableReady) CreateForm(ctx context.Context, tables TableService) (FormReady, *StageError[TableReady]) {
	title := fmt.Sprintf("%s - Entry Form", s.Definition.Name)

	form, err := tables.CreateSharedForm(ctx, s.TableID, title)
	if err != nil {
		return FormReady{}, stageErr("form", s, err)
	}

	return FormReady{
		Definition:     s.Definition,
		Requester:      s.Requester,
		BaseID:         s.BaseID,
		TableID:        s.TableID,
		TableName:      s.TableName,
		FormViewID:     form.ViewID,
		FormShareToken: form.ShareToken,
	}, nil
}

// CreateDashboard submits the dashboard, one time-series panel per numeric
// field, as a single create call.
func (s FormReady) CreateDashboard(ctx context.Context, dashboards DashboardService) (DashboardReady, *StageError[FormReady]) {
	created, err := dashboards.CreateDashboard(ctx, s.Definition.Name, s.TableName, s.Definition.Fields)
	if err != nil {
		return DashboardReady{}, stageErr("dashboard", s, err)
	}

	return DashboardReady{
		Definition:     s.Definition,
		Requester:      s.Requester,
		TableID:        s.TableID,
		TableName:      s.TableName,
		FormViewID:     s.FormViewID,
		FormShareToken: s.FormShareToken,
		DashboardUID:   created.UID,
		DashboardURL:   created.URL,
	}, nil
}

// Register is the terminal stage: it serializes the field list and persists
// the template record. There is no forward state to return on failure, only
// the external ids already captured on the receiver.
func (s DashboardReady) Register(ctx context.Context, templates TemplateStore) (*store.Template, error) {
	fields, err := json.Marshal(s.Definition.Fields)
	if err != nil {
		return nil, fmt.Errorf("serialize fields: %w", err)
	}

	tpl, err := templates.CreateTemplate(ctx, store.CreateTemplateParams{
		Name:                s.Definition.Name,
		Description:         s.Definition.Description,
		Fields:              fields,
		CreatedBy:           s.Requester,
		NocoDBTableID:       s.TableID,
		NocoDBFormID:        s.FormShareToken,
		GrafanaDashboardUID: s.DashboardUID,
	})
	if err != nil {
		return nil, fmt.Errorf("register template: %w", err)
	}
	return tpl, nil
}
