package provisioning

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mosaic-portal/mosaic/internal/dataset"
	"github.com/mosaic-portal/mosaic/internal/store"
)

// Orchestrator drives the provisioning pipeline end to end and owns the
// compensation policy. It is safe for concurrent use: each run's state lives
// entirely in the pipeline values of that call.
type Orchestrator struct {
	Tables     TableService
	Dashboards DashboardService
	Templates  TemplateStore
	Portal     VisualizationStore
	Observer   Observer
}

// NewOrchestrator creates an orchestrator with a console observer.
func NewOrchestrator(tables TableService, dashboards DashboardService, templates TemplateStore, portal VisualizationStore) *Orchestrator {
	return &Orchestrator{
		Tables:     tables,
		Dashboards: dashboards,
		Templates:  templates,
		Portal:     portal,
		Observer:   NewConsoleObserver(),
	}
}

// Provision runs the full pipeline: table, shared form, dashboard, local
// record, then a best-effort portal visualization. On form- or
// dashboard-stage failure the stage-1 table is deleted before the stage
// error is returned. A failure of the final local write is propagated
// without compensation: the external resources stay behind, orphaned.
func (o *Orchestrator) Provision(ctx context.Context, def dataset.Definition, requester uuid.UUID) (*store.Template, error) {
	start := time.Now()

	tableReady, terr := NewPipeline(def, requester).CreateTable(ctx, o.Tables)
	if terr != nil {
		o.Observer.Event(Event{Type: EventStageFailed, Stage: terr.Stage, Message: terr.Err.Error()})
		provisionsTotal.WithLabelValues("table_failed").Inc()
		return nil, terr
	}
	o.Observer.Event(Event{
		Type: EventStageCompleted, Stage: "table", Resource: tableReady.TableID,
		Message: fmt.Sprintf("table %q created", tableReady.TableName),
	})

	formReady, ferr := tableReady.CreateForm(ctx, o.Tables)
	if ferr != nil {
		o.compensateTable(ctx, ferr.State.TableID, ferr.Stage)
		provisionsTotal.WithLabelValues("form_failed").Inc()
		return nil, ferr
	}
	o.Observer.Event(Event{
		Type: EventStageCompleted, Stage: "form", Resource: formReady.FormViewID,
		Message: "form view created and shared",
	})

	dashboardReady, derr := formReady.CreateDashboard(ctx, o.Dashboards)
	if derr != nil {
		o.compensateTable(ctx, derr.State.TableID, derr.Stage)
		provisionsTotal.WithLabelValues("dashboard_failed").Inc()
		return nil, derr
	}
	o.Observer.Event(Event{
		Type: EventStageCompleted, Stage: "dashboard", Resource: dashboardReady.DashboardUID,
		Message: "dashboard created",
	})

	// Capture before Register consumes the state.
	dashboardUID := dashboardReady.DashboardUID
	dashboardURL := dashboardReady.DashboardURL
	formToken := dashboardReady.FormShareToken

	tpl, err := dashboardReady.Register(ctx, o.Templates)
	if err != nil {
		// Known weak point: the three external resources are not
		// compensated here and become orphans with no local record.
		o.Observer.Printf("register failed, external resources for %q are orphaned: %v", def.Name, err)
		provisionsTotal.WithLabelValues("register_failed").Inc()
		return nil, err
	}

	if verr := o.autoVisualize(ctx, tpl, requester, dashboardUID, dashboardURL, formToken); verr != nil {
		o.Observer.Event(Event{
			Type: EventVisualizeFailed, Resource: tpl.ID.String(),
			Message: fmt.Sprintf("portal visualization skipped (non-fatal): %v", verr),
		})
	}

	provisionsTotal.WithLabelValues("success").Inc()
	provisionDuration.Observe(time.Since(start).Seconds())
	return tpl, nil
}

// Deprovision issues a best-effort delete for each external id present on
// the record. Failures are logged, never raised: deletion of the local
// record proceeds regardless of the outcome here.
func (o *Orchestrator) Deprovision(ctx context.Context, tpl *store.Template) {
	if tpl.NocoDBTableID != "" {
		if err := o.Tables.DeleteTable(ctx, tpl.NocoDBTableID); err != nil {
			deprovisionDeletesTotal.WithLabelValues("table", "failed").Inc()
			o.Observer.Event(Event{
				Type: EventResourceDeleteFailed, Resource: tpl.NocoDBTableID,
				Message: fmt.Sprintf("failed to delete table: %v", err),
			})
		} else {
			deprovisionDeletesTotal.WithLabelValues("table", "deleted").Inc()
			o.Observer.Event(Event{
				Type: EventResourceDeleted, Resource: tpl.NocoDBTableID,
				Message: "table deleted",
			})
		}
	}

	if tpl.GrafanaDashboardUID != "" {
		if err := o.Dashboards.DeleteDashboard(ctx, tpl.GrafanaDashboardUID); err != nil {
			deprovisionDeletesTotal.WithLabelValues("dashboard", "failed").Inc()
			o.Observer.Event(Event{
				Type: EventResourceDeleteFailed, Resource: tpl.GrafanaDashboardUID,
				Message: fmt.Sprintf("failed to delete dashboard: %v", err),
			})
		} else {
			deprovisionDeletesTotal.WithLabelValues("dashboard", "deleted").Inc()
			o.Observer.Event(Event{
				Type: EventResourceDeleted, Resource: tpl.GrafanaDashboardUID,
				Message: "dashboard deleted",
			})
		}
	}
}

// compensateTable deletes the stage-1 table after a later stage failed.
// Every stage after the first depends on the table, so deleting it removes
// the dataset's primary resource; secondary artifacts of the failed stage
// are not chased.
func (o *Orchestrator) compensateTable(ctx context.Context, tableID, failedStage string) {
	o.Observer.Printf("%s stage failed, cleaning up table %s", failedStage, tableID)

	if err := o.Tables.DeleteTable(ctx, tableID); err != nil {
		compensationsTotal.WithLabelValues("failed").Inc()
		o.Observer.Event(Event{
			Type: EventResourceDeleteFailed, Stage: failedStage, Resource: tableID,
			Message: fmt.Sprintf("compensating table delete failed: %v", err),
		})
		return
	}

	compensationsTotal.WithLabelValues("deleted").Inc()
	o.Observer.Event(Event{
		Type: EventResourceDeleted, Stage: failedStage, Resource: tableID,
		Message: "compensating table delete succeeded",
	})
}

// autoVisualize generates the portal page for a freshly provisioned
// template: one dashboard plus one embedded chart cell per numeric field,
// stacked vertically in field order. Entirely best-effort.
func (o *Orchestrator) autoVisualize(ctx context.Context, tpl *store.Template, owner uuid.UUID, dashboardUID, dashboardURL, formToken string) error {
	_ = formToken // the entry form is reachable from the template detail page

	page, err := o.Portal.CreateDashboard(ctx, owner, store.CreateDashboardParams{
		Title:    tpl.Name,
		Icon:     "▦",
		IsShared: false,
	})
	if err != nil {
		return fmt.Errorf("create portal dashboard: %w", err)
	}

	var fields []dataset.Field
	if err := json.Unmarshal(tpl.Fields, &fields); err != nil {
		return fmt.Errorf("parse template fields: %w", err)
	}

	slug := dashboardSlug(dashboardURL)

	i := 0
	for _, f := range fields {
		if f.Type != dataset.FieldNumber {
			continue
		}

		// viewPanel indexes are 1-based and assigned in field order by
		// the dashboard service.
		sourceURL := fmt.Sprintf("/proxy/grafana/d/%s/%s?viewPanel=panel-%d", dashboardUID, slug, i+1)

		_, err := o.Portal.CreatePanel(ctx, page.ID, store.CreatePanelParams{
			Title:     fmt.Sprintf("%s - Panel %d", tpl.Name, i+1),
			PanelType: "grafana_panel",
			SourceURL: sourceURL,
			GridX:     0,
			GridY:     i * 8,
			GridW:     12,
			GridH:     8,
		})
		if err != nil {
			return fmt.Errorf("create panel %d: %w", i+1, err)
		}
		i++
	}

	return nil
}

// dashboardSlug extracts the slug segment from a dashboard path like
// "/d/{uid}/{slug}".
func dashboardSlug(dashboardURL string) string {
	if idx := strings.LastIndex(dashboardURL, "/"); idx >= 0 && idx < len(dashboardURL)-1 {
		return dashboardURL[idx+1:]
	}
	return "dashboard"
}
