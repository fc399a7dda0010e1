// Package grafana provides a typed wrapper around the Grafana dashboard API.
package grafana

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/mosaic-portal/mosaic/internal/dataset"
)

// Client is a minimal Grafana API client for dataset provisioning.
type Client struct {
	baseURL       string
	token         string
	datasourceUID string
	httpClient    *http.Client
}

// CreatedDashboard is the result of a successful dashboard creation.
type CreatedDashboard struct {
	UID string `json:"uid"`
	// URL is the dashboard path, e.g. "/d/{uid}/{slug}".
	URL string `json:"url"`
}

// NewClient creates a new Grafana API client. All panel queries run against
// the data source identified by datasourceUID.
func NewClient(baseURL, token, datasourceUID string) *Client {
	return &Client{
		baseURL:       baseURL,
		token:         token,
		datasourceUID: datasourceUID,
		httpClient:    &http.Client{},
	}
}

// CreateDashboard builds a dashboard with one time-series panel per numeric
// field and submits it as a single document. There are no partial-dashboard
// states: the call either creates the whole dashboard or fails.
func (c *Client) CreateDashboard(ctx context.Context, title, tableName string, fields []dataset.Field) (*CreatedDashboard, error) {
	body := map[string]any{
		"dashboard": map[string]any{
			"uid":           nil,
			"title":         title,
			"tags":          []string{"mosaic-generated"},
			"timezone":      "browser",
			"schemaVersion": 38,
			"version":       0,
			"refresh":       "30s",
			"time":          map[string]string{"from": "now-7d", "to": "now"},
			"panels":        c.buildPanels(tableName, fields),
		},
		"overwrite": false,
		"message":   "Created by Mosaic orchestrator",
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/dashboards/db", body)
	if err != nil {
		return nil, err
	}

	var created CreatedDashboard
	if err := c.do(req, &created); err != nil {
		return nil, fmt.Errorf("create dashboard %q: %w", title, err)
	}
	return &created, nil
}

// DeleteDashboard deletes a dashboard by its uid.
func (c *Client) DeleteDashboard(ctx context.Context, uid string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/api/dashboards/uid/"+uid, nil)
	if err != nil {
		return err
	}

	if err := c.do(req, &json.RawMessage{}); err != nil {
		return fmt.Errorf("delete dashboard %s: %w", uid, err)
	}
	return nil
}

// buildPanels builds one time-series panel per numeric field, stacked
// vertically in field order. The time axis uses the reserved measurement
// timestamp when the field list defines it, falling back to the row
// creation timestamp otherwise.
func (c *Client) buildPanels(tableName string, fields []dataset.Field) []map[string]any {
	timeExpr := "created_at"
	for _, f := range fields {
		if f.Name == dataset.TimestampField {
			timeExpr = fmt.Sprintf("COALESCE(%s, created_at)", dataset.TimestampField)
			break
		}
	}

	datasource := map[string]string{"type": "postgres", "uid": c.datasourceUID}

	panels := make([]map[string]any, 0)
	i := 0
	for _, f := range fields {
		if f.Type != dataset.FieldNumber {
			continue
		}

		title := f.Name
		if f.Unit != "" {
			title = fmt.Sprintf("%s (%s)", f.Name, f.Unit)
		}

		sql := fmt.Sprintf(
			"SELECT\n  %[1]s AS time,\n  %[2]s\nFROM %[3]s\nWHERE $__timeFilter(%[1]s)\nORDER BY time",
			timeExpr, f.Name, tableName)

		panels = append(panels, map[string]any{
			"id":         i + 1,
			"type":       "timeseries",
			"title":      title,
			"datasource": datasource,
			"targets": []map[string]any{{
				"rawSql":     sql,
				"rawQuery":   true,
				"format":     "time_series",
				"refId":      "A",
				"datasource": datasource,
			}},
			"fieldConfig": map[string]any{
				"defaults":  map[string]any{"custom": map[string]any{"lineWidth": 2}},
				"overrides": []any{},
			},
			"options": map[string]any{},
			"gridPos": map[string]int{
				"x": 0,
				"y": i * 8,
				"w": 24,
				"h": 8,
			},
		})
		i++
	}

	return panels
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Body: string(body)}
	}

	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("parse response: %w (status %d)", err, resp.StatusCode)
		}
	}

	return nil
}
