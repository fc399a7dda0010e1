// Package nocodb provides a typed wrapper around the NocoDB v2 meta API.
//
// The wrapper covers exactly the surface the provisioning saga depends on:
// base discovery, table creation with a consistency wait, form-view creation
// with public sharing, and table deletion.
package nocodb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mosaic-portal/mosaic/internal/dataset"
	"github.com/mosaic-portal/mosaic/internal/util/retry"
)

const (
	// tableWaitAttempts bounds the consistency-wait loop after table creation.
	tableWaitAttempts = 10
	// tableWaitInterval is the fixed delay between consistency-wait attempts.
	tableWaitInterval = 500 * time.Millisecond
)

// Client is a minimal NocoDB API client for dataset provisioning.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// CreatedTable is the result of a successful table creation.
type CreatedTable struct {
	// ID is the NocoDB table id (md_xxx).
	ID string `json:"id"`
	// TableName is the physical table name in the backing database
	// (nc_p_xxx_name). Dashboard queries run against this name.
	TableName string `json:"table_name"`
}

// SharedForm is the result of creating and publicly sharing a form view.
type SharedForm struct {
	// ViewID is the NocoDB view id of the form.
	ViewID string
	// ShareToken is the public token embedded in /nc/form/{token} paths.
	ShareToken string
}

// NewClient creates a new NocoDB API client.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{},
	}
}

// FirstBaseID discovers the first NocoDB base. NocoDB keeps meta and data in
// the same database, so the default base already creates real tables; no
// external source is needed.
func (c *Client) FirstBaseID(ctx context.Context) (string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/v2/meta/bases", nil)
	if err != nil {
		return "", err
	}

	var resp struct {
		List []struct {
			ID string `json:"id"`
		} `json:"list"`
	}
	if err := c.do(req, &resp); err != nil {
		return "", fmt.Errorf("list bases: %w", err)
	}

	if len(resp.List) == 0 {
		return "", fmt.Errorf("nocodb has no bases, initialize NocoDB first")
	}
	return resp.List[0].ID, nil
}

// CreateTable creates a table with all columns in a single request, as
// required by the NocoDB v2 API, then waits for the table to become
// queryable in the meta catalog before returning.
func (c *Client) CreateTable(ctx context.Context, baseID, title string, fields []dataset.Field) (*CreatedTable, error) {
	type column struct {
		Title string `json:"title"`
		UIDT  string `json:"uidt"`
	}

	columns := make([]column, 0, len(fields))
	for _, f := range fields {
		columns = append(columns, column{Title: f.Name, UIDT: columnType(f.Type)})
	}

	body := map[string]any{
		"title":   title,
		"columns": columns,
	}

	req, err := c.newRequest(ctx, http.MethodPost,
		fmt.Sprintf("/api/v2/meta/bases/%s/tables", baseID), body)
	if err != nil {
		return nil, err
	}

	var created CreatedTable
	if err := c.do(req, &created); err != nil {
		return nil, fmt.Errorf("create table %q: %w", title, err)
	}

	// External data sources may not register the new table in the meta
	// catalog immediately. Block until it is queryable or give up.
	if err := c.waitForTable(ctx, created.ID); err != nil {
		return nil, err
	}

	return &created, nil
}

// waitForTable polls the table's views endpoint until it answers, or fails
// with a ConsistencyError after the bounded attempts are exhausted. The
// cadence is fixed: no backoff growth, no jitter.
func (c *Client) waitForTable(ctx context.Context, tableID string) error {
	attempt := 0
	err := retry.Do(ctx, func() error {
		attempt++
		req, err := c.newRequest(ctx, http.MethodGet,
			fmt.Sprintf("/api/v2/meta/tables/%s/views", tableID), nil)
		if err != nil {
			return retry.Fatal(err)
		}
		if err := c.do(req, &json.RawMessage{}); err != nil {
			return err
		}
		return nil
	},
		retry.WithAttempts(tableWaitAttempts),
		retry.WithInterval(tableWaitInterval),
	)
	if err != nil {
		return &ConsistencyError{TableID: tableID, Attempts: tableWaitAttempts, Err: err}
	}
	return nil
}

// DeleteTable deletes a table by its NocoDB table id.
func (c *Client) DeleteTable(ctx context.Context, tableID string) error {
	req, err := c.newRequest(ctx, http.MethodDelete,
		fmt.Sprintf("/api/v2/meta/tables/%s", tableID), nil)
	if err != nil {
		return err
	}

	if err := c.do(req, &json.RawMessage{}); err != nil {
		return fmt.Errorf("delete table %s: %w", tableID, err)
	}
	return nil
}

// CreateSharedForm creates a form view scoped to the table, then enables
// public sharing on it. Both calls must succeed; a view whose sharing call
// failed is reported as a plain error without surfacing the view id.
func (c *Client) CreateSharedForm(ctx context.Context, tableID, title string) (*SharedForm, error) {
	req, err := c.newRequest(ctx, http.MethodPost,
		fmt.Sprintf("/api/v2/meta/tables/%s/forms", tableID),
		map[string]any{"title": title, "type": 1})
	if err != nil {
		return nil, err
	}

	var view struct {
		ID string `json:"id"`
	}
	if err := c.do(req, &view); err != nil {
		return nil, fmt.Errorf("create form view %q: %w", title, err)
	}

	req, err = c.newRequest(ctx, http.MethodPost,
		fmt.Sprintf("/api/v2/meta/views/%s/share", view.ID),
		map[string]any{})
	if err != nil {
		return nil, err
	}

	var share struct {
		UUID string `json:"uuid"`
	}
	if err := c.do(req, &share); err != nil {
		return nil, fmt.Errorf("share form view %s: %w", view.ID, err)
	}

	return &SharedForm{ViewID: view.ID, ShareToken: share.UUID}, nil
}

// columnType maps a dataset field type onto a NocoDB column type.
func columnType(t dataset.FieldType) string {
	switch t {
	case dataset.FieldNumber:
		return "Number"
	case dataset.FieldDate:
		return "Date"
	case dataset.FieldSelect:
		return "SingleSelect"
	default:
		return "SingleLineText"
	}
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
	req.Header.Set("xc-token", c.token)
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
