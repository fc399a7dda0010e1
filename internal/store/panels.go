package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

const panelColumns = `id, dashboard_id, title, panel_type, source_url, config,
	grid_x, grid_y, grid_w, grid_h, created_at, updated_at`

// CreatePanel inserts a panel onto a dashboard. Width and height default to
// 6x4 grid units when unset.
func (c *Client) CreatePanel(ctx context.Context, dashboardID uuid.UUID, params CreatePanelParams) (*Panel, error) {
	config := params.Config
	if len(config) == 0 {
		config = []byte(`{}`)
	}

	gridW := params.GridW
	if gridW == 0 {
		gridW = 6
	}
	gridH := params.GridH
	if gridH == 0 {
		gridH = 4
	}

	row := c.db.QueryRowContext(ctx, `
		INSERT INTO panels
			(dashboard_id, title, panel_type, source_url, config, grid_x, grid_y, grid_w, grid_h)
		VALUES ($1, NULLIF($2, ''), $3, NULLIF($4, ''), $5::jsonb, $6, $7, $8, $9)
		RETURNING `+panelColumns,
		dashboardID, params.Title, params.PanelType, params.SourceURL, []byte(config),
		params.GridX, params.GridY, gridW, gridH)

	panel, err := scanPanel(row)
	if err != nil {
		return nil, fmt.Errorf("create panel: %w", err)
	}
	return panel, nil
}

// GetPanel retrieves a panel by id.
func (c *Client) GetPanel(ctx context.Context, id uuid.UUID) (*Panel, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT `+panelColumns+` FROM panels WHERE id = $1`, id)

	panel, err := scanPanel(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("panel %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get panel: %w", err)
	}
	return panel, nil
}

// ListPanels retrieves the panels of a dashboard in grid order.
func (c *Client) ListPanels(ctx context.Context, dashboardID uuid.UUID) ([]*Panel, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT `+panelColumns+`
		FROM panels
		WHERE dashboard_id = $1
		ORDER BY grid_y ASC, grid_x ASC`, dashboardID)
	if err != nil {
		return nil, fmt.Errorf("list panels: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var panels []*Panel
	for rows.Next() {
		panel, err := scanPanel(rows)
		if err != nil {
			return nil, fmt.Errorf("scan panel: %w", err)
		}
		panels = append(panels, panel)
	}
	return panels, rows.Err()
}

// DeletePanel removes a panel.
func (c *Client) DeletePanel(ctx context.Context, id uuid.UUID) error {
	result, err := c.db.ExecContext(ctx, `DELETE FROM panels WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete panel: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete panel: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("panel %s: %w", id, ErrNotFound)
	}
	return nil
}

func scanPanel(row rowScanner) (*Panel, error) {
	var (
		panel     Panel
		title     sql.NullString
		sourceURL sql.NullString
	)

	err := row.Scan(&panel.ID, &panel.DashboardID, &title, &panel.PanelType, &sourceURL,
		&panel.Config, &panel.GridX, &panel.GridY, &panel.GridW, &panel.GridH,
		&panel.CreatedAt, &panel.UpdatedAt)
	if err != nil {
		return nil, err
	}

	panel.Title = title.String
	panel.SourceURL = sourceURL.String
	return &panel, nil
}
