package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const dashboardColumns = `id, owner_id, title, slug, icon, sort_order, is_shared, created_at, updated_at`

// Slugify converts a title into a URL-friendly slug (ASCII only).
func Slugify(title string) string {
	lowered := strings.ToLower(title)
	mapped := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return '-'
	}, lowered)

	var parts []string
	for _, p := range strings.Split(mapped, "-") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "-")
}

// CreateDashboard inserts a portal dashboard. An empty slug is generated
// from the title.
func (c *Client) CreateDashboard(ctx context.Context, ownerID uuid.UUID, params CreateDashboardParams) (*Dashboard, error) {
	slug := params.Slug
	if slug == "" {
		slug = Slugify(params.Title)
	}

	row := c.db.QueryRowContext(ctx, `
		INSERT INTO dashboards (owner_id, title, slug, icon, sort_order, is_shared)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6)
		RETURNING `+dashboardColumns,
		ownerID, params.Title, slug, params.Icon, params.SortOrder, params.IsShared)

	dash, err := scanDashboard(row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Constraint == "dashboards_slug_key" {
			return nil, fmt.Errorf("slug %q is already taken", slug)
		}
		return nil, fmt.Errorf("create dashboard: %w", err)
	}
	return dash, nil
}

// GetDashboard retrieves a dashboard by id.
func (c *Client) GetDashboard(ctx context.Context, id uuid.UUID) (*Dashboard, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT `+dashboardColumns+` FROM dashboards WHERE id = $1`, id)

	dash, err := scanDashboard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("dashboard %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get dashboard: %w", err)
	}
	return dash, nil
}

// ListDashboards retrieves the dashboards visible to a user: their own plus
// shared ones.
func (c *Client) ListDashboards(ctx context.Context, userID uuid.UUID) ([]*Dashboard, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT `+dashboardColumns+`
		FROM dashboards
		WHERE owner_id = $1 OR is_shared = true
		ORDER BY sort_order ASC, title ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list dashboards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var dashboards []*Dashboard
	for rows.Next() {
		dash, err := scanDashboard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan dashboard: %w", err)
		}
		dashboards = append(dashboards, dash)
	}
	return dashboards, rows.Err()
}

// DeleteDashboard removes a dashboard and, via cascade, its panels.
func (c *Client) DeleteDashboard(ctx context.Context, id uuid.UUID) error {
	result, err := c.db.ExecContext(ctx, `DELETE FROM dashboards WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete dashboard: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete dashboard: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("dashboard %s: %w", id, ErrNotFound)
	}
	return nil
}

func scanDashboard(row rowScanner) (*Dashboard, error) {
	var (
		dash Dashboard
		icon sql.NullString
	)

	err := row.Scan(&dash.ID, &dash.OwnerID, &dash.Title, &dash.Slug, &icon,
		&dash.SortOrder, &dash.IsShared, &dash.CreatedAt, &dash.UpdatedAt)
	if err != nil {
		return nil, err
	}

	dash.Icon = icon.String
	return &dash, nil
}
