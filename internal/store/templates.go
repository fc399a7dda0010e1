package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

const templateColumns = `id, name, description, fields, created_by,
	nocodb_table_id, nocodb_form_id, grafana_dashboard_uid, created_at, updated_at`

// CreateTemplate inserts a provisioned template record. This is the only
// write the saga performs locally; it happens after all external resources
// exist and is a single-row insert with no retry.
func (c *Client) CreateTemplate(ctx context.Context, params CreateTemplateParams) (*Template, error) {
	row := c.db.QueryRowContext(ctx, `
		INSERT INTO templates
			(name, description, fields, created_by, nocodb_table_id, nocodb_form_id, grafana_dashboard_uid)
		VALUES ($1, NULLIF($2, ''), $3::jsonb, $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''))
		RETURNING `+templateColumns,
		params.Name, params.Description, []byte(params.Fields), params.CreatedBy,
		params.NocoDBTableID, params.NocoDBFormID, params.GrafanaDashboardUID)

	tpl, err := scanTemplate(row)
	if err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}
	return tpl, nil
}

// GetTemplate retrieves a template by id.
func (c *Client) GetTemplate(ctx context.Context, id uuid.UUID) (*Template, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT `+templateColumns+` FROM templates WHERE id = $1`, id)

	tpl, err := scanTemplate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("template %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	return tpl, nil
}

// ListTemplates retrieves all templates, newest first.
func (c *Client) ListTemplates(ctx context.Context) ([]*Template, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT `+templateColumns+` FROM templates ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var templates []*Template
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, tpl)
	}
	return templates, rows.Err()
}

// DeleteTemplate removes a template record. Callers deprovision the external
// resources first; the local delete proceeds regardless of that outcome.
func (c *Client) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	result, err := c.db.ExecContext(ctx, `DELETE FROM templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("template %s: %w", id, ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row rowScanner) (*Template, error) {
	var (
		tpl          Template
		description  sql.NullString
		tableID      sql.NullString
		formID       sql.NullString
		dashboardUID sql.NullString
	)

	err := row.Scan(&tpl.ID, &tpl.Name, &description, &tpl.Fields, &tpl.CreatedBy,
		&tableID, &formID, &dashboardUID, &tpl.CreatedAt, &tpl.UpdatedAt)
	if err != nil {
		return nil, err
	}

	tpl.Description = description.String
	tpl.NocoDBTableID = tableID.String
	tpl.NocoDBFormID = formID.String
	tpl.GrafanaDashboardUID = dashboardUID.String
	return &tpl, nil
}
