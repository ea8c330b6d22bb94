package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const itemColumns = `id, scan_id, category, source, title, snippet, url,
	confidence, risk_score, metadata_json, created_at`

func scanItem(row interface{ Scan(...any) error }) (*Item, error) {
	var it Item
	err := row.Scan(&it.ID, &it.ScanID, &it.Category, &it.Source, &it.Title, &it.Snippet,
		&it.URL, &it.Confidence, &it.RiskScore, &it.MetadataJSON, &it.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// ListItems returns a scan's items in the order they were created.
func (s *Store) ListItems(ctx context.Context, scanID string) ([]*Item, error) {
	rows, err := s.conn().query(ctx,
		`SELECT `+itemColumns+` FROM items WHERE scan_id = $1 ORDER BY position, created_at`, scanID)
	if err != nil {
		return nil, fmt.Errorf("ListItems: %w", err)
	}
	defer rows.Close()

	items := []*Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("ListItems: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// GetItem returns an item by ID, or nil if not found.
func (s *Store) GetItem(ctx context.Context, id string) (*Item, error) {
	it, err := scanItem(s.conn().queryRow(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetItem: %w", err)
	}
	return it, nil
}

// ListToolCalls returns a scan's tool call audit trail in call order.
func (s *Store) ListToolCalls(ctx context.Context, scanID string) ([]*ToolCall, error) {
	rows, err := s.conn().query(ctx, `
		SELECT id, scan_id, tool_name, args_json, response_json, duration_ms, created_at
		FROM tool_calls WHERE scan_id = $1 ORDER BY position, created_at`, scanID)
	if err != nil {
		return nil, fmt.Errorf("ListToolCalls: %w", err)
	}
	defer rows.Close()

	calls := []*ToolCall{}
	for rows.Next() {
		var tc ToolCall
		var scan sql.NullString
		var dur sql.NullInt64
		if err := rows.Scan(&tc.ID, &scan, &tc.ToolName, &tc.ArgsJSON, &tc.ResponseJSON,
			&dur, &tc.CreatedAt); err != nil {
			return nil, fmt.Errorf("ListToolCalls: %w", err)
		}
		tc.ScanID = scan.String
		if dur.Valid {
			d := dur.Int64
			tc.DurationMs = &d
		}
		calls = append(calls, &tc)
	}
	return calls, rows.Err()
}
