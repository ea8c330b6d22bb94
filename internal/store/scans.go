package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Scan status values. A scan only ever moves from pending to completed.
const (
	ScanPending   = "pending"
	ScanCompleted = "completed"
)

// Scan represents a row in the scans table.
type Scan struct {
	ID        string
	UserID    *string
	SeedsJSON string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Item represents one normalized finding. RiskScore is always derived by the
// risk scorer and never supplied by a client.
type Item struct {
	ID           string
	ScanID       string
	Category     string
	Source       string
	Title        string
	Snippet      string
	URL          string
	Confidence   float64
	RiskScore    float64
	MetadataJSON string
	CreatedAt    time.Time
}

// ToolCall is the append-only audit record of one connector invocation.
type ToolCall struct {
	ID           string
	ScanID       string
	ToolName     string
	ArgsJSON     string
	ResponseJSON string
	DurationMs   *int64
	CreatedAt    time.Time
}

const scanColumns = `id, user_id, seeds_json, status, created_at, updated_at`

func scanScan(row interface{ Scan(...any) error }) (*Scan, error) {
	var sc Scan
	var userID sql.NullString
	if err := row.Scan(&sc.ID, &userID, &sc.SeedsJSON, &sc.Status, &sc.CreatedAt, &sc.UpdatedAt); err != nil {
		return nil, err
	}
	sc.UserID = stringPtr(userID)
	return &sc, nil
}

// CreateScan inserts a pending scan. userID may be nil for anonymous scans.
func (s *Store) CreateScan(ctx context.Context, userID *string, seedsJSON string) (*Scan, error) {
	now := s.now()
	sc := &Scan{
		ID:        uuid.NewString(),
		UserID:    userID,
		SeedsJSON: seedsJSON,
		Status:    ScanPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.conn().exec(ctx, `
		INSERT INTO scans (id, user_id, seeds_json, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		sc.ID, nullString(userID), sc.SeedsJSON, sc.Status, sc.CreatedAt, sc.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("CreateScan: %w", err)
	}
	return sc, nil
}

// GetScan returns a scan by ID, or nil if not found.
func (s *Store) GetScan(ctx context.Context, id string) (*Scan, error) {
	sc, err := scanScan(s.conn().queryRow(ctx,
		`SELECT `+scanColumns+` FROM scans WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetScan: %w", err)
	}
	return sc, nil
}

// ListScansByUser returns a user's scans, newest first.
func (s *Store) ListScansByUser(ctx context.Context, userID string) ([]*Scan, error) {
	rows, err := s.conn().query(ctx,
		`SELECT `+scanColumns+` FROM scans WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("ListScansByUser: %w", err)
	}
	defer rows.Close()

	var out []*Scan
	for rows.Next() {
		sc, err := scanScan(rows)
		if err != nil {
			return nil, fmt.Errorf("ListScansByUser: %w", err)
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

// CompleteScan persists one orchestration run in a single transaction: the
// run's items and tool calls are inserted and the scan is marked completed.
// Returns ErrNotFound if the scan does not exist.
func (s *Store) CompleteScan(ctx context.Context, scanID string, items []*Item, calls []*ToolCall) (*Scan, error) {
	now := s.now()
	var out *Scan

	err := s.withTx(ctx, func(c conn) error {
		var base int
		if err := c.queryRow(ctx,
			`SELECT COUNT(*) FROM items WHERE scan_id = $1`, scanID).Scan(&base); err != nil {
			return err
		}

		for i, it := range items {
			if it.ID == "" {
				it.ID = uuid.NewString()
			}
			it.ScanID = scanID
			it.CreatedAt = now
			if _, err := c.exec(ctx, `
				INSERT INTO items (id, scan_id, category, source, title, snippet, url,
				                   confidence, risk_score, metadata_json, position, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
				it.ID, it.ScanID, it.Category, it.Source, it.Title, it.Snippet, it.URL,
				it.Confidence, it.RiskScore, it.MetadataJSON, base+i, it.CreatedAt); err != nil {
				return err
			}
		}

		var callBase int
		if err := c.queryRow(ctx,
			`SELECT COUNT(*) FROM tool_calls WHERE scan_id = $1`, scanID).Scan(&callBase); err != nil {
			return err
		}
		for i, tc := range calls {
			if tc.ID == "" {
				tc.ID = uuid.NewString()
			}
			tc.ScanID = scanID
			tc.CreatedAt = now
			if _, err := c.exec(ctx, `
				INSERT INTO tool_calls (id, scan_id, tool_name, args_json, response_json,
				                        duration_ms, position, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				tc.ID, tc.ScanID, tc.ToolName, tc.ArgsJSON, tc.ResponseJSON,
				tc.DurationMs, callBase+i, tc.CreatedAt); err != nil {
				return err
			}
		}

		res, err := c.exec(ctx, `
			UPDATE scans SET status = $2, updated_at = $3 WHERE id = $1`,
			scanID, ScanCompleted, now)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}

		out, err = scanScan(c.queryRow(ctx,
			`SELECT `+scanColumns+` FROM scans WHERE id = $1`, scanID))
		return err
	})
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("CompleteScan: %w", err)
	}
	return out, nil
}
