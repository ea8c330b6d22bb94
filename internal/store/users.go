package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User represents a row in the users table.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Consent represents a row in the consents table.
type Consent struct {
	ID         string
	UserID     string
	ScopesJSON string
	CreatedAt  time.Time
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser inserts a user. Returns ErrEmailTaken if the email is registered.
func (s *Store) CreateUser(ctx context.Context, email, passwordHash string) (*User, error) {
	u := &User{
		ID:           uuid.NewString(),
		Email:        normalizeEmail(email),
		PasswordHash: passwordHash,
		CreatedAt:    s.now(),
	}

	err := s.withTx(ctx, func(c conn) error {
		var exists int
		err := c.queryRow(ctx, `SELECT 1 FROM users WHERE email = $1`, u.Email).Scan(&exists)
		if err == nil {
			return ErrEmailTaken
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		_, err = c.exec(ctx, `
			INSERT INTO users (id, email, password_hash, created_at)
			VALUES ($1, $2, $3, $4)`,
			u.ID, u.Email, u.PasswordHash, u.CreatedAt)
		if err != nil && isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return err
	})
	if errors.Is(err, ErrEmailTaken) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, fmt.Errorf("CreateUser: %w", err)
	}
	return u, nil
}

// GetUserByEmail returns a user by email, or nil if not found.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := s.conn().queryRow(ctx, `
		SELECT id, email, password_hash, created_at
		FROM users WHERE email = $1`, normalizeEmail(email),
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetUserByEmail: %w", err)
	}
	return &u, nil
}

// GetUser returns a user by ID, or nil if not found.
func (s *Store) GetUser(ctx context.Context, id string) (*User, error) {
	var u User
	err := s.conn().queryRow(ctx, `
		SELECT id, email, password_hash, created_at
		FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetUser: %w", err)
	}
	return &u, nil
}

// CreateConsent records the scopes a user agreed to. Returns ErrNotFound if
// the user does not exist.
func (s *Store) CreateConsent(ctx context.Context, userID, scopesJSON string) (*Consent, error) {
	c := &Consent{
		ID:         uuid.NewString(),
		UserID:     userID,
		ScopesJSON: scopesJSON,
		CreatedAt:  s.now(),
	}
	err := s.withTx(ctx, func(cn conn) error {
		var exists int
		if err := cn.queryRow(ctx, `SELECT 1 FROM users WHERE id = $1`, userID).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		_, err := cn.exec(ctx, `
			INSERT INTO consents (id, user_id, scopes_json, created_at)
			VALUES ($1, $2, $3, $4)`,
			c.ID, c.UserID, c.ScopesJSON, c.CreatedAt)
		return err
	})
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("CreateConsent: %w", err)
	}
	return c, nil
}

// ListConsents returns a user's consents, newest first.
func (s *Store) ListConsents(ctx context.Context, userID string) ([]*Consent, error) {
	rows, err := s.conn().query(ctx, `
		SELECT id, user_id, scopes_json, created_at
		FROM consents WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("ListConsents: %w", err)
	}
	defer rows.Close()

	var out []*Consent
	for rows.Next() {
		var c Consent
		if err := rows.Scan(&c.ID, &c.UserID, &c.ScopesJSON, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("ListConsents: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}
