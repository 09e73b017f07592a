// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package identity

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/forum/auth"
	"github.com/danielhkuo/forum/models"
)

// Store owns user accounts and their login sessions.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Register creates a user with a bcrypt hash of password. It returns false,
// without changing anything, when the username is already taken. Username
// and password shape are the caller's to check.
func (s *Store) Register(ctx context.Context, username, password string) (bool, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, err
	}

	var id int64
	err = s.db.QueryRowxContext(ctx, `
		INSERT INTO users (username, password_hash, creation_time, password_set_time)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (username) DO NOTHING
		RETURNING id
	`, username, hash).Scan(&id)

	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to insert user: %w", err)
	}
	return true, nil
}

// Login checks a username and password. On success it records the login
// time and issues a fresh CSRF token, replacing the token of any other
// session of the same user.
//
// Unknown users, locked accounts (no password hash) and wrong passwords
// all return false after the same amount of work.
func (s *Store) Login(ctx context.Context, username, password string) (int64, bool, error) {
	var user struct {
		ID           int64          `db:"id"`
		PasswordHash sql.NullString `db:"password_hash"`
	}
	err := s.db.GetContext(ctx, &user, `SELECT id, password_hash FROM users WHERE username = $1`, username)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, false, fmt.Errorf("failed to look up user: %w", err)
	}

	// user.PasswordHash is empty for unknown and locked users alike
	if !auth.CheckPassword(user.PasswordHash.String, password) {
		return 0, false, nil
	}

	token, err := auth.GenerateCSRFToken()
	if err != nil {
		return 0, false, err
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE users SET latest_login_time = NOW(), csrf_token = $1 WHERE id = $2
	`, token, user.ID)
	if err != nil {
		return 0, false, fmt.Errorf("failed to start session: %w", err)
	}
	return user.ID, true, nil
}

// Logout clears the user's CSRF token
func (s *Store) Logout(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET csrf_token = NULL WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}
	return nil
}

// IsAuthenticated reports whether userID names an existing user. Stale or
// forged ids fail closed.
func (s *Store) IsAuthenticated(ctx context.Context, userID int64) (bool, error) {
	if userID <= 0 {
		return false, nil
	}

	var exists bool
	err := s.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID)
	if err != nil {
		return false, fmt.Errorf("failed to look up user: %w", err)
	}
	return exists, nil
}

// ValidateCSRF reports whether token is exactly the user's current token.
// A missing token on either side never validates.
func (s *Store) ValidateCSRF(ctx context.Context, userID int64, token string) (bool, error) {
	if token == "" {
		return false, nil
	}

	stored, ok, err := s.CSRFToken(ctx, userID)
	if err != nil || !ok {
		return false, err
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(token)) == 1, nil
}

// CSRFToken returns the user's current token, or false when the user has
// no active session.
func (s *Store) CSRFToken(ctx context.Context, userID int64) (string, bool, error) {
	var token sql.NullString
	err := s.db.GetContext(ctx, &token, `SELECT csrf_token FROM users WHERE id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read csrf token: %w", err)
	}
	return token.String, token.Valid, nil
}

func (s *Store) Username(ctx context.Context, userID int64) (string, bool, error) {
	var username string
	err := s.db.GetContext(ctx, &username, `SELECT username FROM users WHERE id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read username: %w", err)
	}
	return username, true, nil
}

// Users lists every account for the admin view
func (s *Store) Users(ctx context.Context) ([]models.UserSummary, error) {
	users := []models.UserSummary{}
	err := s.db.SelectContext(ctx, &users, `
		SELECT id, username, creation_time, latest_login_time, password_hash IS NULL AS locked
		FROM users
		ORDER BY username
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
