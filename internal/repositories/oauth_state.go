package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nicolasrp432/PlaywrongIa/internal/shared"
)

// OAuthStateRepository stores the state parameter of pending logins together with the page to return to.
type OAuthStateRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewOAuthStateRepository creates a new OAuthStateRepository with the given database connection
func NewOAuthStateRepository(db *sql.DB) *OAuthStateRepository {
	return &OAuthStateRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Save records a state value and its return path
func (r *OAuthStateRepository) Save(state, returnTo string) error {
	if state == "" {
		return fmt.Errorf("%w: empty state", shared.ErrInvalidState)
	}

	_, err := r.db.Exec(
		"INSERT INTO oauth_states (state, return_to, created_at) VALUES (?, ?, ?)",
		state, returnTo, r.now(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert oauth state: %w", err)
	}
	return nil
}

// Consume deletes a state and returns its return path.
//
// States older than maxAge, unknown or already consumed yield [shared.ErrInvalidState].
func (r *OAuthStateRepository) Consume(state string, maxAge time.Duration) (string, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var (
		returnTo  string
		createdAt time.Time
	)
	err = tx.QueryRow("SELECT return_to, created_at FROM oauth_states WHERE state = ?", state).Scan(&returnTo, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", shared.ErrInvalidState
	}
	if err != nil {
		return "", fmt.Errorf("failed to scan oauth state: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM oauth_states WHERE state = ?", state); err != nil {
		return "", fmt.Errorf("failed to delete oauth state: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit oauth state: %w", err)
	}

	if maxAge > 0 && r.now().Sub(createdAt) > maxAge {
		return "", fmt.Errorf("%w: expired", shared.ErrInvalidState)
	}

	return returnTo, nil
}

// DeleteOlderThan removes states created more than age ago
func (r *OAuthStateRepository) DeleteOlderThan(age time.Duration) (int64, error) {
	result, err := r.db.Exec("DELETE FROM oauth_states WHERE created_at < ?", r.now().Add(-age))
	if err != nil {
		return 0, fmt.Errorf("failed to delete oauth states: %w", err)
	}
	return result.RowsAffected()
}
