package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nicolasrp432/PlaywrongIa/internal/models"
	"github.com/nicolasrp432/PlaywrongIa/internal/shared"
)

// SessionRepository implements models.Repository[*models.Session] for login sessions.
type SessionRepository struct {
	db  *sql.DB
	now func() time.Time
}

var _ models.Repository[*models.Session] = (*SessionRepository)(nil)

// NewSessionRepository creates a new SessionRepository with the given database connection
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Create inserts a new session with a generated ID
func (r *SessionRepository) Create(session *models.Session) error {
	if err := session.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	id := shared.GenerateID()
	session.SetID(id)

	query := `
		INSERT INTO sessions (id, subject, name, email, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		id,
		session.Subject(),
		session.Name(),
		session.Email(),
		session.CreatedAt(),
		session.ExpiresAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	return nil
}

// Get retrieves a session by ID.
//
// Returns [shared.ErrSessionNotFound] for unknown IDs and [shared.ErrSessionExpired] once the session has expired.
func (r *SessionRepository) Get(id string) (*models.Session, error) {
	query := `
		SELECT id, subject, name, email, created_at, expires_at
		FROM sessions
		WHERE id = ?
	`

	var (
		sid, subject, name, email string
		createdAt, expiresAt      time.Time
	)

	err := r.db.QueryRow(query, id).Scan(&sid, &subject, &name, &email, &createdAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan session: %w", err)
	}

	session := models.RestoreSession(sid, subject, name, email, createdAt, expiresAt)
	if session.Expired(r.now()) {
		return nil, shared.ErrSessionExpired
	}

	return session, nil
}

// Delete removes a session by ID
func (r *SessionRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return shared.ErrSessionNotFound
	}

	return nil
}

// List retrieves live sessions, optionally filtered by "subject"
func (r *SessionRepository) List(criteria map[string]any) ([]*models.Session, error) {
	query := `
		SELECT id, subject, name, email, created_at, expires_at
		FROM sessions
		WHERE expires_at > ?
	`
	args := []any{r.now()}

	if subject, ok := criteria["subject"].(string); ok && subject != "" {
		query += " AND subject = ?"
		args = append(args, subject)
	}

	query += " ORDER BY created_at ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.Session
	for rows.Next() {
		var (
			id, subject, name, email string
			createdAt, expiresAt     time.Time
		)
		if err := rows.Scan(&id, &subject, &name, &email, &createdAt, &expiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, models.RestoreSession(id, subject, name, email, createdAt, expiresAt))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return sessions, nil
}

// DeleteExpired removes every session past its expiry and returns how many were removed
func (r *SessionRepository) DeleteExpired() (int64, error) {
	result, err := r.db.Exec("DELETE FROM sessions WHERE expires_at <= ?", r.now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return result.RowsAffected()
}
