package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nicolasrp432/PlaywrongIa/internal/models"
	"github.com/nicolasrp432/PlaywrongIa/internal/shared"
)

// FavoriteRepository implements models.Repository[*models.Favorite] for bookmarked movies.
//
// A movie is stored at most once per subject; adding it again is a no-op.
type FavoriteRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.Favorite] = (*FavoriteRepository)(nil)

// NewFavoriteRepository creates a new FavoriteRepository with the given database connection
func NewFavoriteRepository(db *sql.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

const favoriteColumns = "id, sequence, subject, movie_id, title, poster_path, created_at"

// Create inserts a favorite with generated ID and sequence.
//
// When the subject already saved the movie favorite is overwritten with the stored row.
func (r *FavoriteRepository) Create(favorite *models.Favorite) error {
	if err := favorite.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if existing, err := r.GetByMovie(favorite.Subject(), favorite.MovieID()); err == nil {
		*favorite = *existing
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sequence, err := NextSequence(tx, "favorites")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()

	query := `
		INSERT INTO favorites (id, sequence, subject, movie_id, title, poster_path, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = tx.Exec(query,
		id,
		sequence,
		favorite.Subject(),
		favorite.MovieID(),
		favorite.Title(),
		favorite.PosterPath(),
		favorite.CreatedAt(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			tx.Rollback()
			existing, getErr := r.GetByMovie(favorite.Subject(), favorite.MovieID())
			if getErr != nil {
				return fmt.Errorf("failed to load existing favorite: %w", getErr)
			}
			*favorite = *existing
			return nil
		}
		return fmt.Errorf("failed to insert favorite: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit favorite: %w", err)
	}

	favorite.SetID(id)
	favorite.SetSequence(sequence)
	return nil
}

// Add saves movie as a favorite of subject and returns the stored row
func (r *FavoriteRepository) Add(subject string, movie models.Movie) (*models.Favorite, error) {
	favorite := models.NewFavorite(subject, movie)
	if err := r.Create(favorite); err != nil {
		return nil, err
	}
	return favorite, nil
}

// Get retrieves a favorite by ID
func (r *FavoriteRepository) Get(id string) (*models.Favorite, error) {
	query := "SELECT " + favoriteColumns + " FROM favorites WHERE id = ?"
	return r.scan(r.db.QueryRow(query, id))
}

// GetByMovie retrieves the favorite a subject saved for a movie
func (r *FavoriteRepository) GetByMovie(subject string, movieID int) (*models.Favorite, error) {
	query := "SELECT " + favoriteColumns + " FROM favorites WHERE subject = ? AND movie_id = ?"
	return r.scan(r.db.QueryRow(query, subject, movieID))
}

// Exists reports whether subject saved the movie
func (r *FavoriteRepository) Exists(subject string, movieID int) (bool, error) {
	var exists bool
	err := r.db.QueryRow(
		"SELECT EXISTS(SELECT 1 FROM favorites WHERE subject = ? AND movie_id = ?)",
		subject, movieID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}
	return exists, nil
}

// Delete removes a favorite by ID
func (r *FavoriteRepository) Delete(id string) error {
	return r.deleteWhere("id = ?", id)
}

// Remove deletes the favorite a subject saved for a movie
func (r *FavoriteRepository) Remove(subject string, movieID int) error {
	return r.deleteWhere("subject = ? AND movie_id = ?", subject, movieID)
}

func (r *FavoriteRepository) deleteWhere(cond string, args ...any) error {
	result, err := r.db.Exec("DELETE FROM favorites WHERE "+cond, args...)
	if err != nil {
		return fmt.Errorf("failed to delete favorite: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return shared.ErrFavoriteNotFound
	}

	return nil
}

// List retrieves favorites ordered by sequence, optionally filtered by "subject"
func (r *FavoriteRepository) List(criteria map[string]any) ([]*models.Favorite, error) {
	query := "SELECT " + favoriteColumns + " FROM favorites WHERE 1 = 1"
	args := []any{}

	if subject, ok := criteria["subject"].(string); ok && subject != "" {
		query += " AND subject = ?"
		args = append(args, subject)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query favorites: %w", err)
	}
	defer rows.Close()

	favorites := []*models.Favorite{}
	for rows.Next() {
		favorite, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		favorites = append(favorites, favorite)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return favorites, nil
}

// ListBySubject retrieves a subject's favorites in the order they were saved
func (r *FavoriteRepository) ListBySubject(subject string) ([]*models.Favorite, error) {
	return r.List(map[string]any{"subject": subject})
}

type scanner interface {
	Scan(dest ...any) error
}

// scan reads one favorite from a [sql.Row] or [sql.Rows]
func (r *FavoriteRepository) scan(row scanner) (*models.Favorite, error) {
	var (
		id         string
		sequence   int
		subject    string
		movieID    int
		title      string
		posterPath string
		createdAt  time.Time
	)

	err := row.Scan(&id, &sequence, &subject, &movieID, &title, &posterPath, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrFavoriteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan favorite: %w", err)
	}

	return models.RestoreFavorite(id, sequence, subject, movieID, title, posterPath, createdAt), nil
}
