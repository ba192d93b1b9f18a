package repositories

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/nicolasrp432/PlaywrongIa/internal/models"
	"github.com/nicolasrp432/PlaywrongIa/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	// every pooled connection would otherwise get its own empty in-memory database
	shared.ConfigureDatabase(db, 1, 1)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func TestSessionRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSessionRepository(db)
		session := models.NewSession("auth0|123", "Ada", "ada@example.com", time.Hour)

		if err := repo.Create(session); err != nil {
			t.Fatalf("failed to create session: %v", err)
		}

		if session.ID() == "" {
			t.Error("session ID should be set after creation")
		}
	})

	t.Run("Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSessionRepository(db)
		session := models.NewSession("auth0|123", "Ada", "ada@example.com", time.Hour)
		if err := repo.Create(session); err != nil {
			t.Fatalf("failed to create session: %v", err)
		}

		got, err := repo.Get(session.ID())
		if err != nil {
			t.Fatalf("failed to get session: %v", err)
		}

		if got.Subject() != "auth0|123" {
			t.Errorf("expected subject auth0|123, got %s", got.Subject())
		}
		if got.Name() != "Ada" || got.Email() != "ada@example.com" {
			t.Errorf("unexpected profile: %s <%s>", got.Name(), got.Email())
		}
	})

	t.Run("Expired", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSessionRepository(db)
		session := models.NewSession("auth0|123", "Ada", "", time.Hour)
		if err := repo.Create(session); err != nil {
			t.Fatalf("failed to create session: %v", err)
		}

		repo.now = func() time.Time { return time.Now().UTC().Add(2 * time.Hour) }

		if _, err := repo.Get(session.ID()); !errors.Is(err, shared.ErrSessionExpired) {
			t.Errorf("expected ErrSessionExpired, got %v", err)
		}

		sessions, err := repo.List(nil)
		if err != nil {
			t.Fatalf("failed to list sessions: %v", err)
		}
		if len(sessions) != 0 {
			t.Errorf("expected expired sessions to be hidden, got %d", len(sessions))
		}

		removed, err := repo.DeleteExpired()
		if err != nil {
			t.Fatalf("failed to delete expired sessions: %v", err)
		}
		if removed != 1 {
			t.Errorf("expected 1 expired session removed, got %d", removed)
		}
	})

	t.Run("List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSessionRepository(db)
		for _, subject := range []string{"a", "b", "a"} {
			if err := repo.Create(models.NewSession(subject, "", "", time.Hour)); err != nil {
				t.Fatalf("failed to create session: %v", err)
			}
		}

		all, err := repo.List(nil)
		if err != nil {
			t.Fatalf("failed to list sessions: %v", err)
		}
		if len(all) != 3 {
			t.Errorf("expected 3 sessions, got %d", len(all))
		}

		mine, err := repo.List(map[string]any{"subject": "a"})
		if err != nil {
			t.Fatalf("failed to list sessions: %v", err)
		}
		if len(mine) != 2 {
			t.Errorf("expected 2 sessions for subject a, got %d", len(mine))
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSessionRepository(db)
		session := models.NewSession("auth0|123", "", "", time.Hour)
		if err := repo.Create(session); err != nil {
			t.Fatalf("failed to create session: %v", err)
		}

		if err := repo.Delete(session.ID()); err != nil {
			t.Fatalf("failed to delete session: %v", err)
		}

		if _, err := repo.Get(session.ID()); !errors.Is(err, shared.ErrSessionNotFound) {
			t.Errorf("expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("Errors", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSessionRepository(db)

		t.Run("ValidationError", func(t *testing.T) {
			if err := repo.Create(models.NewSession("", "", "", time.Hour)); err == nil {
				t.Error("expected validation error for empty subject")
			}
		})

		t.Run("NotFound", func(t *testing.T) {
			if _, err := repo.Get("nonexistent-id"); !errors.Is(err, shared.ErrSessionNotFound) {
				t.Errorf("expected ErrSessionNotFound, got %v", err)
			}
		})

		t.Run("DeleteNotFound", func(t *testing.T) {
			if err := repo.Delete("nonexistent-id"); !errors.Is(err, shared.ErrSessionNotFound) {
				t.Errorf("expected ErrSessionNotFound, got %v", err)
			}
		})
	})
}

func TestFavoriteRepository(t *testing.T) {
	dune := models.Movie{ID: 438631, Title: "Dune", PosterPath: "/dune.jpg"}
	alien := models.Movie{ID: 348, Title: "Alien", PosterPath: "/alien.jpg"}

	t.Run("Add", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewFavoriteRepository(db)

		favorite, err := repo.Add("auth0|123", dune)
		if err != nil {
			t.Fatalf("failed to add favorite: %v", err)
		}

		if favorite.ID() == "" {
			t.Error("favorite ID should be set after creation")
		}
		if favorite.Sequence() != 1 {
			t.Errorf("expected sequence 1, got %d", favorite.Sequence())
		}

		got, err := repo.Get(favorite.ID())
		if err != nil {
			t.Fatalf("failed to get favorite: %v", err)
		}
		if got.MovieID() != dune.ID || got.Title() != "Dune" || got.PosterPath() != "/dune.jpg" {
			t.Errorf("unexpected favorite: %+v", got.Movie())
		}
	})

	t.Run("AddTwiceReturnsStoredRow", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewFavoriteRepository(db)

		if _, err := repo.Add("auth0|123", dune); err != nil {
			t.Fatalf("failed to add favorite: %v", err)
		}
		stored, err := repo.GetByMovie("auth0|123", dune.ID)
		if err != nil {
			t.Fatalf("failed to load favorite: %v", err)
		}

		time.Sleep(10 * time.Millisecond)
		renamed := dune
		renamed.Title = "Dune (2021)"
		renamed.PosterPath = "/other.jpg"

		again, err := repo.Add("auth0|123", renamed)
		if err != nil {
			t.Fatalf("failed to add favorite again: %v", err)
		}
		if again.Title() != stored.Title() || again.PosterPath() != stored.PosterPath() {
			t.Errorf("expected stored title and poster, got %q %q", again.Title(), again.PosterPath())
		}
		if !again.CreatedAt().Equal(stored.CreatedAt()) {
			t.Errorf("expected stored created_at %v, got %v", stored.CreatedAt(), again.CreatedAt())
		}
		if again.ID() != stored.ID() || again.Sequence() != stored.Sequence() {
			t.Errorf("expected stored identity, got %s/%d", again.ID(), again.Sequence())
		}
	})

	t.Run("AddTwice", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewFavoriteRepository(db)

		first, err := repo.Add("auth0|123", dune)
		if err != nil {
			t.Fatalf("failed to add favorite: %v", err)
		}

		second, err := repo.Add("auth0|123", dune)
		if err != nil {
			t.Fatalf("failed to add favorite again: %v", err)
		}

		if first.ID() != second.ID() {
			t.Errorf("expected same favorite, got %s and %s", first.ID(), second.ID())
		}

		favorites, err := repo.ListBySubject("auth0|123")
		if err != nil {
			t.Fatalf("failed to list favorites: %v", err)
		}
		if len(favorites) != 1 {
			t.Errorf("expected 1 favorite, got %d", len(favorites))
		}

		next, err := repo.Add("auth0|123", models.Movie{ID: 872585, Title: "Oppenheimer"})
		if err != nil {
			t.Fatalf("failed to add second movie: %v", err)
		}
		if next.Sequence() != first.Sequence()+1 {
			t.Errorf("expected repeated add to leave the sequence alone, got %d after %d", next.Sequence(), first.Sequence())
		}
	})

	t.Run("ListOrder", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewFavoriteRepository(db)
		for _, m := range []models.Movie{alien, dune} {
			if _, err := repo.Add("auth0|123", m); err != nil {
				t.Fatalf("failed to add favorite: %v", err)
			}
		}
		if _, err := repo.Add("other", dune); err != nil {
			t.Fatalf("failed to add favorite: %v", err)
		}

		favorites, err := repo.ListBySubject("auth0|123")
		if err != nil {
			t.Fatalf("failed to list favorites: %v", err)
		}

		if len(favorites) != 2 {
			t.Fatalf("expected 2 favorites, got %d", len(favorites))
		}
		if favorites[0].MovieID() != alien.ID || favorites[1].MovieID() != dune.ID {
			t.Errorf("expected alien then dune, got %d then %d", favorites[0].MovieID(), favorites[1].MovieID())
		}

		all, err := repo.List(nil)
		if err != nil {
			t.Fatalf("failed to list favorites: %v", err)
		}
		if len(all) != 3 {
			t.Errorf("expected 3 favorites, got %d", len(all))
		}
	})

	t.Run("ExistsAndRemove", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewFavoriteRepository(db)
		if _, err := repo.Add("auth0|123", dune); err != nil {
			t.Fatalf("failed to add favorite: %v", err)
		}

		exists, err := repo.Exists("auth0|123", dune.ID)
		if err != nil || !exists {
			t.Fatalf("expected favorite to exist, got %v (%v)", exists, err)
		}

		if err := repo.Remove("auth0|123", dune.ID); err != nil {
			t.Fatalf("failed to remove favorite: %v", err)
		}

		exists, err = repo.Exists("auth0|123", dune.ID)
		if err != nil || exists {
			t.Errorf("expected favorite to be gone, got %v (%v)", exists, err)
		}

		if err := repo.Remove("auth0|123", dune.ID); !errors.Is(err, shared.ErrFavoriteNotFound) {
			t.Errorf("expected ErrFavoriteNotFound, got %v", err)
		}
	})

	t.Run("Errors", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewFavoriteRepository(db)

		t.Run("ValidationError", func(t *testing.T) {
			if _, err := repo.Add("auth0|123", models.Movie{}); err == nil {
				t.Error("expected validation error for missing movie id")
			}
			if _, err := repo.Add("", dune); err == nil {
				t.Error("expected validation error for empty subject")
			}
		})

		t.Run("NotFound", func(t *testing.T) {
			if _, err := repo.Get("nonexistent-id"); !errors.Is(err, shared.ErrFavoriteNotFound) {
				t.Errorf("expected ErrFavoriteNotFound, got %v", err)
			}
			if err := repo.Delete("nonexistent-id"); !errors.Is(err, shared.ErrFavoriteNotFound) {
				t.Errorf("expected ErrFavoriteNotFound, got %v", err)
			}
		})
	})
}

func TestOAuthStateRepository(t *testing.T) {
	t.Run("ConsumeOnce", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewOAuthStateRepository(db)
		if err := repo.Save("state-1", "/movie/42"); err != nil {
			t.Fatalf("failed to save state: %v", err)
		}

		returnTo, err := repo.Consume("state-1", time.Minute)
		if err != nil {
			t.Fatalf("failed to consume state: %v", err)
		}
		if returnTo != "/movie/42" {
			t.Errorf("expected /movie/42, got %s", returnTo)
		}

		if _, err := repo.Consume("state-1", time.Minute); !errors.Is(err, shared.ErrInvalidState) {
			t.Errorf("expected ErrInvalidState on reuse, got %v", err)
		}
	})

	t.Run("Unknown", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewOAuthStateRepository(db)
		if _, err := repo.Consume("missing", time.Minute); !errors.Is(err, shared.ErrInvalidState) {
			t.Errorf("expected ErrInvalidState, got %v", err)
		}
		if err := repo.Save("", "/"); !errors.Is(err, shared.ErrInvalidState) {
			t.Errorf("expected ErrInvalidState for empty state, got %v", err)
		}
	})

	t.Run("Expired", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewOAuthStateRepository(db)
		if err := repo.Save("state-1", "/"); err != nil {
			t.Fatalf("failed to save state: %v", err)
		}

		repo.now = func() time.Time { return time.Now().UTC().Add(time.Hour) }

		if _, err := repo.Consume("state-1", 10*time.Minute); !errors.Is(err, shared.ErrInvalidState) {
			t.Errorf("expected ErrInvalidState for expired state, got %v", err)
		}
	})

	t.Run("DeleteOlderThan", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewOAuthStateRepository(db)
		for _, s := range []string{"a", "b"} {
			if err := repo.Save(s, "/"); err != nil {
				t.Fatalf("failed to save state: %v", err)
			}
		}

		repo.now = func() time.Time { return time.Now().UTC().Add(time.Hour) }

		removed, err := repo.DeleteOlderThan(10 * time.Minute)
		if err != nil {
			t.Fatalf("failed to delete states: %v", err)
		}
		if removed != 2 {
			t.Errorf("expected 2 states removed, got %d", removed)
		}
	})
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	seq1, err := NextSequence(db, "favorites")
	if err != nil {
		t.Fatalf("failed to get first sequence: %v", err)
	}

	if seq1 != 1 {
		t.Errorf("expected first sequence to be 1, got %d", seq1)
	}

	seq2, err := NextSequence(db, "favorites")
	if err != nil {
		t.Fatalf("failed to get second sequence: %v", err)
	}

	if seq2 != 2 {
		t.Errorf("expected second sequence to be 2, got %d", seq2)
	}

	if _, err := NextSequence(db, "missing"); err == nil {
		t.Error("expected error for table without a sequence")
	}
}
