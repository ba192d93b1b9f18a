package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/nicolasrp432/PlaywrongIa/internal/formatter"
	"github.com/nicolasrp432/PlaywrongIa/internal/models"
	"github.com/nicolasrp432/PlaywrongIa/internal/services"
	"github.com/nicolasrp432/PlaywrongIa/internal/shared"
)

// FavoriteView is one saved movie.
type FavoriteView struct {
	formatter.MovieCard
	SavedAt time.Time `json:"saved_at"`
}

func newFavoriteView(f *models.Favorite) FavoriteView {
	return FavoriteView{
		MovieCard: formatter.NewMovieCard(f.Movie(), "medium"),
		SavedAt:   f.CreatedAt(),
	}
}

func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	if s.favorites == nil {
		writeError(w, http.StatusServiceUnavailable, "Favorites are not available")
		return
	}
	session, err := CurrentSession(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	favorites, err := s.favorites.ListBySubject(session.Subject())
	if err != nil {
		s.logger.Error("failed to list favorites", "subject", session.Subject(), "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load favorites")
		return
	}

	views := make([]FavoriteView, 0, len(favorites))
	for _, f := range favorites {
		views = append(views, newFavoriteView(f))
	}
	writeJSON(w, http.StatusOK, views)
}

// handleAddFavorite saves the movie named by {id}, looking up its title and poster first.
func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	if s.favorites == nil || s.svc == nil {
		writeError(w, http.StatusServiceUnavailable, "Favorites are not available")
		return
	}
	session, err := CurrentSession(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, ok := movieID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid movie id")
		return
	}

	outcome := services.DetailsOrUnavailable(r.Context(), s.svc, id)
	if !outcome.OK() {
		writeJSON(w, http.StatusNotFound, formatter.NewNotFoundView(outcome.Unavailable))
		return
	}

	favorite, err := s.favorites.Add(session.Subject(), outcome.Detail.Movie)
	if err != nil {
		s.logger.Error("failed to add favorite", "movie_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to save favorite")
		return
	}

	writeJSON(w, http.StatusCreated, newFavoriteView(favorite))
}

func (s *Server) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	if s.favorites == nil {
		writeError(w, http.StatusServiceUnavailable, "Favorites are not available")
		return
	}
	session, err := CurrentSession(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, ok := movieID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid movie id")
		return
	}

	if err := s.favorites.Remove(session.Subject(), id); err != nil {
		if errors.Is(err, shared.ErrFavoriteNotFound) {
			writeError(w, http.StatusNotFound, "Favorite not found")
			return
		}
		s.logger.Error("failed to remove favorite", "movie_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to remove favorite")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
