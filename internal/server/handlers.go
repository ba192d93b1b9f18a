package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/nicolasrp432/PlaywrongIa/internal/formatter"
	"github.com/nicolasrp432/PlaywrongIa/internal/models"
	"github.com/nicolasrp432/PlaywrongIa/internal/store"
	"golang.org/x/sync/errgroup"
)

const (
	pageNotFoundTitle   = "Página no encontrada"
	pageNotFoundMessage = "La página que estás buscando no existe o ha sido movida a otra ubicación."
)

// GenreRow is one genre section of the home view.
type GenreRow struct {
	ID     int                   `json:"id"`
	Title  string                `json:"title"`
	Status store.Status          `json:"status"`
	Error  string                `json:"error,omitempty"`
	Movies []formatter.MovieCard `json:"movies"`
}

// HomeView is the payload of the home page.
type HomeView struct {
	Featured       []formatter.FeaturedMovie `json:"featured"`
	TrendingStatus store.Status              `json:"trending_status"`
	Trending       []formatter.MovieCard     `json:"trending"`
	Genres         []GenreRow                `json:"genres"`
	Loading        bool                      `json:"loading"`
	Error          string                    `json:"error,omitempty"`
	Authenticated  bool                      `json:"authenticated"`
	User           string                    `json:"user,omitempty"`
}

// SearchView is the payload of the search page.
type SearchView struct {
	Query        string                `json:"query"`
	Results      []formatter.MovieCard `json:"results"`
	TotalResults int                   `json:"total_results"`
}

// NotFoundPage is the payload of the 404 page.
type NotFoundPage struct {
	Error   bool   `json:"error"`
	Status  int    `json:"status"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// needsFetch reports whether a record has nothing usable yet.
func needsFetch(status store.Status) bool {
	return status == store.StatusIdle || status == store.StatusError
}

// handleHome loads trending, the home genre buckets and the genre catalog when they are not
// loaded yet (or when ?refresh is given) and returns the home view.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	refresh := r.URL.Query().Has("refresh")
	snap := s.store.Snapshot()

	var g errgroup.Group
	if refresh || needsFetch(snap.Trending.Status) {
		g.Go(func() error {
			_, err := s.store.FetchTrending(ctx)
			return err
		})
	}

	homeStale := refresh
	for _, id := range models.HomeGenres {
		if needsFetch(snap.Bucket(id).Status) {
			homeStale = true
		}
	}
	if homeStale {
		g.Go(func() error {
			_, err := s.store.FetchAllGenreMovies(ctx)
			return err
		})
	}

	if refresh || needsFetch(snap.Catalog.Status) {
		g.Go(func() error {
			_, err := s.store.FetchGenres(ctx)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		s.logger.Warn("home partially loaded", "error", err)
	}

	snap = s.store.Snapshot()
	view := HomeView{
		Featured:       formatter.FeaturedMovies(snap.Trending.Data, formatter.FeaturedCount),
		TrendingStatus: snap.Trending.Status,
		Trending:       formatter.NewMovieCards(snap.Trending.Data),
		Genres:         make([]GenreRow, 0, len(models.HomeGenres)),
		Loading:        snap.Loading(),
		Error:          snap.Error,
	}

	for _, id := range models.HomeGenres {
		bucket := snap.Bucket(id)
		view.Genres = append(view.Genres, GenreRow{
			ID:     id,
			Title:  formatter.GenreTitle(s.store.GenreName(id)),
			Status: bucket.Status,
			Error:  bucket.Err,
			Movies: formatter.NewMovieCards(bucket.Data),
		})
	}

	if session, ok := SessionFrom(ctx); ok {
		view.Authenticated = true
		view.User = session.Name()
	}

	writeJSON(w, http.StatusOK, view)
}

// failureMessage prefers the message recorded by the store over the raw error.
func failureMessage(recorded string, err error) string {
	if recorded != "" {
		return recorded
	}
	return err.Error()
}

// movieID parses the {id} path value; ok is false for anything but a positive integer.
func movieID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// handleMovie returns the detail view, or a 404 carrying the unavailable sentinel.
func (s *Server) handleMovie(w http.ResponseWriter, r *http.Request) {
	id, ok := movieID(r)
	if !ok {
		http.Redirect(w, r, "/404", http.StatusFound)
		return
	}

	outcome := s.store.FetchMovieDetails(r.Context(), id)
	if !outcome.OK() {
		writeJSON(w, http.StatusNotFound, formatter.NewNotFoundView(outcome.Unavailable))
		return
	}

	writeJSON(w, http.StatusOK, formatter.NewDetailView(outcome.Detail))
}

// handleSearch runs the q parameter as a title search. An empty query returns no results
// without a remote call.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	movies, err := s.store.SearchMovies(r.Context(), query)
	if err != nil {
		writeError(w, http.StatusBadGateway, failureMessage(s.store.Snapshot().Search.Err, err))
		return
	}

	total := len(movies)
	if query != "" {
		total = s.store.Snapshot().Search.Data.TotalResults
	}

	writeJSON(w, http.StatusOK, SearchView{
		Query:        query,
		Results:      formatter.NewMovieCards(movies),
		TotalResults: total,
	})
}

// handleGenres returns the genre catalog, fetching it once.
func (s *Server) handleGenres(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Snapshot()
	genres := snap.Catalog.Data

	if snap.Catalog.Status != store.StatusLoaded {
		var err error
		genres, err = s.store.FetchGenres(r.Context())
		if err != nil {
			writeError(w, http.StatusBadGateway, failureMessage(s.store.Snapshot().Catalog.Err, err))
			return
		}
	}

	writeJSON(w, http.StatusOK, genres)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, NotFoundPage{
		Error:   true,
		Status:  http.StatusNotFound,
		Title:   pageNotFoundTitle,
		Message: pageNotFoundMessage,
	})
}
