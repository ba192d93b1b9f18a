package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/nicolasrp432/PlaywrongIa/internal/models"
	"github.com/nicolasrp432/PlaywrongIa/internal/services"
	"golang.org/x/sync/errgroup"
)

const (
	msgTrending  = "Failed to fetch trending movies"
	msgGenre     = "Failed to fetch movies for genre %d"
	msgAllGenres = "Failed to fetch genre movies"
	msgSearch    = "Failed to search movies"
	msgCatalog   = "Failed to fetch genres"
)

// FetchTrending loads this week's trending movies into the trending record.
func (s *Store) FetchTrending(ctx context.Context) ([]models.Movie, error) {
	s.mu.Lock()
	token := s.begin(catTrending)[0]
	s.state.Trending.Status = StatusLoading
	s.mu.Unlock()

	movies, err := s.svc.Trending(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.current(catTrending, token) {
		return movies, err
	}
	if err != nil {
		s.logger.Error(msgTrending, "error", err)
		s.fail(&s.state.Trending.Status, &s.state.Trending.Err, msgTrending)
		return nil, fmt.Errorf("%s: %w", msgTrending, err)
	}
	s.state.Trending = Record[[]models.Movie]{Status: StatusLoaded, Data: movies, UpdatedAt: s.now()}
	return movies, nil
}

// FetchMoviesByGenre loads the first page of a genre into its bucket, creating the bucket when needed.
// Other buckets are not touched.
func (s *Store) FetchMoviesByGenre(ctx context.Context, genreID int) ([]models.Movie, error) {
	category := genreCategory(genreID)

	s.mu.Lock()
	token := s.begin(category)[0]
	bucket := s.state.Bucket(genreID)
	bucket.Status = StatusLoading
	s.state.Genres[genreID] = bucket
	s.mu.Unlock()

	movies, err := s.svc.MoviesByGenre(ctx, genreID, 1)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.current(category, token) {
		return movies, err
	}
	if err != nil {
		msg := fmt.Sprintf(msgGenre, genreID)
		s.logger.Error(msg, "genre", genreID, "error", err)
		bucket := s.state.Genres[genreID]
		s.fail(&bucket.Status, &bucket.Err, msg)
		s.state.Genres[genreID] = bucket
		return nil, fmt.Errorf("%s: %w", msg, err)
	}
	s.state.Genres[genreID] = Record[[]models.Movie]{Status: StatusLoaded, Data: movies, UpdatedAt: s.now()}
	return movies, nil
}

// FetchAllGenreMovies loads the three home buckets concurrently and commits them together.
//
// When any request fails none of the bucket payloads change, all three records are marked as
// failed and the shared error is set.
func (s *Store) FetchAllGenreMovies(ctx context.Context) (map[int][]models.Movie, error) {
	ids := models.HomeGenres
	categories := make([]string, len(ids))
	for i, id := range ids {
		categories[i] = genreCategory(id)
	}

	s.mu.Lock()
	tokens := s.begin(categories...)
	for _, id := range ids {
		bucket := s.state.Bucket(id)
		bucket.Status = StatusLoading
		s.state.Genres[id] = bucket
	}
	s.mu.Unlock()

	results := make([][]models.Movie, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			movies, err := s.svc.MoviesByGenre(gctx, id, 1)
			if err != nil {
				return fmt.Errorf("genre %d: %w", id, err)
			}
			results[i] = movies
			return nil
		})
	}
	err := g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Buckets refetched individually in the meantime keep the newer result.
	live := make([]bool, len(ids))
	for i, c := range categories {
		live[i] = s.current(c, tokens[i])
	}

	if err != nil {
		s.logger.Error(msgAllGenres, "error", err)
		s.state.Error = msgAllGenres
		for i, id := range ids {
			if !live[i] {
				continue
			}
			bucket := s.state.Genres[id]
			bucket.Status = StatusError
			bucket.Err = msgAllGenres
			s.state.Genres[id] = bucket
		}
		return nil, fmt.Errorf("%s: %w", msgAllGenres, err)
	}

	out := make(map[int][]models.Movie, len(ids))
	now := s.now()
	for i, id := range ids {
		out[id] = results[i]
		if live[i] {
			s.state.Genres[id] = Record[[]models.Movie]{Status: StatusLoaded, Data: results[i], UpdatedAt: now}
		}
	}
	return out, nil
}

// FetchMovieDetails loads one movie into the detail record.
//
// It never fails: an unavailable movie is stored as a loaded record holding the sentinel and
// the shared error slot is left alone.
func (s *Store) FetchMovieDetails(ctx context.Context, id int) services.DetailOutcome {
	s.mu.Lock()
	token := s.begin(catDetail)[0]
	s.state.Detail.Status = StatusLoading
	s.mu.Unlock()

	outcome := services.DetailsOrUnavailable(ctx, s.svc, id)
	if !outcome.OK() {
		s.logger.Warn("movie details unavailable", "movie_id", id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current(catDetail, token) {
		s.state.Detail = Record[*services.DetailOutcome]{Status: StatusLoaded, Data: &outcome, UpdatedAt: s.now()}
	}
	return outcome
}

// SearchMovies loads the first page of title matches into the search record.
//
// An empty or whitespace-only query issues no request and resets the results to an empty list.
func (s *Store) SearchMovies(ctx context.Context, query string) ([]models.Movie, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		s.ClearSearchResults()
		return []models.Movie{}, nil
	}

	s.mu.Lock()
	token := s.begin(catSearch)[0]
	s.state.Search.Status = StatusLoading
	s.state.Search.Data.Query = query
	s.mu.Unlock()

	page, err := s.svc.SearchMovies(ctx, query, 1)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.current(catSearch, token) {
		if page != nil {
			return page.Results, err
		}
		return nil, err
	}
	if err != nil {
		s.logger.Error(msgSearch, "query", query, "error", err)
		s.fail(&s.state.Search.Status, &s.state.Search.Err, msgSearch)
		return nil, fmt.Errorf("%s: %w", msgSearch, err)
	}

	movies := page.Results
	if movies == nil {
		movies = []models.Movie{}
	}
	s.state.Search = Record[SearchResults]{
		Status:    StatusLoaded,
		Data:      SearchResults{Query: query, Movies: movies, TotalResults: page.TotalResults},
		UpdatedAt: s.now(),
	}
	return movies, nil
}

// FetchGenres loads the genre catalog.
func (s *Store) FetchGenres(ctx context.Context) ([]models.Genre, error) {
	s.mu.Lock()
	token := s.begin(catCatalog)[0]
	s.state.Catalog.Status = StatusLoading
	s.mu.Unlock()

	genres, err := s.svc.Genres(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.current(catCatalog, token) {
		return genres, err
	}
	if err != nil {
		s.logger.Error(msgCatalog, "error", err)
		s.fail(&s.state.Catalog.Status, &s.state.Catalog.Err, msgCatalog)
		return nil, fmt.Errorf("%s: %w", msgCatalog, err)
	}
	s.state.Catalog = Record[[]models.Genre]{Status: StatusLoaded, Data: genres, UpdatedAt: s.now()}
	return genres, nil
}

// fail marks a record as failed and sets the shared error. Must be called with the lock held.
func (s *Store) fail(status *Status, recErr *string, msg string) {
	*status = StatusError
	*recErr = msg
	s.state.Error = msg
}
