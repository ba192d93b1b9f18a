package store

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/nicolasrp432/PlaywrongIa/internal/models"
	"github.com/nicolasrp432/PlaywrongIa/internal/shared"
	tu "github.com/nicolasrp432/PlaywrongIa/internal/testing"
)

func newTestStore() (*Store, *tu.MockMovieService) {
	mock := tu.NewMockMovieService()
	mock.TrendingMovies = []models.Movie{{ID: 1, Title: "Uno"}, {ID: 2, Title: "Dos"}}
	mock.GenreMovies[models.GenreAction] = []models.Movie{{ID: 10, Title: "Acción 1"}}
	mock.GenreMovies[models.GenreComedy] = []models.Movie{{ID: 20, Title: "Comedia 1"}}
	mock.GenreMovies[models.GenreDrama] = []models.Movie{{ID: 30, Title: "Drama 1"}}
	mock.GenreList = []models.Genre{
		{ID: 28, Name: "Acción"},
		{ID: 35, Name: "Comedia"},
		{ID: 18, Name: "Drama"},
		{ID: 878, Name: "Ciencia ficción"},
	}
	return New(mock, log.New(io.Discard)), mock
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for condition")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestNew(t *testing.T) {
	s, _ := newTestStore()
	st := s.Snapshot()

	if st.Trending.Status != StatusIdle || len(st.Trending.Data) != 0 {
		t.Errorf("expected idle empty trending, got %+v", st.Trending)
	}
	for _, id := range models.HomeGenres {
		r, ok := st.Genres[id]
		if !ok {
			t.Errorf("expected bucket %d to exist", id)
			continue
		}
		if r.Status != StatusIdle || r.Data == nil {
			t.Errorf("expected idle empty bucket %d, got %+v", id, r)
		}
	}
	if st.Detail.Data != nil {
		t.Error("expected no current movie")
	}
	if st.Loading() || st.Error != "" {
		t.Error("expected no loading and no error")
	}
}

func TestFetchTrending(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		s, _ := newTestStore()

		movies, err := s.FetchTrending(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(movies) != 2 {
			t.Errorf("expected 2 movies, got %d", len(movies))
		}

		st := s.Snapshot()
		if st.Trending.Status != StatusLoaded || len(st.Trending.Data) != 2 {
			t.Errorf("unexpected trending record %+v", st.Trending)
		}
		if st.Trending.UpdatedAt.IsZero() {
			t.Error("expected UpdatedAt to be set")
		}
	})

	t.Run("Failure", func(t *testing.T) {
		s, mock := newTestStore()
		mock.TrendingErr = shared.ErrAPIRequest

		_, err := s.FetchTrending(context.Background())
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected wrapped ErrAPIRequest, got %v", err)
		}

		st := s.Snapshot()
		if st.Trending.Status != StatusError || st.Trending.Err != "Failed to fetch trending movies" {
			t.Errorf("unexpected trending record %+v", st.Trending)
		}
		if s.Error() != "Failed to fetch trending movies" {
			t.Errorf("unexpected shared error %q", s.Error())
		}
		if s.Loading() {
			t.Error("loading should stop after a failure")
		}
	})

	t.Run("New Fetch Clears Shared Error", func(t *testing.T) {
		s, mock := newTestStore()
		mock.TrendingErr = shared.ErrAPIRequest
		s.FetchTrending(context.Background())

		mock.TrendingErr = nil
		if _, err := s.FetchTrending(context.Background()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if s.Error() != "" {
			t.Errorf("expected shared error cleared, got %q", s.Error())
		}
	})
}

func TestFetchMoviesByGenre(t *testing.T) {
	for _, id := range models.HomeGenres {
		t.Run("Only Bucket "+genreCategory(id), func(t *testing.T) {
			s, mock := newTestStore()

			movies, err := s.FetchMoviesByGenre(context.Background(), id)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(movies) != 1 || movies[0].ID != mock.GenreMovies[id][0].ID {
				t.Errorf("unexpected movies %+v", movies)
			}

			st := s.Snapshot()
			for _, other := range models.HomeGenres {
				r := st.Genres[other]
				if other == id {
					if r.Status != StatusLoaded || len(r.Data) != 1 {
						t.Errorf("bucket %d not populated: %+v", other, r)
					}
					continue
				}
				if r.Status != StatusIdle || len(r.Data) != 0 {
					t.Errorf("bucket %d should be untouched, got %+v", other, r)
				}
			}
		})
	}

	t.Run("Creates Bucket For Other Genre", func(t *testing.T) {
		s, mock := newTestStore()
		mock.GenreMovies[878] = []models.Movie{{ID: 99}}

		if _, err := s.FetchMoviesByGenre(context.Background(), 878); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if r := s.Snapshot().Bucket(878); r.Status != StatusLoaded || len(r.Data) != 1 {
			t.Errorf("unexpected bucket %+v", r)
		}
	})

	t.Run("Failure", func(t *testing.T) {
		s, mock := newTestStore()
		mock.GenreErr[models.GenreComedy] = shared.ErrAPIRequest

		if _, err := s.FetchMoviesByGenre(context.Background(), models.GenreComedy); err == nil {
			t.Fatal("expected error")
		}
		if got := s.Error(); got != "Failed to fetch movies for genre 35" {
			t.Errorf("unexpected shared error %q", got)
		}
		if r := s.Snapshot().Genres[models.GenreComedy]; r.Status != StatusError {
			t.Errorf("expected error status, got %s", r.Status)
		}
	})
}

func TestFetchAllGenreMovies(t *testing.T) {
	t.Run("Populates All Buckets", func(t *testing.T) {
		s, mock := newTestStore()

		got, err := s.FetchAllGenreMovies(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(got) != 3 {
			t.Errorf("expected 3 buckets, got %d", len(got))
		}
		if mock.Calls("MoviesByGenre") != 3 {
			t.Errorf("expected 3 requests, got %d", mock.Calls("MoviesByGenre"))
		}

		st := s.Snapshot()
		for _, id := range models.HomeGenres {
			r := st.Genres[id]
			if r.Status != StatusLoaded || len(r.Data) != 1 {
				t.Errorf("bucket %d not populated: %+v", id, r)
			}
		}
	})

	t.Run("Any Failure Leaves All Buckets Unchanged", func(t *testing.T) {
		s, mock := newTestStore()
		if _, err := s.FetchAllGenreMovies(context.Background()); err != nil {
			t.Fatalf("seed fetch failed: %v", err)
		}
		before := s.Snapshot()

		mock.GenreMovies[models.GenreAction] = []models.Movie{{ID: 11}, {ID: 12}}
		mock.GenreErr[models.GenreDrama] = shared.ErrAPIRequest

		if _, err := s.FetchAllGenreMovies(context.Background()); err == nil {
			t.Fatal("expected error")
		}

		st := s.Snapshot()
		for _, id := range models.HomeGenres {
			r := st.Genres[id]
			if r.Status != StatusError {
				t.Errorf("bucket %d expected error status, got %s", id, r.Status)
			}
			if len(r.Data) != len(before.Genres[id].Data) || r.Data[0].ID != before.Genres[id].Data[0].ID {
				t.Errorf("bucket %d payload changed: %+v", id, r.Data)
			}
		}
		if st.Error != "Failed to fetch genre movies" {
			t.Errorf("unexpected shared error %q", st.Error)
		}
	})

	t.Run("Bucket Refetched Meanwhile Keeps Newer Result", func(t *testing.T) {
		_, mock := newTestStore()
		gate := make(chan struct{})
		svc := &gatedService{
			MockMovieService: mock,
			gates:            map[int]chan struct{}{models.GenreAction: gate},
			refetched:        map[int][]models.Movie{models.GenreAction: {{ID: 11, Title: "Acción nueva"}}},
		}
		s := New(svc, log.New(io.Discard))

		done := make(chan error, 1)
		go func() {
			_, err := s.FetchAllGenreMovies(context.Background())
			done <- err
		}()
		waitFor(t, func() bool { return mock.Calls("MoviesByGenre") == 3 })

		if _, err := s.FetchMoviesByGenre(context.Background(), models.GenreAction); err != nil {
			t.Fatalf("single fetch failed: %v", err)
		}
		close(gate)
		if err := <-done; err != nil {
			t.Fatalf("fan-out failed: %v", err)
		}

		st := s.Snapshot()
		if r := st.Genres[models.GenreAction]; r.Status != StatusLoaded || len(r.Data) != 1 || r.Data[0].ID != 11 {
			t.Errorf("action bucket should keep the single fetch, got %+v", r)
		}
		if r := st.Genres[models.GenreComedy]; r.Status != StatusLoaded || len(r.Data) != 1 || r.Data[0].ID != 20 {
			t.Errorf("comedy bucket should hold the fan-out result, got %+v", r)
		}
		if r := st.Genres[models.GenreDrama]; r.Status != StatusLoaded || len(r.Data) != 1 || r.Data[0].ID != 30 {
			t.Errorf("drama bucket should hold the fan-out result, got %+v", r)
		}
	})
}

// gatedService holds the first request for each gated genre until its gate closes.
// Later requests for that genre answer with refetched.
type gatedService struct {
	*tu.MockMovieService

	mu        sync.Mutex
	gates     map[int]chan struct{}
	refetched map[int][]models.Movie
}

func (g *gatedService) MoviesByGenre(ctx context.Context, genreID, page int) ([]models.Movie, error) {
	g.mu.Lock()
	gate, gated := g.gates[genreID]
	delete(g.gates, genreID)
	later, replaced := g.refetched[genreID]
	g.mu.Unlock()

	movies, err := g.MockMovieService.MoviesByGenre(ctx, genreID, page)
	if gated {
		<-gate
		return movies, err
	}
	if replaced {
		return later, nil
	}
	return movies, err
}
