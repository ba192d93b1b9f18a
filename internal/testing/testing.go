// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/nicolasrp432/PlaywrongIa/internal/models"
)

// MockMovieService is a thread-safe test double for services.MovieService.
//
// Responses come from the exported maps and slices; the *Err fields force failures.
// Calls counts invocations per operation name.
type MockMovieService struct {
	mu sync.Mutex

	TrendingMovies []models.Movie
	GenreMovies    map[int][]models.Movie
	Details        map[int]*models.MovieDetail
	SearchResults  map[string]*models.MoviePage
	GenreList      []models.Genre

	TrendingErr error
	GenreErr    map[int]error
	DetailErr   error
	SearchErr   error
	GenresErr   error

	// Block, when set, is waited on by every call before it answers.
	Block chan struct{}

	calls map[string]int
}

func NewMockMovieService() *MockMovieService {
	return &MockMovieService{
		GenreMovies:   make(map[int][]models.Movie),
		Details:       make(map[int]*models.MovieDetail),
		SearchResults: make(map[string]*models.MoviePage),
		GenreErr:      make(map[int]error),
		calls:         make(map[string]int),
	}
}

func (m *MockMovieService) record(ctx context.Context, name string) error {
	m.mu.Lock()
	m.calls[name]++
	block := m.Block
	m.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Calls returns how many times the named operation ran.
func (m *MockMovieService) Calls(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

func (m *MockMovieService) Trending(ctx context.Context) ([]models.Movie, error) {
	if err := m.record(ctx, "Trending"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.TrendingErr != nil {
		return nil, m.TrendingErr
	}
	return append([]models.Movie{}, m.TrendingMovies...), nil
}

func (m *MockMovieService) MoviesByGenre(ctx context.Context, genreID, page int) ([]models.Movie, error) {
	if err := m.record(ctx, "MoviesByGenre"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.GenreErr[genreID]; err != nil {
		return nil, err
	}
	return append([]models.Movie{}, m.GenreMovies[genreID]...), nil
}

func (m *MockMovieService) MovieDetails(ctx context.Context, id int) (*models.MovieDetail, error) {
	if err := m.record(ctx, "MovieDetails"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DetailErr != nil {
		return nil, m.DetailErr
	}
	d, ok := m.Details[id]
	if !ok {
		return nil, fmt.Errorf("movie %d: not found", id)
	}
	return d, nil
}

func (m *MockMovieService) SearchMovies(ctx context.Context, query string, page int) (*models.MoviePage, error) {
	if err := m.record(ctx, "SearchMovies"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	if p, ok := m.SearchResults[query]; ok {
		return p, nil
	}
	return &models.MoviePage{Page: page, Results: []models.Movie{}}, nil
}

func (m *MockMovieService) Genres(ctx context.Context) ([]models.Genre, error) {
	if err := m.record(ctx, "Genres"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GenresErr != nil {
		return nil, m.GenresErr
	}
	return append([]models.Genre{}, m.GenreList...), nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
