package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nicolasrp432/PlaywrongIa/internal/models"
	"github.com/nicolasrp432/PlaywrongIa/internal/shared"
	tu "github.com/nicolasrp432/PlaywrongIa/internal/testing"
)

func newMock() *tu.MockMovieService {
	mock := tu.NewMockMovieService()
	mock.TrendingMovies = []models.Movie{
		{ID: 1, Title: "Dune: Parte Dos", ReleaseDate: "2024-02-27", VoteAverage: 8.2},
		{ID: 2, Title: "Oppenheimer", ReleaseDate: "2023-07-19", VoteAverage: 8.1},
	}
	mock.GenreMovies[models.GenreAction] = []models.Movie{{ID: 10, Title: "John Wick"}}
	mock.GenreMovies[models.GenreComedy] = []models.Movie{{ID: 20, Title: "Barbie"}}
	mock.GenreMovies[models.GenreDrama] = []models.Movie{{ID: 30, Title: "Past Lives"}}
	mock.GenreList = []models.Genre{
		{ID: models.GenreAction, Name: "Acción"},
		{ID: models.GenreComedy, Name: "Comedia"},
		{ID: models.GenreDrama, Name: "Drama"},
	}
	mock.SearchResults["el padrino"] = &models.MoviePage{Page: 1, Results: []models.Movie{{ID: 238, Title: "El padrino"}}}
	return mock
}

func newEngine(mock *tu.MockMovieService) *ExportEngine {
	return NewExportEngine(mock, shared.NewLogger(io.Discard))
}

func TestTarget(t *testing.T) {
	t.Run("Slug", func(t *testing.T) {
		tests := []struct {
			target Target
			want   string
		}{
			{TrendingTarget(), "trending"},
			{GenreTarget(28, ""), "genre_28"},
			{SearchTarget("  El Padrino: Parte II "), "search_el_padrino_parte_ii"},
			{SearchTarget("¿Qué?"), "search_qué"},
			{SearchTarget("!!!"), "search"},
		}
		for _, tt := range tests {
			if got := tt.target.Slug(); got != tt.want {
				t.Errorf("Slug(%+v) = %q, want %q", tt.target, got, tt.want)
			}
		}
	})

	t.Run("Validate", func(t *testing.T) {
		if err := GenreTarget(0, "").Validate(); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
		if err := SearchTarget("  ").Validate(); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
		if err := (Target{Kind: "popular"}).Validate(); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("DefaultTargets", func(t *testing.T) {
		targets := DefaultTargets()
		if len(targets) != 4 || targets[0].Kind != KindTrending || targets[2].GenreID != models.GenreComedy {
			t.Errorf("unexpected targets %+v", targets)
		}
	})
}

func TestBulkExport(t *testing.T) {
	t.Run("exports every format", func(t *testing.T) {
		for _, tc := range []struct {
			format string
			files  []string
		}{
			{"json", []string{"trending.json", "genre_35.json"}},
			{"csv", []string{"trending_movies.csv", "trending_metadata.json", "genre_35_movies.csv"}},
			{"md", []string{filepath.Join("trending", "README.md"), filepath.Join("genre_35", "README.md")}},
			{"txt", []string{"trending_movies.txt", "genre_35_movies.txt"}},
		} {
			t.Run(tc.format, func(t *testing.T) {
				dir := t.TempDir()
				engine := newEngine(newMock())

				result, err := engine.BulkExport(context.Background(), nil,
					[]Target{TrendingTarget(), GenreTarget(models.GenreComedy, "")},
					BulkExportOpts{Format: tc.format, OutputDir: dir, RateLimit: 1000})
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if result.SuccessfulExports != 2 || result.FailedExports != 0 {
					t.Errorf("unexpected counts %+v", result)
				}
				for _, f := range append(tc.files, manifestFile) {
					if _, err := os.Stat(filepath.Join(dir, f)); err != nil {
						t.Errorf("expected %s: %v", f, err)
					}
				}
			})
		}
	})

	t.Run("titles genres from the catalog", func(t *testing.T) {
		dir := t.TempDir()
		mock := newMock()
		engine := newEngine(mock)

		result, err := engine.BulkExport(context.Background(), nil, DefaultTargets(),
			BulkExportOpts{Format: "json", OutputDir: dir, RateLimit: 1000, NumWorkers: 2})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		wantTitles := []string{TrendingTitle, "Películas de Acción", "Películas de Comedia", "Películas de Drama"}
		for i, want := range wantTitles {
			if result.Results[i].Title != want {
				t.Errorf("result %d title = %q, want %q", i, result.Results[i].Title, want)
			}
		}
		if mock.Calls("Genres") != 1 {
			t.Errorf("expected one catalog fetch, got %d", mock.Calls("Genres"))
		}
	})

	t.Run("named genres skip the catalog", func(t *testing.T) {
		mock := newMock()
		engine := newEngine(mock)

		result, err := engine.BulkExport(context.Background(), nil,
			[]Target{GenreTarget(models.GenreDrama, "Drama"), SearchTarget("el padrino")},
			BulkExportOpts{OutputDir: t.TempDir(), RateLimit: 1000})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if mock.Calls("Genres") != 0 {
			t.Errorf("expected no catalog fetch, got %d", mock.Calls("Genres"))
		}
		if result.Results[1].Title != `Resultados para "el padrino"` || result.Results[1].Movies != 1 {
			t.Errorf("unexpected search result %+v", result.Results[1])
		}
	})

	t.Run("partial failure", func(t *testing.T) {
		dir := t.TempDir()
		mock := newMock()
		mock.GenreErr[models.GenreAction] = errors.New("boom")
		mock.GenresErr = errors.New("catalog down")
		engine := newEngine(mock)

		result, err := engine.BulkExport(context.Background(), nil, DefaultTargets(),
			BulkExportOpts{Format: "json", OutputDir: dir, RateLimit: 1000})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.SuccessfulExports != 3 || result.FailedExports != 1 {
			t.Errorf("unexpected counts %+v", result)
		}
		failed := result.Results[1]
		if failed.Success || !strings.Contains(failed.ErrorMessage, "boom") {
			t.Errorf("unexpected failed result %+v", failed)
		}
		if result.Results[2].Title != "Películas de Género" {
			t.Errorf("expected generic genre title, got %q", result.Results[2].Title)
		}

		data, err := os.ReadFile(result.ManifestPath)
		if err != nil {
			t.Fatalf("expected manifest: %v", err)
		}
		var manifest struct {
			Format string `json:"format"`
			Failed int    `json:"failed_exports"`
			Lists  []struct {
				Slug  string `json:"slug"`
				Error string `json:"error"`
			} `json:"lists"`
		}
		if err := json.Unmarshal(data, &manifest); err != nil {
			t.Fatalf("invalid manifest: %v", err)
		}
		if manifest.Format != "json" || manifest.Failed != 1 || len(manifest.Lists) != 4 {
			t.Errorf("unexpected manifest %+v", manifest)
		}
		if manifest.Lists[1].Slug != "genre_28" || manifest.Lists[1].Error == "" {
			t.Errorf("expected failure recorded for genre_28, got %+v", manifest.Lists[1])
		}
	})

	t.Run("reports progress", func(t *testing.T) {
		prog := make(chan ProgressUpdate, 32)
		engine := newEngine(newMock())

		_, err := engine.BulkExport(context.Background(), prog, DefaultTargets(),
			BulkExportOpts{OutputDir: t.TempDir(), RateLimit: 1000})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		close(prog)

		phases := map[Phase]int{}
		for u := range prog {
			phases[u.Phase]++
		}
		if phases[FetchGenres] != 1 || phases[FetchList] != 4 || phases[ExportList] != 4 || phases[WriteManifest] != 1 {
			t.Errorf("unexpected progress phases %v", phases)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		dir := t.TempDir()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		result, err := newEngine(newMock()).BulkExport(ctx, nil, []Target{GenreTarget(18, "Drama")},
			BulkExportOpts{OutputDir: dir})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if result == nil || result.ManifestPath != "" {
			t.Errorf("expected partial result without manifest, got %+v", result)
		}
		if _, err := os.Stat(filepath.Join(dir, manifestFile)); err == nil {
			t.Error("expected no manifest")
		}
	})

	t.Run("cancelled while fetching", func(t *testing.T) {
		dir := t.TempDir()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		svc := &cancellingService{MockMovieService: newMock(), genreID: models.GenreComedy, cancel: cancel}
		targets := []Target{
			TrendingTarget(),
			GenreTarget(models.GenreAction, "Acción"),
			GenreTarget(models.GenreComedy, "Comedia"),
			GenreTarget(models.GenreDrama, "Drama"),
		}

		result, err := NewExportEngine(svc, shared.NewLogger(io.Discard)).BulkExport(ctx, nil, targets,
			BulkExportOpts{Format: "json", OutputDir: dir, NumWorkers: 1, RateLimit: 1000})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if result == nil || result.ManifestPath != "" {
			t.Fatalf("expected partial result without manifest, got %+v", result)
		}
		if len(result.Results) > 3 {
			t.Errorf("expected at most 3 results, got %d", len(result.Results))
		}
		for _, res := range result.Results {
			if res.Target.GenreID == models.GenreDrama {
				t.Errorf("target after cancellation should not be exported: %+v", res)
			}
		}
		if svc.Calls("MoviesByGenre") != 2 {
			t.Errorf("expected 2 genre fetches, got %d", svc.Calls("MoviesByGenre"))
		}
		if _, err := os.Stat(filepath.Join(dir, manifestFile)); err == nil {
			t.Error("expected no manifest")
		}
	})

	t.Run("invalid input", func(t *testing.T) {
		engine := newEngine(newMock())

		if _, err := engine.BulkExport(context.Background(), nil, nil, BulkExportOpts{}); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
		if _, err := engine.BulkExport(context.Background(), nil, DefaultTargets(), BulkExportOpts{Format: "xml"}); !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
		if _, err := NewExportEngine(nil, nil).BulkExport(context.Background(), nil, DefaultTargets(), BulkExportOpts{}); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}

// cancellingService cancels the export while fetching genreID.
type cancellingService struct {
	*tu.MockMovieService
	genreID int
	cancel  context.CancelFunc
}

func (s *cancellingService) MoviesByGenre(ctx context.Context, genreID, page int) ([]models.Movie, error) {
	if genreID != s.genreID {
		return s.MockMovieService.MoviesByGenre(ctx, genreID, page)
	}
	_, _ = s.MockMovieService.MoviesByGenre(ctx, genreID, page)
	s.cancel()
	<-ctx.Done()
	return nil, ctx.Err()
}
