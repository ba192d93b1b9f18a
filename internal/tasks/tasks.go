package tasks

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/charmbracelet/log"
	"github.com/nicolasrp432/PlaywrongIa/internal/formatter"
	"github.com/nicolasrp432/PlaywrongIa/internal/models"
	"github.com/nicolasrp432/PlaywrongIa/internal/services"
	"github.com/nicolasrp432/PlaywrongIa/internal/shared"
)

const (
	TrendingTitle    = "Tendencias de la semana"
	unknownGenreName = "Género"
)

// TargetKind names the source of a listing.
type TargetKind string

const (
	KindTrending TargetKind = "trending"
	KindGenre    TargetKind = "genre"
	KindSearch   TargetKind = "search"
)

// Target is one listing to export.
type Target struct {
	Kind    TargetKind `json:"kind"`
	GenreID int        `json:"genre_id,omitempty"`
	// GenreName titles a genre listing; the catalog is consulted when it is empty.
	GenreName string `json:"genre_name,omitempty"`
	Query     string `json:"query,omitempty"`
}

func TrendingTarget() Target { return Target{Kind: KindTrending} }

func GenreTarget(id int, name string) Target {
	return Target{Kind: KindGenre, GenreID: id, GenreName: name}
}

func SearchTarget(query string) Target {
	return Target{Kind: KindSearch, Query: strings.TrimSpace(query)}
}

// DefaultTargets is the home page: trending followed by the fixed genre buckets.
func DefaultTargets() []Target {
	targets := []Target{TrendingTarget()}
	for _, id := range models.HomeGenres {
		targets = append(targets, GenreTarget(id, ""))
	}
	return targets
}

// Slug names the files written for the target.
func (t Target) Slug() string {
	switch t.Kind {
	case KindGenre:
		return "genre_" + strconv.Itoa(t.GenreID)
	case KindSearch:
		if s := slugify(t.Query); s != "" {
			return "search_" + s
		}
		return "search"
	default:
		return string(t.Kind)
	}
}

// Validate checks that the target can be fetched.
func (t Target) Validate() error {
	switch t.Kind {
	case KindTrending:
		return nil
	case KindGenre:
		if t.GenreID <= 0 {
			return fmt.Errorf("%w: genre id must be positive, got %d", shared.ErrInvalidArgument, t.GenreID)
		}
		return nil
	case KindSearch:
		if t.Query == "" {
			return fmt.Errorf("%w: search query", shared.ErrMissingArgument)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown target kind %q", shared.ErrInvalidArgument, t.Kind)
	}
}

func slugify(s string) string {
	var b strings.Builder
	underscore := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			underscore = false
			continue
		}
		if !underscore && b.Len() > 0 {
			b.WriteByte('_')
			underscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// ExportEngine fetches movie listings and writes them to disk.
type ExportEngine struct {
	svc    services.MovieService
	logger *log.Logger
}

// NewExportEngine creates an engine reading from svc.
func NewExportEngine(svc services.MovieService, logger *log.Logger) *ExportEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &ExportEngine{svc: svc, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *ExportEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// fetch loads the first page of the target's movies.
func (e *ExportEngine) fetch(ctx context.Context, t Target) ([]models.Movie, error) {
	switch t.Kind {
	case KindTrending:
		return e.svc.Trending(ctx)
	case KindGenre:
		return e.svc.MoviesByGenre(ctx, t.GenreID, 1)
	case KindSearch:
		page, err := e.svc.SearchMovies(ctx, t.Query, 1)
		if err != nil {
			return nil, err
		}
		return page.Results, nil
	default:
		return nil, t.Validate()
	}
}

// genreNames loads the catalog when a genre target has no name. Failures leave names unresolved.
func (e *ExportEngine) genreNames(ctx context.Context, progress chan<- ProgressUpdate, targets []Target) map[int]string {
	names := make(map[int]string)
	needed := false
	for _, t := range targets {
		if t.Kind == KindGenre && t.GenreName == "" {
			needed = true
			break
		}
	}
	if !needed {
		return names
	}

	e.sendProgress(progress, fetchingGenresUpdate())
	genres, err := e.svc.Genres(ctx)
	if err != nil {
		e.logger.Warn("genre catalog unavailable, using generic titles", "error", err)
		return names
	}
	for _, g := range genres {
		names[g.ID] = g.Name
	}
	return names
}

func title(t Target, names map[int]string) string {
	switch t.Kind {
	case KindGenre:
		name := t.GenreName
		if name == "" {
			name = names[t.GenreID]
		}
		if name == "" {
			name = unknownGenreName
		}
		return formatter.GenreTitle(name)
	case KindSearch:
		return fmt.Sprintf("Resultados para %q", t.Query)
	default:
		return TrendingTitle
	}
}
