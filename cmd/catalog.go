package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/nicolasrp432/PlaywrongIa/internal/formatter"
	"github.com/nicolasrp432/PlaywrongIa/internal/models"
	"github.com/nicolasrp432/PlaywrongIa/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

const trendingTitle = "Tendencias de la semana"

// homeRow is one titled row of the home listing.
type homeRow struct {
	GenreID int            `json:"genre_id"`
	Title   string         `json:"title"`
	Movies  []models.Movie `json:"movies"`
}

// homeListing is the JSON shape of the home command.
type homeListing struct {
	Featured []formatter.FeaturedMovie `json:"featured"`
	Trending []models.Movie            `json:"trending"`
	Rows     []homeRow                 `json:"rows"`
}

// Trending lists this week's trending movies.
func (r *Runner) Trending(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireStore(); err != nil {
		return err
	}

	movies, err := r.store.FetchTrending(ctx)
	if err != nil {
		return err
	}

	return r.writeList(ctx, cmd, &formatter.MovieList{Slug: "trending", Title: trendingTitle, Movies: movies})
}

// Home prints the trending list followed by the three genre rows.
//
// Genre names come from the catalog; a catalog failure only degrades the row titles.
func (r *Runner) Home(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireStore(); err != nil {
		return err
	}

	var g errgroup.Group
	g.Go(func() error {
		_, err := r.store.FetchTrending(ctx)
		return err
	})
	g.Go(func() error {
		_, err := r.store.FetchAllGenreMovies(ctx)
		return err
	})
	g.Go(func() error {
		if _, err := r.store.FetchGenres(ctx); err != nil {
			r.logger.Warn("genre catalog unavailable", "error", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	state := r.store.Snapshot()
	listing := homeListing{
		Featured: formatter.FeaturedMovies(state.Trending.Data, formatter.FeaturedCount),
		Trending: state.Trending.Data,
		Rows:     make([]homeRow, 0, len(models.HomeGenres)),
	}
	for _, id := range models.HomeGenres {
		listing.Rows = append(listing.Rows, homeRow{
			GenreID: id,
			Title:   formatter.GenreTitle(r.store.GenreName(id)),
			Movies:  state.Bucket(id).Data,
		})
	}

	if cmd.Bool("json") {
		return r.writeJSON(listing, cmd.Bool("pretty"))
	}

	lists := []*formatter.MovieList{{Title: trendingTitle, Movies: listing.Trending}}
	for _, row := range listing.Rows {
		lists = append(lists, &formatter.MovieList{Title: row.Title, Movies: row.Movies})
	}
	for i, list := range lists {
		if i > 0 {
			r.writePlain("\n")
		}
		data, err := formatter.ExportToText(list)
		if err != nil {
			return err
		}
		if _, err := r.output.Write(data); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

// Genre lists the first page of movies for a genre given by id or name.
func (r *Runner) Genre(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireStore(); err != nil {
		return err
	}

	genre, err := r.store.LookupGenre(ctx, cmd.StringArg("genre"))
	if err != nil {
		return err
	}
	r.logger.Debug("resolved genre", "id", genre.ID, "name", genre.Name)

	movies, err := r.store.FetchMoviesByGenre(ctx, genre.ID)
	if err != nil {
		return err
	}

	return r.writeList(ctx, cmd, &formatter.MovieList{
		Slug:   "genre_" + strconv.Itoa(genre.ID),
		Title:  formatter.GenreTitle(genre.Name),
		Movies: movies,
	})
}

// Search lists movies matching a title query. A blank query prints an empty listing.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireStore(); err != nil {
		return err
	}

	query := cmd.StringArg("query")
	movies, err := r.store.SearchMovies(ctx, query)
	if err != nil {
		return err
	}
	defer r.store.ClearSearchResults()

	return r.writeList(ctx, cmd, &formatter.MovieList{
		Slug:   "search",
		Title:  fmt.Sprintf("Resultados para %q", strings.TrimSpace(query)),
		Movies: movies,
	})
}

// Genres prints the genre catalog.
func (r *Runner) Genres(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireStore(); err != nil {
		return err
	}

	genres, err := r.store.FetchGenres(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(genres, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Géneros")
	for _, g := range genres {
		r.writePlain("%6d  %s\n", g.ID, g.Name)
	}
	return nil
}

// Movie prints the details of a movie.
//
// A movie that cannot be loaded prints the not-found view and returns [shared.ErrMovieNotFound].
func (r *Runner) Movie(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireStore(); err != nil {
		return err
	}

	id, err := positiveID(cmd.StringArg("id"))
	if err != nil {
		return err
	}

	outcome := r.store.FetchMovieDetails(ctx, id)
	defer r.store.ClearCurrentMovie()

	if !outcome.OK() {
		view := formatter.NewNotFoundView(outcome.Unavailable)
		if cmd.Bool("json") {
			if err := r.writeJSON(view, cmd.Bool("pretty")); err != nil {
				return err
			}
		} else {
			r.writePlainln("%s\n%s", view.Title, view.Message)
		}
		return fmt.Errorf("%w: %d", shared.ErrMovieNotFound, id)
	}

	view := formatter.NewDetailView(outcome.Detail)
	if cmd.Bool("json") {
		return r.writeJSON(view, cmd.Bool("pretty"))
	}
	r.writeDetail(view)
	return nil
}

func (r *Runner) writeDetail(v formatter.DetailView) {
	title := v.Title
	if v.Year != "" {
		title = fmt.Sprintf("%s (%s)", v.Title, v.Year)
	}
	r.writePlainHeader(title)

	if v.OriginalTitle != "" {
		r.writePlain("Título original: %s\n", v.OriginalTitle)
	}
	if v.Tagline != "" {
		r.writePlain("%s\n", v.Tagline)
	}
	if v.Rating != "" {
		r.writePlain("Valoración: ★ %s\n", v.Rating)
	}
	r.writePlain("Estreno: %s\n", v.ReleaseDate)
	if v.Runtime != "" {
		r.writePlain("Duración: %s\n", v.Runtime)
	}
	if len(v.Genres) > 0 {
		r.writePlain("Géneros: %s\n", strings.Join(v.Genres, ", "))
	}
	if v.Director != "" {
		r.writePlain("Dirección: %s\n", v.Director)
	}
	if v.Companies != "" {
		r.writePlain("Productoras: %s\n", v.Companies)
	}
	r.writePlain("Presupuesto: %s\n", v.Budget)
	r.writePlain("Recaudación: %s\n", v.Revenue)
	r.writePlainln("%s", v.Overview)

	if len(v.Cast) > 0 {
		r.writePlain("\nReparto:\n")
		for _, c := range v.Cast {
			r.writePlain("  %s como %s\n", c.Name, c.Character)
		}
	}
	if v.TrailerURL != "" {
		r.writePlain("\nTráiler: %s\n", v.TrailerURL)
	}
	if len(v.Recommendations) > 0 {
		r.writePlain("\nRecomendaciones:\n")
		for _, m := range v.Recommendations {
			r.writePlain("  [%d] %s\n", m.ID, m.Title)
		}
	}
}

// writeList prints list in the requested format or exports it to --output.
func (r *Runner) writeList(ctx context.Context, cmd *cli.Command, list *formatter.MovieList) error {
	if cmd.Bool("json") {
		return r.writeJSON(list, cmd.Bool("pretty"))
	}

	format := cmd.String("format")
	if path := cmd.String("output"); path != "" {
		return r.exportList(ctx, list, format, path, !cmd.Bool("no-cover"))
	}

	data, err := formatter.Export(list, format)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) exportList(ctx context.Context, list *formatter.MovieList, format, path string, withCover bool) error {
	switch strings.ToLower(format) {
	case "csv":
		result, err := formatter.WriteCSVExport(list, path)
		if err != nil {
			return err
		}
		r.logger.Info("exported list", "movies", result.MoviesFile, "metadata", result.MetadataFile)
		return r.writePlain("%s\n%s\n", result.MoviesFile, result.MetadataFile)
	case "markdown", "md":
		cover := ""
		if withCover {
			cover = formatter.CoverURL(list)
		}
		result, err := formatter.WriteMarkdownExport(ctx, list, path, cover)
		if err != nil {
			return err
		}
		if result.Warning != "" {
			r.logger.Warn(result.Warning)
		}
		r.logger.Info("exported list", "directory", result.Directory, "files", len(result.Files))
		return r.writePlain("%s\n", strings.Join(result.Files, "\n"))
	case "text", "txt", "":
		file, err := formatter.WriteTextExport(list, path)
		if err != nil {
			return err
		}
		r.logger.Info("exported list", "file", file)
		return r.writePlain("%s\n", file)
	case "json":
		data, err := formatter.ExportToJSON(list)
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("failed to write JSON file: %w", err)
		}
		r.logger.Info("exported list", "file", path)
		return r.writePlain("%s\n", path)
	default:
		return fmt.Errorf("%w: unsupported format %q (csv, markdown, text, json)", shared.ErrInvalidFlag, format)
	}
}
