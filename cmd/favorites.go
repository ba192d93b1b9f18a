package main

import (
	"context"
	"fmt"
	"time"

	"github.com/nicolasrp432/PlaywrongIa/internal/formatter"
	"github.com/nicolasrp432/PlaywrongIa/internal/repositories"
	"github.com/nicolasrp432/PlaywrongIa/internal/services"
	"github.com/nicolasrp432/PlaywrongIa/internal/shared"
	"github.com/urfave/cli/v3"
)

// favoriteEntry is the JSON shape of a listed favorite.
type favoriteEntry struct {
	formatter.MovieCard
	SavedAt string `json:"saved_at"`
}

// FavoritesList prints the favorites of a subject, oldest first.
func (r *Runner) FavoritesList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	favorites, err := repositories.NewFavoriteRepository(db).ListBySubject(cmd.String("subject"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		entries := make([]favoriteEntry, 0, len(favorites))
		for _, f := range favorites {
			entries = append(entries, favoriteEntry{
				MovieCard: formatter.NewMovieCard(f.Movie(), "medium"),
				SavedAt:   f.CreatedAt().Format(time.RFC3339),
			})
		}
		return r.writeJSON(entries, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Favoritas (%d)", len(favorites)))
	for _, f := range favorites {
		r.writePlain("%3d. [%6d] %s\n", f.Sequence(), f.MovieID(), f.Title())
	}
	return nil
}

// FavoritesAdd looks the movie up and stores it as a favorite. Adding twice is a no-op.
func (r *Runner) FavoritesAdd(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireStore(); err != nil {
		return err
	}

	id, err := positiveID(cmd.StringArg("id"))
	if err != nil {
		return err
	}

	outcome := services.DetailsOrUnavailable(ctx, r.svc, id)
	if !outcome.OK() {
		return fmt.Errorf("%w: %s", shared.ErrMovieNotFound, outcome.Unavailable.Message)
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	favorite, err := repositories.NewFavoriteRepository(db).Add(cmd.String("subject"), outcome.Detail.Movie)
	if err != nil {
		return err
	}

	r.logger.Info("favorite saved", "movie", favorite.MovieID(), "sequence", favorite.Sequence())
	return r.writePlain("%s\n", favorite.Title())
}

// FavoritesRemove deletes a favorite.
func (r *Runner) FavoritesRemove(ctx context.Context, cmd *cli.Command) error {
	id, err := positiveID(cmd.StringArg("id"))
	if err != nil {
		return err
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := repositories.NewFavoriteRepository(db).Remove(cmd.String("subject"), id); err != nil {
		return err
	}

	r.logger.Info("favorite removed", "movie", id)
	return nil
}
