package services

import (
	"context"

	"github.com/nicolasrp432/PlaywrongIa/internal/models"
)

// MovieService defines the read operations the catalog needs from a movie database.
type MovieService interface {
	// Trending returns this week's trending movies.
	Trending(ctx context.Context) ([]models.Movie, error)

	// MoviesByGenre returns one page of movies tagged with genreID.
	// Pages below 1 are treated as the first page.
	MoviesByGenre(ctx context.Context, genreID, page int) ([]models.Movie, error)

	// MovieDetails returns the full record for a single movie including credits, videos and recommendations.
	MovieDetails(ctx context.Context, id int) (*models.MovieDetail, error)

	// SearchMovies returns one page of title matches for query.
	SearchMovies(ctx context.Context, query string, page int) (*models.MoviePage, error)

	// Genres returns the movie genre catalog.
	Genres(ctx context.Context) ([]models.Genre, error)
}
