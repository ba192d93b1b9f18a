package formatter

import (
	"strconv"
	"strings"

	"github.com/nicolasrp432/PlaywrongIa/internal/models"
	"github.com/nicolasrp432/PlaywrongIa/internal/services"
)

const (
	posterPlaceholder      = "https://via.placeholder.com/342x513?text=No+Image"
	largePosterPlaceholder = "https://via.placeholder.com/500x750?text=No+Image"

	NotFoundTitle   = "Película no encontrada"
	NotFoundMessage = "La información de esta película no está disponible."
	NoOverview      = "No hay sinopsis disponible."

	// FeaturedCount is how many trending movies the home carousel shows.
	FeaturedCount = 3
	// CastLimit caps the cast listed on a detail view.
	CastLimit = 10
)

// MovieHref is the catalog path of a movie.
func MovieHref(id int) string {
	return "/movie/" + strconv.Itoa(id)
}

// GenreTitle is the heading of a genre row.
func GenreTitle(name string) string {
	return "Películas de " + name
}

// MovieCard is the summary view of a movie in lists and rows.
type MovieCard struct {
	ID        int        `json:"id"`
	Href      string     `json:"href"`
	Title     string     `json:"title"`
	PosterURL string     `json:"poster_url"`
	Year      string     `json:"year,omitempty"`
	Rating    string     `json:"rating,omitempty"`
	Tier      RatingTier `json:"tier,omitempty"`
}

// NewMovieCard builds a card with a poster of the named size ("small", "medium", "large").
// Unrated movies carry no rating badge.
func NewMovieCard(movie models.Movie, size string) MovieCard {
	card := MovieCard{
		ID:        movie.ID,
		Href:      MovieHref(movie.ID),
		Title:     movie.Title,
		PosterURL: services.ImageURL(movie.PosterPath, services.ImageSize(services.Poster, size)),
		Year:      ReleaseYear(movie.ReleaseDate),
	}
	if card.PosterURL == "" {
		card.PosterURL = posterPlaceholder
	}
	if movie.VoteAverage > 0 {
		card.Rating = DisplayRating(movie.VoteAverage)
		card.Tier = TierFor(movie.VoteAverage)
	}
	return card
}

// NewMovieCards maps movies to medium cards.
func NewMovieCards(movies []models.Movie) []MovieCard {
	cards := make([]MovieCard, 0, len(movies))
	for _, m := range movies {
		cards = append(cards, NewMovieCard(m, "medium"))
	}
	return cards
}

// FeaturedMovie is one slide of the home carousel.
type FeaturedMovie struct {
	ID          int    `json:"id"`
	Href        string `json:"href"`
	Title       string `json:"title"`
	BackdropURL string `json:"backdrop_url"`
	Rating      string `json:"rating"`
	Year        string `json:"year,omitempty"`
	Overview    string `json:"overview"`
}

// FeaturedMovies picks up to n trending movies with distinct backdrops.
//
// When fewer than n distinct backdrops exist and there are at least n movies, the first n
// movies are used instead.
func FeaturedMovies(trending []models.Movie, n int) []FeaturedMovie {
	if n <= 0 {
		n = FeaturedCount
	}

	seen := make(map[string]bool)
	picked := make([]models.Movie, 0, n)
	for _, m := range trending {
		if m.BackdropPath == "" || seen[m.BackdropPath] {
			continue
		}
		seen[m.BackdropPath] = true
		picked = append(picked, m)
		if len(picked) == n {
			break
		}
	}

	if len(picked) < n && len(trending) >= n {
		picked = trending[:n]
	}

	out := make([]FeaturedMovie, 0, len(picked))
	for _, m := range picked {
		out = append(out, FeaturedMovie{
			ID:          m.ID,
			Href:        MovieHref(m.ID),
			Title:       m.Title,
			BackdropURL: services.ImageURL(m.BackdropPath, services.ImageSize(services.Backdrop, "large")),
			Rating:      DisplayRating(m.VoteAverage) + " / 10",
			Year:        ReleaseYear(m.ReleaseDate),
			Overview:    m.Overview,
		})
	}
	return out
}

// CastCard is one cast entry on the detail view.
type CastCard struct {
	Name       string `json:"name"`
	Character  string `json:"character"`
	ProfileURL string `json:"profile_url,omitempty"`
}

// DetailView is the full view of a loaded movie.
type DetailView struct {
	ID              int         `json:"id"`
	Title           string      `json:"title"`
	OriginalTitle   string      `json:"original_title,omitempty"`
	Tagline         string      `json:"tagline,omitempty"`
	Year            string      `json:"year,omitempty"`
	ReleaseDate     string      `json:"release_date"`
	Runtime         string      `json:"runtime,omitempty"`
	Rating          string      `json:"rating,omitempty"`
	Tier            RatingTier  `json:"tier,omitempty"`
	Genres          []string    `json:"genres"`
	Overview        string      `json:"overview"`
	Companies       string      `json:"companies,omitempty"`
	Budget          string      `json:"budget"`
	Revenue         string      `json:"revenue"`
	PosterURL       string      `json:"poster_url"`
	BackdropURL     string      `json:"backdrop_url,omitempty"`
	Director        string      `json:"director,omitempty"`
	Cast            []CastCard  `json:"cast"`
	TrailerURL      string      `json:"trailer_url,omitempty"`
	Recommendations []MovieCard `json:"recommendations"`
}

// NewDetailView builds the detail view for a loaded movie.
func NewDetailView(d *models.MovieDetail) DetailView {
	v := DetailView{
		ID:              d.ID,
		Title:           d.Title,
		Tagline:         d.Tagline,
		Year:            ReleaseYear(d.ReleaseDate),
		ReleaseDate:     FormatDate(d.ReleaseDate),
		Overview:        d.Overview,
		Budget:          FormatCurrency(d.Budget),
		Revenue:         FormatCurrency(d.Revenue),
		PosterURL:       services.ImageURL(d.PosterPath, services.ImageSize(services.Poster, "large")),
		BackdropURL:     services.ImageURL(d.BackdropPath, services.ImageSize(services.Backdrop, "large")),
		Genres:          make([]string, 0, len(d.Genres)),
		Cast:            []CastCard{},
		Recommendations: NewMovieCards(d.Recommendations.Results),
	}

	if d.OriginalTitle != "" && d.OriginalTitle != d.Title {
		v.OriginalTitle = d.OriginalTitle
	}
	if d.Runtime > 0 {
		v.Runtime = FormatRuntime(d.Runtime)
	}
	if d.VoteAverage > 0 {
		v.Rating = DisplayRating(d.VoteAverage)
		v.Tier = TierFor(d.VoteAverage)
	}
	if v.Overview == "" {
		v.Overview = NoOverview
	}
	if v.PosterURL == "" {
		v.PosterURL = largePosterPlaceholder
	}

	for _, g := range d.Genres {
		v.Genres = append(v.Genres, g.Name)
	}

	names := make([]string, 0, len(d.ProductionCompanies))
	for _, c := range d.ProductionCompanies {
		names = append(names, c.Name)
	}
	v.Companies = strings.Join(names, ", ")

	for _, c := range d.Credits.Crew {
		if c.Job == "Director" {
			v.Director = c.Name
			break
		}
	}

	for i, c := range d.Credits.Cast {
		if i == CastLimit {
			break
		}
		v.Cast = append(v.Cast, CastCard{
			Name:       c.Name,
			Character:  c.Character,
			ProfileURL: services.ImageURL(c.ProfilePath, services.ImageSize(services.Profile, "medium")),
		})
	}

	if t, ok := d.Trailer(); ok {
		v.TrailerURL = "https://www.youtube.com/watch?v=" + t.Key
	}

	return v
}

// NotFoundView is shown in place of a detail that could not be loaded.
type NotFoundView struct {
	Error   bool   `json:"error"`
	Title   string `json:"title"`
	Message string `json:"message"`
	ID      int    `json:"id"`
}

// NewNotFoundView builds the not-found view from a sentinel. A nil sentinel uses the generic message.
func NewNotFoundView(u *models.DetailUnavailable) NotFoundView {
	v := NotFoundView{Error: true, Title: NotFoundTitle, Message: NotFoundMessage}
	if u != nil {
		v.ID = u.ID
		if u.Message != "" {
			v.Message = u.Message
		}
	}
	return v
}
