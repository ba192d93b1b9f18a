package models

// Genre identifiers for the three buckets shown on the home view.
const (
	GenreAction = 28
	GenreComedy = 35
	GenreDrama  = 18
)

// HomeGenres lists the fixed genre buckets in display order.
var HomeGenres = []int{GenreAction, GenreComedy, GenreDrama}

// Genre represents a movie genre from the catalog.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Movie is the summary shape returned by list endpoints.
type Movie struct {
	ID            int     `json:"id"`
	Title         string  `json:"title"`
	OriginalTitle string  `json:"original_title,omitempty"`
	Overview      string  `json:"overview"`
	PosterPath    string  `json:"poster_path"`
	BackdropPath  string  `json:"backdrop_path"`
	ReleaseDate   string  `json:"release_date"`
	VoteAverage   float64 `json:"vote_average"`
	VoteCount     int     `json:"vote_count,omitempty"`
	Popularity    float64 `json:"popularity,omitempty"`
	GenreIDs      []int   `json:"genre_ids"`
}

// Company represents a production company.
type Company struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	LogoPath      string `json:"logo_path,omitempty"`
	OriginCountry string `json:"origin_country,omitempty"`
}

// CastMember is a single cast entry from the appended credits.
type CastMember struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profile_path,omitempty"`
	Order       int    `json:"order"`
}

// CrewMember is a single crew entry from the appended credits.
type CrewMember struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Job        string `json:"job"`
	Department string `json:"department"`
}

// Credits wraps cast and crew.
type Credits struct {
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// Video is a trailer, teaser or clip hosted on an external site.
type Video struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Site     string `json:"site"` // YouTube, Vimeo
	Type     string `json:"type"` // Trailer, Teaser, Clip
	Official bool   `json:"official"`
}

// VideoResults wraps the appended videos.
type VideoResults struct {
	Results []Video `json:"results"`
}

// MovieDetail is the full record returned by the details endpoint.
type MovieDetail struct {
	Movie
	Runtime             int          `json:"runtime"`
	Budget              int64        `json:"budget"`
	Revenue             int64        `json:"revenue"`
	Tagline             string       `json:"tagline,omitempty"`
	Status              string       `json:"status,omitempty"`
	Genres              []Genre      `json:"genres"`
	ProductionCompanies []Company    `json:"production_companies"`
	Credits             Credits      `json:"credits"`
	Videos              VideoResults `json:"videos"`
	Recommendations     MoviePage    `json:"recommendations"`
}

// Trailer returns the first YouTube trailer attached to the detail, if any.
func (d *MovieDetail) Trailer() (Video, bool) {
	for _, v := range d.Videos.Results {
		if v.Site == "YouTube" && v.Type == "Trailer" {
			return v, true
		}
	}
	return Video{}, false
}

// MoviePage is the paginated envelope used by search and discovery.
type MoviePage struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// DetailUnavailable stands in for a movie detail that could not be loaded.
//
// It is returned as a regular value so views can render a per-movie "not found" state.
type DetailUnavailable struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
	ID      int    `json:"id"`
}
