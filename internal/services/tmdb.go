// TMDB v3 implementation of [MovieService]
//
// Endpoints documented at https://developer.themoviedb.org/reference
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/nicolasrp432/PlaywrongIa/internal/models"
	"github.com/nicolasrp432/PlaywrongIa/internal/shared"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL  = "https://api.themoviedb.org/3"
	defaultLanguage = "es-ES"
	defaultRPS      = 40
	defaultBurst    = 10

	detailAppend = "credits,videos,images,recommendations"
)

type genreList struct {
	Genres []models.Genre `json:"genres"`
}

type statusBody struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
}

// TMDBService implements [MovieService] for the TMDB v3 API.
type TMDBService struct {
	baseURL    string
	apiKey     string
	language   string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
}

var _ MovieService = (*TMDBService)(nil)

// NewTMDBService creates a TMDB client from cfg.
//
// Empty settings fall back to the public API base URL, es-ES and 40 requests per second.
// A nil client uses a client with cfg's timeout.
func NewTMDBService(cfg shared.TMDBConfig, client *http.Client, logger *log.Logger) (*TMDBService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: tmdb api key", shared.ErrMissingCredentials)
	}

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	language := cfg.Language
	if language == "" {
		language = defaultLanguage
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRPS
	}

	burst := cfg.Burst
	if burst <= 0 {
		burst = defaultBurst
	}

	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout()}
	}

	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &TMDBService{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		language:   language,
		httpClient: client,
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
		logger:     logger.WithPrefix("tmdb"),
	}, nil
}

// Language returns the locale sent with every request.
func (s *TMDBService) Language() string {
	return s.language
}

// endpointURL builds the full request URL with credentials and locale attached.
func (s *TMDBService) endpointURL(endpoint string, params url.Values) (string, error) {
	u, err := url.Parse(s.baseURL + endpoint)
	if err != nil {
		return "", err
	}

	q := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	q.Set("api_key", s.apiKey)
	q.Set("language", s.language)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func (s *TMDBService) doRequest(ctx context.Context, endpoint string, params url.Values, result any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return &APIError{Kind: KindRequest, Endpoint: endpoint, Err: err}
	}

	apiURL, err := s.endpointURL(endpoint, params)
	if err != nil {
		return &APIError{Kind: KindRequest, Endpoint: endpoint, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return &APIError{Kind: KindRequest, Endpoint: endpoint, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Debug("request failed", "endpoint", endpoint, "error", err)
		return &APIError{Kind: KindNetwork, Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	s.logger.Debug("request", "endpoint", endpoint, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Kind: KindStatus, Endpoint: endpoint, StatusCode: resp.StatusCode}
		var body statusBody
		if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.StatusMessage != "" {
			apiErr.Message = body.StatusMessage
		} else {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return &APIError{Kind: KindDecode, Endpoint: endpoint, StatusCode: resp.StatusCode, Err: err}
		}
	}

	return nil
}

// Trending retrieves the weekly trending movies.
//
// Calls GET /trending/movie/week.
func (s *TMDBService) Trending(ctx context.Context) ([]models.Movie, error) {
	var page models.MoviePage
	if err := s.doRequest(ctx, "/trending/movie/week", nil, &page); err != nil {
		return nil, err
	}
	return nonNil(page.Results), nil
}

// MoviesByGenre retrieves one page of movies for a genre.
//
// Calls GET /discover/movie?with_genres={id}&page={page}.
func (s *TMDBService) MoviesByGenre(ctx context.Context, genreID, page int) ([]models.Movie, error) {
	if page < 1 {
		page = 1
	}

	params := url.Values{}
	params.Set("with_genres", strconv.Itoa(genreID))
	params.Set("page", strconv.Itoa(page))

	var result models.MoviePage
	if err := s.doRequest(ctx, "/discover/movie", params, &result); err != nil {
		return nil, err
	}
	return nonNil(result.Results), nil
}

// MovieDetails retrieves a movie with credits, videos, images and recommendations appended.
//
// Calls GET /movie/{id}.
func (s *TMDBService) MovieDetails(ctx context.Context, id int) (*models.MovieDetail, error) {
	params := url.Values{}
	params.Set("append_to_response", detailAppend)

	var detail models.MovieDetail
	if err := s.doRequest(ctx, "/movie/"+strconv.Itoa(id), params, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// SearchMovies retrieves one page of title matches.
//
// Calls GET /search/movie?query={q}&page={page}.
func (s *TMDBService) SearchMovies(ctx context.Context, query string, page int) (*models.MoviePage, error) {
	if page < 1 {
		page = 1
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))

	var result models.MoviePage
	if err := s.doRequest(ctx, "/search/movie", params, &result); err != nil {
		return nil, err
	}
	result.Results = nonNil(result.Results)
	return &result, nil
}

// Genres retrieves the movie genre catalog.
//
// Calls GET /genre/movie/list.
func (s *TMDBService) Genres(ctx context.Context) ([]models.Genre, error) {
	var list genreList
	if err := s.doRequest(ctx, "/genre/movie/list", nil, &list); err != nil {
		return nil, err
	}
	if list.Genres == nil {
		return []models.Genre{}, nil
	}
	return list.Genres, nil
}

func nonNil(movies []models.Movie) []models.Movie {
	if movies == nil {
		return []models.Movie{}
	}
	return movies
}
