package store

import (
	"maps"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/nicolasrp432/PlaywrongIa/internal/models"
	"github.com/nicolasrp432/PlaywrongIa/internal/services"
	"github.com/nicolasrp432/PlaywrongIa/internal/shared"
)

// Status is the lifecycle position of a category.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusLoaded  Status = "loaded"
	StatusError   Status = "error"
)

// Record is the state of one category.
type Record[T any] struct {
	Status    Status    `json:"status"`
	Data      T         `json:"data"`
	Err       string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

// Loading reports whether a fetch is in flight.
func (r Record[T]) Loading() bool { return r.Status == StatusLoading }

// SearchResults carries the movies matched by the last query.
type SearchResults struct {
	Query        string         `json:"query"`
	Movies       []models.Movie `json:"movies"`
	TotalResults int            `json:"total_results"`
}

// State is a point-in-time view of the store.
type State struct {
	Trending Record[[]models.Movie]          `json:"trending"`
	Genres   map[int]Record[[]models.Movie]  `json:"genre_movies"`
	Detail   Record[*services.DetailOutcome] `json:"detail"`
	Search   Record[SearchResults]           `json:"search"`
	Catalog  Record[[]models.Genre]          `json:"genres"`

	// Error is the message of the most recent failure.
	Error string `json:"error,omitempty"`
}

// Loading reports whether any category has a fetch in flight.
func (s State) Loading() bool {
	if s.Trending.Loading() || s.Detail.Loading() || s.Search.Loading() || s.Catalog.Loading() {
		return true
	}
	for _, r := range s.Genres {
		if r.Loading() {
			return true
		}
	}
	return false
}

// Bucket returns the record for a genre, or an idle empty record when the bucket does not exist.
func (s State) Bucket(genreID int) Record[[]models.Movie] {
	if r, ok := s.Genres[genreID]; ok {
		return r
	}
	return Record[[]models.Movie]{Status: StatusIdle, Data: []models.Movie{}}
}

func initialState() State {
	st := State{
		Trending: Record[[]models.Movie]{Status: StatusIdle, Data: []models.Movie{}},
		Genres:   make(map[int]Record[[]models.Movie], len(models.HomeGenres)),
		Detail:   Record[*services.DetailOutcome]{Status: StatusIdle},
		Search:   Record[SearchResults]{Status: StatusIdle, Data: SearchResults{Movies: []models.Movie{}}},
		Catalog:  Record[[]models.Genre]{Status: StatusIdle, Data: []models.Genre{}},
	}
	for _, id := range models.HomeGenres {
		st.Genres[id] = Record[[]models.Movie]{Status: StatusIdle, Data: []models.Movie{}}
	}
	return st
}

const (
	catTrending = "trending"
	catDetail   = "detail"
	catSearch   = "search"
	catCatalog  = "genres"
)

func genreCategory(id int) string { return "genre:" + strconv.Itoa(id) }

// Store is the catalog state container.
type Store struct {
	mu     sync.RWMutex
	svc    services.MovieService
	logger *log.Logger
	state  State
	gen    map[string]uint64
	now    func() time.Time
}

// New creates a store reading from svc.
func New(svc services.MovieService, logger *log.Logger) *Store {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Store{
		svc:    svc,
		logger: logger.WithPrefix("store"),
		state:  initialState(),
		gen:    make(map[string]uint64),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Snapshot returns a copy of the current state safe to read without locking.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := s.state
	st.Genres = maps.Clone(s.state.Genres)
	return st
}

// Loading reports whether any fetch is in flight.
func (s *Store) Loading() bool {
	return s.Snapshot().Loading()
}

// Error returns the most recent failure message, or "" when cleared.
func (s *Store) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Error
}

// ClearCurrentMovie resets the detail record.
func (s *Store) ClearCurrentMovie() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen[catDetail]++
	s.state.Detail = Record[*services.DetailOutcome]{Status: StatusIdle}
}

// ClearSearchResults resets the search record.
func (s *Store) ClearSearchResults() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen[catSearch]++
	s.state.Search = Record[SearchResults]{Status: StatusIdle, Data: SearchResults{Movies: []models.Movie{}}}
}

// ClearError resets the shared error slot.
func (s *Store) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Error = ""
}

// begin marks the categories as started and returns their generation tokens.
// Must be called with the lock held.
func (s *Store) begin(categories ...string) []uint64 {
	tokens := make([]uint64, len(categories))
	for i, c := range categories {
		s.gen[c]++
		tokens[i] = s.gen[c]
	}
	s.state.Error = ""
	return tokens
}

// current reports whether token is still the newest fetch of category.
// Must be called with the lock held.
func (s *Store) current(category string, token uint64) bool {
	if s.gen[category] == token {
		return true
	}
	s.logger.Debug("discarding stale response", "category", category, "token", token, "latest", s.gen[category])
	return false
}
