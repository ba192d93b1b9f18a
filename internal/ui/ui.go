package ui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/nicolasrp432/PlaywrongIa/internal/formatter"
	"github.com/nicolasrp432/PlaywrongIa/internal/models"
	"github.com/nicolasrp432/PlaywrongIa/internal/services"
	"github.com/nicolasrp432/PlaywrongIa/internal/store"
	"golang.org/x/sync/errgroup"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	HomeView ViewState = iota
	DetailView
	SearchView
)

// tab is one row of the home view; genreID 0 is the trending row.
type tab struct {
	genreID int
}

// Model represents the TUI application state.
type Model struct {
	ctx   context.Context
	store *store.Store
	view  ViewState
	prev  ViewState

	width  int
	height int

	tabs    []tab
	tab     int
	home    list.Model
	results list.Model
	input   textinput.Model

	detailID int
	detail   *services.DetailOutcome
	loading  bool

	help help.Model
	keys keyMap
}

// NewModel creates a new TUI model reading from s.
func NewModel(ctx context.Context, s *store.Store) *Model {
	input := textinput.New()
	input.Placeholder = "Buscar películas por título..."
	input.CharLimit = 100

	tabs := []tab{{genreID: 0}}
	for _, id := range models.HomeGenres {
		tabs = append(tabs, tab{genreID: id})
	}

	return &Model{
		ctx:     ctx,
		store:   s,
		view:    HomeView,
		tabs:    tabs,
		home:    newMovieList("", 0, 0),
		results: newMovieList("", 0, 0),
		input:   input,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init loads the home rows.
func (m *Model) Init() tea.Cmd {
	m.loading = true
	return m.loadHome()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.home.SetSize(msg.Width-4, msg.Height-8)
		m.results.SetSize(msg.Width-4, msg.Height-10)
		m.input.Width = msg.Width - 8
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case HomeView:
			return m.handleHomeKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		case SearchView:
			return m.handleSearchKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgHomeLoaded:
		m.loading = false
		m.syncHome()
	case MsgDetailLoaded:
		d := msg.data.(detailLoaded)
		if m.view == DetailView && d.id == m.detailID {
			m.loading = false
			m.detail = &d.outcome
		}
	case MsgSearchDone:
		d := msg.data.(searchDone)
		m.loading = false
		if d.err == nil && m.view == SearchView {
			m.syncResults()
		}
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case HomeView:
		return m.renderHome()
	case DetailView:
		return m.renderDetail()
	case SearchView:
		return m.renderSearch()
	default:
		return ""
	}
}

func (m *Model) handleHomeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.nextTab):
		m.tab = (m.tab + 1) % len(m.tabs)
		m.syncHome()
		return m, nil
	case key.Matches(msg, m.keys.prevTab):
		m.tab = (m.tab + len(m.tabs) - 1) % len(m.tabs)
		m.syncHome()
		return m, nil
	case key.Matches(msg, m.keys.enter):
		return m.openSelected(m.home)
	case key.Matches(msg, m.keys.search):
		m.view = SearchView
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.refresh):
		m.loading = true
		return m, m.loadHome()
	case key.Matches(msg, m.keys.clearError):
		m.store.ClearError()
		return m, nil
	}

	var cmd tea.Cmd
	m.home, cmd = m.home.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.leaveDetail()
		return m, nil
	case key.Matches(msg, m.keys.clearError):
		m.store.ClearError()
	}
	return m, nil
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.input.Focused() {
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			m.leaveSearch()
			return m, nil
		case "enter":
			m.input.Blur()
			query := m.input.Value()
			m.loading = true
			return m, m.search(query)
		}

		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.leaveSearch()
		return m, nil
	case key.Matches(msg, m.keys.search):
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.enter):
		return m.openSelected(m.results)
	case key.Matches(msg, m.keys.clearError):
		m.store.ClearError()
		return m, nil
	}

	var cmd tea.Cmd
	m.results, cmd = m.results.Update(msg)
	return m, cmd
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case HomeView:
		m.home, cmd = m.home.Update(msg)
	case SearchView:
		if m.input.Focused() {
			m.input, cmd = m.input.Update(msg)
		} else {
			m.results, cmd = m.results.Update(msg)
		}
	}
	return m, cmd
}

// openSelected switches to the detail view for the highlighted movie.
func (m *Model) openSelected(l list.Model) (tea.Model, tea.Cmd) {
	item, ok := l.SelectedItem().(movieItem)
	if !ok {
		return m, nil
	}

	m.prev = m.view
	m.view = DetailView
	m.detailID = item.card.ID
	m.detail = nil
	m.loading = true
	return m, m.fetchDetail(item.card.ID)
}

// leaveDetail clears the current movie and returns to the view the detail was opened from.
func (m *Model) leaveDetail() {
	m.store.ClearCurrentMovie()
	m.detail = nil
	m.detailID = 0
	m.loading = false
	m.view = m.prev
}

// leaveSearch clears the results and returns home.
func (m *Model) leaveSearch() {
	m.store.ClearSearchResults()
	m.input.Blur()
	m.input.Reset()
	m.results.SetItems(nil)
	m.loading = false
	m.view = HomeView
}

// syncHome rebuilds the home list from the store for the selected tab.
func (m *Model) syncHome() {
	snap := m.store.Snapshot()
	t := m.tabs[m.tab]

	var movies []models.Movie
	if t.genreID == 0 {
		movies = snap.Trending.Data
	} else {
		movies = snap.Bucket(t.genreID).Data
	}

	m.home.Title = m.tabTitle(t)
	m.home.SetItems(movieItems(movies))
	m.home.Select(0)
}

func (m *Model) syncResults() {
	snap := m.store.Snapshot()
	m.results.Title = `Resultados para "` + snap.Search.Data.Query + `"`
	m.results.SetItems(movieItems(snap.Search.Data.Movies))
	m.results.Select(0)
}

func (m *Model) tabTitle(t tab) string {
	if t.genreID == 0 {
		return "Tendencias de la semana"
	}
	return formatter.GenreTitle(m.store.GenreName(t.genreID))
}

// loadHome fetches trending, the home genre buckets and the catalog side by side.
func (m *Model) loadHome() tea.Cmd {
	ctx := m.ctx
	s := m.store
	return func() tea.Msg {
		var g errgroup.Group
		g.Go(func() error {
			_, err := s.FetchTrending(ctx)
			return err
		})
		g.Go(func() error {
			_, err := s.FetchAllGenreMovies(ctx)
			return err
		})
		g.Go(func() error {
			_, err := s.FetchGenres(ctx)
			return err
		})
		// failures are recorded per category in the store
		_ = g.Wait()
		return homeLoadedMsg()
	}
}

func (m *Model) fetchDetail(id int) tea.Cmd {
	ctx := m.ctx
	s := m.store
	return func() tea.Msg {
		return detailLoadedMsg(id, s.FetchMovieDetails(ctx, id))
	}
}

func (m *Model) search(query string) tea.Cmd {
	ctx := m.ctx
	s := m.store
	return func() tea.Msg {
		_, err := s.SearchMovies(ctx, query)
		return searchDoneMsg(query, err)
	}
}
