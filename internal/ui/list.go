package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/nicolasrp432/PlaywrongIa/internal/formatter"
	"github.com/nicolasrp432/PlaywrongIa/internal/models"
)

var _ list.Item = movieItem{}

// movieItem wraps [formatter.MovieCard] to implement [list.Item].
type movieItem struct {
	card formatter.MovieCard
}

func (i movieItem) FilterValue() string { return i.card.Title }
func (i movieItem) Title() string       { return i.card.Title }
func (i movieItem) Description() string {
	parts := make([]string, 0, 2)
	if i.card.Year != "" {
		parts = append(parts, i.card.Year)
	}
	if i.card.Rating != "" {
		parts = append(parts, styles.rating(i.card.Tier).Render("★ "+i.card.Rating))
	}
	return strings.Join(parts, " • ")
}

func movieItems(movies []models.Movie) []list.Item {
	cards := formatter.NewMovieCards(movies)
	items := make([]list.Item, len(cards))
	for i, c := range cards {
		items[i] = movieItem{card: c}
	}
	return items
}

// newMovieList builds a list without the built-in filter and quit bindings; the model owns those keys.
func newMovieList(title string, width, height int) list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.Title = title
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()
	return l
}
