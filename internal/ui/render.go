package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/nicolasrp432/PlaywrongIa/internal/formatter"
)

const castShown = 5

// errorBanner renders the store's last failure, if any.
func (m *Model) errorBanner() string {
	msg := m.store.Error()
	if msg == "" {
		return ""
	}
	return styles.err.Render("Error: "+msg) + "  " + styles.help.Render("(x para descartar)") + "\n\n"
}

func (m *Model) renderTabs() string {
	parts := make([]string, len(m.tabs))
	for i, t := range m.tabs {
		label := "Tendencias"
		if t.genreID != 0 {
			label = m.store.GenreName(t.genreID)
		}
		if i == m.tab {
			parts[i] = styles.active.Render(label)
		} else {
			parts[i] = styles.tab.Render(label)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHome() string {
	var b strings.Builder
	b.WriteString(m.errorBanner())
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	if m.loading && len(m.home.Items()) == 0 {
		b.WriteString(styles.help.Render("Cargando películas..."))
	} else if len(m.home.Items()) == 0 {
		b.WriteString(styles.warn.Render("No hay películas disponibles."))
	} else {
		b.WriteString(m.home.View())
	}

	helpKeys := []key.Binding{m.keys.enter, m.keys.nextTab, m.keys.search, m.keys.refresh, m.keys.quit}
	b.WriteString("\n\n")
	b.WriteString(m.help.ShortHelpView(helpKeys))
	return b.String()
}

func (m *Model) renderDetail() string {
	var b strings.Builder
	b.WriteString(m.errorBanner())

	switch {
	case m.detail == nil:
		b.WriteString(styles.help.Render("Cargando detalles..."))
	case !m.detail.OK():
		v := formatter.NewNotFoundView(m.detail.Unavailable)
		b.WriteString(styles.title.Render(v.Title))
		b.WriteString("\n")
		b.WriteString(v.Message)
	default:
		b.WriteString(m.renderMovie(formatter.NewDetailView(m.detail.Detail)))
	}

	b.WriteString("\n\n")
	b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit}))
	return b.String()
}

func (m *Model) renderMovie(v formatter.DetailView) string {
	width := m.width - 4
	if width < 20 {
		width = 80
	}
	wrap := lipgloss.NewStyle().Width(width)

	var b strings.Builder
	b.WriteString(styles.title.Render(v.Title))
	b.WriteString("\n")
	if v.OriginalTitle != "" {
		b.WriteString(styles.help.Render(v.OriginalTitle) + "\n")
	}
	if v.Tagline != "" {
		b.WriteString(styles.help.Render(v.Tagline) + "\n")
	}

	facts := []string{v.ReleaseDate}
	if v.Runtime != "" {
		facts = append(facts, v.Runtime)
	}
	if v.Rating != "" {
		facts = append(facts, styles.rating(v.Tier).Render("★ "+v.Rating))
	}
	b.WriteString(strings.Join(facts, " • ") + "\n")

	if len(v.Genres) > 0 {
		b.WriteString(strings.Join(v.Genres, ", ") + "\n")
	}
	if v.Director != "" {
		b.WriteString("Director: " + v.Director + "\n")
	}

	b.WriteString("\n" + styles.ok.Render("Sinopsis") + "\n")
	b.WriteString(wrap.Render(v.Overview) + "\n")

	if len(v.Cast) > 0 {
		b.WriteString("\n" + styles.ok.Render("Reparto") + "\n")
		for i, c := range v.Cast {
			if i == castShown {
				break
			}
			fmt.Fprintf(&b, "  %s como %s\n", c.Name, c.Character)
		}
	}

	fmt.Fprintf(&b, "\nPresupuesto: %s • Recaudación: %s\n", v.Budget, v.Revenue)
	if v.Companies != "" {
		b.WriteString("Producción: " + v.Companies + "\n")
	}
	if v.TrailerURL != "" {
		b.WriteString("Tráiler: " + v.TrailerURL + "\n")
	}
	return b.String()
}

func (m *Model) renderSearch() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Buscar Películas"))
	b.WriteString("\n")
	b.WriteString(m.errorBanner())
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	snap := m.store.Snapshot()
	query := snap.Search.Data.Query
	switch {
	case m.loading:
		b.WriteString(styles.help.Render("Buscando..."))
	case query == "":
		b.WriteString(styles.help.Render("Ingresa un título en el campo de búsqueda para encontrar películas"))
	case len(m.results.Items()) == 0:
		b.WriteString(styles.warn.Render("No se encontraron resultados"))
		b.WriteString("\n")
		fmt.Fprintf(&b, "No hay películas que coincidan con %q", query)
	default:
		b.WriteString(m.results.View())
	}

	var helpKeys []key.Binding
	if m.input.Focused() {
		helpKeys = []key.Binding{
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "search")),
			m.keys.back,
		}
	} else {
		helpKeys = []key.Binding{m.keys.enter, m.keys.search, m.keys.back, m.keys.quit}
	}
	b.WriteString("\n\n")
	b.WriteString(m.help.ShortHelpView(helpKeys))
	return b.String()
}
