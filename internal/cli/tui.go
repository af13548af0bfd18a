package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/osmtree/osmtree/pkg/integrations/nominatim"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// PlaceListModel - Interactive search result selection
// =============================================================================

// PlaceListModel is the bubbletea model for picking search results. Space
// toggles a place, enter confirms the marked places or the one under the
// cursor.
type PlaceListModel struct {
	Places   []nominatim.Place
	Cursor   int
	Marked   map[int]bool
	Selected []nominatim.Place
	Height   int
	Offset   int
}

// NewPlaceListModel creates a new place list model.
func NewPlaceListModel(places []nominatim.Place) PlaceListModel {
	return PlaceListModel{
		Places: places,
		Marked: make(map[int]bool),
		Height: 15,
	}
}

func (m PlaceListModel) Init() tea.Cmd {
	return nil
}

func (m PlaceListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Places)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ", "x":
			if len(m.Places) > 0 {
				m.Marked[m.Cursor] = !m.Marked[m.Cursor]
			}
		case "enter":
			if len(m.Places) == 0 {
				return m, tea.Quit
			}
			m.Selected = m.selection()
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

// selection returns the marked places in list order, or the place under the
// cursor when nothing is marked.
func (m PlaceListModel) selection() []nominatim.Place {
	var out []nominatim.Place
	for i, p := range m.Places {
		if m.Marked[i] {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		out = append(out, m.Places[m.Cursor])
	}
	return out
}

func (m PlaceListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Boundaries"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ␣ mark  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Places))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		p := m.Places[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		mark := " "
		if m.Marked[i] {
			mark = iconSelected
		}
		rows = append(rows, []string{cursor, mark, p.ID(), placeType(p), p.DisplayName})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "", "Relation", "Type", "Name").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			idx := m.Offset + row
			switch {
			case idx == m.Cursor:
				return listSelectedStyle
			case m.Marked[idx]:
				return styleSelected
			}
			return lipgloss.NewStyle().Foreground(colorGray)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Places))))

	return b.String()
}

// pickPlaces runs the interactive picker and returns the chosen places, or
// nil when the user quit without choosing.
func pickPlaces(places []nominatim.Place) ([]nominatim.Place, error) {
	final, err := tea.NewProgram(NewPlaceListModel(places)).Run()
	if err != nil {
		return nil, err
	}
	return final.(PlaceListModel).Selected, nil
}
