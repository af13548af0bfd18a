package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/osmtree/osmtree/pkg/integrations/nominatim"
)

func keys(m tea.Model, ks ...string) tea.Model {
	for _, k := range ks {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m, _ = m.Update(msg)
	}
	return m
}

func testPlaces() []nominatim.Place {
	return []nominatim.Place{
		{OSMType: "relation", OSMID: 62422, DisplayName: "Berlin, Deutschland", AddressType: "city"},
		{OSMType: "relation", OSMID: 16347, DisplayName: "Mitte, Berlin", AddressType: "borough"},
		{OSMType: "relation", OSMID: 164723, DisplayName: "Pankow, Berlin", AddressType: "borough"},
	}
}

func TestPlaceListCursor(t *testing.T) {
	m := keys(NewPlaceListModel(testPlaces()), "down", "down", "down", "up", "enter").(PlaceListModel)

	if len(m.Selected) != 1 || m.Selected[0].OSMID != 16347 {
		t.Errorf("Selected = %+v, want Mitte", m.Selected)
	}
}

func TestPlaceListMarked(t *testing.T) {
	m := keys(NewPlaceListModel(testPlaces()), "x", "j", "j", "x", "enter").(PlaceListModel)

	var got []string
	for _, p := range m.Selected {
		got = append(got, p.ID())
	}
	if strings.Join(got, ",") != "62422,164723" {
		t.Errorf("Selected = %v, want 62422,164723", got)
	}
}

func TestPlaceListQuit(t *testing.T) {
	m := keys(NewPlaceListModel(testPlaces()), "j", "q").(PlaceListModel)
	if m.Selected != nil {
		t.Errorf("Selected = %+v, want nil after quit", m.Selected)
	}
}

func TestPlaceListView(t *testing.T) {
	view := NewPlaceListModel(testPlaces()).View()
	for _, want := range []string{"Select Boundaries", "62422", "Pankow, Berlin", "[1/3]"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
