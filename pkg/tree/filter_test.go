package tree

import (
	"reflect"
	"strings"
	"testing"
)

func TestFilterSelectedPromotesThroughUnselected(t *testing.T) {
	// Unselected 1 with a selected child 2.
	nodes := []*Node{
		{ID: "osm-rel-1", Children: []*Node{
			{ID: "osm-rel-2", Selected: true, Children: []*Node{}},
		}},
	}

	got := FilterSelected(nodes, Root)
	want := []*Selected{{
		ID:          "2",
		Name:        "",
		Parent:      "#",
		Children:    []string{},
		AllSelected: []*Selected{},
	}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FilterSelected() = %+v, want %+v", got[0], want[0])
	}
}

func TestFilterSelectedNested(t *testing.T) {
	// 1 selected, 2 unselected, 4 and 8 selected, 3 selected, 7 unselected.
	got := FilterSelected(sampleTree("1", "4", "8", "3"), Root)

	if len(got) != 1 {
		t.Fatalf("top-level records = %d, want 1", len(got))
	}
	top := got[0]
	if top.ID != "1" || top.Parent != Root {
		t.Errorf("top = %s<%s, want 1<#", top.ID, top.Parent)
	}
	if !reflect.DeepEqual(top.Children, []string{"2", "3"}) {
		t.Errorf("top.Children = %v, want [2 3]", top.Children)
	}

	// 4 and 8 are promoted past 2 (and 5), then 3 follows.
	var ids, parents []string
	for _, s := range top.AllSelected {
		ids = append(ids, s.ID)
		parents = append(parents, s.Parent)
	}
	if strings.Join(ids, ",") != "4,8,3" {
		t.Errorf("AllSelected ids = %v, want [4 8 3]", ids)
	}
	if strings.Join(parents, ",") != "1,1,1" {
		t.Errorf("AllSelected parents = %v, want all 1", parents)
	}
}

func TestFilterSelectedChildrenIgnoreSelection(t *testing.T) {
	got := FilterSelected(sampleTree("2"), Root)
	if len(got) != 1 {
		t.Fatalf("records = %d, want 1", len(got))
	}
	if !reflect.DeepEqual(got[0].Children, []string{"4", "5"}) {
		t.Errorf("Children = %v, want [4 5]", got[0].Children)
	}
	if len(got[0].AllSelected) != 0 {
		t.Errorf("AllSelected = %v, want empty", got[0].AllSelected)
	}
}

func TestFilterSelectedNothingSelected(t *testing.T) {
	got := FilterSelected(sampleTree(), Root)
	if got == nil || len(got) != 0 {
		t.Errorf("FilterSelected() = %v, want empty non-nil slice", got)
	}
}

func TestFilterSelectedNormalizesNames(t *testing.T) {
	nodes := []*Node{{ID: "osm-rel-9", Name: "\n  Berlin\n (9) ", Selected: true}}
	got := FilterSelected(nodes, Root)
	if got[0].Name != "Berlin (9)" {
		t.Errorf("Name = %q, want %q", got[0].Name, "Berlin (9)")
	}
}

func TestFilterSelectedCustomPrefix(t *testing.T) {
	z := Normalizer{Prefix: "node_"}
	nodes := []*Node{{ID: "node_1", Selected: true, Children: []*Node{{ID: "node_2", Selected: true}}}}
	got := z.FilterSelected(nodes, Root)
	if got[0].ID != "1" || got[0].AllSelected[0].ID != "2" || got[0].AllSelected[0].Parent != "1" {
		t.Errorf("custom prefix not stripped: %+v / %+v", got[0], got[0].AllSelected[0])
	}
}

// collect gathers every record of a filtered tree, nested ones included.
func collect(sel []*Selected) []*Selected {
	var out []*Selected
	for _, s := range sel {
		out = append(out, s)
		out = append(out, collect(s.AllSelected)...)
	}
	return out
}

func TestFilterSelectedCompletenessAndExclusivity(t *testing.T) {
	selections := [][]string{
		nil,
		{"1"},
		{"8"},
		{"1", "2", "3", "4", "5", "6", "7", "8"},
		{"2", "6"},
		{"1", "5"},
		{"4", "7", "8"},
	}
	for _, selected := range selections {
		t.Run(strings.Join(selected, "+"), func(t *testing.T) {
			got := collect(FilterSelected(sampleTree(selected...), Root))

			count := make(map[string]int)
			for _, s := range got {
				count[s.ID]++
			}
			for _, id := range selected {
				if count[id] != 1 {
					t.Errorf("selected %s appears %d times, want 1", id, count[id])
				}
			}
			if len(got) != len(selected) {
				t.Errorf("records = %d, want %d (unselected nodes leaked)", len(got), len(selected))
			}
		})
	}
}

func TestFilterSelectedStripsPrefixEverywhere(t *testing.T) {
	all := collect(FilterSelected(sampleTree("1", "2", "5", "6", "7"), Root))
	for _, s := range all {
		refs := append([]string{s.ID, s.Parent}, s.Children...)
		for _, c := range s.AllSelected {
			refs = append(refs, c.ID, c.Parent)
		}
		for _, ref := range refs {
			if strings.HasPrefix(ref, DefaultPrefix) {
				t.Errorf("record %s keeps prefixed reference %q", s.ID, ref)
			}
		}
	}
}

func TestFilterSelectedParentsMatchFlatten(t *testing.T) {
	sel := FilterSelected(sampleTree("1", "4", "6", "7"), Root)
	for _, f := range Flatten(sel, Root) {
		if f.Parent != f.Node.Parent {
			t.Errorf("record %s: flattened parent %q != filtered parent %q", f.Node.ID, f.Parent, f.Node.Parent)
		}
	}
}
