package tree

import (
	"reflect"
	"testing"
)

type rec struct {
	ID     string
	Parent string
}

func recID(r rec) string     { return r.ID }
func recParent(r rec) string { return r.Parent }

func TestBuildTwoLevels(t *testing.T) {
	list := []rec{{"1", "#"}, {"2", "1"}}

	got := Build(list, recID, recParent, Root)
	want := []*Tree[rec]{{
		Node: rec{"1", "#"},
		Children: []*Tree[rec]{{
			Node:     rec{"2", "1"},
			Children: []*Tree[rec]{},
		}},
	}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Build() = %s, want 1(2)", treeShape(got, recID))
	}
}

func TestBuildPreservesOrder(t *testing.T) {
	list := []rec{{"b", "#"}, {"c", "a"}, {"a", "#"}, {"d", "a"}, {"e", "b"}}
	got := treeShape(Build(list, recID, recParent, Root), recID)
	if got != "b(e),a(c,d)" {
		t.Errorf("Build() = %s, want b(e),a(c,d)", got)
	}
}

func TestBuildEmpty(t *testing.T) {
	got := Build([]rec{}, recID, recParent, Root)
	if got == nil || len(got) != 0 {
		t.Errorf("Build(empty) = %v, want empty non-nil slice", got)
	}
}

func TestBuildCheckedOrphans(t *testing.T) {
	list := []rec{{"1", "#"}, {"2", "1"}, {"3", "99"}, {"4", "3"}}

	roots, orphans := BuildChecked(list, recID, recParent, Root)
	if got := treeShape(roots, recID); got != "1(2)" {
		t.Errorf("roots = %s, want 1(2)", got)
	}
	if !reflect.DeepEqual(orphans, []rec{{"3", "99"}, {"4", "3"}}) {
		t.Errorf("orphans = %v, want [3 4]", orphans)
	}
}

func TestBuildCheckedCycle(t *testing.T) {
	list := []rec{{"1", "#"}, {"a", "b"}, {"b", "a"}}

	roots, orphans := BuildChecked(list, recID, recParent, Root)
	if got := treeShape(roots, recID); got != "1" {
		t.Errorf("roots = %s, want 1", got)
	}
	if len(orphans) != 2 {
		t.Errorf("orphans = %v, want the two cycle members", orphans)
	}
}

func TestBuildSelfReference(t *testing.T) {
	// A node listing itself as parent below the root must not loop.
	list := []rec{{"1", "#"}, {"1", "1"}}
	roots, _ := BuildChecked(list, recID, recParent, Root)
	if len(roots) != 1 {
		t.Fatalf("roots = %d, want 1", len(roots))
	}
}

func TestRoundTrip(t *testing.T) {
	trees := map[string][]*Node{
		"empty":  {},
		"single": {n("1", false)},
		"flat":   {n("1", false), n("2", true), n("3", false)},
		"sample": sampleTree("2", "6"),
		"deep":   {n("1", false, n("2", false, n("3", false, n("4", false, n("5", false)))))},
	}
	for name, nodes := range trees {
		t.Run(name, func(t *testing.T) {
			flat := Flatten(nodes, Root)
			back := Build(flat, FlatID[*Node], FlatParent[*Node], Root)

			want := shape(nodes)
			got := treeShape(back, func(f Flat[*Node]) string { return f.Node.ID })
			if got != want {
				t.Errorf("round trip = %s, want %s", got, want)
			}
		})
	}
}
