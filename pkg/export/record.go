package export

import (
	"encoding/json"
	"io"

	"github.com/paulmach/orb/geojson"

	apperrors "github.com/osmtree/osmtree/pkg/errors"
	"github.com/osmtree/osmtree/pkg/integrations/overpass"
	"github.com/osmtree/osmtree/pkg/tree"
)

// Enrichment is the relation data merged into a record. All fields are
// empty for Include simple.
type Enrichment struct {
	Tags     map[string]string `json:"tags,omitempty"`
	Bounds   *overpass.Bounds  `json:"bounds,omitempty"`
	Members  []overpass.Member `json:"members,omitempty"`
	Geometry *geojson.Geometry `json:"geometry,omitempty"`
}

// Record is one flattened selected relation.
//
// Children lists the ids of every immediate child in the widget, selected or
// not. AllSelected lists the ids of the selected children. FlatParent is the
// parent assigned while flattening; it is stripped from nodes output.
type Record struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Parent      string   `json:"parent"`
	Children    []string `json:"children"`
	AllSelected []string `json:"children_all_selected"`
	FlatParent  string   `json:"_parent,omitempty"`
	Enrichment
}

// Branch is a record nested under its parent. Children holds the nested
// branches instead of ids.
type Branch struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Parent      string    `json:"parent"`
	Children    []*Branch `json:"children"`
	AllSelected []string  `json:"children_all_selected"`
	Enrichment
}

// Walk calls fn for b and its descendants in pre-order.
func (b *Branch) Walk(fn func(*Branch)) {
	fn(b)
	for _, c := range b.Children {
		c.Walk(fn)
	}
}

// Records flattens a filtered selection. Each record's FlatParent is the id
// of the selected record it was nested under, or [tree.Root].
func Records(selected []*tree.Selected) []Record {
	flat := tree.Flatten(selected, tree.Root)
	out := make([]Record, len(flat))
	for i, f := range flat {
		out[i] = Record{
			ID:          f.Node.ID,
			Name:        f.Node.Name,
			Parent:      f.Node.Parent,
			Children:    nonNil(f.Node.Children),
			AllSelected: f.Children,
			FlatParent:  f.Parent,
		}
	}
	return out
}

// parentOf returns the parent used to assemble the tree. Records read back
// from a nodes export have no FlatParent and fall back to Parent.
func parentOf(r Record) string {
	if r.FlatParent != "" {
		return r.FlatParent
	}
	return r.Parent
}

func recordID(r Record) string { return r.ID }

// Assemble nests records on their flat parent, starting at [tree.Root]. It
// returns the records that could not be placed.
func Assemble(records []Record) ([]*Branch, []Record) {
	roots, orphans := tree.BuildChecked(records, recordID, parentOf, tree.Root)
	return branches(roots), orphans
}

func branches(nodes []*tree.Tree[Record]) []*Branch {
	out := make([]*Branch, 0, len(nodes))
	for _, n := range nodes {
		r := n.Node
		out = append(out, &Branch{
			ID:          r.ID,
			Name:        r.Name,
			Parent:      r.Parent,
			Children:    branches(n.Children),
			AllSelected: nonNil(r.AllSelected),
			Enrichment:  r.Enrichment,
		})
	}
	return out
}

// Strip returns a copy of records without the flat parent.
func Strip(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		r.FlatParent = ""
		r.Children = nonNil(r.Children)
		r.AllSelected = nonNil(r.AllSelected)
		out[i] = r
	}
	return out
}

// DecodeRecords reads a JSON array of records, such as a previous nodes
// export.
func DecodeRecords(r io.Reader) ([]Record, error) {
	var records []Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "decode records")
	}
	for i := range records {
		if records[i].ID == "" {
			return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "record %d has no id", i)
		}
	}
	return records, nil
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
