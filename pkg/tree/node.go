package tree

const (
	// Root is the parent value of top-level records.
	Root = "#"

	// DefaultPrefix is the namespace prefix the tree widget adds to relation ids.
	DefaultPrefix = "osm-rel-"
)

// Node is one entry of the widget hierarchy.
//
// Children are owned by their parent. A Node passed to the functions in this
// package is never modified.
type Node struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Selected bool    `json:"selected"`
	Children []*Node `json:"children"`
}

// NodeID implements [Nested].
func (n *Node) NodeID() string { return n.ID }

// ChildNodes implements [Nested].
func (n *Node) ChildNodes() []*Node { return n.Children }

// Selected is a selected node as emitted by [FilterSelected].
//
// Children lists the normalized ids of every immediate child of the source
// node, selected or not. AllSelected holds the selected subtree below it.
type Selected struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Parent      string      `json:"parent"`
	Children    []string    `json:"children"`
	AllSelected []*Selected `json:"children_all_selected"`
}

// NodeID implements [Nested].
func (s *Selected) NodeID() string { return s.ID }

// ChildNodes implements [Nested]. Selected records nest under AllSelected.
func (s *Selected) ChildNodes() []*Selected { return s.AllSelected }

// Walk calls fn for every node in pre-order, passing the parent id (Root for
// top-level nodes). Returning false from fn skips the node's children.
func Walk(nodes []*Node, fn func(n *Node, parent string) bool) {
	walk(nodes, Root, fn)
}

func walk(nodes []*Node, parent string, fn func(*Node, string) bool) {
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if fn(n, parent) {
			walk(n.Children, n.ID, fn)
		}
	}
}

// Count returns the total number of nodes and the number of selected nodes.
func Count(nodes []*Node) (total, selected int) {
	Walk(nodes, func(n *Node, _ string) bool {
		total++
		if n.Selected {
			selected++
		}
		return true
	})
	return total, selected
}

// Depth returns the number of levels in the tree (0 for an empty tree).
func Depth(nodes []*Node) int {
	depth := 0
	for _, n := range nodes {
		if n == nil {
			continue
		}
		depth = max(depth, 1+Depth(n.Children))
	}
	return depth
}

// Clone returns a deep copy of nodes.
func Clone(nodes []*Node) []*Node {
	if nodes == nil {
		return nil
	}
	out := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		if n == nil {
			continue
		}
		cp := *n
		cp.Children = Clone(n.Children)
		out = append(out, &cp)
	}
	return out
}
