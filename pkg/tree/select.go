package tree

// SelectMode controls which nodes [Select] marks.
type SelectMode int

const (
	// SelectNode marks the matching nodes themselves.
	SelectNode SelectMode = iota
	// SelectChildren marks the immediate children of the matching nodes.
	SelectChildren
	// SelectDescendants marks every descendant of the matching nodes.
	SelectDescendants
)

// String returns the mode name used by the CLI flags.
func (m SelectMode) String() string {
	switch m {
	case SelectChildren:
		return "children"
	case SelectDescendants:
		return "descendants"
	default:
		return "node"
	}
}

// Select returns a copy of nodes with the nodes picked by mode marked as
// selected. Ids match either the raw widget id or its normalized form.
// Existing selections are kept.
func (z Normalizer) Select(nodes []*Node, mode SelectMode, ids ...string) []*Node {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[z.ID(id)] = true
	}
	out := Clone(nodes)
	Walk(out, func(n *Node, _ string) bool {
		if !want[z.ID(n.ID)] {
			return true
		}
		switch mode {
		case SelectNode:
			n.Selected = true
		case SelectChildren:
			for _, c := range n.Children {
				if c != nil {
					c.Selected = true
				}
			}
		case SelectDescendants:
			Walk(n.Children, func(d *Node, _ string) bool {
				d.Selected = true
				return true
			})
		}
		return true
	})
	return out
}

// Select is [Normalizer.Select] with [DefaultNormalizer].
func Select(nodes []*Node, mode SelectMode, ids ...string) []*Node {
	return DefaultNormalizer.Select(nodes, mode, ids...)
}

// Deselect returns a copy of nodes with every selection cleared.
func Deselect(nodes []*Node) []*Node {
	out := Clone(nodes)
	Walk(out, func(n *Node, _ string) bool {
		n.Selected = false
		return true
	})
	return out
}
