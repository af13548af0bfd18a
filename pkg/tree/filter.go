package tree

// FilterSelected reduces nodes to the selected ones using [DefaultNormalizer].
// See [Normalizer.FilterSelected].
func FilterSelected(nodes []*Node, parent string) []*Selected {
	return DefaultNormalizer.FilterSelected(nodes, parent)
}

// FilterSelected walks nodes in order and keeps only selected ones.
//
// A selected node yields one record whose parent is the given parent, whose
// Children are the ids of all its immediate children and whose AllSelected is
// the filtered subtree below it. An unselected node yields nothing itself; its
// selected descendants are spliced in its place and keep the parent the
// unselected node would have had. Every id, parent and child id is normalized.
func (z Normalizer) FilterSelected(nodes []*Node, parent string) []*Selected {
	out := []*Selected{}
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if !n.Selected {
			out = append(out, z.FilterSelected(n.Children, parent)...)
			continue
		}
		kids := make([]string, 0, len(n.Children))
		for _, c := range n.Children {
			if c != nil {
				kids = append(kids, z.ID(c.ID))
			}
		}
		out = append(out, &Selected{
			ID:          z.ID(n.ID),
			Name:        z.Name(n.Name),
			Parent:      z.ID(parent),
			Children:    kids,
			AllSelected: z.FilterSelected(n.Children, n.ID),
		})
	}
	return out
}
