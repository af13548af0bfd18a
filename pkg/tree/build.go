package tree

// Tree is a node with its reconstructed children.
type Tree[T any] struct {
	Node     T
	Children []*Tree[T]
}

// Build nests nodes under their parents, starting from the nodes whose parent
// equals parent. Relative order is preserved at every level. Nodes that cannot
// be reached from parent are dropped; use [BuildChecked] to see them.
func Build[T any](nodes []T, id, parentOf func(T) string, parent string) []*Tree[T] {
	roots, _ := BuildChecked(nodes, id, parentOf, parent)
	return roots
}

// BuildChecked is [Build] that also returns the nodes left out of the result:
// nodes whose parent chain never reaches parent, and nodes caught in a parent
// cycle. Orphans keep their input order.
func BuildChecked[T any](nodes []T, id, parentOf func(T) string, parent string) ([]*Tree[T], []T) {
	byParent := make(map[string][]int, len(nodes))
	for i, n := range nodes {
		p := parentOf(n)
		byParent[p] = append(byParent[p], i)
	}

	placed := make([]bool, len(nodes))
	var attach func(p string, path map[string]bool) []*Tree[T]
	attach = func(p string, path map[string]bool) []*Tree[T] {
		out := []*Tree[T]{}
		if path[p] {
			return out
		}
		path[p] = true
		defer delete(path, p)
		for _, i := range byParent[p] {
			if placed[i] {
				continue
			}
			placed[i] = true
			n := nodes[i]
			out = append(out, &Tree[T]{Node: n, Children: attach(id(n), path)})
		}
		return out
	}

	roots := attach(parent, map[string]bool{})

	var orphans []T
	for i, n := range nodes {
		if !placed[i] {
			orphans = append(orphans, n)
		}
	}
	return roots, orphans
}
