package tree

// Nested is implemented by node types that [Flatten] can walk. The method set
// decides which relation is flattened: [*Node] nests under Children while
// [*Selected] nests under its selected subtree.
type Nested[T any] interface {
	NodeID() string
	ChildNodes() []T
}

// Flat is one flattened node. Children holds the ids of the node's direct
// children in order; the nested values themselves are not copied.
type Flat[T any] struct {
	Node     T
	Parent   string
	Children []string
}

// FlatID returns the id of the flattened node. It is meant to be passed to
// [Build] as the id accessor.
func FlatID[T Nested[T]](f Flat[T]) string { return f.Node.NodeID() }

// FlatParent returns the parent recorded by [Flatten]. It is meant to be
// passed to [Build] as the parent accessor.
func FlatParent[T any](f Flat[T]) string { return f.Parent }

// Flatten converts a nested sequence into a pre-order list. Every node is
// emitted with the given parent, followed by its flattened children, which
// get the node's id as parent. An empty input yields an empty slice.
func Flatten[T Nested[T]](nodes []T, parent string) []Flat[T] {
	out := make([]Flat[T], 0, len(nodes))
	return flattenInto(out, nodes, parent)
}

func flattenInto[T Nested[T]](out []Flat[T], nodes []T, parent string) []Flat[T] {
	for _, n := range nodes {
		kids := n.ChildNodes()
		ids := make([]string, len(kids))
		for i, k := range kids {
			ids[i] = k.NodeID()
		}
		out = append(out, Flat[T]{Node: n, Parent: parent, Children: ids})
		out = flattenInto(out, kids, n.NodeID())
	}
	return out
}
