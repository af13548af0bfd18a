package tree

import "strings"

// Normalizer turns widget ids and labels into export identifiers and names.
type Normalizer struct {
	// Prefix is stripped from the start of every id. An empty prefix leaves
	// ids untouched.
	Prefix string
}

// DefaultNormalizer strips [DefaultPrefix].
var DefaultNormalizer = Normalizer{Prefix: DefaultPrefix}

// ID strips the namespace prefix from id. The [Root] sentinel passes through.
func (z Normalizer) ID(id string) string {
	if z.Prefix == "" {
		return id
	}
	return strings.TrimPrefix(id, z.Prefix)
}

// IDs applies [Normalizer.ID] to every element. It never returns nil.
func (z Normalizer) IDs(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = z.ID(id)
	}
	return out
}

// Name removes embedded newlines from a widget label and trims it.
func (z Normalizer) Name(name string) string {
	return strings.TrimSpace(strings.ReplaceAll(name, "\n", ""))
}

// SelectedIDs returns the normalized ids of all selected nodes in pre-order.
func (z Normalizer) SelectedIDs(nodes []*Node) []string {
	ids := []string{}
	Walk(nodes, func(n *Node, _ string) bool {
		if n.Selected {
			ids = append(ids, z.ID(n.ID))
		}
		return true
	})
	return ids
}

// SelectedIDs is [Normalizer.SelectedIDs] with [DefaultNormalizer].
func SelectedIDs(nodes []*Node) []string {
	return DefaultNormalizer.SelectedIDs(nodes)
}
