package tree

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// Search returns a pruned copy of nodes that keeps every node whose name
// fuzzy-matches query, together with the ancestors needed to reach it.
// Descendants of a match are only kept if they match too. An empty query
// returns a full copy.
func Search(nodes []*Node, query string) []*Node {
	query = strings.TrimSpace(query)
	if query == "" {
		return Clone(nodes)
	}

	var all []*Node
	Walk(nodes, func(n *Node, _ string) bool {
		all = append(all, n)
		return true
	})
	names := make([]string, len(all))
	for i, n := range all {
		names[i] = DefaultNormalizer.Name(n.Name)
	}

	hits := make(map[*Node]bool)
	for _, m := range fuzzy.Find(query, names) {
		hits[all[m.Index]] = true
	}
	return prune(nodes, hits)
}

func prune(nodes []*Node, hits map[*Node]bool) []*Node {
	out := []*Node{}
	for _, n := range nodes {
		if n == nil {
			continue
		}
		kids := prune(n.Children, hits)
		if !hits[n] && len(kids) == 0 {
			continue
		}
		cp := *n
		cp.Children = kids
		out = append(out, &cp)
	}
	return out
}
