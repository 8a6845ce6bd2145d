package graphview

import "strings"

// MatchesSearch reports whether a node matches a free-text search. The
// match is a case-insensitive substring test over the node's descriptive
// fields: title, section number and standard for sections; name and member
// standards for clusters. An empty search matches everything.
func MatchesSearch(n Node, search string) bool {
	if search == "" {
		return true
	}
	q := strings.ToLower(search)

	switch n.Kind {
	case KindSection:
		return strings.Contains(strings.ToLower(n.Title), q) ||
			strings.Contains(strings.ToLower(n.SectionNumber), q) ||
			strings.Contains(strings.ToLower(n.Standard), q)
	case KindCluster:
		if strings.Contains(strings.ToLower(n.Name), q) {
			return true
		}
		for _, std := range n.Standards {
			if strings.Contains(strings.ToLower(std), q) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// MatchesStandards reports whether a node belongs to at least one active
// standard. A nil or empty set means no standard filter is applied.
func MatchesStandards(n Node, active map[string]bool) bool {
	if len(active) == 0 {
		return true
	}

	switch n.Kind {
	case KindSection:
		return active[n.Standard]
	case KindCluster:
		for _, std := range n.Standards {
			if active[std] {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// FilterNodes retains the nodes matching both the search string and the
// active-standard set, preserving input order.
func FilterNodes(nodes []Node, search string, active map[string]bool) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if MatchesSearch(n, search) && MatchesStandards(n, active) {
			out = append(out, n)
		}
	}
	return out
}

// FilterEdges retains the edges whose endpoints both survived node
// filtering.
func FilterEdges(edges []Edge, nodes []Node) []Edge {
	kept := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		kept[n.ID] = true
	}

	out := make([]Edge, 0, len(edges))
	for _, e := range edges {
		if kept[e.Source] && kept[e.Target] {
			out = append(out, e)
		}
	}
	return out
}

// ConnectionCounts tallies the surviving edges per endpoint id. Nodes
// absent from the result have an implicit count of zero.
func ConnectionCounts(edges []Edge) map[string]int {
	counts := make(map[string]int, len(edges))
	for _, e := range edges {
		counts[e.Source]++
		counts[e.Target]++
	}
	return counts
}
