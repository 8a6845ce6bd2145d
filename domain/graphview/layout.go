package graphview

// Layout constants: fixed column counts and pixel spacings. The layout is
// grid bucketing, not a physical simulation — a node's position is a pure
// function of its index within its bucket and the bucket's index.
const (
	clusterColumns  = 4
	clusterSpacingX = 300.0
	clusterSpacingY = 220.0

	groupColumns  = 3
	groupSpacingX = 640.0
	groupSpacingY = 480.0

	memberColumns  = 4
	memberSpacingX = 130.0
	memberSpacingY = 100.0
)

// UnclusteredGroup is the bucket for section nodes without a cluster id.
const UnclusteredGroup = "unclustered"

// gridPosition places index i in a row-major grid.
func gridPosition(i, columns int, spacingX, spacingY float64) Position {
	return Position{
		X: float64(i%columns) * spacingX,
		Y: float64(i/columns) * spacingY,
	}
}

// LayoutClusters places cluster nodes in a row-major grid in input order.
func LayoutClusters(nodes []Node) []PlacedNode {
	placed := make([]PlacedNode, len(nodes))
	for i, n := range nodes {
		placed[i] = PlacedNode{
			Node:     n,
			Position: gridPosition(i, clusterColumns, clusterSpacingX, clusterSpacingY),
		}
	}
	return placed
}

// LayoutSections groups section nodes by cluster id and places each group
// in its own sub-grid inside a row-major grid of group blocks. Group order
// is the first-seen order of cluster ids in the input, so identical input
// always yields identical placement. Nodes without a cluster id share the
// UnclusteredGroup bucket.
func LayoutSections(nodes []Node) []PlacedNode {
	groupOrder := []string{}
	groupIndex := map[string]int{}
	memberCount := map[string]int{}

	placed := make([]PlacedNode, len(nodes))
	for i, n := range nodes {
		key := layoutGroupKey(n)

		gi, seen := groupIndex[key]
		if !seen {
			gi = len(groupOrder)
			groupIndex[key] = gi
			groupOrder = append(groupOrder, key)
		}

		mi := memberCount[key]
		memberCount[key]++

		block := gridPosition(gi, groupColumns, groupSpacingX, groupSpacingY)
		member := gridPosition(mi, memberColumns, memberSpacingX, memberSpacingY)

		placed[i] = PlacedNode{
			Node: n,
			Position: Position{
				X: block.X + member.X,
				Y: block.Y + member.Y,
			},
		}
	}
	return placed
}

// layoutGroupKey picks the grouping bucket for a node in section view.
func layoutGroupKey(n Node) string {
	switch n.Kind {
	case KindSection:
		if n.ClusterID == "" {
			return UnclusteredGroup
		}
		return n.ClusterID
	case KindCluster:
		// Cluster nodes are not expected in section view; give each its
		// own bucket so placement stays deterministic regardless.
		return n.ID
	default:
		return UnclusteredGroup
	}
}
