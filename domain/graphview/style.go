package graphview

// Styling thresholds. Edges at or above the animation threshold render
// thicker and animated; cluster edges additionally scale with how many
// section edges they aggregate.
const (
	animationThreshold = 0.75

	baseStrokeWidth     = 1.5
	emphasisStrokeWidth = 3.0

	clusterWidthStep = 0.25
	maxStrokeWidth   = 6.0
)

// StyleEdge derives the visual parameters for an edge. Same edge in, same
// style out — there is no randomness or external state involved.
func StyleEdge(e Edge) EdgeStyle {
	switch e.Kind {
	case EdgeClusterConnection:
		width := baseStrokeWidth + clusterWidthStep*float64(e.ConnectionCount)
		if width > maxStrokeWidth {
			width = maxStrokeWidth
		}
		return EdgeStyle{
			StrokeWidth: width,
			Animated:    e.Similarity >= animationThreshold,
		}
	case EdgeCrossStandard, EdgeWithinStandard:
		if e.Similarity >= animationThreshold {
			return EdgeStyle{StrokeWidth: emphasisStrokeWidth, Animated: true}
		}
		return EdgeStyle{StrokeWidth: baseStrokeWidth, Animated: false}
	default:
		return EdgeStyle{StrokeWidth: baseStrokeWidth, Animated: false}
	}
}

// StyleEdges derives styles for a slice of edges, preserving order.
func StyleEdges(edges []Edge) []StyledEdge {
	out := make([]StyledEdge, len(edges))
	for i, e := range edges {
		out[i] = StyledEdge{Edge: e, Style: StyleEdge(e)}
	}
	return out
}
