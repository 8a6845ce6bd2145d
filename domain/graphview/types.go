// Package graphview turns the backend's topic-network nodes and edges into
// render-ready placements and styles. Everything here is a pure function of
// its input; the package holds no state and performs no I/O.
package graphview

// NodeKind discriminates the two node variants the backend supplies.
type NodeKind string

const (
	KindSection NodeKind = "section"
	KindCluster NodeKind = "cluster"
)

// Node is a tagged variant: Kind selects which field group is meaningful.
// Section nodes describe a single standard section; cluster nodes describe
// a topic group aggregated over sections.
type Node struct {
	ID   string   `json:"id"`
	Kind NodeKind `json:"type"`

	// Section fields.
	Standard      string `json:"standard,omitempty"`
	SectionNumber string `json:"section_number,omitempty"`
	Title         string `json:"section_title,omitempty"`
	ClusterID     string `json:"cluster_id,omitempty"`
	PageStart     int    `json:"page_start,omitempty"`
	PageEnd       int    `json:"page_end,omitempty"`

	// Cluster fields.
	Name      string   `json:"name,omitempty"`
	Size      int      `json:"size,omitempty"`
	Standards []string `json:"standards,omitempty"`
	Color     string   `json:"color,omitempty"`
}

// EdgeKind tags how an edge relates its endpoints.
type EdgeKind string

const (
	EdgeCrossStandard     EdgeKind = "cross_standard"
	EdgeWithinStandard    EdgeKind = "within_standard"
	EdgeClusterConnection EdgeKind = "cluster_connection"
)

// Edge connects two nodes with a similarity score in [0,1]. Cluster-level
// edges additionally carry the number of section edges they aggregate.
type Edge struct {
	Source          string   `json:"source"`
	Target          string   `json:"target"`
	Similarity      float64  `json:"similarity"`
	Kind            EdgeKind `json:"type"`
	ConnectionCount int      `json:"connection_count,omitempty"`
}

// Position is a 2D layout coordinate in pixels.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PlacedNode is a node with its computed layout position.
type PlacedNode struct {
	Node
	Position Position `json:"position"`
}

// EdgeStyle carries the visual parameters derived for an edge.
type EdgeStyle struct {
	StrokeWidth float64 `json:"stroke_width"`
	Animated    bool    `json:"animated"`
}

// StyledEdge is an edge with its derived visual parameters.
type StyledEdge struct {
	Edge
	Style EdgeStyle `json:"style"`
}
