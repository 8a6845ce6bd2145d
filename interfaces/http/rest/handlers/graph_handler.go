package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"pmwiki-gateway/domain/graphview"
	"pmwiki-gateway/infrastructure/pmwiki"
	"pmwiki-gateway/pkg/common"
)

const (
	defaultSimilarityThreshold = 0.6
	minSimilarityThreshold     = 0.5
	maxSimilarityThreshold     = 0.8

	viewModeClusters = "clusters"
	viewModeSections = "sections"
)

var knownStandards = map[string]bool{
	"PMBOK":     true,
	"PRINCE2":   true,
	"ISO_21502": true,
}

// GraphHandler serves render-ready topic network data: upstream graph
// filtered, positioned, and styled for the client.
type GraphHandler struct {
	upstream *pmwiki.Client
	logger   *zap.Logger
}

// NewGraphHandler creates a new graph handler
func NewGraphHandler(upstream *pmwiki.Client, logger *zap.Logger) *GraphHandler {
	return &GraphHandler{upstream: upstream, logger: logger}
}

// TopicNetworkView is the render-ready graph payload.
type TopicNetworkView struct {
	Metadata         pmwiki.NetworkMetadata `json:"metadata"`
	Nodes            []graphview.PlacedNode `json:"nodes"`
	Edges            []graphview.StyledEdge `json:"edges"`
	ConnectionCounts map[string]int         `json:"connection_counts"`
}

// TopicNetwork handles GET /api/v1/graph/topic-network
func (h *GraphHandler) TopicNetwork(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	threshold := defaultSimilarityThreshold
	if raw := query.Get("similarity_threshold"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			common.RespondError(w, http.StatusBadRequest, "VALIDATION", "similarity_threshold must be a number")
			return
		}
		threshold = clampThreshold(parsed)
	}

	viewMode := query.Get("view_mode")
	if viewMode == "" {
		viewMode = viewModeClusters
	}
	if viewMode != viewModeClusters && viewMode != viewModeSections {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "view_mode must be clusters or sections")
		return
	}

	standards, err := parseStandards(query.Get("standards"))
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	resp, err := h.upstream.TopicNetwork(r.Context(), pmwiki.TopicNetworkParams{
		SimilarityThreshold: threshold,
		ViewMode:            viewMode,
		Standards:           standards,
	})
	if err != nil {
		h.logger.Error("topic network fetch failed", zap.Error(err))
		common.RespondAppError(w, err)
		return
	}

	active := make(map[string]bool, len(standards))
	for _, std := range standards {
		active[std] = true
	}

	nodes := graphview.FilterNodes(resp.Nodes, query.Get("q"), active)
	edges := graphview.FilterEdges(resp.Edges, nodes)

	var placed []graphview.PlacedNode
	if viewMode == viewModeClusters {
		placed = graphview.LayoutClusters(nodes)
	} else {
		placed = graphview.LayoutSections(nodes)
	}

	common.RespondJSON(w, http.StatusOK, TopicNetworkView{
		Metadata: pmwiki.NetworkMetadata{
			SimilarityThreshold: threshold,
			ViewMode:            viewMode,
			Standards:           standards,
			NodeCount:           len(placed),
			EdgeCount:           len(edges),
		},
		Nodes:            placed,
		Edges:            graphview.StyleEdges(edges),
		ConnectionCounts: graphview.ConnectionCounts(edges),
	})
}

func clampThreshold(v float64) float64 {
	if v < minSimilarityThreshold {
		return minSimilarityThreshold
	}
	if v > maxSimilarityThreshold {
		return maxSimilarityThreshold
	}
	return v
}

// parseStandards splits a CSV of standard identifiers, rejecting unknown
// ones. An empty value means all standards.
func parseStandards(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	standards := make([]string, 0, len(parts))
	for _, part := range parts {
		std := strings.ToUpper(strings.TrimSpace(part))
		if std == "" {
			continue
		}
		if !knownStandards[std] {
			return nil, &invalidStandardError{standard: std}
		}
		standards = append(standards, std)
	}
	return standards, nil
}

type invalidStandardError struct {
	standard string
}

func (e *invalidStandardError) Error() string {
	return "unknown standard: " + e.standard
}
