package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pmwiki-gateway/domain/graphview"
	"pmwiki-gateway/infrastructure/pmwiki"
)

func newGraphTestRouter(t *testing.T, upstream http.Handler) chi.Router {
	t.Helper()
	server := httptest.NewServer(upstream)
	t.Cleanup(server.Close)

	client := pmwiki.NewClient(pmwiki.ClientOptions{
		BaseURL:       server.URL,
		Timeout:       5 * time.Second,
		GraphCacheTTL: time.Minute,
	}, zap.NewNop())

	router := chi.NewRouter()
	router.Get("/api/v1/graph/topic-network", NewGraphHandler(client, zap.NewNop()).TopicNetwork)
	return router
}

func topicNetworkUpstream(t *testing.T, capture *pmwiki.TopicNetworkParams) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if capture != nil {
			q := r.URL.Query()
			capture.ViewMode = q.Get("view_mode")
			capture.Standards = q["standards"]
			capture.SimilarityThreshold, _ = strconv.ParseFloat(q.Get("similarity_threshold"), 64)
		}
		json.NewEncoder(w).Encode(pmwiki.TopicNetworkResponse{
			Nodes: []graphview.Node{
				{ID: "s1", Kind: graphview.KindSection, Standard: "PMBOK", Title: "Risk Planning", ClusterID: "c1"},
				{ID: "s2", Kind: graphview.KindSection, Standard: "PRINCE2", Title: "Risk Theme", ClusterID: "c1"},
				{ID: "s3", Kind: graphview.KindSection, Standard: "ISO_21502", Title: "Quality"},
			},
			Edges: []graphview.Edge{
				{Source: "s1", Target: "s2", Similarity: 0.8, Kind: graphview.EdgeCrossStandard},
				{Source: "s1", Target: "s3", Similarity: 0.7, Kind: graphview.EdgeCrossStandard},
			},
		})
	})
}

type topicNetworkBody struct {
	Success bool `json:"success"`
	Data    struct {
		Metadata         pmwiki.NetworkMetadata `json:"metadata"`
		Nodes            []graphview.PlacedNode `json:"nodes"`
		Edges            []graphview.StyledEdge `json:"edges"`
		ConnectionCounts map[string]int         `json:"connection_counts"`
	} `json:"data"`
}

func TestTopicNetwork_DefaultsAndLayout(t *testing.T) {
	var captured pmwiki.TopicNetworkParams
	router := newGraphTestRouter(t, topicNetworkUpstream(t, &captured))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/graph/topic-network?view_mode=sections", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body topicNetworkBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, 0.6, captured.SimilarityThreshold)
	assert.Equal(t, "sections", body.Data.Metadata.ViewMode)
	require.Len(t, body.Data.Nodes, 3)

	// s1 and s2 share cluster c1, so they land in the same layout block.
	assert.Equal(t, graphview.Position{X: 0, Y: 0}, body.Data.Nodes[0].Position)
	assert.Equal(t, graphview.Position{X: 130, Y: 0}, body.Data.Nodes[1].Position)
	assert.Equal(t, graphview.Position{X: 640, Y: 0}, body.Data.Nodes[2].Position)

	require.Len(t, body.Data.Edges, 2)
	assert.True(t, body.Data.Edges[0].Style.Animated)
	assert.False(t, body.Data.Edges[1].Style.Animated)

	assert.Equal(t, 2, body.Data.ConnectionCounts["s1"])
	assert.Equal(t, 1, body.Data.ConnectionCounts["s2"])
}

func TestTopicNetwork_ThresholdClamped(t *testing.T) {
	var captured pmwiki.TopicNetworkParams
	router := newGraphTestRouter(t, topicNetworkUpstream(t, &captured))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/graph/topic-network?similarity_threshold=0.95", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0.8, captured.SimilarityThreshold)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/graph/topic-network?similarity_threshold=0.1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0.5, captured.SimilarityThreshold)
}

func TestTopicNetwork_StandardsFilterApplied(t *testing.T) {
	router := newGraphTestRouter(t, topicNetworkUpstream(t, nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/graph/topic-network?view_mode=sections&standards=PMBOK,PRINCE2", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body topicNetworkBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	// s3 (ISO_21502) is filtered out, and the edge touching it with it.
	require.Len(t, body.Data.Nodes, 2)
	require.Len(t, body.Data.Edges, 1)
	assert.Equal(t, 2, body.Data.Metadata.NodeCount)
	assert.Equal(t, 1, body.Data.Metadata.EdgeCount)
}

func TestTopicNetwork_InvalidParamsRejected(t *testing.T) {
	router := newGraphTestRouter(t, topicNetworkUpstream(t, nil))

	cases := map[string]string{
		"bad view mode":     "/api/v1/graph/topic-network?view_mode=galaxy",
		"unknown standard":  "/api/v1/graph/topic-network?standards=AGILE",
		"non-numeric value": "/api/v1/graph/topic-network?similarity_threshold=high",
	}
	for name, target := range cases {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}
