package pmwiki

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pmwiki-gateway/domain/graphview"
	appErrors "pmwiki-gateway/pkg/errors"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(ClientOptions{
		BaseURL:       server.URL,
		Timeout:       5 * time.Second,
		GraphCacheTTL: time.Minute,
	}, zap.NewNop())
	return client, server
}

func TestClient_Search(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/search", r.URL.Path)

		var req SearchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "risk management", req.Query)

		json.NewEncoder(w).Encode(SearchResponse{
			Query:  req.Query,
			Answer: "Risk management is addressed across all three standards.",
			PrimarySources: []SourceReference{{
				SectionID: "pmbok-11.1",
				Standard:  "PMBOK",
			}},
		})
	}))

	resp, err := client.Search(context.Background(), SearchRequest{Query: "risk management"})
	require.NoError(t, err)
	assert.Equal(t, "risk management", resp.Query)
	require.Len(t, resp.PrimarySources, 1)
	assert.Equal(t, "pmbok-11.1", resp.PrimarySources[0].SectionID)
}

func TestClient_SearchValidationErrorCarriesDetail(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"detail":"query too short"}`))
	}))

	_, err := client.Search(context.Background(), SearchRequest{Query: "x"})
	require.Error(t, err)
	assert.True(t, appErrors.IsValidation(err))
	assert.Contains(t, err.Error(), "query too short")
}

func TestClient_SectionNotFound(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := client.Section(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, appErrors.IsNotFound(err))
}

func TestClient_TopicNetworkCachesPerParams(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		json.NewEncoder(w).Encode(TopicNetworkResponse{
			Nodes: []graphview.Node{{ID: "s1"}},
			Edges: []graphview.Edge{},
		})
	}))

	params := TopicNetworkParams{SimilarityThreshold: 0.6, ViewMode: "sections"}
	_, err := client.TopicNetwork(context.Background(), params)
	require.NoError(t, err)
	_, err = client.TopicNetwork(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	// Different parameters bypass the cached entry.
	params.ViewMode = "clusters"
	_, err = client.TopicNetwork(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClient_TopicNetworkNormalizesNodeKinds(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"nodes":[{"id":"s1"},{"id":"c1","type":"cluster"}],"clusters":[{"id":"c2"}],"edges":[]}`))
	}))

	resp, err := client.TopicNetwork(context.Background(), TopicNetworkParams{ViewMode: "sections"})
	require.NoError(t, err)
	require.Len(t, resp.Nodes, 2)
	assert.Equal(t, graphview.KindSection, resp.Nodes[0].Kind)
	assert.Equal(t, graphview.KindCluster, resp.Nodes[1].Kind)
	require.Len(t, resp.Clusters, 1)
	assert.Equal(t, graphview.KindCluster, resp.Clusters[0].Kind)
}

func TestClient_SectionListingCached(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		json.NewEncoder(w).Encode(SectionListResponse{Standard: "PMBOK", Total: 1})
	}))

	_, err := client.ListSections(context.Background(), "PMBOK")
	require.NoError(t, err)
	resp, err := client.ListSections(context.Background(), "PMBOK")
	require.NoError(t, err)

	assert.Equal(t, "PMBOK", resp.Standard)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_CircuitOpensAfterConsecutiveFailures(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := client.HealthCheck(ctx)
		require.Error(t, err)
		assert.True(t, appErrors.IsExternal(err))
	}

	// Sixth call is rejected by the open circuit without touching the server.
	_, err := client.HealthCheck(ctx)
	require.Error(t, err)
	assert.True(t, appErrors.IsUnavailable(err))
}
