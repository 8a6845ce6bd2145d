// Package pmwiki is the typed client for the PMWiki retrieval service.
package pmwiki

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"pmwiki-gateway/domain/graphview"
	appErrors "pmwiki-gateway/pkg/errors"
	"pmwiki-gateway/pkg/observability"
)

// Client calls the upstream PMWiki API with circuit breaking and response
// caching for the expensive read endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	cache      *gocache.Cache
	sectionTTL time.Duration
	logger     *zap.Logger
	metrics    *observability.Collector
}

// ClientOptions configures the upstream client.
type ClientOptions struct {
	BaseURL         string
	Timeout         time.Duration
	GraphCacheTTL   time.Duration
	SectionCacheTTL time.Duration
	Metrics         *observability.Collector
}

// NewClient creates a PMWiki client. The circuit opens after repeated
// upstream failures and recovers after a cool-down probe succeeds.
func NewClient(opts ClientOptions, logger *zap.Logger) *Client {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	graphTTL := opts.GraphCacheTTL
	if graphTTL == 0 {
		graphTTL = 5 * time.Minute
	}
	sectionTTL := opts.SectionCacheTTL
	if sectionTTL == 0 {
		sectionTTL = 15 * time.Minute
	}

	settings := gobreaker.Settings{
		Name:        "pmwiki-upstream",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("upstream circuit state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	return &Client{
		baseURL:    opts.BaseURL,
		httpClient: &http.Client{Timeout: timeout},
		breaker:    gobreaker.NewCircuitBreaker(settings),
		cache:      gocache.New(graphTTL, 10*time.Minute),
		sectionTTL: sectionTTL,
		logger:     logger,
		metrics:    opts.Metrics,
	}
}

// Search runs a question against the corpus and returns the synthesized
// answer. Search responses are never cached.
func (c *Client) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	var resp SearchResponse
	if err := c.postJSON(ctx, "search", "/api/v1/search", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Compare returns the cross-standard comparison for a topic.
func (c *Client) Compare(ctx context.Context, topic string) (*ComparisonResponse, error) {
	var resp ComparisonResponse
	path := "/api/v1/compare/" + url.PathEscape(topic)
	if err := c.getJSON(ctx, "compare", path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GenerateProcess synthesizes a tailored project process.
func (c *Client) GenerateProcess(ctx context.Context, req ProcessGenerationRequest) (*ProcessGenerationResponse, error) {
	var resp ProcessGenerationResponse
	if err := c.postJSON(ctx, "generate_process", "/api/v1/generate-process", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Section fetches the full content of a single standard section.
func (c *Client) Section(ctx context.Context, sectionID string) (*SectionResponse, error) {
	cacheKey := "section:" + sectionID
	if cached, ok := c.cache.Get(cacheKey); ok {
		c.recordCacheHit()
		resp := cached.(SectionResponse)
		return &resp, nil
	}
	c.recordCacheMiss()

	var resp SectionResponse
	path := "/api/v1/sections/" + url.PathEscape(sectionID)
	if err := c.getJSON(ctx, "section", path, &resp); err != nil {
		return nil, err
	}
	c.cache.Set(cacheKey, resp, c.sectionTTL)
	return &resp, nil
}

// ListSections lists the table of contents for one standard.
func (c *Client) ListSections(ctx context.Context, standard string) (*SectionListResponse, error) {
	cacheKey := "sections:" + standard
	if cached, ok := c.cache.Get(cacheKey); ok {
		c.recordCacheHit()
		resp := cached.(SectionListResponse)
		return &resp, nil
	}
	c.recordCacheMiss()

	var resp SectionListResponse
	path := "/api/v1/standards/" + url.PathEscape(standard) + "/sections"
	if err := c.getJSON(ctx, "list_sections", path, &resp); err != nil {
		return nil, err
	}
	c.cache.Set(cacheKey, resp, c.sectionTTL)
	return &resp, nil
}

// TopicNetworkParams selects the slice of the topic graph to fetch.
type TopicNetworkParams struct {
	SimilarityThreshold float64
	ViewMode            string
	Standards           []string
}

// TopicNetwork fetches the raw topic graph for the given parameters. Results
// are cached per parameter combination because the upstream computes the
// graph from embeddings on every call.
func (c *Client) TopicNetwork(ctx context.Context, params TopicNetworkParams) (*TopicNetworkResponse, error) {
	cacheKey := fmt.Sprintf("network:%.2f:%s:%v", params.SimilarityThreshold, params.ViewMode, params.Standards)
	if cached, ok := c.cache.Get(cacheKey); ok {
		c.recordCacheHit()
		resp := cached.(TopicNetworkResponse)
		return &resp, nil
	}
	c.recordCacheMiss()

	query := url.Values{}
	query.Set("similarity_threshold", fmt.Sprintf("%g", params.SimilarityThreshold))
	query.Set("view_mode", params.ViewMode)
	for _, std := range params.Standards {
		query.Add("standards", std)
	}

	var resp TopicNetworkResponse
	path := "/api/v1/graph/topic-network?" + query.Encode()
	if err := c.getJSON(ctx, "topic_network", path, &resp); err != nil {
		return nil, err
	}

	// Upstream node payloads omit the type discriminator for plain sections.
	for i := range resp.Nodes {
		if resp.Nodes[i].Kind == "" {
			resp.Nodes[i].Kind = graphview.KindSection
		}
	}
	for i := range resp.Clusters {
		if resp.Clusters[i].Kind == "" {
			resp.Clusters[i].Kind = graphview.KindCluster
		}
	}

	c.cache.Set(cacheKey, resp, gocache.DefaultExpiration)
	return &resp, nil
}

// HealthCheck probes the upstream liveness endpoint.
func (c *Client) HealthCheck(ctx context.Context) (*Health, error) {
	var resp Health
	if err := c.getJSON(ctx, "health", "/health", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) getJSON(ctx context.Context, operation, path string, out interface{}) error {
	return c.do(ctx, operation, http.MethodGet, path, nil, out)
}

func (c *Client) postJSON(ctx context.Context, operation, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return appErrors.NewInternalError("failed to encode request body").WithCause(err)
	}
	return c.do(ctx, operation, http.MethodPost, path, payload, out)
}

func (c *Client) do(ctx context.Context, operation, method, path string, body []byte, out interface{}) error {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return nil, appErrors.NewInternalError("failed to build upstream request").WithCause(err)
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.recordUpstream(operation, "error")
			return nil, appErrors.NewExternalError("pmwiki", err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
		if err != nil {
			c.recordUpstream(operation, "error")
			return nil, appErrors.NewExternalError("pmwiki", err)
		}

		switch {
		case resp.StatusCode == http.StatusNotFound:
			c.recordUpstream(operation, "not_found")
			return nil, appErrors.NewNotFoundError("upstream resource")
		case resp.StatusCode == http.StatusUnprocessableEntity || resp.StatusCode == http.StatusBadRequest:
			c.recordUpstream(operation, "invalid")
			return nil, appErrors.NewValidationError(upstreamErrorDetail(data))
		case resp.StatusCode >= 500:
			c.recordUpstream(operation, "upstream_error")
			return nil, appErrors.NewExternalError("pmwiki", fmt.Errorf("status %d", resp.StatusCode))
		case resp.StatusCode != http.StatusOK:
			c.recordUpstream(operation, "unexpected")
			return nil, appErrors.NewExternalError("pmwiki", fmt.Errorf("unexpected status %d", resp.StatusCode))
		}

		c.recordUpstream(operation, "ok")
		return data, nil
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			c.recordUpstream(operation, "circuit_open")
			return appErrors.NewUnavailableError("pmwiki")
		}
		return err
	}

	if err := json.Unmarshal(result.([]byte), out); err != nil {
		return appErrors.NewExternalError("pmwiki", err)
	}
	return nil
}

// upstreamErrorDetail extracts the FastAPI-style detail message when present.
func upstreamErrorDetail(data []byte) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(data, &payload); err == nil && payload.Detail != "" {
		return payload.Detail
	}
	return "upstream rejected the request"
}

func (c *Client) recordUpstream(operation, status string) {
	if c.metrics != nil {
		c.metrics.UpstreamRequests.WithLabelValues(operation, status).Inc()
	}
}

func (c *Client) recordCacheHit() {
	if c.metrics != nil {
		c.metrics.CacheHits.Inc()
	}
}

func (c *Client) recordCacheMiss() {
	if c.metrics != nil {
		c.metrics.CacheMisses.Inc()
	}
}
