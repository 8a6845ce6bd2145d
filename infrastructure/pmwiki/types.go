package pmwiki

import "pmwiki-gateway/domain/graphview"

// SearchRequest is the payload for the answer-synthesis search endpoint.
type SearchRequest struct {
	Query           string   `json:"query" validate:"required,min=3,max=500"`
	TopKPerStandard int      `json:"top_k_per_standard,omitempty" validate:"omitempty,gte=1,lte=10"`
	ScoreThreshold  float64  `json:"score_threshold,omitempty" validate:"omitempty,gte=0,lte=1"`
	Standards       []string `json:"standards,omitempty"`
	IncludeContext  bool     `json:"include_context,omitempty"`
}

// SourceReference is a retrieved passage with its provenance.
type SourceReference struct {
	SectionID      string  `json:"section_id"`
	Standard       string  `json:"standard"`
	SectionNumber  string  `json:"section_number"`
	SectionTitle   string  `json:"section_title"`
	PageStart      int     `json:"page_start"`
	PageEnd        *int    `json:"page_end,omitempty"`
	Content        string  `json:"content"`
	ContentPreview string  `json:"content_preview"`
	Citation       string  `json:"citation"`
	RelevanceScore float64 `json:"relevance_score"`
}

// UsageStats reports token consumption for a generation call.
type UsageStats struct {
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	TotalTokens      int     `json:"total_tokens"`
	EstimatedCostUSD float64 `json:"estimated_cost_usd"`
}

// SearchResponse is the synthesized answer plus its supporting sources.
type SearchResponse struct {
	Query             string            `json:"query"`
	Answer            string            `json:"answer"`
	PrimarySources    []SourceReference `json:"primary_sources"`
	AdditionalContext []SourceReference `json:"additional_context,omitempty"`
	UsageStats        *UsageStats       `json:"usage_stats,omitempty"`
}

// SourceSummary is a compact source listing inside comparison responses.
type SourceSummary struct {
	SectionNumber string  `json:"section_number"`
	SectionTitle  string  `json:"section_title"`
	Citation      string  `json:"citation"`
	Relevance     float64 `json:"relevance_score"`
}

// ComparisonResponse contrasts how each standard treats a topic.
type ComparisonResponse struct {
	Topic      string                     `json:"topic"`
	Comparison string                     `json:"comparison"`
	Sources    map[string][]SourceSummary `json:"sources"`
	UsageStats *UsageStats                `json:"usage_stats,omitempty"`
}

// ProcessGenerationRequest describes the project a tailored process is
// generated for.
type ProcessGenerationRequest struct {
	ProjectType        string   `json:"project_type" validate:"required,min=3,max=200"`
	ProjectDescription string   `json:"project_description,omitempty" validate:"omitempty,max=2000"`
	ProjectSize        string   `json:"project_size,omitempty" validate:"omitempty,oneof=small medium large"`
	Constraints        []string `json:"constraints,omitempty"`
	Priorities         []string `json:"priorities,omitempty"`
	FocusAreas         []string `json:"focus_areas,omitempty"`
}

// ProcessPhase is one phase of a generated project process.
type ProcessPhase struct {
	PhaseName        string   `json:"phase_name"`
	Description      string   `json:"description"`
	KeyActivities    []string `json:"key_activities"`
	Deliverables     []string `json:"deliverables"`
	DurationGuidance string   `json:"duration_guidance"`
}

// ProcessGenerationResponse is a tailored process synthesized from the
// standards corpus.
type ProcessGenerationResponse struct {
	Overview           string            `json:"overview"`
	Phases             []ProcessPhase    `json:"phases"`
	KeyRecommendations []string          `json:"key_recommendations"`
	TailoringRationale string            `json:"tailoring_rationale"`
	StandardsAlignment map[string]string `json:"standards_alignment"`
	MermaidDiagram     string            `json:"mermaid_diagram,omitempty"`
	UsageStats         *UsageStats       `json:"usage_stats,omitempty"`
}

// SectionResponse is the full content of one standard section.
type SectionResponse struct {
	SectionID     string `json:"section_id"`
	Standard      string `json:"standard"`
	SectionNumber string `json:"section_number"`
	SectionTitle  string `json:"section_title"`
	PageStart     int    `json:"page_start"`
	PageEnd       *int   `json:"page_end,omitempty"`
	Content       string `json:"content"`
	Citation      string `json:"citation"`
}

// SectionSummary is a listing entry for a standard's table of contents.
type SectionSummary struct {
	SectionID     string `json:"section_id"`
	SectionNumber string `json:"section_number"`
	SectionTitle  string `json:"section_title"`
	PageStart     int    `json:"page_start"`
}

// SectionListResponse lists the sections of one standard.
type SectionListResponse struct {
	Standard string           `json:"standard"`
	Total    int              `json:"total"`
	Sections []SectionSummary `json:"sections"`
}

// NetworkMetadata carries the parameters the topic network was built with.
type NetworkMetadata struct {
	SimilarityThreshold float64  `json:"similarity_threshold"`
	ViewMode            string   `json:"view_mode"`
	Standards           []string `json:"standards"`
	NodeCount           int      `json:"node_count"`
	EdgeCount           int      `json:"edge_count"`
}

// TopicNetworkResponse is the raw topic graph from the upstream service.
type TopicNetworkResponse struct {
	Metadata NetworkMetadata  `json:"metadata"`
	Clusters []graphview.Node `json:"clusters,omitempty"`
	Nodes    []graphview.Node `json:"nodes"`
	Edges    []graphview.Edge `json:"edges"`
}

// Health is the upstream liveness report.
type Health struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}
