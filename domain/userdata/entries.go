package userdata

// Collection limits. Entries beyond these caps are dropped (search history)
// or rejected (bookmarks); see Store.AddSearch and Store.AddBookmark.
const (
	MaxSearchHistory = 10
	MaxBookmarks     = 100
)

// SourceSnapshot is a denormalized copy of a backend source reference,
// captured at the time a search result was cached. It is never re-fetched
// or reconciled with the backend afterwards.
type SourceSnapshot struct {
	ID             string  `json:"id,omitempty"`
	Standard       string  `json:"standard"`
	SectionNumber  string  `json:"section_number"`
	SectionTitle   string  `json:"section_title"`
	PageStart      int     `json:"page_start"`
	PageEnd        *int    `json:"page_end,omitempty"`
	Content        string  `json:"content,omitempty"`
	Citation       string  `json:"citation"`
	RelevanceScore float64 `json:"relevance_score"`
}

// SearchEntry is a single search-history record. ID and Timestamp are
// assigned by the store; the remaining fields are supplied by the caller
// when the search completes.
type SearchEntry struct {
	ID                  string           `json:"id"`
	Query               string           `json:"query"`
	Timestamp           int64            `json:"timestamp"` // epoch milliseconds
	PrimarySourcesCount int              `json:"primary_sources_count"`
	Standards           []string         `json:"standards"`
	Answer              string           `json:"answer,omitempty"`
	PrimarySources      []SourceSnapshot `json:"primary_sources,omitempty"`
	AdditionalContext   []SourceSnapshot `json:"additional_context,omitempty"`
}

// HasCachedResult reports whether the entry carries a complete cached
// result payload. Entries without one are hidden from history views and
// eventually pruned; see Store.ValidSearchHistory.
func (e SearchEntry) HasCachedResult() bool {
	return e.Answer != "" && len(e.PrimarySources) > 0
}

// Bookmark is a denormalized snapshot of a backend section, captured when
// the user bookmarked it. ID is the backend section id, not generated
// locally.
type Bookmark struct {
	ID             string  `json:"id"`
	Standard       string  `json:"standard"`
	SectionNumber  string  `json:"section_number"`
	SectionTitle   string  `json:"section_title"`
	PageStart      int     `json:"page_start"`
	PageEnd        *int    `json:"page_end,omitempty"`
	ContentPreview string  `json:"content_preview"`
	Citation       string  `json:"citation"`
	BookmarkedFrom string  `json:"bookmarked_from,omitempty"`
	RelevanceScore float64 `json:"relevance_score"`
	BookmarkedAt   int64   `json:"bookmarked_at"` // epoch milliseconds
}

// ToggleOutcome is the tri-state result of Store.ToggleBookmark. The
// rejected outcome is reported when the bookmark collection is at capacity,
// so callers never show a false "bookmarked" notice.
type ToggleOutcome string

const (
	ToggleAdded    ToggleOutcome = "added"
	ToggleRemoved  ToggleOutcome = "removed"
	ToggleRejected ToggleOutcome = "rejected"
)
