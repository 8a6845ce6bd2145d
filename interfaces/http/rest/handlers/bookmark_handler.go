package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"pmwiki-gateway/domain/userdata"
	"pmwiki-gateway/pkg/common"
	"pmwiki-gateway/pkg/observability"
	"pmwiki-gateway/pkg/utils"
)

// BookmarkHandler manages the user's bookmarked sections.
type BookmarkHandler struct {
	store   *userdata.Store
	metrics *observability.Collector
	logger  *zap.Logger
}

// NewBookmarkHandler creates a new bookmark handler
func NewBookmarkHandler(store *userdata.Store, metrics *observability.Collector, logger *zap.Logger) *BookmarkHandler {
	return &BookmarkHandler{store: store, metrics: metrics, logger: logger}
}

// BookmarkRequest is the payload for adding or toggling a bookmark.
type BookmarkRequest struct {
	ID             string  `json:"id" validate:"required"`
	Standard       string  `json:"standard" validate:"required"`
	SectionNumber  string  `json:"section_number" validate:"required"`
	SectionTitle   string  `json:"section_title" validate:"required"`
	PageStart      int     `json:"page_start"`
	PageEnd        *int    `json:"page_end,omitempty"`
	ContentPreview string  `json:"content_preview"`
	Citation       string  `json:"citation"`
	BookmarkedFrom string  `json:"bookmarked_from,omitempty"`
	RelevanceScore float64 `json:"relevance_score"`
}

func (req BookmarkRequest) toBookmark() userdata.Bookmark {
	return userdata.Bookmark{
		ID:             req.ID,
		Standard:       req.Standard,
		SectionNumber:  req.SectionNumber,
		SectionTitle:   req.SectionTitle,
		PageStart:      req.PageStart,
		PageEnd:        req.PageEnd,
		ContentPreview: req.ContentPreview,
		Citation:       req.Citation,
		BookmarkedFrom: req.BookmarkedFrom,
		RelevanceScore: req.RelevanceScore,
	}
}

// List handles GET /api/v1/bookmarks with an optional ?standard= filter.
func (h *BookmarkHandler) List(w http.ResponseWriter, r *http.Request) {
	var bookmarks []userdata.Bookmark
	if standard := r.URL.Query().Get("standard"); standard != "" {
		bookmarks = h.store.BookmarksByStandard(standard)
	} else {
		bookmarks = h.store.AllBookmarks()
	}

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"bookmarks": bookmarks,
		"total":     len(bookmarks),
		"limit":     userdata.MaxBookmarks,
	})
}

// Grouped handles GET /api/v1/bookmarks/grouped
func (h *BookmarkHandler) Grouped(w http.ResponseWriter, r *http.Request) {
	common.RespondJSON(w, http.StatusOK, h.store.GroupedBookmarks())
}

// Count handles GET /api/v1/bookmarks/count
func (h *BookmarkHandler) Count(w http.ResponseWriter, r *http.Request) {
	common.RespondJSON(w, http.StatusOK, map[string]int{
		"count": h.store.BookmarkCount(),
		"limit": userdata.MaxBookmarks,
	})
}

// Get handles GET /api/v1/bookmarks/{bookmarkID} and reports membership.
func (h *BookmarkHandler) Get(w http.ResponseWriter, r *http.Request) {
	bookmarkID := chi.URLParam(r, "bookmarkID")
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"id":         bookmarkID,
		"bookmarked": h.store.IsBookmarked(bookmarkID),
	})
}

// Add handles POST /api/v1/bookmarks. Adding an already-bookmarked section
// or adding past the capacity limit reports added=false.
func (h *BookmarkHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req BookmarkRequest
	if err := common.ParseJSONBody(r, &req, maxRequestBody); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	added := h.store.AddBookmark(r.Context(), req.toBookmark())
	if added {
		h.metrics.BookmarkOutcomes.WithLabelValues(string(userdata.ToggleAdded)).Inc()
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"id":    req.ID,
		"added": added,
		"count": h.store.BookmarkCount(),
	})
}

// Toggle handles POST /api/v1/bookmarks/toggle and reports whether the
// bookmark was added, removed, or rejected because the limit was reached.
func (h *BookmarkHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	var req BookmarkRequest
	if err := common.ParseJSONBody(r, &req, maxRequestBody); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	outcome := h.store.ToggleBookmark(r.Context(), req.toBookmark())
	h.metrics.BookmarkOutcomes.WithLabelValues(string(outcome)).Inc()

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"id":         req.ID,
		"outcome":    outcome,
		"bookmarked": outcome == userdata.ToggleAdded,
		"count":      h.store.BookmarkCount(),
	})
}

// Remove handles DELETE /api/v1/bookmarks/{bookmarkID}
func (h *BookmarkHandler) Remove(w http.ResponseWriter, r *http.Request) {
	bookmarkID := chi.URLParam(r, "bookmarkID")
	h.store.RemoveBookmark(r.Context(), bookmarkID)
	h.metrics.BookmarkOutcomes.WithLabelValues(string(userdata.ToggleRemoved)).Inc()
	common.RespondJSON(w, http.StatusOK, map[string]string{"id": bookmarkID})
}

// Clear handles DELETE /api/v1/bookmarks
func (h *BookmarkHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.store.ClearBookmarks(r.Context())
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
