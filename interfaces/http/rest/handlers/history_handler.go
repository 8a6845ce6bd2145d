package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"pmwiki-gateway/domain/userdata"
	"pmwiki-gateway/pkg/common"
)

// HistoryHandler serves the user's search history.
type HistoryHandler struct {
	store  *userdata.Store
	logger *zap.Logger
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(store *userdata.Store, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{store: store, logger: logger}
}

// List handles GET /api/v1/history. Only entries with a complete cached
// result are returned; incomplete ones are pruned as a side effect.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	entries := h.store.ValidSearchHistory(r.Context())
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"total":   len(entries),
	})
}

// Lookup handles GET /api/v1/history/lookup?query=...
func (h *HistoryHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "query parameter is required")
		return
	}

	entry, ok := h.store.SearchByQuery(query)
	if !ok || !entry.HasCachedResult() {
		common.RespondError(w, http.StatusNotFound, "NOT_FOUND", "no cached result for query")
		return
	}
	common.RespondJSON(w, http.StatusOK, entry)
}

// Remove handles DELETE /api/v1/history/{entryID}
func (h *HistoryHandler) Remove(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, "entryID")
	h.store.RemoveSearch(r.Context(), entryID)
	common.RespondJSON(w, http.StatusOK, map[string]string{"id": entryID})
}

// Clear handles DELETE /api/v1/history
func (h *HistoryHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.store.ClearSearchHistory(r.Context())
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
