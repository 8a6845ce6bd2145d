package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"pmwiki-gateway/domain/userdata"
	"pmwiki-gateway/infrastructure/pmwiki"
	"pmwiki-gateway/pkg/common"
	"pmwiki-gateway/pkg/observability"
	"pmwiki-gateway/pkg/utils"
)

const maxRequestBody = 1 << 20

// SearchHandler handles question search requests and records each answered
// search in the user's history.
type SearchHandler struct {
	upstream *pmwiki.Client
	store    *userdata.Store
	metrics  *observability.Collector
	logger   *zap.Logger
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(upstream *pmwiki.Client, store *userdata.Store, metrics *observability.Collector, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{
		upstream: upstream,
		store:    store,
		metrics:  metrics,
		logger:   logger,
	}
}

// SearchResult is the answer plus the history entry it was recorded under.
type SearchResult struct {
	pmwiki.SearchResponse
	HistoryEntryID string `json:"history_entry_id"`
	FromHistory    bool   `json:"from_history"`
}

// Search handles POST /api/v1/search
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req pmwiki.SearchRequest
	if err := common.ParseJSONBody(r, &req, maxRequestBody); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	// Serve repeated questions from the cached history entry instead of
	// paying for another synthesis call.
	if entry, ok := h.store.SearchByQuery(req.Query); ok && entry.HasCachedResult() {
		common.RespondJSON(w, http.StatusOK, SearchResult{
			SearchResponse: entryToResponse(entry),
			HistoryEntryID: entry.ID,
			FromHistory:    true,
		})
		return
	}

	resp, err := h.upstream.Search(r.Context(), req)
	if err != nil {
		h.logger.Error("search failed", zap.String("query", req.Query), zap.Error(err))
		common.RespondAppError(w, err)
		return
	}

	entry := h.store.AddSearch(r.Context(), responseToEntry(req, resp))
	h.metrics.SearchesRecorded.Inc()

	common.RespondJSON(w, http.StatusOK, SearchResult{
		SearchResponse: *resp,
		HistoryEntryID: entry.ID,
	})
}

func responseToEntry(req pmwiki.SearchRequest, resp *pmwiki.SearchResponse) userdata.SearchEntry {
	return userdata.SearchEntry{
		Query:               resp.Query,
		PrimarySourcesCount: len(resp.PrimarySources),
		Standards:           req.Standards,
		Answer:              resp.Answer,
		PrimarySources:      toSnapshots(resp.PrimarySources),
		AdditionalContext:   toSnapshots(resp.AdditionalContext),
	}
}

func entryToResponse(entry userdata.SearchEntry) pmwiki.SearchResponse {
	return pmwiki.SearchResponse{
		Query:             entry.Query,
		Answer:            entry.Answer,
		PrimarySources:    fromSnapshots(entry.PrimarySources),
		AdditionalContext: fromSnapshots(entry.AdditionalContext),
	}
}

func toSnapshots(refs []pmwiki.SourceReference) []userdata.SourceSnapshot {
	if refs == nil {
		return nil
	}
	snapshots := make([]userdata.SourceSnapshot, len(refs))
	for i, ref := range refs {
		snapshots[i] = userdata.SourceSnapshot{
			ID:             ref.SectionID,
			Standard:       ref.Standard,
			SectionNumber:  ref.SectionNumber,
			SectionTitle:   ref.SectionTitle,
			PageStart:      ref.PageStart,
			PageEnd:        ref.PageEnd,
			Content:        ref.Content,
			Citation:       ref.Citation,
			RelevanceScore: ref.RelevanceScore,
		}
	}
	return snapshots
}

func fromSnapshots(snapshots []userdata.SourceSnapshot) []pmwiki.SourceReference {
	if snapshots == nil {
		return nil
	}
	refs := make([]pmwiki.SourceReference, len(snapshots))
	for i, s := range snapshots {
		refs[i] = pmwiki.SourceReference{
			SectionID:      s.ID,
			Standard:       s.Standard,
			SectionNumber:  s.SectionNumber,
			SectionTitle:   s.SectionTitle,
			PageStart:      s.PageStart,
			PageEnd:        s.PageEnd,
			Content:        s.Content,
			Citation:       s.Citation,
			RelevanceScore: s.RelevanceScore,
		}
	}
	return refs
}
