package handlers

import (
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"pmwiki-gateway/infrastructure/pmwiki"
	"pmwiki-gateway/pkg/common"
	"pmwiki-gateway/pkg/utils"
)

// SectionHandler proxies standards content: comparisons, process
// generation, and section lookups.
type SectionHandler struct {
	upstream *pmwiki.Client
	logger   *zap.Logger
}

// NewSectionHandler creates a new section handler
func NewSectionHandler(upstream *pmwiki.Client, logger *zap.Logger) *SectionHandler {
	return &SectionHandler{upstream: upstream, logger: logger}
}

// Compare handles GET /api/v1/compare/{topic}
func (h *SectionHandler) Compare(w http.ResponseWriter, r *http.Request) {
	topic := strings.TrimSpace(chi.URLParam(r, "topic"))
	if len(topic) < 2 {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "topic must be at least 2 characters")
		return
	}

	resp, err := h.upstream.Compare(r.Context(), topic)
	if err != nil {
		h.logger.Error("comparison failed", zap.String("topic", topic), zap.Error(err))
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, resp)
}

// GenerateProcess handles POST /api/v1/generate-process
func (h *SectionHandler) GenerateProcess(w http.ResponseWriter, r *http.Request) {
	var req pmwiki.ProcessGenerationRequest
	if err := common.ParseJSONBody(r, &req, maxRequestBody); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	resp, err := h.upstream.GenerateProcess(r.Context(), req)
	if err != nil {
		h.logger.Error("process generation failed", zap.String("projectType", req.ProjectType), zap.Error(err))
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, resp)
}

// Get handles GET /api/v1/sections/{sectionID}
func (h *SectionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sectionID := chi.URLParam(r, "sectionID")

	resp, err := h.upstream.Section(r.Context(), sectionID)
	if err != nil {
		h.logger.Error("section lookup failed", zap.String("sectionID", sectionID), zap.Error(err))
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, resp)
}

// ListByStandard handles GET /api/v1/standards/{standard}/sections
func (h *SectionHandler) ListByStandard(w http.ResponseWriter, r *http.Request) {
	standard := strings.ToUpper(chi.URLParam(r, "standard"))
	if !knownStandards[standard] {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "unknown standard: "+standard)
		return
	}

	resp, err := h.upstream.ListSections(r.Context(), standard)
	if err != nil {
		h.logger.Error("section listing failed", zap.String("standard", standard), zap.Error(err))
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, resp)
}

// Standards handles GET /api/v1/standards
func (h *SectionHandler) Standards(w http.ResponseWriter, r *http.Request) {
	standards := make([]string, 0, len(knownStandards))
	for std := range knownStandards {
		standards = append(standards, std)
	}
	sort.Strings(standards)
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{"standards": standards})
}
