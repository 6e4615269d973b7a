package handler

import (
	"log/slog"
	"net/http"

	"docvault/internal/domain/services"
	"docvault/internal/httputil"
)

// BrowseHandler serves directory listings of the archive tree
type BrowseHandler struct {
	lister services.Lister
	logger *slog.Logger
}

// NewBrowseHandler creates a new browse handler
func NewBrowseHandler(lister services.Lister, logger *slog.Logger) *BrowseHandler {
	return &BrowseHandler{
		lister: lister,
		logger: logger,
	}
}

// Browse lists the folder at the given virtual path ("" or "/" for root)
// GET /api/browse?path=projects/2026
func (h *BrowseHandler) Browse(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")

	listing, err := h.lister.ListDirectory(r.Context(), path)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, listing)
}
