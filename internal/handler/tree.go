package handler

import (
	"log/slog"
	"net/http"

	"docvault/internal/httputil"
	"docvault/internal/service/docsystem"
)

// TreeHandler serves the full folder tree in one response
type TreeHandler struct {
	tree   *docsystem.TreeService
	logger *slog.Logger
}

// NewTreeHandler creates a new tree handler
func NewTreeHandler(tree *docsystem.TreeService, logger *slog.Logger) *TreeHandler {
	return &TreeHandler{
		tree:   tree,
		logger: logger,
	}
}

// GetTree returns every folder as a nested forest
// GET /api/tree
func (h *TreeHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	roots, err := h.tree.GetTree(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"tree": roots,
	})
}
