package handler

import (
	"log/slog"
	"net/http"

	"docvault/internal/domain/services"
	"docvault/internal/httputil"
)

// MutationHandler exposes the uniform mutation endpoint for delete, move,
// copy and rename of files and folders.
type MutationHandler struct {
	mutator services.Mutator
	logger  *slog.Logger
}

// NewMutationHandler creates a new mutation handler
func NewMutationHandler(mutator services.Mutator, logger *slog.Logger) *MutationHandler {
	return &MutationHandler{
		mutator: mutator,
		logger:  logger,
	}
}

// Apply runs one mutation against the archive
// POST /api/mutations
func (h *MutationHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var req services.MutationRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.mutator.Apply(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}
