package handler

import (
	"log/slog"
	"net/http"

	"docvault/internal/domain/services"
	"docvault/internal/httputil"
)

// FolderHandler handles folder HTTP requests
type FolderHandler struct {
	mutator services.Mutator
	logger  *slog.Logger
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(mutator services.Mutator, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{
		mutator: mutator,
		logger:  logger,
	}
}

// CreateFolder creates a new folder under the folder at the given path
// POST /api/folders
// Returns 201 if created, 409 if a sibling with the same name exists
func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req services.CreateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if user := httputil.GetUser(r); user != nil {
		req.CreatedBy = &user.ID
	}

	folder, err := h.mutator.CreateFolder(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, folder)
}
