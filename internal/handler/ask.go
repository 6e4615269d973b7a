package handler

import (
	"log/slog"
	"net/http"

	"docvault/internal/httputil"
	"docvault/internal/service/search"
)

// AskHandler serves semantic question answering over the archive
type AskHandler struct {
	search *search.Service
	logger *slog.Logger
}

// NewAskHandler creates a new ask handler
func NewAskHandler(search *search.Service, logger *slog.Logger) *AskHandler {
	return &AskHandler{
		search: search,
		logger: logger,
	}
}

type askRequest struct {
	Question string `json:"question"`
}

// Ask answers a natural-language question using the most relevant documents
// POST /api/ask
func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	answer, err := h.search.Ask(r.Context(), req.Question)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, answer)
}
