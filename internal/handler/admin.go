package handler

import (
	"log/slog"
	"net/http"

	"docvault/internal/httputil"
	"docvault/internal/service/accounts"
)

// AdminHandler handles user administration requests
type AdminHandler struct {
	accounts *accounts.Service
	logger   *slog.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(accounts *accounts.Service, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		accounts: accounts,
		logger:   logger,
	}
}

// ListUsers lists registered users, optionally only those pending approval
// GET /api/admin/users?pending=1
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	pendingOnly := r.URL.Query().Get("pending") == "1"

	users, err := h.accounts.List(r.Context(), pendingOnly)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"users": users,
	})
}

// ApproveUser marks a pending user as approved
// POST /api/admin/users/{id}/approve
func (h *AdminHandler) ApproveUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "user ID is required")
		return
	}

	user, err := h.accounts.Approve(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, user)
}

type setRoleRequest struct {
	Role string `json:"role"`
}

// SetRole changes a user's role
// POST /api/admin/users/{id}/role
func (h *AdminHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "user ID is required")
		return
	}

	var req setRoleRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.accounts.SetRole(r.Context(), id, req.Role)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, user)
}
