package handler

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"docvault/internal/domain/models"
	"docvault/internal/domain/repositories"
	"docvault/internal/domain/services"
	"docvault/internal/httputil"
)

// maxUploadBytes caps multipart uploads at 100MB.
const maxUploadBytes = 100 << 20

// FileHandler handles file upload, download and search requests
type FileHandler struct {
	uploader services.Uploader
	lister   services.Lister
	resolver services.PathResolver
	fileRepo repositories.FileRepository
	store    services.ObjectStorage
	logger   *slog.Logger
}

// NewFileHandler creates a new file handler
func NewFileHandler(
	uploader services.Uploader,
	lister services.Lister,
	resolver services.PathResolver,
	fileRepo repositories.FileRepository,
	store services.ObjectStorage,
	logger *slog.Logger,
) *FileHandler {
	return &FileHandler{
		uploader: uploader,
		lister:   lister,
		resolver: resolver,
		fileRepo: fileRepo,
		store:    store,
		logger:   logger,
	}
}

// Upload accepts a multipart upload and stores it under the folder at "path".
// Form fields: file (required), path, tags (comma separated or JSON array).
// POST /api/files
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	folderID, err := h.resolver.ResolvePath(r.Context(), r.FormValue("path"))
	if err != nil {
		handleError(w, err)
		return
	}

	req := &services.UploadRequest{
		FolderID:    folderID,
		Name:        header.Filename,
		Data:        data,
		ContentType: header.Header.Get("Content-Type"),
		Tags:        models.ParseTags(r.FormValue("tags")),
	}
	if user := httputil.GetUser(r); user != nil {
		req.UploadedBy = &user.ID
	}

	result, err := h.uploader.Upload(r.Context(), req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, result)
}

// Download streams a stored file back to the client
// GET /api/files/{id}/download
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "file ID is required")
		return
	}

	file, err := h.fileRepo.GetByID(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	data, contentType, err := h.store.Download(r.Context(), file.StoragePath)
	if err != nil {
		h.logger.Error("blob missing for file row", "file_id", id, "key", file.StoragePath, "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "stored object unavailable")
		return
	}

	if contentType == "" {
		contentType = file.ContentType
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Search filters files by name pattern under a path prefix
// GET /api/files/search?path=projects&pattern=exam*
func (h *FileHandler) Search(w http.ResponseWriter, r *http.Request) {
	pattern := strings.TrimSpace(r.URL.Query().Get("pattern"))
	if pattern == "" {
		httputil.RespondError(w, http.StatusBadRequest, "pattern is required")
		return
	}

	entries, err := h.lister.FilterFiles(r.Context(), r.URL.Query().Get("path"), pattern)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
	})
}
