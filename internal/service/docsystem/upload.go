package docsystem

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"docvault/internal/domain"
	"docvault/internal/domain/models"
	"docvault/internal/domain/repositories"
	"docvault/internal/domain/services"
)

type uploadService struct {
	folderRepo repositories.FolderRepository
	fileRepo   repositories.FileRepository
	store      services.ObjectStorage
	embedder   services.Embedder
	paths      services.PathResolver
	root       string
	logger     *slog.Logger
}

// NewUploadService creates the upload pipeline: blob write, metadata
// insert, best-effort embedding.
func NewUploadService(
	folderRepo repositories.FolderRepository,
	fileRepo repositories.FileRepository,
	store services.ObjectStorage,
	embedder services.Embedder,
	paths services.PathResolver,
	root string,
	logger *slog.Logger,
) services.Uploader {
	return &uploadService{
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
		store:      store,
		embedder:   embedder,
		paths:      paths,
		root:       root,
		logger:     logger,
	}
}

// Upload writes the blob into the target folder's path, inserts the file
// row, then requests an embedding for filename+tags and writes it back.
// Blob-write and metadata-insert failures are fatal; embedding failure is a
// non-fatal warning and never undoes the upload. A failed metadata insert
// does not roll the blob back - an accepted orphan.
func (s *uploadService) Upload(ctx context.Context, req *services.UploadRequest) (*services.UploadResult, error) {
	if err := validateFileName(req.Name); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if req.FolderID != nil {
		if _, err := s.folderRepo.GetByID(ctx, *req.FolderID); err != nil {
			return nil, err
		}
	}

	folderPath, err := s.paths.BuildFolderPath(ctx, req.FolderID)
	if err != nil {
		return nil, err
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := storageKey(s.root, folderPath, req.Name)
	if err := s.store.Upload(ctx, key, req.Data, contentType); err != nil {
		return nil, fmt.Errorf("upload blob: %w", err)
	}

	now := time.Now()
	file := &models.File{
		FolderID:    req.FolderID,
		Name:        req.Name,
		StoragePath: key,
		ContentType: contentType,
		Size:        int64(len(req.Data)),
		Tags:        req.Tags,
		UploadedBy:  req.UploadedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.fileRepo.Create(ctx, file); err != nil {
		return nil, err
	}

	file.Path = joinPath(folderPath, file.Name)

	s.logger.Info("file uploaded",
		"id", file.ID,
		"name", file.Name,
		"key", key,
		"size", file.Size,
	)

	result := &services.UploadResult{File: file}
	if warning := s.embedFile(ctx, file); warning != "" {
		result.EmbeddingWarning = warning
	}

	return result, nil
}

// embedFile is the best-effort secondary step: embed filename+tags and
// write the vector onto the just-created row. Returns a warning message on
// failure instead of an error.
func (s *uploadService) embedFile(ctx context.Context, file *models.File) string {
	text := strings.Join(append([]string{file.Name}, file.Tags...), " ")

	vectors, err := s.embedder.Embed(ctx, []string{text})
	if err != nil || len(vectors) == 0 {
		s.logger.Warn("embedding generation failed", "file_id", file.ID, "error", err)
		return "embedding generation failed; file stored without semantic index"
	}

	if err := s.fileRepo.UpdateEmbedding(ctx, file.ID, vectors[0]); err != nil {
		s.logger.Warn("embedding write failed", "file_id", file.ID, "error", err)
		return "embedding write failed; file stored without semantic index"
	}

	return ""
}
