package repositories

import (
	"context"

	"docvault/internal/domain/models"
)

// FileRepository is the metadata-store boundary for file rows.
type FileRepository interface {
	// Create inserts a file row and fills in its generated identifier.
	Create(ctx context.Context, file *models.File) error

	// GetByID fetches a single file, domain.ErrNotFound if absent.
	GetByID(ctx context.Context, id string) (*models.File, error)

	// Update rewrites the mutable columns (folder, name, storage path,
	// updated_at) by identifier.
	Update(ctx context.Context, file *models.File) error

	// Delete removes a single file row.
	Delete(ctx context.Context, id string) error

	// DeleteByFolderIDs bulk-removes every file row owned by any of the
	// given folders.
	DeleteByFolderIDs(ctx context.Context, folderIDs []string) error

	// ListByFolder lists direct children of a folder, nil for root level.
	ListByFolder(ctx context.Context, folderID *string) ([]models.File, error)

	// ListByFolderIDs is the batched "folder_id in (ids)" fetch. Large id
	// lists are chunked so parameter lists stay bounded.
	ListByFolderIDs(ctx context.Context, folderIDs []string) ([]models.File, error)

	// Filter matches files whose name matches the SQL pattern
	// case-insensitively and whose storage path starts with pathPrefix.
	Filter(ctx context.Context, pathPrefix, namePattern string) ([]models.File, error)

	// UpdateEmbedding writes the embedding vector onto an existing row.
	UpdateEmbedding(ctx context.Context, id string, embedding []float32) error

	// NearestByEmbedding returns up to limit files ordered by vector
	// distance to the query embedding, skipping rows without a vector.
	NearestByEmbedding(ctx context.Context, embedding []float32, limit int) ([]models.File, error)
}
