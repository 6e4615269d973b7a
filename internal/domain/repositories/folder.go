package repositories

import (
	"context"

	"docvault/internal/domain/models"
)

// FolderRepository is the metadata-store boundary for folder rows.
type FolderRepository interface {
	// Create inserts a folder and fills in its generated identifier.
	Create(ctx context.Context, folder *models.Folder) error

	// GetByID fetches a single folder, domain.ErrNotFound if absent.
	GetByID(ctx context.Context, id string) (*models.Folder, error)

	// GetByNameAndParent finds a folder by (name, parent) equality, where a
	// nil parent is the distinct "parent is null" predicate. Returns
	// (nil, nil) when no folder matches - absence is not an error here
	// because path resolution treats it as a normal outcome.
	GetByNameAndParent(ctx context.Context, name string, parentID *string) (*models.Folder, error)

	// Update rewrites name, parent pointer and updated_at by identifier.
	Update(ctx context.Context, folder *models.Folder) error

	// Delete removes a single folder row.
	Delete(ctx context.Context, id string) error

	// DeleteByIDs bulk-removes folder rows by identifier-set membership.
	DeleteByIDs(ctx context.Context, ids []string) error

	// ListChildren lists direct child folders, nil parentID for root level.
	ListChildren(ctx context.Context, parentID *string) ([]models.Folder, error)

	// DescendantIDs returns the descendant closure of rootID: every folder
	// whose ancestor chain includes rootID, excluding rootID itself. The
	// traversal must terminate on a corrupt cyclic graph.
	DescendantIDs(ctx context.Context, rootID string) ([]string, error)

	// Descendants is the same closure with full records, for subtree
	// duplication which needs names and parent pointers to recreate.
	Descendants(ctx context.Context, rootID string) ([]models.Folder, error)

	// HasChildren reports, for each given folder id, whether any child
	// folder or file exists under it.
	HasChildren(ctx context.Context, ids []string) (map[string]bool, error)

	// ListAll returns every folder, for building the full tree view.
	ListAll(ctx context.Context) ([]models.Folder, error)
}
