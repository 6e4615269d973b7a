package services

import (
	"context"

	"docvault/internal/domain/models"
)

// Mutation actions accepted by the orchestrator.
const (
	ActionDelete = "delete"
	ActionMove   = "move"
	ActionCopy   = "copy"
	ActionRename = "rename"
)

// MutationTarget names exactly one file or folder. A payload with neither
// (or both) identifiers is an input error rejected before any store I/O.
type MutationTarget struct {
	FileID   *string `json:"file_id"`
	FolderID *string `json:"folder_id"`
}

// MutationRequest is the uniform request shape for delete/move/copy/rename.
// TargetPath is the destination virtual path for move and copy; NewName is
// the replacement name for rename.
type MutationRequest struct {
	Action     string         `json:"action"`
	SourcePath string         `json:"source_path"`
	TargetPath string         `json:"target_path"`
	NewName    string         `json:"new_name"`
	Target     MutationTarget `json:"target"`
}

// MutationResult reports what a mutation touched, audit-style: for deletes
// the entry describes the item as it was before removal.
type MutationResult struct {
	Entries []models.Entry `json:"entries"`
}

// PathResolver maps between virtual paths and folder identifiers.
type PathResolver interface {
	// ResolvePath walks a slash-delimited path segment by segment. An empty
	// (or all-slash) path resolves to the root sentinel (nil, nil); an
	// unresolvable segment yields domain.ErrNotFound.
	ResolvePath(ctx context.Context, path string) (*string, error)

	// BuildFolderPath is the inverse walk: parent pointers up to a root.
	// A nil id is the root and yields "".
	BuildFolderPath(ctx context.Context, id *string) (string, error)
}

// Mutator sequences the cross-store mutations of the archive tree.
type Mutator interface {
	Apply(ctx context.Context, req *MutationRequest) (*MutationResult, error)
	CreateFolder(ctx context.Context, req *CreateFolderRequest) (*models.Folder, error)
}

// CreateFolderRequest creates a folder under the folder at Path ("" = root).
type CreateFolderRequest struct {
	Name      string  `json:"name"`
	Path      string  `json:"path"`
	CreatedBy *string `json:"-"`
}

// Lister builds directory views and filtered searches.
type Lister interface {
	ListDirectory(ctx context.Context, virtualPath string) (*models.DirectoryListing, error)
	FilterFiles(ctx context.Context, pathPrefix, pattern string) ([]models.Entry, error)
}

// UploadRequest carries one raw upload into the archive.
type UploadRequest struct {
	FolderID    *string
	Name        string
	Data        []byte
	ContentType string
	Tags        models.TagList
	UploadedBy  *string
}

// UploadResult is the persisted file plus a non-fatal warning when the
// best-effort embedding step failed.
type UploadResult struct {
	File             *models.File `json:"file"`
	EmbeddingWarning string       `json:"embedding_warning,omitempty"`
}

// Uploader accepts raw uploads and triggers embedding generation.
type Uploader interface {
	Upload(ctx context.Context, req *UploadRequest) (*UploadResult, error)
}
