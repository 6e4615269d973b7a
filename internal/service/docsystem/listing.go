package docsystem

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"docvault/internal/domain/models"
	"docvault/internal/domain/repositories"
	"docvault/internal/domain/services"
	"docvault/internal/filetypes"
)

type listingService struct {
	folderRepo repositories.FolderRepository
	fileRepo   repositories.FileRepository
	paths      services.PathResolver
	registry   *filetypes.Registry
	root       string
	logger     *slog.Logger
}

// NewListingService creates the directory-listing and filtered-search
// adapter.
func NewListingService(
	folderRepo repositories.FolderRepository,
	fileRepo repositories.FileRepository,
	paths services.PathResolver,
	registry *filetypes.Registry,
	root string,
	logger *slog.Logger,
) services.Lister {
	return &listingService{
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
		paths:      paths,
		registry:   registry,
		root:       root,
		logger:     logger,
	}
}

// ListDirectory resolves the virtual path and merges direct child folders
// and files into typed entries. The two child fetches are independent reads
// and run in parallel.
func (s *listingService) ListDirectory(ctx context.Context, virtualPath string) (*models.DirectoryListing, error) {
	folderID, err := s.paths.ResolvePath(ctx, virtualPath)
	if err != nil {
		return nil, err
	}

	var current *models.Folder
	dirPath := ""
	if folderID != nil {
		current, err = s.folderRepo.GetByID(ctx, *folderID)
		if err != nil {
			return nil, err
		}
		dirPath, err = s.paths.BuildFolderPath(ctx, folderID)
		if err != nil {
			return nil, err
		}
		current.Path = dirPath
	}

	var childFolders []models.Folder
	var childFiles []models.File

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		childFolders, err = s.folderRepo.ListChildren(gctx, folderID)
		return err
	})
	g.Go(func() error {
		var err error
		childFiles, err = s.fileRepo.ListByFolder(gctx, folderID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("list directory %q: %w", virtualPath, err)
	}

	folderIDs := make([]string, 0, len(childFolders))
	for _, f := range childFolders {
		folderIDs = append(folderIDs, f.ID)
	}
	hasKids, err := s.folderRepo.HasChildren(ctx, folderIDs)
	if err != nil {
		return nil, err
	}

	entries := make([]models.Entry, 0, len(childFolders)+len(childFiles))
	for _, f := range childFolders {
		entries = append(entries, models.Entry{
			ID:          f.ID,
			Name:        f.Name,
			IsFile:      false,
			Path:        joinPath(dirPath, f.Name),
			HasChildren: hasKids[f.ID],
			Type:        models.EntryTypeFolder,
			CreatedAt:   f.CreatedAt,
			UpdatedAt:   f.UpdatedAt,
		})
	}
	for _, f := range childFiles {
		entries = append(entries, s.fileEntry(&f, joinPath(dirPath, f.Name)))
	}

	return &models.DirectoryListing{
		Current: current,
		Entries: entries,
	}, nil
}

// FilterFiles matches files by a glob-like pattern (* wildcard), case
// insensitively, restricted to files whose storage path sits under the
// given virtual path prefix.
func (s *listingService) FilterFiles(ctx context.Context, pathPrefix, pattern string) ([]models.Entry, error) {
	keyPrefix := joinPath(s.root, strings.Trim(pathPrefix, "/")) + "/"

	files, err := s.fileRepo.Filter(ctx, keyPrefix, globToSQL(pattern))
	if err != nil {
		return nil, err
	}

	entries := make([]models.Entry, 0, len(files))
	for _, f := range files {
		// display path: the storage key with the fixed root stripped
		virtual := strings.TrimPrefix(f.StoragePath, s.root+"/")
		entries = append(entries, s.fileEntry(&f, virtual))
	}

	return entries, nil
}

func (s *listingService) fileEntry(f *models.File, path string) models.Entry {
	ext := filetypes.Extension(f.Name)
	entryType := ext
	if entryType == "" {
		entryType = models.EntryTypeGeneric
	}
	return models.Entry{
		ID:        f.ID,
		Name:      f.Name,
		IsFile:    true,
		Size:      f.Size,
		Path:      path,
		Type:      entryType,
		TypeLabel: s.registry.Label(ext),
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// globToSQL translates a glob-like pattern into SQL LIKE syntax: literal
// %, _ and \ are escaped, * becomes %.
func globToSQL(pattern string) string {
	var b strings.Builder
	for _, r := range pattern {
		switch r {
		case '*':
			b.WriteRune('%')
		case '%', '_', '\\':
			b.WriteRune('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
