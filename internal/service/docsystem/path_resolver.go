package docsystem

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"docvault/internal/domain"
	"docvault/internal/domain/repositories"
	"docvault/internal/domain/services"
)

type pathService struct {
	folderRepo repositories.FolderRepository
	logger     *slog.Logger
}

// NewPathResolver creates the resolver that maps virtual paths to folder
// identifiers and back.
func NewPathResolver(folderRepo repositories.FolderRepository, logger *slog.Logger) services.PathResolver {
	return &pathService{
		folderRepo: folderRepo,
		logger:     logger,
	}
}

// ResolvePath walks a slash-delimited virtual path segment by segment. An
// empty path (after stripping slashes) is the root sentinel (nil, nil). An
// unresolvable segment yields domain.ErrNotFound, which callers distinguish
// from transport errors.
func (s *pathService) ResolvePath(ctx context.Context, path string) (*string, error) {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil, nil
	}

	var currentParentID *string
	for _, segment := range strings.Split(path, "/") {
		folder, err := s.folderRepo.GetByNameAndParent(ctx, segment, currentParentID)
		if err != nil {
			return nil, fmt.Errorf("resolve segment %q: %w", segment, err)
		}
		if folder == nil {
			return nil, fmt.Errorf("path %q: %w", path, domain.ErrNotFound)
		}
		currentParentID = &folder.ID
	}

	return currentParentID, nil
}

// BuildFolderPath reconstructs a folder's full virtual path by walking
// parent pointers to the root. A nil id is the root and yields "". A
// dangling parent pointer stops the walk and returns what was accumulated -
// surfaced as a logged anomaly, not a crash. A visited set guards against
// corrupt cyclic graphs.
func (s *pathService) BuildFolderPath(ctx context.Context, id *string) (string, error) {
	if id == nil {
		return "", nil
	}

	var segments []string
	visited := make(map[string]bool)
	currentID := *id

	for {
		if visited[currentID] {
			s.logger.Warn("cycle detected in folder parent chain", "folder_id", currentID)
			break
		}
		visited[currentID] = true

		folder, err := s.folderRepo.GetByID(ctx, currentID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				s.logger.Warn("dangling parent pointer in folder chain", "folder_id", currentID)
				break
			}
			return "", fmt.Errorf("build folder path: %w", err)
		}

		segments = append([]string{folder.Name}, segments...)
		if folder.ParentID == nil {
			break
		}
		currentID = *folder.ParentID
	}

	return strings.Join(segments, "/"), nil
}
