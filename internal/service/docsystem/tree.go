package docsystem

import (
	"context"
	"log/slog"

	"docvault/internal/domain/models"
	"docvault/internal/domain/repositories"
)

// TreeNode is one folder in the nested tree view.
type TreeNode struct {
	Folder   models.Folder `json:"folder"`
	Children []*TreeNode   `json:"children"`
}

// TreeService builds the full folder forest for sidebar rendering.
type TreeService struct {
	folderRepo repositories.FolderRepository
	logger     *slog.Logger
}

// NewTreeService creates a tree service.
func NewTreeService(folderRepo repositories.FolderRepository, logger *slog.Logger) *TreeService {
	return &TreeService{
		folderRepo: folderRepo,
		logger:     logger,
	}
}

// GetTree fetches every folder in one query and assembles the forest in
// memory. Folders whose parent is missing are attached at the root and
// logged as an integrity anomaly.
func (s *TreeService) GetTree(ctx context.Context) ([]*TreeNode, error) {
	folders, err := s.folderRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	nodes := make(map[string]*TreeNode, len(folders))
	for i := range folders {
		nodes[folders[i].ID] = &TreeNode{Folder: folders[i]}
	}

	var roots []*TreeNode
	for _, folder := range folders {
		node := nodes[folder.ID]
		if folder.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := nodes[*folder.ParentID]
		if !ok {
			s.logger.Warn("folder with missing parent attached at root",
				"folder_id", folder.ID,
				"parent_id", *folder.ParentID,
			)
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}

	return roots, nil
}
