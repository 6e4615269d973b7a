package docsystem

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"docvault/internal/domain"
	"docvault/internal/domain/models"
	"docvault/internal/domain/repositories"
	"docvault/internal/domain/services"
	"docvault/internal/filetypes"
)

// mutationService sequences the cross-store mutations of the archive tree:
// resolve path(s) -> read source state -> compute new state -> mutate blob
// store -> mutate metadata store. There is no transaction spanning the two
// stores; a crash mid-sequence leaves them transiently inconsistent until
// the next corrective operation.
type mutationService struct {
	folderRepo repositories.FolderRepository
	fileRepo   repositories.FileRepository
	store      services.ObjectStorage
	relocator  *Relocator
	paths      services.PathResolver
	root       string
	chunkSize  int
	logger     *slog.Logger
}

// NewMutationService creates the mutation orchestrator.
func NewMutationService(
	folderRepo repositories.FolderRepository,
	fileRepo repositories.FileRepository,
	store services.ObjectStorage,
	relocator *Relocator,
	paths services.PathResolver,
	root string,
	chunkSize int,
	logger *slog.Logger,
) services.Mutator {
	return &mutationService{
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
		store:      store,
		relocator:  relocator,
		paths:      paths,
		root:       root,
		chunkSize:  chunkSize,
		logger:     logger,
	}
}

// Apply validates and dispatches a mutation request. Malformed payloads are
// rejected before any store I/O.
func (s *mutationService) Apply(ctx context.Context, req *services.MutationRequest) (*services.MutationResult, error) {
	if err := validateMutationRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	// Normalize empty-string identifiers to absent.
	if req.Target.FileID != nil && *req.Target.FileID == "" {
		req.Target.FileID = nil
	}
	if req.Target.FolderID != nil && *req.Target.FolderID == "" {
		req.Target.FolderID = nil
	}

	switch req.Action {
	case services.ActionDelete:
		if req.Target.FileID != nil {
			return s.deleteFile(ctx, *req.Target.FileID)
		}
		return s.deleteFolder(ctx, *req.Target.FolderID)

	case services.ActionMove:
		if req.Target.FileID != nil {
			return s.moveFile(ctx, *req.Target.FileID, req.TargetPath)
		}
		return s.moveFolder(ctx, *req.Target.FolderID, req.TargetPath)

	case services.ActionCopy:
		if req.Target.FileID != nil {
			return s.copyFile(ctx, *req.Target.FileID, req.TargetPath)
		}
		return s.copyFolder(ctx, *req.Target.FolderID, req.TargetPath)

	case services.ActionRename:
		if req.Target.FileID != nil {
			return s.renameFile(ctx, *req.Target.FileID, req.NewName)
		}
		return s.renameFolder(ctx, *req.Target.FolderID, req.NewName)
	}

	// unreachable after validation
	return nil, fmt.Errorf("%w: unknown action %q", domain.ErrValidation, req.Action)
}

// CreateFolder inserts a folder row under the folder resolved from
// req.Path. Folders have no blob representation, so no store I/O happens.
// Duplicate sibling names are rejected so path-segment resolution stays
// unambiguous.
func (s *mutationService) CreateFolder(ctx context.Context, req *services.CreateFolderRequest) (*models.Folder, error) {
	if err := validateFolderName(req.Name); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	parentID, err := s.paths.ResolvePath(ctx, req.Path)
	if err != nil {
		return nil, err
	}

	if err := s.rejectDuplicateSibling(ctx, req.Name, parentID, ""); err != nil {
		return nil, err
	}

	now := time.Now()
	folder := &models.Folder{
		ParentID:  parentID,
		Name:      req.Name,
		CreatedBy: req.CreatedBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.folderRepo.Create(ctx, folder); err != nil {
		return nil, err
	}

	folder.Path = joinPath(req.Path, folder.Name)

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"parent_id", folder.ParentID,
		"path", folder.Path,
	)

	return folder, nil
}

// deleteFile removes a single file: blob first, then the metadata row. A
// blob-delete failure aborts before the metadata delete - an orphaned blob
// is invisible to listing, an orphaned row would point at nothing.
func (s *mutationService) deleteFile(ctx context.Context, fileID string) (*services.MutationResult, error) {
	file, err := s.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}

	if err := s.store.Remove(ctx, []string{file.StoragePath}); err != nil {
		return nil, fmt.Errorf("delete blob %q: %w", file.StoragePath, err)
	}

	if err := s.fileRepo.Delete(ctx, fileID); err != nil {
		return nil, err
	}

	s.logger.Info("file deleted", "id", fileID, "name", file.Name, "key", file.StoragePath)

	return deletionResult(file.Name, true, file.Size, false), nil
}

// deleteFolder removes a whole subtree: resolve the descendant closure,
// delete every blob under it in chunks, then bulk-delete file and folder
// rows. A chunk failure aborts the whole delete; there is no partial-delete
// retry.
func (s *mutationService) deleteFolder(ctx context.Context, folderID string) (*services.MutationResult, error) {
	folder, err := s.folderRepo.GetByID(ctx, folderID)
	if err != nil {
		return nil, err
	}

	descendantIDs, err := s.folderRepo.DescendantIDs(ctx, folderID)
	if err != nil {
		return nil, err
	}
	allIDs := append([]string{folderID}, descendantIDs...)

	files, err := s.fileRepo.ListByFolderIDs(ctx, allIDs)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(files))
	for _, f := range files {
		if f.StoragePath != "" {
			keys = append(keys, f.StoragePath)
		}
	}

	for start := 0; start < len(keys); start += s.chunkSize {
		end := start + s.chunkSize
		if end > len(keys) {
			end = len(keys)
		}
		if err := s.store.Remove(ctx, keys[start:end]); err != nil {
			return nil, fmt.Errorf("delete blobs: %w", err)
		}
	}

	if err := s.fileRepo.DeleteByFolderIDs(ctx, allIDs); err != nil {
		return nil, err
	}
	if err := s.folderRepo.DeleteByIDs(ctx, allIDs); err != nil {
		return nil, err
	}

	s.logger.Info("folder deleted",
		"id", folderID,
		"name", folder.Name,
		"descendant_folders", len(descendantIDs),
		"files", len(files),
	)

	hadChildren := len(descendantIDs) > 0 || len(files) > 0
	return deletionResult(folder.Name, false, 0, hadChildren), nil
}

// moveFile relocates one file's blob to the target folder and rewrites its
// metadata row. A failure between relocation and the metadata update leaves
// the stores inconsistent - accepted, no two-phase commit exists across
// them.
func (s *mutationService) moveFile(ctx context.Context, fileID, targetPath string) (*services.MutationResult, error) {
	file, err := s.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}

	targetFolderID, err := s.paths.ResolvePath(ctx, targetPath)
	if err != nil {
		return nil, err
	}

	targetFolderPath, err := s.paths.BuildFolderPath(ctx, targetFolderID)
	if err != nil {
		return nil, err
	}

	newKey := storageKey(s.root, targetFolderPath, file.Name)
	if err := s.relocator.Relocate(ctx, file.StoragePath, newKey); err != nil {
		return nil, err
	}

	file.FolderID = targetFolderID
	file.StoragePath = newKey
	file.UpdatedAt = time.Now()
	if err := s.fileRepo.Update(ctx, file); err != nil {
		return nil, err
	}

	s.logger.Info("file moved", "id", fileID, "name", file.Name, "key", newKey)

	return s.fileResult(file, targetFolderPath), nil
}

// moveFolder reparents a folder and relocates every file in its subtree.
// The parent pointer is flipped before any file moves: readers racing this
// operation see the folder in its new tree position while some files still
// report old paths. Per-file failures are logged and do not roll back or
// stop earlier relocations; any failure makes the whole operation report a
// generic error.
func (s *mutationService) moveFolder(ctx context.Context, folderID, targetPath string) (*services.MutationResult, error) {
	newParentID, err := s.paths.ResolvePath(ctx, targetPath)
	if err != nil {
		return nil, err
	}

	folder, err := s.folderRepo.GetByID(ctx, folderID)
	if err != nil {
		return nil, err
	}

	// Same no-new-ambiguity rule as CreateFolder.
	if err := s.rejectDuplicateSibling(ctx, folder.Name, newParentID, folderID); err != nil {
		return nil, err
	}

	oldPath, err := s.paths.BuildFolderPath(ctx, &folderID)
	if err != nil {
		return nil, err
	}
	parentPath, err := s.paths.BuildFolderPath(ctx, newParentID)
	if err != nil {
		return nil, err
	}
	// A move reparents; it never renames.
	newPath := joinPath(parentPath, folder.Name)

	descendantIDs, err := s.folderRepo.DescendantIDs(ctx, folderID)
	if err != nil {
		return nil, err
	}

	if err := s.guardAgainstCycle(folderID, newParentID, descendantIDs); err != nil {
		return nil, err
	}

	allIDs := append([]string{folderID}, descendantIDs...)
	files, err := s.fileRepo.ListByFolderIDs(ctx, allIDs)
	if err != nil {
		return nil, err
	}

	folder.ParentID = newParentID
	folder.UpdatedAt = time.Now()
	if err := s.folderRepo.Update(ctx, folder); err != nil {
		return nil, err
	}

	oldPrefix := joinPath(s.root, oldPath)
	newPrefix := joinPath(s.root, newPath)
	if failed := s.relocateSubtreeFiles(ctx, files, oldPrefix, newPrefix); failed > 0 {
		return nil, fmt.Errorf("folder move: %d of %d files failed to relocate", failed, len(files))
	}

	s.logger.Info("folder moved",
		"id", folderID,
		"name", folder.Name,
		"from", oldPath,
		"to", newPath,
		"files", len(files),
	)

	return s.folderResult(folder, newPath, len(descendantIDs) > 0 || len(files) > 0), nil
}

// copyFile duplicates one file's blob into the target folder and inserts a
// fresh metadata row; type, size, tags and uploader carry over unchanged.
func (s *mutationService) copyFile(ctx context.Context, fileID, targetPath string) (*services.MutationResult, error) {
	file, err := s.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}

	targetFolderID, err := s.paths.ResolvePath(ctx, targetPath)
	if err != nil {
		return nil, err
	}

	targetFolderPath, err := s.paths.BuildFolderPath(ctx, targetFolderID)
	if err != nil {
		return nil, err
	}

	newKey := storageKey(s.root, targetFolderPath, file.Name)
	if err := s.relocator.Duplicate(ctx, file.StoragePath, newKey); err != nil {
		return nil, err
	}

	now := time.Now()
	copied := &models.File{
		FolderID:    targetFolderID,
		Name:        file.Name,
		StoragePath: newKey,
		ContentType: file.ContentType,
		Size:        file.Size,
		Tags:        file.Tags,
		UploadedBy:  file.UploadedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.fileRepo.Create(ctx, copied); err != nil {
		return nil, err
	}

	s.logger.Info("file copied", "source_id", fileID, "copy_id", copied.ID, "key", newKey)

	return s.fileResult(copied, targetFolderPath), nil
}

// copyFolder duplicates a whole subtree under the resolved destination.
// Source folders are created parents-before-children so every new row's
// parent identifier is already known, tracked through an old-id to new-id
// mapping. Source files missing a path or filename are skipped silently.
func (s *mutationService) copyFolder(ctx context.Context, folderID, targetPath string) (*services.MutationResult, error) {
	destParentID, err := s.paths.ResolvePath(ctx, targetPath)
	if err != nil {
		return nil, err
	}

	source, err := s.folderRepo.GetByID(ctx, folderID)
	if err != nil {
		return nil, err
	}

	descendants, err := s.folderRepo.Descendants(ctx, folderID)
	if err != nil {
		return nil, err
	}

	descendantIDs := make([]string, 0, len(descendants))
	for _, d := range descendants {
		descendantIDs = append(descendantIDs, d.ID)
	}
	if err := s.guardAgainstCycle(folderID, destParentID, descendantIDs); err != nil {
		return nil, err
	}
	if err := s.rejectDuplicateSibling(ctx, source.Name, destParentID, ""); err != nil {
		return nil, err
	}

	sourcePath, err := s.paths.BuildFolderPath(ctx, &folderID)
	if err != nil {
		return nil, err
	}
	destParentPath, err := s.paths.BuildFolderPath(ctx, destParentID)
	if err != nil {
		return nil, err
	}
	destPath := joinPath(destParentPath, source.Name)

	now := time.Now()
	newRoot := &models.Folder{
		ParentID:  destParentID,
		Name:      source.Name,
		CreatedBy: source.CreatedBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.folderRepo.Create(ctx, newRoot); err != nil {
		return nil, err
	}

	// Parents before children, so each folder's copied parent exists by the
	// time its own copy is created.
	sortByDepth(descendants, folderID)

	idMap := map[string]string{folderID: newRoot.ID}
	for _, desc := range descendants {
		if desc.ParentID == nil {
			continue
		}
		newParentID, ok := idMap[*desc.ParentID]
		if !ok {
			s.logger.Warn("descendant folder with unmapped parent skipped",
				"folder_id", desc.ID,
				"parent_id", *desc.ParentID,
			)
			continue
		}
		created := &models.Folder{
			ParentID:  &newParentID,
			Name:      desc.Name,
			CreatedBy: desc.CreatedBy,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.folderRepo.Create(ctx, created); err != nil {
			return nil, fmt.Errorf("copy folder %q: %w", desc.Name, err)
		}
		idMap[desc.ID] = created.ID
	}

	allIDs := append([]string{folderID}, descendantIDs...)
	files, err := s.fileRepo.ListByFolderIDs(ctx, allIDs)
	if err != nil {
		return nil, err
	}

	oldPrefix := joinPath(s.root, sourcePath)
	newPrefix := joinPath(s.root, destPath)

	var failed int
	for i := range files {
		f := &files[i]
		if f.StoragePath == "" || f.Name == "" {
			// data-quality tolerance, not a correctness guarantee
			continue
		}
		if f.FolderID == nil {
			continue
		}
		newFolderID, ok := idMap[*f.FolderID]
		if !ok {
			s.logger.Warn("file under unmapped folder skipped", "file_id", f.ID)
			continue
		}

		newKey, ok := reprefix(f.StoragePath, oldPrefix, newPrefix)
		if !ok {
			failed++
			s.logger.Error("file key outside source subtree prefix",
				"file_id", f.ID,
				"key", f.StoragePath,
				"prefix", oldPrefix,
			)
			continue
		}

		if err := s.relocator.Duplicate(ctx, f.StoragePath, newKey); err != nil {
			failed++
			s.logger.Error("duplicate blob failed", "file_id", f.ID, "key", f.StoragePath, "error", err)
			continue
		}

		copied := &models.File{
			FolderID:    &newFolderID,
			Name:        f.Name,
			StoragePath: newKey,
			ContentType: f.ContentType,
			Size:        f.Size,
			Tags:        f.Tags,
			UploadedBy:  f.UploadedBy,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.fileRepo.Create(ctx, copied); err != nil {
			failed++
			s.logger.Error("insert copied file failed", "file_id", f.ID, "error", err)
		}
	}

	if failed > 0 {
		return nil, fmt.Errorf("folder copy: %d of %d files failed", failed, len(files))
	}

	s.logger.Info("folder copied",
		"source_id", folderID,
		"copy_id", newRoot.ID,
		"folders", len(descendants)+1,
		"files", len(files),
	)

	return s.folderResult(newRoot, destPath, len(descendants) > 0 || len(files) > 0), nil
}

// renameFile relocates the blob within the same folder path under the new
// filename and rewrites the metadata row.
func (s *mutationService) renameFile(ctx context.Context, fileID, newName string) (*services.MutationResult, error) {
	if err := validateFileName(newName); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	file, err := s.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}

	folderPath, err := s.paths.BuildFolderPath(ctx, file.FolderID)
	if err != nil {
		return nil, err
	}

	newKey := storageKey(s.root, folderPath, newName)
	if err := s.relocator.Relocate(ctx, file.StoragePath, newKey); err != nil {
		return nil, err
	}

	file.Name = newName
	file.StoragePath = newKey
	file.UpdatedAt = time.Now()
	if err := s.fileRepo.Update(ctx, file); err != nil {
		return nil, err
	}

	s.logger.Info("file renamed", "id", fileID, "name", newName, "key", newKey)

	return s.fileResult(file, folderPath), nil
}

// renameFolder renames the folder row first, then rewrites every
// descendant file's storage prefix. Same partial-failure caveat as
// moveFolder.
func (s *mutationService) renameFolder(ctx context.Context, folderID, newName string) (*services.MutationResult, error) {
	if err := validateFolderName(newName); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	folder, err := s.folderRepo.GetByID(ctx, folderID)
	if err != nil {
		return nil, err
	}

	if err := s.rejectDuplicateSibling(ctx, newName, folder.ParentID, folderID); err != nil {
		return nil, err
	}

	parentPath, err := s.paths.BuildFolderPath(ctx, folder.ParentID)
	if err != nil {
		return nil, err
	}
	oldPath := joinPath(parentPath, folder.Name)
	newPath := joinPath(parentPath, newName)

	descendantIDs, err := s.folderRepo.DescendantIDs(ctx, folderID)
	if err != nil {
		return nil, err
	}
	allIDs := append([]string{folderID}, descendantIDs...)
	files, err := s.fileRepo.ListByFolderIDs(ctx, allIDs)
	if err != nil {
		return nil, err
	}

	folder.Name = newName
	folder.UpdatedAt = time.Now()
	if err := s.folderRepo.Update(ctx, folder); err != nil {
		return nil, err
	}

	oldPrefix := joinPath(s.root, oldPath)
	newPrefix := joinPath(s.root, newPath)
	if failed := s.relocateSubtreeFiles(ctx, files, oldPrefix, newPrefix); failed > 0 {
		return nil, fmt.Errorf("folder rename: %d of %d files failed to relocate", failed, len(files))
	}

	s.logger.Info("folder renamed",
		"id", folderID,
		"from", oldPath,
		"to", newPath,
		"files", len(files),
	)

	return s.folderResult(folder, newPath, len(descendantIDs) > 0 || len(files) > 0), nil
}

// relocateSubtreeFiles rewrites every file's storage key from oldPrefix to
// newPrefix, relocating blobs and updating rows one by one. Failures are
// logged per file and counted; earlier successes stay in their new state.
func (s *mutationService) relocateSubtreeFiles(ctx context.Context, files []models.File, oldPrefix, newPrefix string) int {
	var failed int
	for i := range files {
		f := &files[i]

		newKey, ok := reprefix(f.StoragePath, oldPrefix, newPrefix)
		if !ok {
			failed++
			s.logger.Error("file key outside subtree prefix",
				"file_id", f.ID,
				"key", f.StoragePath,
				"prefix", oldPrefix,
			)
			continue
		}

		if err := s.relocator.Relocate(ctx, f.StoragePath, newKey); err != nil {
			failed++
			s.logger.Error("relocate blob failed", "file_id", f.ID, "key", f.StoragePath, "error", err)
			continue
		}

		f.StoragePath = newKey
		f.UpdatedAt = time.Now()
		if err := s.fileRepo.Update(ctx, f); err != nil {
			failed++
			s.logger.Error("update file row failed", "file_id", f.ID, "error", err)
		}
	}
	return failed
}

// rejectDuplicateSibling enforces at most one folder per name under a
// parent, so path-segment resolution stays unambiguous. selfID exempts the
// folder being renamed or moved in place.
func (s *mutationService) rejectDuplicateSibling(ctx context.Context, name string, parentID *string, selfID string) error {
	existing, err := s.folderRepo.GetByNameAndParent(ctx, name, parentID)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != selfID {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("a folder named %q already exists in this location", name),
			ResourceType: "folder",
			ResourceID:   existing.ID,
		}
	}
	return nil
}

// guardAgainstCycle rejects moving or copying a folder into itself or its
// own subtree.
func (s *mutationService) guardAgainstCycle(folderID string, destID *string, descendantIDs []string) error {
	if destID == nil {
		return nil
	}
	if *destID == folderID {
		return fmt.Errorf("%w: cannot place a folder inside itself", domain.ErrValidation)
	}
	for _, id := range descendantIDs {
		if id == *destID {
			return fmt.Errorf("%w: cannot place a folder inside its own subtree", domain.ErrValidation)
		}
	}
	return nil
}

// sortByDepth orders folders parents-before-children by walking each
// folder's parent chain up to rootID within the fetched set.
func sortByDepth(folders []models.Folder, rootID string) {
	byID := make(map[string]*models.Folder, len(folders))
	for i := range folders {
		byID[folders[i].ID] = &folders[i]
	}

	depth := func(f *models.Folder) int {
		d := 0
		cur := f
		for cur.ParentID != nil && *cur.ParentID != rootID {
			next, ok := byID[*cur.ParentID]
			if !ok || d > len(folders) {
				break
			}
			cur = next
			d++
		}
		return d
	}

	depths := make(map[string]int, len(folders))
	for i := range folders {
		depths[folders[i].ID] = depth(&folders[i])
	}

	sort.SliceStable(folders, func(i, j int) bool {
		return depths[folders[i].ID] < depths[folders[j].ID]
	})
}

func (s *mutationService) fileResult(file *models.File, folderPath string) *services.MutationResult {
	ext := filetypes.Extension(file.Name)
	if ext == "" {
		ext = models.EntryTypeGeneric
	}
	return &services.MutationResult{
		Entries: []models.Entry{{
			ID:        file.ID,
			Name:      file.Name,
			IsFile:    true,
			Size:      file.Size,
			Path:      joinPath(folderPath, file.Name),
			Type:      ext,
			CreatedAt: file.CreatedAt,
			UpdatedAt: file.UpdatedAt,
		}},
	}
}

func (s *mutationService) folderResult(folder *models.Folder, path string, hasChildren bool) *services.MutationResult {
	return &services.MutationResult{
		Entries: []models.Entry{{
			ID:          folder.ID,
			Name:        folder.Name,
			IsFile:      false,
			Path:        path,
			HasChildren: hasChildren,
			Type:        models.EntryTypeFolder,
			CreatedAt:   folder.CreatedAt,
			UpdatedAt:   folder.UpdatedAt,
		}},
	}
}

// deletionResult reports the deleted item as it was before removal, with
// the deletion timestamp.
func deletionResult(name string, isFile bool, size int64, hadChildren bool) *services.MutationResult {
	entryType := models.EntryTypeFolder
	if isFile {
		entryType = filetypes.Extension(name)
		if entryType == "" {
			entryType = models.EntryTypeGeneric
		}
	}
	return &services.MutationResult{
		Entries: []models.Entry{{
			Name:        name,
			IsFile:      isFile,
			Size:        size,
			HasChildren: hadChildren,
			Type:        entryType,
			UpdatedAt:   time.Now(),
		}},
	}
}
