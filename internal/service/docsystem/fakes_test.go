package docsystem

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"docvault/internal/domain"
	"docvault/internal/domain/models"
)

// In-memory stand-ins for the metadata and blob stores. They implement only
// what the services exercise and fail loudly on unknown identifiers.

type fakeFolderRepo struct {
	mu      sync.Mutex
	folders map[string]*models.Folder
	seq     int
}

func newFakeFolderRepo() *fakeFolderRepo {
	return &fakeFolderRepo{folders: make(map[string]*models.Folder)}
}

func (r *fakeFolderRepo) Create(ctx context.Context, folder *models.Folder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	folder.ID = fmt.Sprintf("folder-%d", r.seq)
	stored := *folder
	r.folders[folder.ID] = &stored
	return nil
}

func (r *fakeFolderRepo) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.folders[id]
	if !ok {
		return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	copied := *f
	return &copied, nil
}

func (r *fakeFolderRepo) GetByNameAndParent(ctx context.Context, name string, parentID *string) (*models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.folders {
		if f.Name != name {
			continue
		}
		if sameID(f.ParentID, parentID) {
			copied := *f
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeFolderRepo) Update(ctx context.Context, folder *models.Folder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.folders[folder.ID]; !ok {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
	}
	stored := *folder
	r.folders[folder.ID] = &stored
	return nil
}

func (r *fakeFolderRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.folders, id)
	return nil
}

func (r *fakeFolderRepo) DeleteByIDs(ctx context.Context, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		delete(r.folders, id)
	}
	return nil
}

func (r *fakeFolderRepo) ListChildren(ctx context.Context, parentID *string) ([]models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Folder
	for _, f := range r.folders {
		if sameID(f.ParentID, parentID) {
			out = append(out, *f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeFolderRepo) DescendantIDs(ctx context.Context, rootID string) ([]string, error) {
	folders, err := r.Descendants(ctx, rootID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(folders))
	for _, f := range folders {
		ids = append(ids, f.ID)
	}
	return ids, nil
}

func (r *fakeFolderRepo) Descendants(ctx context.Context, rootID string) ([]models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Folder
	frontier := []string{rootID}
	seen := map[string]bool{rootID: true}
	for len(frontier) > 0 {
		var next []string
		for _, f := range r.folders {
			if f.ParentID == nil || seen[f.ID] {
				continue
			}
			for _, p := range frontier {
				if *f.ParentID == p {
					seen[f.ID] = true
					out = append(out, *f)
					next = append(next, f.ID)
					break
				}
			}
		}
		frontier = next
	}
	return out, nil
}

func (r *fakeFolderRepo) HasChildren(ctx context.Context, ids []string) (map[string]bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		for _, f := range r.folders {
			if f.ParentID != nil && *f.ParentID == id {
				out[id] = true
				break
			}
		}
	}
	return out, nil
}

func (r *fakeFolderRepo) ListAll(ctx context.Context) ([]models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Folder, 0, len(r.folders))
	for _, f := range r.folders {
		out = append(out, *f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeFolderRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.folders)
}

type fakeFileRepo struct {
	mu         sync.Mutex
	files      map[string]*models.File
	embeddings map[string][]float32
	seq        int
}

func newFakeFileRepo() *fakeFileRepo {
	return &fakeFileRepo{
		files:      make(map[string]*models.File),
		embeddings: make(map[string][]float32),
	}
}

func (r *fakeFileRepo) Create(ctx context.Context, file *models.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	file.ID = fmt.Sprintf("file-%d", r.seq)
	stored := *file
	r.files[file.ID] = &stored
	return nil
}

func (r *fakeFileRepo) GetByID(ctx context.Context, id string) (*models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.files[id]
	if !ok {
		return nil, fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}
	copied := *f
	return &copied, nil
}

func (r *fakeFileRepo) Update(ctx context.Context, file *models.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.files[file.ID]; !ok {
		return fmt.Errorf("file %s: %w", file.ID, domain.ErrNotFound)
	}
	stored := *file
	r.files[file.ID] = &stored
	return nil
}

func (r *fakeFileRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.files, id)
	return nil
}

func (r *fakeFileRepo) DeleteByFolderIDs(ctx context.Context, folderIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, f := range r.files {
		if f.FolderID == nil {
			continue
		}
		for _, fid := range folderIDs {
			if *f.FolderID == fid {
				delete(r.files, id)
				break
			}
		}
	}
	return nil
}

func (r *fakeFileRepo) ListByFolder(ctx context.Context, folderID *string) ([]models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.File
	for _, f := range r.files {
		if sameID(f.FolderID, folderID) {
			out = append(out, *f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeFileRepo) ListByFolderIDs(ctx context.Context, folderIDs []string) ([]models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.File
	for _, f := range r.files {
		if f.FolderID == nil {
			continue
		}
		for _, fid := range folderIDs {
			if *f.FolderID == fid {
				out = append(out, *f)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeFileRepo) Filter(ctx context.Context, pathPrefix, namePattern string) ([]models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.File
	for _, f := range r.files {
		if !strings.HasPrefix(f.StoragePath, pathPrefix) {
			continue
		}
		if matchSQLPattern(namePattern, f.Name) {
			out = append(out, *f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeFileRepo) UpdateEmbedding(ctx context.Context, id string, embedding []float32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.files[id]; !ok {
		return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}
	r.embeddings[id] = embedding
	return nil
}

func (r *fakeFileRepo) NearestByEmbedding(ctx context.Context, embedding []float32, limit int) ([]models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.File
	for id := range r.embeddings {
		if f, ok := r.files[id]; ok {
			out = append(out, *f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeFileRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.files)
}

// matchSQLPattern interprets a LIKE pattern (% wildcard, \ escape) case
// insensitively, enough for the patterns globToSQL emits.
func matchSQLPattern(pattern, name string) bool {
	p := strings.ToLower(pattern)
	n := strings.ToLower(name)

	var parts []string
	var cur strings.Builder
	escaped := false
	for _, r := range p {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == '%':
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	parts = append(parts, cur.String())

	if !strings.HasPrefix(n, parts[0]) {
		return false
	}
	n = n[len(parts[0]):]
	for _, part := range parts[1 : len(parts)-1] {
		idx := strings.Index(n, part)
		if idx < 0 {
			return false
		}
		n = n[idx+len(part):]
	}
	if len(parts) > 1 {
		return strings.HasSuffix(n, parts[len(parts)-1])
	}
	return n == ""
}

type storedObject struct {
	data        []byte
	contentType string
}

type fakeStore struct {
	mu             sync.Mutex
	objects        map[string]storedObject
	removeCalls    [][]string
	failRemove     bool
	failUpload     bool
	failUploadKeys map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string]storedObject)}
}

func (s *fakeStore) Download(ctx context.Context, key string) ([]byte, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[key]
	if !ok {
		return nil, "", fmt.Errorf("object %q not found", key)
	}
	return append([]byte(nil), obj.data...), obj.contentType, nil
}

func (s *fakeStore) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failUpload || s.failUploadKeys[key] {
		return fmt.Errorf("upload %q: forced failure", key)
	}
	s.objects[key] = storedObject{data: append([]byte(nil), data...), contentType: contentType}
	return nil
}

func (s *fakeStore) Remove(ctx context.Context, keys []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeCalls = append(s.removeCalls, append([]string(nil), keys...))
	if s.failRemove {
		return fmt.Errorf("remove: forced failure")
	}
	for _, k := range keys {
		delete(s.objects, k)
	}
	return nil
}

// failUploadAt makes every upload to the given key fail.
func (s *fakeStore) failUploadAt(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failUploadKeys == nil {
		s.failUploadKeys = make(map[string]bool)
	}
	s.failUploadKeys[key] = true
}

func (s *fakeStore) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

type fakeEmbedder struct {
	fail  bool
	calls int
}

func (e *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	e.calls++
	if e.fail {
		return nil, fmt.Errorf("embedding provider unavailable")
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.1, 0.2, 0.3}
	}
	return out, nil
}

func sameID(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
