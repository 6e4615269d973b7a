package docsystem

import (
	"context"
	"errors"
	"testing"

	"docvault/internal/domain"
	"docvault/internal/domain/models"
	"docvault/internal/domain/services"
	"docvault/internal/filetypes"
)

func newListingEnv(t *testing.T) (*mutationEnv, services.Lister) {
	t.Helper()
	env := newMutationEnv(t, 1000)
	registry, err := filetypes.NewRegistry()
	if err != nil {
		t.Fatalf("load registry: %v", err)
	}
	lister := NewListingService(env.folderRepo, env.fileRepo, env.resolver, registry, testRoot, testLogger())
	return env, lister
}

func TestListDirectoryRoot(t *testing.T) {
	env, lister := newListingEnv(t)
	ctx := context.Background()

	projects := mkFolder(t, env.folderRepo, "projects", nil)
	mkFolder(t, env.folderRepo, "inner", &projects.ID)
	mkFolder(t, env.folderRepo, "archive", nil)
	env.mkFile(t, "readme.md", "", nil)

	listing, err := lister.ListDirectory(ctx, "")
	if err != nil {
		t.Fatalf("ListDirectory: %v", err)
	}

	if listing.Current != nil {
		t.Errorf("root listing Current = %+v, want nil", listing.Current)
	}
	if len(listing.Entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(listing.Entries))
	}

	byName := make(map[string]models.Entry)
	for _, e := range listing.Entries {
		byName[e.Name] = e
	}

	if e := byName["projects"]; e.IsFile || !e.HasChildren || e.Type != models.EntryTypeFolder {
		t.Errorf("projects entry = %+v", e)
	}
	if e := byName["archive"]; e.IsFile || e.HasChildren {
		t.Errorf("archive entry = %+v", e)
	}
	if e := byName["readme.md"]; !e.IsFile || e.Type != "md" || e.TypeLabel != "Markdown" {
		t.Errorf("readme.md entry = %+v", e)
	}
}

func TestListDirectoryNested(t *testing.T) {
	env, lister := newListingEnv(t)
	ctx := context.Background()

	projects := mkFolder(t, env.folderRepo, "projects", nil)
	y2026 := mkFolder(t, env.folderRepo, "2026", &projects.ID)
	env.mkFile(t, "plan.pdf", "projects/2026", &y2026.ID)

	listing, err := lister.ListDirectory(ctx, "projects/2026")
	if err != nil {
		t.Fatalf("ListDirectory: %v", err)
	}

	if listing.Current == nil || listing.Current.ID != y2026.ID {
		t.Fatalf("Current = %+v, want folder %s", listing.Current, y2026.ID)
	}
	if listing.Current.Path != "projects/2026" {
		t.Errorf("Current.Path = %q, want projects/2026", listing.Current.Path)
	}
	if len(listing.Entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(listing.Entries))
	}
	e := listing.Entries[0]
	if e.Path != "projects/2026/plan.pdf" {
		t.Errorf("entry path = %q, want projects/2026/plan.pdf", e.Path)
	}
	if e.TypeLabel != "PDF Document" {
		t.Errorf("TypeLabel = %q, want PDF Document", e.TypeLabel)
	}
}

func TestListDirectoryUnknownPath(t *testing.T) {
	_, lister := newListingEnv(t)

	_, err := lister.ListDirectory(context.Background(), "no/such/folder")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestFilterFiles(t *testing.T) {
	env, lister := newListingEnv(t)
	ctx := context.Background()

	projects := mkFolder(t, env.folderRepo, "projects", nil)
	archive := mkFolder(t, env.folderRepo, "archive", nil)
	env.mkFile(t, "exam-2025.pdf", "projects", &projects.ID)
	env.mkFile(t, "exam-2026.pdf", "projects", &projects.ID)
	env.mkFile(t, "notes.txt", "projects", &projects.ID)
	env.mkFile(t, "exam-old.pdf", "archive", &archive.ID)

	entries, err := lister.FilterFiles(ctx, "projects", "exam*")
	if err != nil {
		t.Fatalf("FilterFiles: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	for _, e := range entries {
		if !e.IsFile {
			t.Errorf("entry %q not a file", e.Name)
		}
		if e.Path != "projects/"+e.Name {
			t.Errorf("entry path = %q, want projects/%s", e.Path, e.Name)
		}
	}
}

func TestFilterFilesCaseInsensitive(t *testing.T) {
	env, lister := newListingEnv(t)
	ctx := context.Background()

	docs := mkFolder(t, env.folderRepo, "docs", nil)
	env.mkFile(t, "README.md", "docs", &docs.ID)

	entries, err := lister.FilterFiles(ctx, "docs", "readme*")
	if err != nil {
		t.Fatalf("FilterFiles: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "README.md" {
		t.Errorf("entries = %+v, want README.md", entries)
	}
}
