package docsystem

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"docvault/internal/domain"
	"docvault/internal/domain/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mkFolder inserts a folder under the given parent and returns it.
func mkFolder(t *testing.T, repo *fakeFolderRepo, name string, parentID *string) *models.Folder {
	t.Helper()
	f := &models.Folder{Name: name, ParentID: parentID}
	if err := repo.Create(context.Background(), f); err != nil {
		t.Fatalf("create folder %q: %v", name, err)
	}
	return f
}

func TestResolvePath(t *testing.T) {
	repo := newFakeFolderRepo()
	resolver := NewPathResolver(repo, testLogger())
	ctx := context.Background()

	projects := mkFolder(t, repo, "projects", nil)
	y2026 := mkFolder(t, repo, "2026", &projects.ID)
	reports := mkFolder(t, repo, "reports", &y2026.ID)

	tests := []struct {
		name    string
		path    string
		wantID  *string
		wantErr error
	}{
		{name: "empty path is root", path: "", wantID: nil},
		{name: "bare slash is root", path: "/", wantID: nil},
		{name: "single segment", path: "projects", wantID: &projects.ID},
		{name: "nested path", path: "projects/2026/reports", wantID: &reports.ID},
		{name: "surrounding slashes stripped", path: "/projects/2026/", wantID: &y2026.ID},
		{name: "unknown segment", path: "projects/2027", wantErr: domain.ErrNotFound},
		{name: "unknown root segment", path: "missing", wantErr: domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolver.ResolvePath(ctx, tt.path)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ResolvePath(%q) error = %v, want %v", tt.path, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolvePath(%q) unexpected error: %v", tt.path, err)
			}
			if tt.wantID == nil {
				if got != nil {
					t.Fatalf("ResolvePath(%q) = %v, want root sentinel", tt.path, *got)
				}
				return
			}
			if got == nil || *got != *tt.wantID {
				t.Fatalf("ResolvePath(%q) = %v, want %v", tt.path, got, *tt.wantID)
			}
		})
	}
}

func TestBuildFolderPath(t *testing.T) {
	repo := newFakeFolderRepo()
	resolver := NewPathResolver(repo, testLogger())
	ctx := context.Background()

	projects := mkFolder(t, repo, "projects", nil)
	y2026 := mkFolder(t, repo, "2026", &projects.ID)
	reports := mkFolder(t, repo, "reports", &y2026.ID)

	path, err := resolver.BuildFolderPath(ctx, &reports.ID)
	if err != nil {
		t.Fatalf("BuildFolderPath: %v", err)
	}
	if path != "projects/2026/reports" {
		t.Errorf("BuildFolderPath = %q, want %q", path, "projects/2026/reports")
	}

	// nil id is the root
	root, err := resolver.BuildFolderPath(ctx, nil)
	if err != nil {
		t.Fatalf("BuildFolderPath(nil): %v", err)
	}
	if root != "" {
		t.Errorf("BuildFolderPath(nil) = %q, want empty", root)
	}
}

// Resolution and construction are inverses for every real folder.
func TestPathRoundTrip(t *testing.T) {
	repo := newFakeFolderRepo()
	resolver := NewPathResolver(repo, testLogger())
	ctx := context.Background()

	a := mkFolder(t, repo, "a", nil)
	b := mkFolder(t, repo, "b", &a.ID)
	c := mkFolder(t, repo, "c", &b.ID)

	for _, folder := range []*models.Folder{a, b, c} {
		path, err := resolver.BuildFolderPath(ctx, &folder.ID)
		if err != nil {
			t.Fatalf("BuildFolderPath(%s): %v", folder.ID, err)
		}
		got, err := resolver.ResolvePath(ctx, path)
		if err != nil {
			t.Fatalf("ResolvePath(%q): %v", path, err)
		}
		if got == nil || *got != folder.ID {
			t.Errorf("round trip for %q: got %v, want %s", path, got, folder.ID)
		}
	}
}

func TestBuildFolderPathDanglingParent(t *testing.T) {
	repo := newFakeFolderRepo()
	resolver := NewPathResolver(repo, testLogger())
	ctx := context.Background()

	missing := "folder-gone"
	orphan := mkFolder(t, repo, "orphan", &missing)

	// The walk stops at the dangling pointer and returns what it has.
	path, err := resolver.BuildFolderPath(ctx, &orphan.ID)
	if err != nil {
		t.Fatalf("BuildFolderPath: %v", err)
	}
	if path != "orphan" {
		t.Errorf("BuildFolderPath = %q, want %q", path, "orphan")
	}
}

func TestBuildFolderPathCycle(t *testing.T) {
	repo := newFakeFolderRepo()
	resolver := NewPathResolver(repo, testLogger())
	ctx := context.Background()

	a := mkFolder(t, repo, "a", nil)
	b := mkFolder(t, repo, "b", &a.ID)

	// Corrupt the graph: a's parent becomes b.
	a.ParentID = &b.ID
	if err := repo.Update(ctx, a); err != nil {
		t.Fatalf("update: %v", err)
	}

	// Must terminate, not hang.
	if _, err := resolver.BuildFolderPath(ctx, &b.ID); err != nil {
		t.Fatalf("BuildFolderPath on cyclic graph: %v", err)
	}
}
