package models

import "time"

// EntryTypeFolder is the type label for folder entries. File entries carry
// the lowercase filename extension, or EntryTypeGeneric when the name has
// no extension.
const (
	EntryTypeFolder  = "Folder"
	EntryTypeGeneric = "File"
)

// Entry is a single row in a directory listing or mutation report: a folder
// or a file, discriminated by IsFile, annotated with a display type.
type Entry struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	IsFile      bool      `json:"is_file"`
	Size        int64     `json:"size"`
	Path        string    `json:"path"`
	HasChildren bool      `json:"has_children"`
	Type        string    `json:"type"`
	TypeLabel   string    `json:"type_label,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DirectoryListing is the browse response: the folder being listed (nil at
// root) plus its folder and file children merged into typed entries.
type DirectoryListing struct {
	Current *Folder `json:"current"`
	Entries []Entry `json:"entries"`
}
