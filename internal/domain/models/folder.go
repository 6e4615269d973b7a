package models

import "time"

// Folder is a node in the folder forest. ParentID == nil means the folder
// sits at the root level. The parent-pointer graph is expected to be a
// forest; nothing in the schema enforces acyclicity, so traversals guard
// against cycles themselves.
type Folder struct {
	ID        string    `json:"id"`
	ParentID  *string   `json:"parent_id"`
	Name      string    `json:"name"`
	Path      string    `json:"path,omitempty"` // computed virtual path, not stored
	CreatedBy *string   `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
