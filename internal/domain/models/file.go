package models

import (
	"encoding/json"
	"strings"
	"time"
)

// File is the metadata record for an archived document. The bytes live in
// the object store under StoragePath, which is always derivable as
// root/<folder path>/<name> and is the single source of truth for the
// blob location.
type File struct {
	ID          string    `json:"id"`
	FolderID    *string   `json:"folder_id"`
	Name        string    `json:"name"`
	StoragePath string    `json:"storage_path"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	Tags        TagList   `json:"tags"`
	Path        string    `json:"path,omitempty"` // computed virtual path, not stored
	UploadedBy  *string   `json:"uploaded_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TagList is the canonical list-of-strings representation of file tags.
// Older records stored tags as a single comma-joined string; both shapes
// are accepted on read and normalized here so nothing downstream branches
// on representation.
type TagList []string

// UnmarshalJSON accepts either a JSON array of strings or a legacy
// comma-joined string.
func (t *TagList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = normalizeTags(list)
		return nil
	}

	var joined string
	if err := json.Unmarshal(data, &joined); err != nil {
		return err
	}
	*t = ParseTags(joined)
	return nil
}

// ParseTags normalizes a raw stored tag value. The value is either a JSON
// array (current format) or a comma-joined string (legacy format).
func ParseTags(raw string) TagList {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err == nil {
		return normalizeTags(list)
	}
	return normalizeTags(strings.Split(raw, ","))
}

// Encode serializes the list to its stored JSON-array form.
func (t TagList) Encode() string {
	if len(t) == 0 {
		return ""
	}
	data, err := json.Marshal([]string(t))
	if err != nil {
		return ""
	}
	return string(data)
}

func normalizeTags(in []string) TagList {
	var out TagList
	for _, tag := range in {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			out = append(out, tag)
		}
	}
	return out
}
