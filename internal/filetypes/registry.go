package filetypes

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

// Registry maps filename extensions to human-readable type labels for
// directory listings.
type Registry struct {
	labels map[string]string
	mu     sync.RWMutex
}

type labelFile struct {
	Extensions []struct {
		Ext   string `yaml:"ext"`
		Label string `yaml:"label"`
	} `yaml:"extensions"`
}

// NewRegistry loads the embedded label file.
func NewRegistry() (*Registry, error) {
	data, err := configFiles.ReadFile("config/labels.yaml")
	if err != nil {
		return nil, fmt.Errorf("read labels.yaml: %w", err)
	}

	var file labelFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("unmarshal labels.yaml: %w", err)
	}

	r := &Registry{labels: make(map[string]string, len(file.Extensions))}
	for _, e := range file.Extensions {
		r.labels[strings.ToLower(e.Ext)] = e.Label
	}
	return r, nil
}

// Extension returns the lowercase extension after the last dot in name, or
// "" when the name has no extension.
func Extension(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx < 0 || idx == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[idx+1:])
}

// Label returns the display label for an extension, "Document" when the
// extension is unknown.
func (r *Registry) Label(ext string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if label, ok := r.labels[strings.ToLower(ext)]; ok {
		return label
	}
	return "Document"
}
