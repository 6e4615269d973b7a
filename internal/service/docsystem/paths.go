package docsystem

import "strings"

// joinPath joins virtual path segments with "/", skipping empty parts so
// root-level paths never pick up leading slashes.
func joinPath(parts ...string) string {
	var nonEmpty []string
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, "/")
}

// storageKey builds the blob key for a file: root/<folder path>/<name>.
func storageKey(root, folderPath, name string) string {
	return joinPath(root, folderPath, name)
}

// reprefix rewrites a storage key from one subtree prefix to another,
// preserving the key's relative sub-path. Returns false when the key does
// not actually live under oldPrefix.
func reprefix(key, oldPrefix, newPrefix string) (string, bool) {
	if key == oldPrefix {
		return newPrefix, true
	}
	if strings.HasPrefix(key, oldPrefix+"/") {
		return newPrefix + strings.TrimPrefix(key, oldPrefix), true
	}
	return "", false
}
