package services

import "context"

// ObjectStorage is the blob-store boundary. The underlying store offers no
// native rename or copy, only whole-object reads and writes, so higher
// layers emulate relocation with download+upload(+delete).
type ObjectStorage interface {
	// Download reads the whole object into memory and returns its bytes
	// and stored content type. Fails loudly on a missing object.
	Download(ctx context.Context, key string) ([]byte, string, error)

	// Upload writes an object, overwriting any existing one at key. The
	// content type must be passed explicitly or it is lost.
	Upload(ctx context.Context, key string, data []byte, contentType string) error

	// Remove bulk-deletes objects by key.
	Remove(ctx context.Context, keys []string) error
}
