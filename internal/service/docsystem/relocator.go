package docsystem

import (
	"context"
	"fmt"
	"log/slog"

	"docvault/internal/domain/services"
)

// Relocator emulates move and copy of single objects on a blob store that
// has no native rename or copy primitive.
type Relocator struct {
	store  services.ObjectStorage
	logger *slog.Logger
}

// NewRelocator creates a relocator over the given object storage.
func NewRelocator(store services.ObjectStorage, logger *slog.Logger) *Relocator {
	return &Relocator{
		store:  store,
		logger: logger,
	}
}

// Relocate moves an object: download fully into memory, re-upload at toKey
// preserving the content type, then delete fromKey. Download and upload
// failures are fatal - the caller must not touch metadata after one. A
// failed source delete leaves the object at both keys; the new key is valid
// at that point, so the failure is logged rather than propagated. Equal
// keys are a no-op: re-upload followed by delete of the same key would
// destroy the only copy.
func (r *Relocator) Relocate(ctx context.Context, fromKey, toKey string) error {
	if fromKey == toKey {
		return nil
	}

	if err := r.copy(ctx, fromKey, toKey); err != nil {
		return err
	}

	if err := r.store.Remove(ctx, []string{fromKey}); err != nil {
		r.logger.Error("relocate: source delete failed, object exists at both keys",
			"from", fromKey,
			"to", toKey,
			"error", err,
		)
	}

	return nil
}

// Duplicate copies an object: download and re-upload, no delete.
func (r *Relocator) Duplicate(ctx context.Context, fromKey, toKey string) error {
	return r.copy(ctx, fromKey, toKey)
}

func (r *Relocator) copy(ctx context.Context, fromKey, toKey string) error {
	data, contentType, err := r.store.Download(ctx, fromKey)
	if err != nil {
		return fmt.Errorf("download %q: %w", fromKey, err)
	}

	if err := r.store.Upload(ctx, toKey, data, contentType); err != nil {
		return fmt.Errorf("upload %q: %w", toKey, err)
	}

	return nil
}
