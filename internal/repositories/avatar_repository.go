package repositories

import (
	"context"
	"io"
)

// AvatarRepository stores one PNG blob per user in an external object store.
type AvatarRepository interface {
	// Exists reports whether the user has an avatar. Callers on read-only
	// enrichment paths may treat the error as non-fatal.
	Exists(ctx context.Context, userID uint) (bool, error)
	// Upload stores the blob, overwriting any existing avatar. The stored
	// content type is always image/png regardless of what was declared.
	Upload(ctx context.Context, userID uint, r io.Reader, size int64) error
	// Download returns a reader over the blob. The caller closes it.
	Download(ctx context.Context, userID uint) (io.ReadCloser, error)
	Delete(ctx context.Context, userID uint) error
}
