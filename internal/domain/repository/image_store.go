package repository

import (
	"context"
	"io"
)

// ImageStore persists uploaded image objects and returns a public reference.
type ImageStore interface {
	Save(ctx context.Context, key, contentType string, r io.Reader) (string, error)
	// Delete removes the object behind a reference previously returned by Save.
	Delete(ctx context.Context, ref string) error
}
