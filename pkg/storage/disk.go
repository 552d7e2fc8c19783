// Package storage stores uploaded files (product images) on a named disk.
//
// Two drivers are available:
//   - "local": the local filesystem, served back under /storage
//   - "s3":    S3-compatible object storage (AWS S3, MinIO, R2, Spaces)
//
//	m, _ := storage.FromConfig(ctx)
//	err := m.Default().Put(ctx, "product-images/shirts/a.jpg", file, storage.PutOptions{ContentType: "image/jpeg"})
//	url := m.Default().URL("product-images/shirts/a.jpg")
package storage

import (
	"context"
	"errors"
	"io"
	"strings"
)

// ErrNotFound is returned by Get for a missing object.
var ErrNotFound = errors.New("storage: object not found")

// PutOptions carries object metadata for drivers that store it.
type PutOptions struct {
	ContentType  string
	CacheControl string
}

// Disk is the filesystem driver interface.
type Disk interface {
	// Put writes r to path, creating parent directories as needed.
	Put(ctx context.Context, path string, r io.Reader, opts PutOptions) error

	// Get opens the object at path. The caller must close it.
	Get(ctx context.Context, path string) (io.ReadCloser, error)

	// Exists reports whether an object exists at path.
	Exists(ctx context.Context, path string) (bool, error)

	// Delete removes an object. Deleting a missing object is not an error.
	Delete(ctx context.Context, path string) error

	// URL returns the public URL for path.
	URL(path string) string
}

// KeyFromURL recovers an object key from a public URL. The key starts at
// the first path segment equal to segment, e.g. with segment
// "product-images":
//
//	https://cdn.example/product-images/shirts/a.jpg -> product-images/shirts/a.jpg
func KeyFromURL(url, segment string) (string, bool) {
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}
	marker := "/" + segment + "/"
	idx := strings.Index(url, marker)
	if idx < 0 {
		return "", false
	}
	key := url[idx+1:]
	if key == segment+"/" {
		return "", false
	}
	return key, true
}
