// Package storage defines the interface for uploaded-file storage.
// Swap implementations by changing the concrete type injected at startup —
// the filesystem backend is the default, the MinIO backend works with any
// S3-compatible provider.
package storage

import (
	"context"
	"io"
	"time"
)

// Storage is the interface for storing and retrieving uploaded files.
// Files are addressed by base filename, directly under the root location.
type Storage interface {
	// Init ensures the root location exists. Safe to call repeatedly.
	Init(ctx context.Context) error
	// Store writes content under name, replacing any file of the same name.
	Store(ctx context.Context, name string, content io.Reader) error
	// LoadAll lists the direct children of the root location.
	LoadAll(ctx context.Context) (*Listing, error)
	// Resolve joins the root location and name. It does not check containment.
	Resolve(name string) string
	// LoadAsResource returns a readable handle for name or an error matching ErrFileNotFound.
	LoadAsResource(ctx context.Context, name string) (*Resource, error)
	// DeleteAll removes the root location and everything under it.
	DeleteAll(ctx context.Context) error
}

// Resource is a readable stored file.
type Resource struct {
	Filename string
	Size     int64
	ModTime  time.Time

	open func() (io.ReadSeekCloser, error)
}

// Open returns a fresh reader positioned at the start of the file.
// The caller must close it.
func (r *Resource) Open() (io.ReadSeekCloser, error) {
	return r.open()
}
