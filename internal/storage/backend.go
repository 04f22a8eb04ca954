// Package storage defines the Backend interface for reading source images
// and writing translated pages, and routes locations to backends by URI scheme.
package storage

import (
	"context"
)

// Backend is the interface for page storage backends.
// Implementations handle whole-object I/O (local filesystem, S3).
type Backend interface {
	// ReadObject returns the full content stored at key.
	ReadObject(ctx context.Context, key string) ([]byte, error)

	// WriteObject stores data at key, creating or replacing it.
	WriteObject(ctx context.Context, key string, data []byte) error

	// Type returns the backend type identifier ("local", "s3").
	Type() string

	// Close releases any resources held by the backend.
	Close() error
}
