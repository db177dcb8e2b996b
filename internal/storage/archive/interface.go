// Package archive persists backtest results to local disk or S3-compatible storage.
package archive

import "context"

// Storage is a flat key/blob store. Paths are slash-separated and relative.
type Storage interface {
	// Write stores data at path, replacing any existing object
	Write(ctx context.Context, path string, data []byte) error

	// Read retrieves the data at path
	Read(ctx context.Context, path string) ([]byte, error)

	// List returns the sorted paths under prefix
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes the data at path
	Delete(ctx context.Context, path string) error

	// Exists reports whether path holds data
	Exists(ctx context.Context, path string) (bool, error)
}
