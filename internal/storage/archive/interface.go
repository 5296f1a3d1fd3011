// Package archive persists completed backtest results as JSON documents on a
// local filesystem or an S3-compatible bucket.
package archive

import "context"

// Storage is a flat key/value blob store addressed by slash-separated paths
type Storage interface {
	// Write stores data at the given path, replacing any previous content
	Write(ctx context.Context, path string, data []byte) error

	// Read returns the data stored at path, or an error wrapping fs.ErrNotExist
	Read(ctx context.Context, path string) ([]byte, error)

	// List returns all paths under the prefix
	List(ctx context.Context, prefix string) ([]string, error)

	Delete(ctx context.Context, path string) error
	Exists(ctx context.Context, path string) (bool, error)
}
