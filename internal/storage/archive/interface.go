package archive

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Read when nothing is stored at the path.
var ErrNotFound = errors.New("archive: object not found")

// Storage is a flat object store for cached bar histories.
type Storage interface {
	// Write stores data at the given path, replacing any previous object
	Write(ctx context.Context, path string, data []byte) error

	// Read retrieves data from the given path. Missing objects yield ErrNotFound.
	Read(ctx context.Context, path string) ([]byte, error)

	// List returns all paths matching the prefix
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes the data at the given path
	Delete(ctx context.Context, path string) error

	// Exists checks if data exists at the given path
	Exists(ctx context.Context, path string) (bool, error)
}

// Backend kinds accepted by Open.
const (
	KindLocalFS = "localfs"
	KindS3      = "s3"
)

// Open builds the storage backend named by kind.
func Open(kind, path string, s3cfg S3Config) (Storage, error) {
	switch kind {
	case KindLocalFS, "":
		return NewLocalFS(path)
	case KindS3:
		return NewS3(s3cfg)
	default:
		return nil, fmt.Errorf("unknown archive type: %s", kind)
	}
}
