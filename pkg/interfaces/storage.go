package interfaces

import (
	"context"
	"io"
)

// ObjectInfo describes a stored file. Key is relative to the bucket.
type ObjectInfo struct {
	Key  string
	Size int64
}

// ObjectStore abstracts the bucket holding uploaded files.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	Delete(ctx context.Context, keys ...string) error
	Bucket() string
}
