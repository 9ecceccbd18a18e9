package storage

import (
	"context"
	"io"
)

// ObjectReader is the stream returned when reading an object.
type ObjectReader interface {
	io.Reader
	io.Closer
}

// ObjectStat describes a stored object.
type ObjectStat struct {
	SizeBytes   int64
	ETag        string
	ContentType string
}

// ObjectInfo is one entry emitted while listing a bucket prefix.
type ObjectInfo struct {
	Key       string
	SizeBytes int64
	Err       error
}

// ObjectStorage abstracts the S3-compatible backend used for snapshot
// archives so services and tests do not depend on a concrete client.
type ObjectStorage interface {
	// PutObject uploads an object. sizeBytes may be -1 when unknown.
	PutObject(ctx context.Context, bucket, objectKey string, reader io.Reader, sizeBytes int64, contentType string) error

	// GetObject opens an object for reading. The caller must close it.
	GetObject(ctx context.Context, bucket, objectKey string) (ObjectReader, error)

	// StatObject returns metadata without fetching the body.
	StatObject(ctx context.Context, bucket, objectKey string) (ObjectStat, error)

	// ListObjects streams all objects under prefix.
	ListObjects(ctx context.Context, bucket, prefix string) <-chan ObjectInfo

	// RemoveObjects deletes the given keys, stopping at the first failure.
	RemoveObjects(ctx context.Context, bucket string, keys []string) error
}
