package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"probrowse/internal/common/storage"

	"github.com/klauspost/compress/zstd"
)

const snapshotContentType = "application/zstd"

// SnapshotArchiver writes zstd-compressed copies of the raw upstream
// payloads to object storage, one object per resource per day.
type SnapshotArchiver struct {
	storage   storage.ObjectStorage
	bucket    string
	keyPrefix string
}

// NewSnapshotArchiver creates a new SnapshotArchiver.
func NewSnapshotArchiver(obj storage.ObjectStorage, bucket, keyPrefix string) *SnapshotArchiver {
	if keyPrefix == "" {
		keyPrefix = "snapshots"
	}
	return &SnapshotArchiver{storage: obj, bucket: bucket, keyPrefix: keyPrefix}
}

// Archive compresses raw and stores it under
// <prefix>/<resource>/<date>.json.zst. Re-running a sync on the same
// day overwrites the day's snapshot.
func (a *SnapshotArchiver) Archive(ctx context.Context, resource string, raw []byte, now time.Time) (string, error) {
	if a == nil || a.storage == nil {
		return "", errors.New("object storage is nil")
	}
	if resource == "" {
		return "", errors.New("resource is required")
	}
	if a.bucket == "" {
		return "", errors.New("bucket is required")
	}

	var buf bytes.Buffer
	encoder, err := zstd.NewWriter(&buf)
	if err != nil {
		return "", fmt.Errorf("create zstd writer failed: %w", err)
	}
	if _, err := encoder.Write(raw); err != nil {
		_ = encoder.Close()
		return "", fmt.Errorf("compress snapshot failed: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return "", fmt.Errorf("close zstd writer failed: %w", err)
	}

	key := a.snapshotKey(resource, now)
	if err := a.storage.PutObject(ctx, a.bucket, key, &buf, int64(buf.Len()), snapshotContentType); err != nil {
		return "", fmt.Errorf("store snapshot failed: %w", err)
	}
	return key, nil
}

// Restore fetches and decompresses one archived snapshot.
func (a *SnapshotArchiver) Restore(ctx context.Context, key string) ([]byte, error) {
	if a == nil || a.storage == nil {
		return nil, errors.New("object storage is nil")
	}
	obj, err := a.storage.GetObject(ctx, a.bucket, key)
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	decoder, err := zstd.NewReader(obj)
	if err != nil {
		return nil, fmt.Errorf("create zstd reader failed: %w", err)
	}
	defer decoder.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(decoder.IOReadCloser()); err != nil {
		return nil, fmt.Errorf("decompress snapshot failed: %w", err)
	}
	return buf.Bytes(), nil
}

func (a *SnapshotArchiver) snapshotKey(resource string, now time.Time) string {
	return fmt.Sprintf("%s/%s/%s.json.zst", a.keyPrefix, resource, now.UTC().Format("2006-01-02"))
}
