// Package storage is where SupplyDesk writes generated files such as request
// exports. Two disks exist:
//
//   - "local": a directory on this machine (STORAGE_LOCAL_ROOT)
//   - "s3": an S3-compatible bucket (AWS S3, MinIO, R2) named by S3_BUCKET
//
// Example:
//
//	disk, err := storage.Open(ctx, config.Get("STORAGE_DISK", "local"))
//	err = disk.Put(ctx, "exports/requests.csv", r)
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// ErrNotExist is returned by Get for a missing path.
var ErrNotExist = errors.New("storage: file does not exist")

// Disk is a flat key/value file store.
type Disk interface {
	// Put writes r to path, replacing any existing file.
	Put(ctx context.Context, path string, r io.Reader) error
	// Get opens path for reading. The caller closes it.
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	Exists(ctx context.Context, path string) (bool, error)
	// Delete removes path. A missing path is not an error.
	Delete(ctx context.Context, path string) error
	// URL is where path can be fetched from, for display.
	URL(path string) string
}

// Open returns the named disk configured from the environment.
func Open(ctx context.Context, name string) (Disk, error) {
	switch name {
	case "", "local":
		return LocalFromConfig(), nil
	case "s3":
		return S3FromConfig(ctx)
	default:
		return nil, fmt.Errorf("storage: unknown disk %q (want local or s3)", name)
	}
}
