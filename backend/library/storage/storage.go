// Package storage keeps the raw bytes of uploaded files and their thumbnails.
package storage

import (
	"context"
	"errors"
	"fmt"

	"files-manager/backend/common"
)

// ErrNotExist is returned by Read when nothing is stored at a path.
var ErrNotExist = errors.New("storage: object does not exist")

// Storage writes and reads whole objects addressed by a path. Paths are
// opaque strings produced by NewPath; derived objects such as thumbnails are
// addressed by appending a suffix to the original path.
type Storage interface {
	NewPath() string
	Write(ctx context.Context, path string, data []byte) error
	Read(ctx context.Context, path string) ([]byte, error)
	// Delete removes the object at path. Deleting a missing object is not an
	// error.
	Delete(ctx context.Context, path string) error
}

// New builds the storage selected by cfg.StorageDriver.
func New(ctx context.Context, cfg *common.Config) (Storage, error) {
	switch cfg.StorageDriver {
	case common.StorageDriverMinIO:
		s, err := NewMinIOStorage(ctx, MinIOOptions{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			Bucket:    cfg.MinIOBucket,
			Secure:    cfg.MinIOSecure,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	case common.StorageDriverLocal:
		s, err := NewLocalStorage(cfg.FolderPath)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// ThumbnailPath is where the thumbnail of the given width for path lives.
func ThumbnailPath(path string, width int) string {
	return fmt.Sprintf("%s_%d", path, width)
}
