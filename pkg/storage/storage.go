// Package storage abstracts file persistence for uploaded media. Files are
// grouped into named collections (tracks, covers, profile-images, attachments,
// licenses) and addressed by the relative path returned from Put.
package storage

import (
	"context"
	"fmt"
	"io"

	"soundlicense-backend/pkg/config"
)

// Storage persists uploaded files.
type Storage interface {
	// Put stores the content under the collection and returns the stored
	// path. The stored filename is randomized; the original name only
	// contributes its extension.
	Put(ctx context.Context, collection, filename string, r io.Reader) (string, error)

	// Delete removes a previously stored path. Deleting a missing path is
	// not an error.
	Delete(ctx context.Context, path string) error

	// URL returns the public URL for a stored path.
	URL(path string) string
}

// New selects a storage backend from configuration.
func New(cfg *config.Config) (Storage, error) {
	switch cfg.StorageBackend {
	case "minio":
		fmt.Printf("📦 Using MinIO storage (%s/%s)\n", cfg.MinioEndpoint, cfg.MinioBucket)
		return NewMinioStorage(cfg)
	case "disk", "":
		fmt.Printf("📦 Using disk storage (%s)\n", cfg.UploadDir)
		return NewDiskStorage(cfg.UploadDir, cfg.BaseURL)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.StorageBackend)
	}
}
