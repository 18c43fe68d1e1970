package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DiskStorage stores files under a local directory tree, one subdirectory
// per collection.
type DiskStorage struct {
	root    string
	baseURL string
}

// NewDiskStorage creates the root directory if needed.
func NewDiskStorage(root, baseURL string) (*DiskStorage, error) {
	if root == "" {
		root = "./storage/public"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &DiskStorage{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func storedName(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return uuid.New().String() + ext
}

func (d *DiskStorage) Put(ctx context.Context, collection, filename string, r io.Reader) (string, error) {
	dir := filepath.Join(d.root, collection)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create collection dir: %w", err)
	}

	name := storedName(filename)
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return path.Join(collection, name), nil
}

func (d *DiskStorage) Delete(ctx context.Context, p string) error {
	// Reject traversal outside the root
	clean := filepath.Clean(p)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return fmt.Errorf("invalid storage path: %s", p)
	}
	err := os.Remove(filepath.Join(d.root, clean))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (d *DiskStorage) URL(p string) string {
	if p == "" {
		return ""
	}
	return d.baseURL + "/storage/" + strings.TrimLeft(p, "/")
}
