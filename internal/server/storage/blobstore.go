package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store defines the interface for blob storage backends.
// This allows swapping the local filesystem for S3 or other backends later.
type Store interface {
	Save(data []byte) (string, error)
	Read(path string) ([]byte, error)
	Exists(path string) bool
	WriteDerivative(path string, width int, data []byte) error
	DerivativePath(path string, width int) string
	EnsureDir() error
}

// BlobStore writes decoded payloads to the local filesystem under a
// single content root, named by freshly generated opaque identifiers.
type BlobStore struct {
	root string
}

// NewBlobStore creates a filesystem blob store rooted at root.
func NewBlobStore(root string) *BlobStore {
	return &BlobStore{root: root}
}

// EnsureDir creates the content root if it doesn't exist.
func (bs *BlobStore) EnsureDir() error {
	if err := os.MkdirAll(bs.root, 0755); err != nil {
		return fmt.Errorf("failed to create storage root %s: %w", bs.root, err)
	}
	return nil
}

// Save writes data under a fresh UUID filename and returns the absolute
// path of the written blob. The content root is created if absent.
func (bs *BlobStore) Save(data []byte) (string, error) {
	if err := bs.EnsureDir(); err != nil {
		return "", err
	}

	path := filepath.Join(bs.root, uuid.NewString())
	if err := os.WriteFile(path, data, 0644); err != nil {
		// Clean up a partial file on error
		os.Remove(path)
		return "", fmt.Errorf("failed to write blob: %w", err)
	}
	return path, nil
}

// Read returns the contents of a stored blob.
func (bs *BlobStore) Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob %s: %w", path, err)
	}
	return data, nil
}

// Exists reports whether a blob is present on disk.
func (bs *BlobStore) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// DerivativePath returns the on-disk name of a resized variant of the
// blob at path. Derivatives are siblings of the original, suffixed with
// the target width.
func (bs *BlobStore) DerivativePath(path string, width int) string {
	return fmt.Sprintf("%s_%d", path, width)
}

// WriteDerivative writes a resized variant next to the original blob,
// overwriting any prior artifact so that job redelivery is safe.
func (bs *BlobStore) WriteDerivative(path string, width int, data []byte) error {
	target := bs.DerivativePath(path, width)
	if err := os.WriteFile(target, data, 0644); err != nil {
		os.Remove(target)
		return fmt.Errorf("failed to write derivative %s: %w", target, err)
	}
	return nil
}
