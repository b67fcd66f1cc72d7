package blobstore

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"nostrdrive/internal/drive"
)

// Filesystem stores blobs as files named by their SHA-256 hex digest
// under a single content directory:
//
//	<root>/content/<hash>
type Filesystem struct {
	root       string
	contentDir string
}

// NewFilesystem creates a Filesystem blob store rooted at root, creating
// the content directory if absent.
func NewFilesystem(root string) (*Filesystem, error) {
	contentDir := filepath.Join(root, "content")
	if err := os.MkdirAll(contentDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating content directory: %w", err)
	}
	return &Filesystem{root: root, contentDir: contentDir}, nil
}

// Put hashes r while streaming it to a temp file, then atomically renames
// the temp file to its content-addressed path. Idempotent: if a blob
// with that hash already exists, the temp file is discarded.
func (f *Filesystem) Put(r io.Reader, size int64) (string, error) {
	tmp, err := os.CreateTemp(f.contentDir, ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	hasher := sha256.New()
	written, err := io.Copy(tmp, io.TeeReader(r, hasher))
	if err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing temp file: %w", err)
	}
	if written != size {
		return "", fmt.Errorf("size mismatch: expected %d bytes, got %d", size, written)
	}

	hash := hex.EncodeToString(hasher.Sum(nil))
	destPath := filepath.Join(f.contentDir, hash)
	if _, err := os.Stat(destPath); err == nil {
		success = true // already present; discard the temp copy
		return hash, nil
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return "", fmt.Errorf("renaming into place: %w", err)
	}
	success = true
	return hash, nil
}

func (f *Filesystem) Get(hash string, w io.Writer) error {
	src, err := os.Open(filepath.Join(f.contentDir, hash))
	if err != nil {
		if os.IsNotExist(err) {
			return drive.NewNotFound("blob %s", hash)
		}
		return fmt.Errorf("opening blob: %w", err)
	}
	defer src.Close()
	_, err = io.Copy(w, src)
	return err
}

func (f *Filesystem) Delete(hash string) error {
	err := os.Remove(filepath.Join(f.contentDir, hash))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing blob: %w", err)
	}
	return nil
}

var _ drive.BlobStore = (*Filesystem)(nil)
