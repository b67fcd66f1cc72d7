// Package blobstore implements drive.BlobStore against an in-memory map,
// a local filesystem directory, and Amazon S3.
package blobstore

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"sync"

	"nostrdrive/internal/drive"
)

// Memory is an in-memory content-addressed blob store, useful for tests
// and the stub end-to-end scenarios in §8 of the design.
type Memory struct {
	mu      sync.RWMutex
	content map[string][]byte
}

// NewMemory creates an empty in-memory blob store.
func NewMemory() *Memory {
	return &Memory{content: make(map[string][]byte)}
}

// Put reads all of r, hashes it, and stores it under that hash.
// Idempotent: storing the same bytes twice is a no-op past the first
// write.
func (m *Memory) Put(r io.Reader, size int64) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("reading content: %w", err)
	}
	if int64(len(data)) != size {
		return "", fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	m.mu.Lock()
	defer m.mu.Unlock()
	m.content[hash] = data
	return hash, nil
}

func (m *Memory) Get(hash string, w io.Writer) error {
	m.mu.RLock()
	data, ok := m.content[hash]
	m.mu.RUnlock()
	if !ok {
		return drive.NewNotFound("blob %s", hash)
	}
	_, err := io.Copy(w, bytes.NewReader(data))
	return err
}

func (m *Memory) Delete(hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.content, hash)
	return nil
}

var _ drive.BlobStore = (*Memory)(nil)
