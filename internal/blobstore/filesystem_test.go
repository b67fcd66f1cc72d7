package blobstore

import (
	"bytes"
	"path/filepath"
	"testing"
)

func TestFilesystemPutGetRoundTrip(t *testing.T) {
	store, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("NewFilesystem: %v", err)
	}

	data := []byte("hello filesystem")
	hash, err := store.Put(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	var buf bytes.Buffer
	if err := store.Get(hash, &buf); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if buf.String() != string(data) {
		t.Errorf("Get = %q, want %q", buf.String(), data)
	}
}

func TestFilesystemPutIsIdempotentAndLeavesNoTempFiles(t *testing.T) {
	root := t.TempDir()
	store, err := NewFilesystem(root)
	if err != nil {
		t.Fatalf("NewFilesystem: %v", err)
	}

	data := []byte("same content twice")
	h1, err := store.Put(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	h2, err := store.Put(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("Put (again): %v", err)
	}
	if h1 != h2 {
		t.Errorf("hashes differ across identical puts: %q vs %q", h1, h2)
	}

	entries, err := filepath.Glob(filepath.Join(root, "content", ".tmp-*"))
	if err != nil {
		t.Fatalf("Glob: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no leftover temp files, found %v", entries)
	}
}

func TestFilesystemGetAbsentHashReturnsNotFound(t *testing.T) {
	store, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("NewFilesystem: %v", err)
	}
	var buf bytes.Buffer
	if err := store.Get("does-not-exist", &buf); err == nil {
		t.Fatal("expected NotFound for an absent hash")
	}
}

func TestFilesystemDeleteIsIdempotent(t *testing.T) {
	store, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("NewFilesystem: %v", err)
	}
	data := []byte("to be deleted")
	hash, err := store.Put(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	if err := store.Delete(hash); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(hash); err != nil {
		t.Fatalf("Delete (again): %v", err)
	}

	var buf bytes.Buffer
	if err := store.Get(hash, &buf); err == nil {
		t.Fatal("expected Get to fail after Delete")
	}
}
