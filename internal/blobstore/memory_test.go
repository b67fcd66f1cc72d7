package blobstore

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func TestMemoryPutGetRoundTrip(t *testing.T) {
	store := NewMemory()
	data := []byte("hello blob")

	hash, err := store.Put(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	sum := sha256.Sum256(data)
	if hash != hex.EncodeToString(sum[:]) {
		t.Errorf("hash = %q, want sha256 of content", hash)
	}

	var buf bytes.Buffer
	if err := store.Get(hash, &buf); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if buf.String() != string(data) {
		t.Errorf("Get = %q, want %q", buf.String(), data)
	}
}

func TestMemoryPutIsIdempotent(t *testing.T) {
	store := NewMemory()
	data := []byte("same content")

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
}

func TestMemoryPutRejectsSizeMismatch(t *testing.T) {
	store := NewMemory()
	if _, err := store.Put(bytes.NewReader([]byte("abc")), 10); err == nil {
		t.Fatal("expected error for declared size not matching actual content")
	}
}

func TestMemoryGetAbsentHashReturnsNotFound(t *testing.T) {
	store := NewMemory()
	var buf bytes.Buffer
	if err := store.Get("does-not-exist", &buf); err == nil {
		t.Fatal("expected NotFound for an absent hash")
	}
}

func TestMemoryDeleteIsIdempotent(t *testing.T) {
	store := NewMemory()
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
