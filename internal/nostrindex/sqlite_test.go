package nostrindex

import (
	"testing"

	"nostrdrive/internal/drive"
)

func newTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	idx, err := NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestSQLitePutGetHasDelete(t *testing.T) {
	idx := newTestSQLite(t)
	r := record("e1", "alice", "/a.txt", "file", 100)

	if err := idx.Put(r); err != nil {
		t.Fatalf("Put: %v", err)
	}
	has, err := idx.Has("e1")
	if err != nil || !has {
		t.Fatalf("Has = %v, %v, want true, nil", has, err)
	}
	got, err := idx.Get("e1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.DecryptedContent.Path != "/a.txt" {
		t.Errorf("Get = %+v, want path /a.txt", got)
	}

	if err := idx.Delete("e1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	has, err = idx.Has("e1")
	if err != nil || has {
		t.Errorf("Has after delete = %v, %v, want false, nil", has, err)
	}
}

func TestSQLiteGetAbsentReturnsNil(t *testing.T) {
	idx := newTestSQLite(t)
	got, err := idx.Get("missing")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Errorf("Get(missing) = %+v, want nil", got)
	}
}

func TestSQLitePutUpsertsOnRepeatedID(t *testing.T) {
	idx := newTestSQLite(t)
	if err := idx.Put(record("e1", "alice", "/a.txt", "file", 100)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := idx.Put(record("e1", "alice", "/renamed.txt", "file", 200)); err != nil {
		t.Fatalf("Put (upsert): %v", err)
	}

	got, err := idx.Get("e1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.DecryptedContent.Path != "/renamed.txt" || got.Event.CreatedAt != 200 {
		t.Errorf("Get after upsert = %+v, want the second Put's values", got)
	}
}

func TestSQLiteQueryByPubkeyAndWatermark(t *testing.T) {
	idx := newTestSQLite(t)
	for _, r := range []*drive.IndexRecord{
		record("e1", "alice", "/a.txt", "file", 100),
		record("e2", "alice", "/b.txt", "file", 300),
		record("e3", "bob", "/c.txt", "file", 200),
	} {
		if err := idx.Put(r); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	results, err := idx.Query([]drive.Filter{{Field: drive.FieldPubKey, Value: "alice"}}, nil, 0)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Query results = %+v, want 2 records", results)
	}
	if results[0].Event.ID != "e2" {
		t.Errorf("expected newest-first order, got %s first", results[0].Event.ID)
	}

	wm, err := idx.Watermark()
	if err != nil || wm != 300 {
		t.Errorf("Watermark = %d, %v, want 300, nil", wm, err)
	}
}

func TestSQLiteScanReturnsEverything(t *testing.T) {
	idx := newTestSQLite(t)
	for _, r := range []*drive.IndexRecord{
		record("e1", "alice", "/a.txt", "file", 100),
		record("e2", "bob", "/b.txt", "file", 200),
	} {
		if err := idx.Put(r); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	all, err := idx.Scan()
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Scan returned %d records, want 2", len(all))
	}
}

func TestSQLiteRoundTripsEncryptionInfo(t *testing.T) {
	idx := newTestSQLite(t)
	r := record("e1", "alice", "/secret.bin", "file", 100)
	r.DecryptedContent.Encryption = &drive.EncryptionInfo{Algorithm: "AES-256-GCM", Key: "k", Nonce: "n"}

	if err := idx.Put(r); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := idx.Get("e1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.DecryptedContent.Encryption == nil || *got.DecryptedContent.Encryption != *r.DecryptedContent.Encryption {
		t.Errorf("Encryption = %+v, want %+v", got.DecryptedContent.Encryption, r.DecryptedContent.Encryption)
	}
}
