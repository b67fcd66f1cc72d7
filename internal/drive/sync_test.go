package drive

import (
	"context"
	"strings"
	"testing"
	"time"

	"nostrdrive/internal/nostrindex"
	"nostrdrive/internal/relaytransport"
)

func newTestEngine(t *testing.T, pubkey string, relay *relaytransport.Memory) (*SyncEngine, *nostrindex.Memory, *ChangeStream) {
	t.Helper()
	index := nostrindex.NewMemory()
	stream := NewChangeStream()
	signer := fakeSigner{pubkey: pubkey}
	sealer := fakeSealer{}
	engine := NewSyncEngine(relay, index, sealer, signer, nil, stream)
	return engine, index, stream
}

func TestSyncEngineIngestsOwnDriveEvent(t *testing.T) {
	pubkey := strings.Repeat("a1", 32)
	relay := relaytransport.NewMemory()
	engine, index, stream := newTestEngine(t, pubkey, relay)

	ch, unsubscribe := stream.Subscribe()
	defer unsubscribe()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := engine.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer engine.Stop()

	builder := NewEventBuilder(fakeSigner{pubkey: pubkey}, fakeSealer{}, fakeClock{t: time.Unix(1700000000, 0)})
	content := &DriveContent{Type: "file", Path: "/a.txt", Hash: strings.Repeat("bb", 32), Size: 3}
	event, err := builder.BuildFileEvent(content, pubkey, nil)
	if err != nil {
		t.Fatalf("BuildFileEvent: %v", err)
	}

	if err := relay.Publish(ctx, event); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case n := <-ch:
		if n.Type != ChangeAdded || n.Path != "/a.txt" {
			t.Errorf("notification = %+v, want Added at /a.txt", n)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for change notification")
	}

	has, err := index.Has(event.ID)
	if err != nil || !has {
		t.Errorf("expected event to be indexed, has=%v err=%v", has, err)
	}
}

func TestSyncEngineDedupsAlreadyIngestedEvent(t *testing.T) {
	pubkey := strings.Repeat("a2", 32)
	relay := relaytransport.NewMemory()
	engine, index, _ := newTestEngine(t, pubkey, relay)

	builder := NewEventBuilder(fakeSigner{pubkey: pubkey}, fakeSealer{}, fakeClock{t: time.Unix(1700000000, 0)})
	event, err := builder.BuildFolderEvent("/docs", pubkey, nil)
	if err != nil {
		t.Fatalf("BuildFolderEvent: %v", err)
	}

	if err := index.Put(&IndexRecord{Event: *event, DecryptedContent: DriveContent{Type: "folder", Path: "/docs"}}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	engine.ingest(event)

	rec, err := index.Get(event.ID)
	if err != nil || rec == nil {
		t.Fatalf("expected record to remain present, err=%v", err)
	}
}

func TestSyncEngineDropsUndecryptableDriveEvent(t *testing.T) {
	pubkey := strings.Repeat("a3", 32)
	relay := relaytransport.NewMemory()
	engine, index, _ := newTestEngine(t, pubkey, relay)

	event := &Event{ID: "bad1", PubKey: pubkey, Kind: KindDrive, Content: "not-a-sealed-envelope"}
	engine.ingest(event)

	has, err := index.Has(event.ID)
	if err != nil || has {
		t.Errorf("expected undecryptable event to be dropped, has=%v err=%v", has, err)
	}
}

func TestSyncEngineAppliesDeleteTombstone(t *testing.T) {
	pubkey := strings.Repeat("a4", 32)
	relay := relaytransport.NewMemory()
	engine, index, stream := newTestEngine(t, pubkey, relay)

	builder := NewEventBuilder(fakeSigner{pubkey: pubkey}, fakeSealer{}, fakeClock{t: time.Unix(1700000000, 0)})
	fileEvent, err := builder.BuildFileEvent(&DriveContent{Type: "file", Path: "/x.txt", Hash: strings.Repeat("cc", 32), Size: 1}, pubkey, nil)
	if err != nil {
		t.Fatalf("BuildFileEvent: %v", err)
	}
	engine.ingest(fileEvent)

	ch, unsubscribe := stream.Subscribe()
	defer unsubscribe()

	deleteEvent, err := builder.BuildDeleteEvent([]string{fileEvent.ID})
	if err != nil {
		t.Fatalf("BuildDeleteEvent: %v", err)
	}
	engine.ingest(deleteEvent)

	select {
	case n := <-ch:
		if n.Type != ChangeDeleted || n.Path != "/x.txt" {
			t.Errorf("notification = %+v, want Deleted at /x.txt", n)
		}
	default:
		t.Fatal("expected a deleted notification to be emitted")
	}

	has, err := index.Has(fileEvent.ID)
	if err != nil || has {
		t.Errorf("expected target to be removed from index, has=%v err=%v", has, err)
	}
}

func TestSyncEngineBlindDeleteIsNoOp(t *testing.T) {
	pubkey := strings.Repeat("a5", 32)
	relay := relaytransport.NewMemory()
	engine, _, stream := newTestEngine(t, pubkey, relay)

	ch, unsubscribe := stream.Subscribe()
	defer unsubscribe()

	builder := NewEventBuilder(fakeSigner{pubkey: pubkey}, fakeSealer{}, fakeClock{t: time.Unix(1700000000, 0)})
	deleteEvent, err := builder.BuildDeleteEvent([]string{"never-seen"})
	if err != nil {
		t.Fatalf("BuildDeleteEvent: %v", err)
	}
	engine.ingest(deleteEvent)

	select {
	case n := <-ch:
		t.Fatalf("expected no notification for a blind delete, got %+v", n)
	default:
	}
}

func TestSyncEngineDropsTombstoneWithMismatchedAuthor(t *testing.T) {
	pubkey := strings.Repeat("a6", 32)
	other := strings.Repeat("a7", 32)
	relay := relaytransport.NewMemory()
	engine, index, _ := newTestEngine(t, pubkey, relay)

	builder := NewEventBuilder(fakeSigner{pubkey: pubkey}, fakeSealer{}, fakeClock{t: time.Unix(1700000000, 0)})
	fileEvent, err := builder.BuildFileEvent(&DriveContent{Type: "file", Path: "/y.txt", Hash: strings.Repeat("dd", 32), Size: 1}, pubkey, nil)
	if err != nil {
		t.Fatalf("BuildFileEvent: %v", err)
	}
	engine.ingest(fileEvent)

	attackerBuilder := NewEventBuilder(fakeSigner{pubkey: other}, fakeSealer{}, fakeClock{t: time.Unix(1700000001, 0)})
	forgedDelete, err := attackerBuilder.BuildDeleteEvent([]string{fileEvent.ID})
	if err != nil {
		t.Fatalf("BuildDeleteEvent: %v", err)
	}
	engine.ingest(forgedDelete)

	has, err := index.Has(fileEvent.ID)
	if err != nil || !has {
		t.Errorf("expected original record to survive a mismatched-author tombstone, has=%v err=%v", has, err)
	}
}

func TestSyncEngineStateTransitions(t *testing.T) {
	pubkey := strings.Repeat("a8", 32)
	relay := relaytransport.NewMemory()
	engine, _, _ := newTestEngine(t, pubkey, relay)

	if engine.State() != StateIdle {
		t.Fatalf("initial state = %v, want Idle", engine.State())
	}

	ctx := context.Background()
	if err := engine.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if engine.State() != StateLive {
		t.Fatalf("state after Start = %v, want Live", engine.State())
	}

	if err := engine.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if engine.State() != StateIdle {
		t.Fatalf("state after Stop = %v, want Idle", engine.State())
	}

	engine.Dispose()
	if engine.State() != StateStopped {
		t.Fatalf("state after Dispose = %v, want Stopped", engine.State())
	}
	if err := engine.Start(ctx); err == nil {
		t.Error("expected Start on a disposed engine to fail")
	}
}
