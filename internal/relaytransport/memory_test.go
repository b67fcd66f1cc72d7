package relaytransport

import (
	"context"
	"testing"
	"time"

	"nostrdrive/internal/drive"
)

func TestMemoryPublishDeliversToLiveSubscription(t *testing.T) {
	relay := NewMemory()
	ctx := context.Background()

	sub, err := relay.Subscribe(ctx, []drive.RelayFilter{{Kinds: []int{drive.KindDrive}}})
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer sub.Close()

	event := &drive.Event{ID: "e1", Kind: drive.KindDrive, PubKey: "pk1"}
	if err := relay.Publish(ctx, event); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case got := <-sub.Events():
		if got.ID != "e1" {
			t.Errorf("got event %q, want e1", got.ID)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for live delivery")
	}
}

func TestMemoryFiltersByKindAndAuthor(t *testing.T) {
	relay := NewMemory()
	ctx := context.Background()

	sub, err := relay.Subscribe(ctx, []drive.RelayFilter{{Kinds: []int{drive.KindDrive}, Authors: []string{"alice"}}})
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer sub.Close()

	nonMatching := &drive.Event{ID: "e1", Kind: drive.KindDelete, PubKey: "alice"}
	wrongAuthor := &drive.Event{ID: "e2", Kind: drive.KindDrive, PubKey: "bob"}
	matching := &drive.Event{ID: "e3", Kind: drive.KindDrive, PubKey: "alice"}

	for _, ev := range []*drive.Event{nonMatching, wrongAuthor, matching} {
		if err := relay.Publish(ctx, ev); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	}

	select {
	case got := <-sub.Events():
		if got.ID != "e3" {
			t.Errorf("got event %q, want only e3 to match", got.ID)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for delivery")
	}

	select {
	case got := <-sub.Events():
		t.Fatalf("expected no further matches, got %q", got.ID)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMemoryReplaysBacklogToNewSubscription(t *testing.T) {
	relay := NewMemory()
	ctx := context.Background()

	event := &drive.Event{ID: "e1", Kind: drive.KindDrive, PubKey: "alice"}
	if err := relay.Publish(ctx, event); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	sub, err := relay.Subscribe(ctx, []drive.RelayFilter{{Kinds: []int{drive.KindDrive}}})
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer sub.Close()

	select {
	case got := <-sub.Events():
		if got.ID != "e1" {
			t.Errorf("got event %q, want replayed e1", got.ID)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for backlog replay")
	}
}

func TestMemorySubscriptionCloseStopsDelivery(t *testing.T) {
	relay := NewMemory()
	ctx := context.Background()

	sub, err := relay.Subscribe(ctx, []drive.RelayFilter{{Kinds: []int{drive.KindDrive}}})
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if err := sub.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if _, ok := <-sub.Events(); ok {
		t.Error("expected events channel to be closed after Close")
	}
}

func TestMemoryCloseDrainsAllSubscriptions(t *testing.T) {
	relay := NewMemory()
	ctx := context.Background()

	sub, err := relay.Subscribe(ctx, []drive.RelayFilter{{Kinds: []int{drive.KindDrive}}})
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	if err := relay.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if _, ok := <-sub.Events(); ok {
		t.Error("expected subscription channel closed after relay Close")
	}
}

func TestFactoryReturnsSharedRelay(t *testing.T) {
	relay := NewMemory()
	factory := NewFactory(relay)

	client, err := factory.NewClient([]string{"wss://anything"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if client != relay {
		t.Error("expected Factory to return the same shared Memory relay")
	}
}
