// Package relaytransport implements drive.RelayClient: an in-memory stub
// relay that echoes broadcasts back to subscribers (used by the
// end-to-end test scenarios), and a real client over a NIP-01-shaped
// relay reached by WebSocket.
package relaytransport

import (
	"context"
	"sync"

	"nostrdrive/internal/drive"
)

// Memory is a stub relay: Publish stores the event and immediately
// delivers it to every live subscription whose filters match, exactly
// as a real relay would echo a publish back to the publisher's own
// subscription. A new Subscribe also replays every previously stored
// event matching its filters, the way a real relay answers a REQ with
// backlog before going live — without this, a subscription opened after
// a publish (resuming from a watermark, or access_shared_file fetching
// an already-published share) would never see it.
type Memory struct {
	mu     sync.Mutex
	subs   map[int]*memorySubscription
	nextID int
	log    []*drive.Event
}

// NewMemory creates an empty stub relay.
func NewMemory() *Memory {
	return &Memory{subs: make(map[int]*memorySubscription)}
}

type memorySubscription struct {
	filters []drive.RelayFilter
	events  chan *drive.Event
	errs    chan error
	closed  bool
}

func (s *memorySubscription) Events() <-chan *drive.Event { return s.events }
func (s *memorySubscription) Errs() <-chan error           { return s.errs }

func (m *Memory) Subscribe(ctx context.Context, filters []drive.RelayFilter) (drive.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	sub := &memorySubscription{
		filters: filters,
		events:  make(chan *drive.Event, 256),
		errs:    make(chan error, 1),
	}
	m.subs[id] = sub

	for _, event := range m.log {
		if matchesAny(event, filters) {
			select {
			case sub.events <- event:
			default:
			}
		}
	}

	go func() {
		<-ctx.Done()
		m.closeSub(id)
	}()

	return &memoryClientSubscription{id: id, relay: m, memorySubscription: sub}, nil
}

type memoryClientSubscription struct {
	id    int
	relay *Memory
	*memorySubscription
}

func (s *memoryClientSubscription) Close() error {
	s.relay.closeSub(s.id)
	return nil
}

func (m *Memory) closeSub(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.subs[id]
	if !ok || sub.closed {
		return
	}
	sub.closed = true
	delete(m.subs, id)
	close(sub.events)
}

func (m *Memory) Publish(ctx context.Context, event *drive.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.log = append(m.log, event)

	for _, sub := range m.subs {
		if sub.closed {
			continue
		}
		if !matchesAny(event, sub.filters) {
			continue
		}
		select {
		case sub.events <- event:
		default:
			// Subscriber's buffer is full; a stub relay may drop rather
			// than block the publisher.
		}
	}
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, sub := range m.subs {
		if !sub.closed {
			sub.closed = true
			close(sub.events)
		}
		delete(m.subs, id)
	}
	return nil
}

func matchesAny(event *drive.Event, filters []drive.RelayFilter) bool {
	if len(filters) == 0 {
		return true
	}
	for _, f := range filters {
		if matchesOne(event, f) {
			return true
		}
	}
	return false
}

func matchesOne(event *drive.Event, f drive.RelayFilter) bool {
	if len(f.Kinds) > 0 && !containsInt(f.Kinds, event.Kind) {
		return false
	}
	if len(f.Authors) > 0 && !containsString(f.Authors, event.PubKey) {
		return false
	}
	if len(f.IDs) > 0 && !containsString(f.IDs, event.ID) {
		return false
	}
	if len(f.PTags) > 0 {
		matched := false
		for _, p := range f.PTags {
			if event.HasPTag(p) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	if f.Since > 0 && event.CreatedAt < f.Since {
		return false
	}
	return true
}

func containsInt(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

func containsString(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

var _ drive.RelayClient = (*Memory)(nil)

// Factory adapts Memory to drive.RelayClientFactory by returning the
// same shared stub relay for every scratch client request — appropriate
// for tests where access_shared_file and the main engine must observe
// the same in-memory broadcast bus.
type Factory struct {
	relay *Memory
}

// NewFactory wraps relay as a RelayClientFactory.
func NewFactory(relay *Memory) *Factory {
	return &Factory{relay: relay}
}

func (f *Factory) NewClient(relays []string) (drive.RelayClient, error) {
	return f.relay, nil
}

var _ drive.RelayClientFactory = (*Factory)(nil)
