package drive

import "context"

// RelayFilter mirrors a NIP-01 subscription filter restricted to the
// fields this system needs: kinds, authors, p-tag recipients, and a
// since watermark.
type RelayFilter struct {
	IDs     []string
	Kinds   []int
	Authors []string
	PTags   []string
	Since   int64
	Limit   int
}

// Subscription is a live stream of events matching the filters it was
// opened with. Events arrive on Events() in at-least-once delivery;
// duplicates are suppressed by the sync engine, not the transport.
type Subscription interface {
	// Events returns the channel events are delivered on. The channel is
	// closed when the subscription ends (Close, transport error, or
	// context cancellation).
	Events() <-chan *Event

	// Errs returns a channel of asynchronous transport errors. Reading
	// from it is optional.
	Errs() <-chan error

	// Close cancels the subscription and terminates the background
	// reader within bounded time.
	Close() error
}

// RelayClient is the out-of-scope relay transport and subscription
// multiplexer, narrowed to the two operations the sync engine and drive
// operations need.
type RelayClient interface {
	// Subscribe opens one subscription carrying the union of filters.
	// The union is evaluated server-side (or emulated client-side by a
	// stub implementation): an event matching any one filter is
	// delivered.
	Subscribe(ctx context.Context, filters []RelayFilter) (Subscription, error)

	// Publish broadcasts event to every configured relay. A failure here
	// is surfaced to the caller as NetworkFailed; the event's local
	// index write has already happened by the time Publish is called.
	Publish(ctx context.Context, event *Event) error

	// Close tears down any persistent connections.
	Close() error
}

// RelayClientFactory opens scratch RelayClient instances scoped to an
// explicit relay set, independent of the main engine's client. Used by
// access_shared_file, which must not share connections or subscriptions
// with the main sync engine.
type RelayClientFactory interface {
	NewClient(relays []string) (RelayClient, error)
}
