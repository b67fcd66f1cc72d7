package drive

import (
	"context"
	"sync"
)

// SyncState enumerates the SyncEngine's lifecycle states.
type SyncState string

const (
	StateIdle         SyncState = "idle"
	StateSubscribing  SyncState = "subscribing"
	StateLive         SyncState = "live"
	StateReconnecting SyncState = "reconnecting"
	StateStopped      SyncState = "stopped"
)

// SyncEngine maintains a live relay subscription, ingests events into the
// Index, and emits ChangeNotification on a ChangeStream. A Service built
// over the same Index writes to it as well.
type SyncEngine struct {
	relay  RelayClient
	index  Index
	sealer Sealer
	signer Signer
	log    Logger
	stream *ChangeStream

	mu     sync.Mutex
	state  SyncState
	cancel context.CancelFunc
	done   chan struct{}
	sub    Subscription
}

// NewSyncEngine creates a SyncEngine in state Idle. stream may be nil,
// in which case the engine allocates its own; callers that also build a
// Service over the same account should pass the Service's stream here so
// sync-driven changes surface through Service.Changes() as well.
func NewSyncEngine(relay RelayClient, index Index, sealer Sealer, signer Signer, log Logger, stream *ChangeStream) *SyncEngine {
	if log == nil {
		log = NewNopLogger()
	}
	if stream == nil {
		stream = NewChangeStream()
	}
	return &SyncEngine{
		relay:  relay,
		index:  index,
		sealer: sealer,
		signer: signer,
		log:    log,
		stream: stream,
		state:  StateIdle,
	}
}

// Changes returns a channel of future change notifications and an
// unsubscribe function.
func (e *SyncEngine) Changes() (<-chan ChangeNotification, func()) {
	return e.stream.Subscribe()
}

// State returns the engine's current lifecycle state.
func (e *SyncEngine) State() SyncState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Start opens the relay subscription and begins ingesting events in a
// background goroutine. Starting an already-started engine is a no-op.
func (e *SyncEngine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.state == StateSubscribing || e.state == StateLive || e.state == StateReconnecting {
		e.mu.Unlock()
		return nil
	}
	if e.state == StateStopped {
		e.mu.Unlock()
		return NewConcurrencyTerminated()
	}
	e.state = StateSubscribing
	e.mu.Unlock()

	watermark, err := e.index.Watermark()
	if err != nil {
		return NewNetworkFailed("reading watermark", err)
	}

	me := e.signer.PubKey()
	filters := []RelayFilter{
		{Kinds: []int{KindDrive, KindDelete}, Authors: []string{me}, Since: watermark},
		{Kinds: []int{KindDrive}, PTags: []string{me}, Since: watermark},
	}

	sub, err := e.relay.Subscribe(ctx, filters)
	if err != nil {
		e.mu.Lock()
		e.state = StateIdle
		e.mu.Unlock()
		return NewNetworkFailed("opening subscription", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	e.mu.Lock()
	e.sub = sub
	e.cancel = cancel
	e.done = done
	e.state = StateLive
	e.mu.Unlock()

	go e.run(runCtx, sub, done)
	return nil
}

// Stop cancels the subscription and waits for the ingestion goroutine to
// exit. Stopping a non-running engine is a no-op.
func (e *SyncEngine) Stop() error {
	e.mu.Lock()
	cancel := e.cancel
	sub := e.sub
	done := e.done
	if e.state == StateIdle || e.state == StateStopped {
		e.mu.Unlock()
		return nil
	}
	e.state = StateIdle
	e.cancel = nil
	e.sub = nil
	e.done = nil
	e.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if sub != nil {
		_ = sub.Close()
	}
	if done != nil {
		<-done
	}
	return nil
}

// OnAccountChanged stops the current subscription and calls Start again.
// The engine's signer and index are fixed at construction, so the
// restarted subscription is for the same account and resumes from that
// index's current watermark; no watermark is cleared.
func (e *SyncEngine) OnAccountChanged(ctx context.Context) error {
	if err := e.Stop(); err != nil {
		return err
	}
	return e.Start(ctx)
}

// SyncNow is a best-effort quiescence point. With a live subscription
// there is nothing further to do locally; implementers backed by a
// relay that supports historical re-query may perform one here.
func (e *SyncEngine) SyncNow(ctx context.Context) error {
	return nil
}

// Dispose permanently stops the engine and closes the change stream.
// Operations after Dispose observe ConcurrencyTerminated.
func (e *SyncEngine) Dispose() {
	_ = e.Stop()
	e.mu.Lock()
	e.state = StateStopped
	e.mu.Unlock()
	e.stream.Dispose()
}

func (e *SyncEngine) run(ctx context.Context, sub Subscription, done chan struct{}) {
	defer close(done)
	events := sub.Events()
	errs := sub.Errs()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			e.ingest(event)
		case err, ok := <-errs:
			if !ok {
				continue
			}
			e.log.Warn("relay subscription error", "error", err)
		}
	}
}

// ingest applies the §4.E per-event pipeline: dedup, DELETE application,
// or DRIVE decrypt/parse/upsert. Any failure beyond step 1 drops the
// event silently, per invariant 3.
func (e *SyncEngine) ingest(event *Event) {
	present, err := e.index.Has(event.ID)
	if err != nil {
		e.log.Warn("index lookup failed during ingest", "event_id", event.ID, "error", err)
		return
	}
	if present {
		return
	}

	switch event.Kind {
	case KindDelete:
		e.applyDelete(event)
	case KindDrive:
		e.applyDrive(event)
	default:
		e.log.Debug("dropping event of unrecognized kind", "event_id", event.ID, "kind", event.Kind)
	}
}

func (e *SyncEngine) applyDelete(event *Event) {
	for _, targetID := range event.TagValues("e") {
		record, err := e.index.Get(targetID)
		if err != nil {
			e.log.Warn("index lookup failed applying tombstone", "target_id", targetID, "error", err)
			continue
		}
		if record == nil {
			// Blind delete: target not yet seen. Nothing to emit.
			continue
		}
		if record.Event.PubKey != event.PubKey {
			e.log.Debug("dropping tombstone with mismatched author", "target_id", targetID)
			continue
		}
		path := record.DecryptedContent.Path
		if err := e.index.Delete(targetID); err != nil {
			e.log.Warn("index delete failed applying tombstone", "target_id", targetID, "error", err)
			continue
		}
		e.stream.Emit(ChangeNotification{Type: ChangeDeleted, Path: path, Timestamp: timeFromUnix(event.CreatedAt)})
	}
}

func (e *SyncEngine) applyDrive(event *Event) {
	me := e.signer.PubKey()
	senderPubKey := event.PubKey
	if event.PubKey == me {
		senderPubKey = me
	}

	content, err := ParseDriveContent(event, e.sealer, senderPubKey)
	if err != nil {
		e.log.Debug("dropping undecryptable or unparsable drive event", "event_id", event.ID, "error", err)
		return
	}

	record := &IndexRecord{
		Event:            *event,
		DecryptedContent: *content,
	}
	if p := event.Tag("p"); len(p) >= 2 {
		record.SharedWith = p[1]
	}

	if err := e.index.Put(record); err != nil {
		e.log.Warn("index put failed during ingest", "event_id", event.ID, "error", err)
		return
	}
	e.stream.Emit(ChangeNotification{Type: ChangeAdded, Path: content.Path, Timestamp: timeFromUnix(event.CreatedAt)})
}
