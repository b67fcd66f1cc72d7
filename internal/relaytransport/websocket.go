package relaytransport

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"nostrdrive/internal/drive"
)

// WebSocket is a drive.RelayClient over a single NIP-01-shaped relay
// connection: subscriptions are multiplexed over one socket by a
// per-subscription id, matching the wire protocol's ["REQ", sub_id,
// filter...] / ["EVENT", sub_id, event] / ["CLOSE", sub_id] framing.
type WebSocket struct {
	conn *websocket.Conn

	mu   sync.Mutex
	subs map[string]*wsSubscription

	writeMu sync.Mutex

	readerDone chan struct{}
}

// Dial opens a WebSocket connection to url and starts the background
// frame reader.
func Dial(ctx context.Context, url string) (*WebSocket, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dialing relay %s: %w", url, err)
	}
	c := &WebSocket{
		conn:       conn,
		subs:       make(map[string]*wsSubscription),
		readerDone: make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

type wsSubscription struct {
	id     string
	client *WebSocket
	events chan *drive.Event
	errs   chan error
	closed bool
}

func (s *wsSubscription) Events() <-chan *drive.Event { return s.events }
func (s *wsSubscription) Errs() <-chan error           { return s.errs }

func (s *wsSubscription) Close() error {
	s.client.mu.Lock()
	if s.closed {
		s.client.mu.Unlock()
		return nil
	}
	s.closed = true
	delete(s.client.subs, s.id)
	close(s.events)
	s.client.mu.Unlock()

	return s.client.writeFrame([]any{"CLOSE", s.id})
}

// wireFilter is the NIP-01 JSON shape of a filter object.
type wireFilter struct {
	IDs     []string `json:"ids,omitempty"`
	Authors []string `json:"authors,omitempty"`
	Kinds   []int    `json:"kinds,omitempty"`
	PTags   []string `json:"#p,omitempty"`
	Since   int64    `json:"since,omitempty"`
	Limit   int      `json:"limit,omitempty"`
}

func toWireFilter(f drive.RelayFilter) wireFilter {
	return wireFilter{
		IDs:     f.IDs,
		Authors: f.Authors,
		Kinds:   f.Kinds,
		PTags:   f.PTags,
		Since:   f.Since,
		Limit:   f.Limit,
	}
}

func (c *WebSocket) Subscribe(ctx context.Context, filters []drive.RelayFilter) (drive.Subscription, error) {
	id := uuid.New().String()
	sub := &wsSubscription{
		id:     id,
		client: c,
		events: make(chan *drive.Event, 256),
		errs:   make(chan error, 1),
	}

	c.mu.Lock()
	c.subs[id] = sub
	c.mu.Unlock()

	frame := make([]any, 0, 2+len(filters))
	frame = append(frame, "REQ", id)
	for _, f := range filters {
		frame = append(frame, toWireFilter(f))
	}
	if err := c.writeFrame(frame); err != nil {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
		return nil, fmt.Errorf("sending REQ: %w", err)
	}

	go func() {
		<-ctx.Done()
		sub.Close()
	}()

	return sub, nil
}

func (c *WebSocket) Publish(ctx context.Context, event *drive.Event) error {
	return c.writeFrame([]any{"EVENT", event})
}

func (c *WebSocket) Close() error {
	c.mu.Lock()
	for id, sub := range c.subs {
		if !sub.closed {
			sub.closed = true
			close(sub.events)
		}
		delete(c.subs, id)
	}
	c.mu.Unlock()
	return c.conn.Close()
}

func (c *WebSocket) writeFrame(frame []any) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("marshaling frame: %w", err)
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *WebSocket) readLoop() {
	defer close(c.readerDone)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.broadcastErr(err)
			return
		}
		c.handleFrame(data)
	}
}

func (c *WebSocket) handleFrame(data []byte) {
	var frame []json.RawMessage
	if err := json.Unmarshal(data, &frame); err != nil || len(frame) < 2 {
		return
	}
	var label string
	if err := json.Unmarshal(frame[0], &label); err != nil {
		return
	}

	switch label {
	case "EVENT":
		if len(frame) < 3 {
			return
		}
		var subID string
		if err := json.Unmarshal(frame[1], &subID); err != nil {
			return
		}
		var event drive.Event
		if err := json.Unmarshal(frame[2], &event); err != nil {
			return
		}
		c.deliver(subID, &event)
	case "EOSE", "NOTICE", "OK", "CLOSED":
		// No further action: this client only cares about ingested
		// events and relies on the sync engine's own dedup and
		// watermark logic rather than end-of-stored-events framing.
	}
}

func (c *WebSocket) deliver(subID string, event *drive.Event) {
	c.mu.Lock()
	sub, ok := c.subs[subID]
	c.mu.Unlock()
	if !ok {
		return
	}
	select {
	case sub.events <- event:
	default:
	}
}

func (c *WebSocket) broadcastErr(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, sub := range c.subs {
		select {
		case sub.errs <- err:
		default:
		}
	}
}

var _ drive.RelayClient = (*WebSocket)(nil)

// WebSocketFactory opens a fresh WebSocket connection per scratch
// client request, used by access_shared_file so the scratch client is
// never shared with the main engine's connection.
type WebSocketFactory struct{}

func (WebSocketFactory) NewClient(relays []string) (drive.RelayClient, error) {
	if len(relays) == 0 {
		return nil, drive.NewInvalidArgument("at least one relay URL is required")
	}
	return Dial(context.Background(), relays[0])
}

var _ drive.RelayClientFactory = WebSocketFactory{}
