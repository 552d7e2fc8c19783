// Package sse streams Server-Sent Events to storefront clients.
//
// A Broker fans published events out to every open stream:
//
//	broker := sse.NewBroker()
//	router.Get("/catalog/stream", "catalog.stream", broker.ServeHTTP)
//	broker.Publish("catalog.refreshed", map[string]any{"version": 7})
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Stream represents an active SSE connection to one client.
type Stream struct {
	w       http.ResponseWriter
	r       *http.Request
	flusher http.Flusher
	closed  bool
}

// New creates an SSE stream and sets the required headers.
// Returns nil if the ResponseWriter does not support flushing.
func New(w http.ResponseWriter, r *http.Request) *Stream {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return nil
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // disable nginx buffering
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &Stream{w: w, r: r, flusher: flusher}
}

// Send writes a named SSE event with a JSON-encoded data payload.
func (s *Stream) Send(event string, data any) error {
	if s.IsClosed() {
		return nil
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("sse: marshal: %w", err)
	}
	return s.write(Event{Name: event, Data: payload})
}

func (s *Stream) write(e Event) error {
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", e.Name, e.Data); err != nil {
		s.closed = true
		return err
	}
	s.flusher.Flush()
	return nil
}

// Comment writes an SSE comment, used as a keepalive heartbeat.
func (s *Stream) Comment(msg string) {
	if s.IsClosed() {
		return
	}
	fmt.Fprintf(s.w, ": %s\n\n", msg)
	s.flusher.Flush()
}

// IsClosed reports whether the client has disconnected.
func (s *Stream) IsClosed() bool {
	if s == nil {
		return true
	}
	select {
	case <-s.r.Context().Done():
		s.closed = true
	default:
	}
	return s.closed
}

// ─── Broker ───────────────────────────────────────────────────────────────────

// Event is one encoded message on the wire.
type Event struct {
	Name string
	Data []byte
}

// Broker fans published events out to all subscribers. Slow subscribers
// miss events rather than blocking the publisher.
type Broker struct {
	mu        sync.RWMutex
	subs      map[chan Event]struct{}
	heartbeat time.Duration
}

// NewBroker creates a broker with a 25s heartbeat.
func NewBroker() *Broker {
	return &Broker{subs: map[chan Event]struct{}{}, heartbeat: 25 * time.Second}
}

// Subscribe registers a new listener. Call the returned func to leave.
func (b *Broker) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			b.mu.Unlock()
		})
	}
}

// Publish sends an event to every subscriber and returns how many
// received it.
func (b *Broker) Publish(event string, data any) (int, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return 0, fmt.Errorf("sse: marshal: %w", err)
	}
	e := Event{Name: event, Data: payload}

	b.mu.RLock()
	defer b.mu.RUnlock()
	delivered := 0
	for ch := range b.subs {
		select {
		case ch <- e:
			delivered++
		default:
		}
	}
	return delivered, nil
}

// Subscribers returns the number of open streams.
func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// ServeHTTP streams published events until the client goes away.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	stream := New(w, r)
	if stream == nil {
		return
	}
	events, leave := b.Subscribe()
	defer leave()

	ticker := time.NewTicker(b.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case e := <-events:
			if err := stream.write(e); err != nil {
				return
			}
		case <-ticker.C:
			stream.Comment("ping")
		}
	}
}
