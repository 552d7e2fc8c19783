// Package event provides an in-process publish/subscribe dispatcher.
//
// Services fire domain events after their transaction commits; listeners
// refresh caches, enqueue emails or push live updates:
//
//	bus.Listen(events.OrderPlaced, func(ctx context.Context, p any) { ... })
//	bus.Fire(ctx, events.OrderPlaced, order)
package event

import (
	"context"
	"sync"

	"github.com/shashiranjanraj/vastra/pkg/logger"
)

// Handler receives an event payload.
type Handler func(ctx context.Context, payload any)

// Bus dispatches named events to registered listeners.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	wg       sync.WaitGroup
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: map[string][]Handler{}}
}

// Listen registers a handler for the given event name.
func (b *Bus) Listen(event string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[event] = append(b.handlers[event], handler)
}

func (b *Bus) listeners(event string) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	hs := make([]Handler, len(b.handlers[event]))
	copy(hs, b.handlers[event])
	return hs
}

// Fire dispatches an event synchronously to all registered listeners.
// A panicking listener is logged and does not stop the others.
func (b *Bus) Fire(ctx context.Context, event string, payload any) {
	for _, h := range b.listeners(event) {
		b.call(ctx, event, h, payload)
	}
}

// FireAsync dispatches the event to all listeners concurrently and returns
// immediately. Listeners get a context detached from the caller's
// cancellation so they outlive the request that fired the event.
func (b *Bus) FireAsync(ctx context.Context, event string, payload any) {
	detached := context.WithoutCancel(ctx)
	for _, h := range b.listeners(event) {
		b.wg.Add(1)
		go func(h Handler) {
			defer b.wg.Done()
			b.call(detached, event, h, payload)
		}(h)
	}
}

// Wait blocks until every FireAsync listener has returned.
func (b *Bus) Wait() { b.wg.Wait() }

// Flush removes all listeners.
func (b *Bus) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = map[string][]Handler{}
}

func (b *Bus) call(ctx context.Context, event string, h Handler, payload any) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.WithCtx(ctx).Error("event listener panicked", "event", event, "panic", rec)
		}
	}()
	h(ctx, payload)
}
