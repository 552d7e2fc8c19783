package event

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFireCallsListenersInOrder(t *testing.T) {
	bus := NewBus()
	var got []string
	bus.Listen("order.placed", func(_ context.Context, p any) { got = append(got, "a:"+p.(string)) })
	bus.Listen("order.placed", func(_ context.Context, p any) { got = append(got, "b:"+p.(string)) })
	bus.Listen("other", func(_ context.Context, _ any) { got = append(got, "other") })

	bus.Fire(context.Background(), "order.placed", "VST1")

	assert.Equal(t, []string{"a:VST1", "b:VST1"}, got)
}

func TestPanickingListenerDoesNotStopOthers(t *testing.T) {
	bus := NewBus()
	called := false
	bus.Listen("x", func(context.Context, any) { panic("boom") })
	bus.Listen("x", func(context.Context, any) { called = true })

	assert.NotPanics(t, func() { bus.Fire(context.Background(), "x", nil) })
	assert.True(t, called)
}

func TestFireAsyncSurvivesCancelledContext(t *testing.T) {
	bus := NewBus()
	var n atomic.Int32
	var sawCancel atomic.Bool
	for i := 0; i < 5; i++ {
		bus.Listen("products.changed", func(ctx context.Context, _ any) {
			if ctx.Err() != nil {
				sawCancel.Store(true)
			}
			n.Add(1)
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bus.FireAsync(ctx, "products.changed", nil)
	bus.Wait()

	assert.Equal(t, int32(5), n.Load())
	assert.False(t, sawCancel.Load())
}

func TestFlush(t *testing.T) {
	bus := NewBus()
	called := false
	bus.Listen("x", func(context.Context, any) { called = true })
	bus.Flush()
	bus.Fire(context.Background(), "x", nil)
	assert.False(t, called)
}
