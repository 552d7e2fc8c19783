package workerpool_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shashiranjanraj/vastra/pkg/workerpool"
)

func TestPool_SubmitAndExecute(t *testing.T) {
	pool := workerpool.New(4)
	defer pool.Shutdown()

	const n = 100
	var count atomic.Int64

	var wg sync.WaitGroup
	wg.Add(n)

	for i := 0; i < n; i++ {
		err := pool.SubmitWait(context.Background(), func() {
			defer wg.Done()
			count.Add(1)
		})
		if err != nil {
			t.Fatalf("SubmitWait returned unexpected error: %v", err)
		}
	}

	wg.Wait()

	if got := count.Load(); got != n {
		t.Errorf("expected %d tasks to run, got %d", n, got)
	}
}

func TestPool_ErrPoolFull(t *testing.T) {
	pool := workerpool.New(1)
	defer pool.Shutdown()

	blocker := make(chan struct{})
	started := make(chan struct{})

	_ = pool.SubmitWait(context.Background(), func() {
		close(started)
		<-blocker
	})
	<-started

	// Buffer is twice the worker count.
	_ = pool.Submit(func() {})
	_ = pool.Submit(func() {})

	err := pool.Submit(func() {})
	if !errors.Is(err, workerpool.ErrPoolFull) {
		t.Errorf("expected ErrPoolFull, got %v", err)
	}

	close(blocker)
}

func TestPool_ErrPoolClosed(t *testing.T) {
	pool := workerpool.New(2)
	pool.Shutdown()

	if err := pool.Submit(func() {}); !errors.Is(err, workerpool.ErrPoolClosed) {
		t.Errorf("expected ErrPoolClosed after Shutdown, got %v", err)
	}
	if err := pool.SubmitWait(context.Background(), func() {}); !errors.Is(err, workerpool.ErrPoolClosed) {
		t.Errorf("expected ErrPoolClosed from SubmitWait, got %v", err)
	}
}

func TestPool_PanicRecovery(t *testing.T) {
	pool := workerpool.New(1)
	defer pool.Shutdown()

	_ = pool.SubmitWait(context.Background(), func() { panic("bad upload") })

	normal := make(chan struct{})
	_ = pool.SubmitWait(context.Background(), func() { close(normal) })

	select {
	case <-normal:
	case <-time.After(2 * time.Second):
		t.Fatal("pool did not recover from panic")
	}
}

func TestPool_RunCollectsErrorsByIndex(t *testing.T) {
	pool := workerpool.New(2)
	defer pool.Shutdown()

	boom := errors.New("boom")
	tasks := []func(context.Context) error{
		func(context.Context) error { return nil },
		func(context.Context) error { return boom },
		func(context.Context) error { panic("oops") },
		func(context.Context) error { return nil },
	}

	errs := pool.Run(context.Background(), tasks)
	if len(errs) != 4 {
		t.Fatalf("expected 4 results, got %d", len(errs))
	}
	if errs[0] != nil || errs[3] != nil {
		t.Errorf("unexpected errors: %v", errs)
	}
	if !errors.Is(errs[1], boom) {
		t.Errorf("expected boom at index 1, got %v", errs[1])
	}
	if errs[2] == nil {
		t.Error("expected panic to surface as an error")
	}
}

func TestPool_ShutdownDrainsQueue(t *testing.T) {
	pool := workerpool.New(2)

	var ran atomic.Int32
	for i := 0; i < 4; i++ {
		_ = pool.SubmitWait(context.Background(), func() {
			time.Sleep(time.Millisecond)
			ran.Add(1)
		})
	}
	pool.Shutdown()

	if ran.Load() != 4 {
		t.Errorf("expected queued tasks to finish, ran %d", ran.Load())
	}
}
