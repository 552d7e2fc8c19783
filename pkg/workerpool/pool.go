// Package workerpool provides a bounded goroutine pool with backpressure.
//
// The image service uploads several files at once through a shared pool so a
// large multi-upload never spawns an unbounded number of S3 calls:
//
//	pool := workerpool.New(4)
//	defer pool.Shutdown()
//
//	errs := pool.Run(ctx, tasks)
package workerpool

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shashiranjanraj/vastra/pkg/logger"
)

// ErrPoolFull is returned by Submit when all workers are busy and the task
// queue is at capacity.
var ErrPoolFull = errors.New("workerpool: pool is full")

// ErrPoolClosed is returned by Submit after Shutdown has been called.
var ErrPoolClosed = errors.New("workerpool: pool is closed")

// Pool is a bounded goroutine pool.
type Pool struct {
	tasks   chan func()
	wg      sync.WaitGroup
	once    sync.Once
	closeCh chan struct{}
}

// New creates a Pool with the given number of workers.
func New(size int) *Pool {
	if size <= 0 {
		size = 1
	}

	p := &Pool{
		tasks:   make(chan func(), size*2),
		closeCh: make(chan struct{}),
	}

	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	return p
}

// Submit enqueues task without blocking.
//   - Returns ErrPoolFull if the task queue is at capacity.
//   - Returns ErrPoolClosed if Shutdown has been called.
func (p *Pool) Submit(task func()) error {
	select {
	case <-p.closeCh:
		return ErrPoolClosed
	default:
	}

	select {
	case p.tasks <- task:
		return nil
	default:
		return ErrPoolFull
	}
}

// SubmitWait blocks until a slot is free, ctx is done or the pool closes.
func (p *Pool) SubmitWait(ctx context.Context, task func()) error {
	select {
	case <-p.closeCh:
		return ErrPoolClosed
	default:
	}

	select {
	case <-p.closeCh:
		return ErrPoolClosed
	case <-ctx.Done():
		return ctx.Err()
	case p.tasks <- task:
		return nil
	}
}

// Run executes every task on the pool and waits for all of them. The
// returned slice is index-aligned with tasks; a nil entry means success.
func (p *Pool) Run(ctx context.Context, tasks []func(ctx context.Context) error) []error {
	errs := make([]error, len(tasks))
	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		err := p.SubmitWait(ctx, func() {
			defer wg.Done()
			defer func() {
				if rec := recover(); rec != nil {
					errs[i] = fmt.Errorf("workerpool: task panicked: %v", rec)
				}
			}()
			errs[i] = task(ctx)
		})
		if err != nil {
			wg.Done()
			errs[i] = err
		}
	}
	wg.Wait()
	return errs
}

// Shutdown stops accepting new tasks, runs what is already queued and
// waits for the workers to exit. It is safe to call multiple times.
func (p *Pool) Shutdown() {
	p.once.Do(func() {
		close(p.closeCh)
		p.wg.Wait()
	})
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case task := <-p.tasks:
			safeRun(task)
		case <-p.closeCh:
			for {
				select {
				case task := <-p.tasks:
					safeRun(task)
				default:
					return
				}
			}
		}
	}
}

// safeRun executes task, recovering from panics so a bad task doesn't kill
// the worker goroutine.
func safeRun(task func()) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("workerpool: task panicked", "panic", rec)
		}
	}()
	task()
}
