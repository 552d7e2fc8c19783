// Package queue runs background jobs such as order emails and admin
// notifications.
//
// Jobs are JSON-encoded with their registered type name, pushed to a driver
// (memory or Redis) and executed by workers with retry:
//
//	q := queue.New(queue.NewMemoryDriver(1000))
//	q.Register(func() queue.Job { return &jobs.OrderConfirmationEmail{} })
//	q.Dispatch(ctx, &jobs.OrderConfirmationEmail{OrderID: 42})
//	go q.Work(ctx, 4)
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/vastra/pkg/logger"
	"github.com/shashiranjanraj/vastra/pkg/metrics"
)

// ErrUnknownJob is returned when a payload names a type nobody registered.
var ErrUnknownJob = errors.New("queue: unknown job type")

// Job is the interface every queued job must satisfy.
type Job interface {
	// Handle executes the job. Return a non-nil error to signal failure.
	Handle(ctx context.Context) error
}

// FailedJob holds information about a job that exhausted its retries.
type FailedJob struct {
	Type     string
	Payload  json.RawMessage
	Err      error
	FailedAt time.Time
	Attempts int
}

// Driver is the queue storage backend.
type Driver interface {
	Push(ctx context.Context, payload []byte) error
	// Pop blocks until a payload is available. A nil payload with a nil
	// error means the wait timed out and the caller should poll again.
	Pop(ctx context.Context) ([]byte, error)
}

// DelayedDriver is implemented by drivers that can hold a job until a
// given time.
type DelayedDriver interface {
	PushDelayed(ctx context.Context, payload []byte, delay time.Duration) error
}

// ------------------- Manager -------------------

// Manager owns the driver, the job registry and the failed-job log.
type Manager struct {
	mu       sync.RWMutex
	driver   Driver
	registry map[string]func() Job
	failed   []FailedJob
	maxRetry int
	backoff  func(attempt int) time.Duration
	db       *gorm.DB
}

// Option configures a Manager.
type Option func(*Manager)

// WithMaxRetry sets how many times a failing job is attempted.
func WithMaxRetry(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.maxRetry = n
		}
	}
}

// WithBackoff replaces the linear one-second-per-attempt backoff.
func WithBackoff(fn func(attempt int) time.Duration) Option {
	return func(m *Manager) { m.backoff = fn }
}

// WithFailedJobStore persists exhausted jobs to the failed_jobs table.
func WithFailedJobStore(db *gorm.DB) Option {
	return func(m *Manager) { m.db = db }
}

// New creates a Manager on top of driver.
func New(driver Driver, opts ...Option) *Manager {
	m := &Manager{
		driver:   driver,
		registry: map[string]func() Job{},
		maxRetry: 3,
		backoff:  func(attempt int) time.Duration { return time.Duration(attempt) * time.Second },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Register makes a job type available for decoding. The factory must
// return a pointer so the payload can be unmarshalled into it.
func (m *Manager) Register(factory func() Job) {
	name := typeName(factory())
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registry[name] = factory
}

func typeName(job Job) string {
	t := reflect.TypeOf(job)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.String()
}

// ------------------- Dispatch -------------------

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Dispatch pushes job onto the queue for immediate processing.
func (m *Manager) Dispatch(ctx context.Context, job Job) error {
	env, err := encode(job)
	if err != nil {
		return err
	}
	return m.driver.Push(ctx, env)
}

// DispatchAfter pushes job onto the queue after delay. Drivers without
// native delay support get a timer in this process.
func (m *Manager) DispatchAfter(ctx context.Context, job Job, delay time.Duration) error {
	env, err := encode(job)
	if err != nil {
		return err
	}
	if d, ok := m.driver.(DelayedDriver); ok {
		return d.PushDelayed(ctx, env, delay)
	}
	detached := context.WithoutCancel(ctx)
	time.AfterFunc(delay, func() {
		if err := m.driver.Push(detached, env); err != nil {
			logger.Error("queue: delayed dispatch failed", "type", typeName(job), "error", err)
		}
	})
	return nil
}

func encode(job Job) ([]byte, error) {
	name := typeName(job)
	payload, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("queue: marshal job %s: %w", name, err)
	}
	env, err := json.Marshal(envelope{Type: name, Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("queue: marshal envelope: %w", err)
	}
	return env, nil
}

// ------------------- Worker -------------------

// Work runs n workers and blocks until ctx is cancelled and every
// in-flight job has finished.
func (m *Manager) Work(ctx context.Context, n int) {
	if n <= 0 {
		n = 1
	}
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.work(ctx)
		}()
	}
	logger.Info("queue: workers started", "count", n)
	wg.Wait()
	logger.Info("queue: workers stopped")
}

func (m *Manager) work(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		raw, err := m.driver.Pop(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn("queue: pop failed", "error", err)
			sleep(ctx, 500*time.Millisecond)
			continue
		}
		if raw == nil {
			continue
		}
		// Jobs run to completion even during shutdown.
		if err := m.Process(context.WithoutCancel(ctx), raw); err != nil {
			logger.Error("queue: job dropped", "error", err)
		}
	}
}

// Process decodes and runs one payload with retries. It returns an error
// only for payloads that cannot be decoded; handler failures end up in the
// failed-job log.
func (m *Manager) Process(ctx context.Context, raw []byte) error {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("queue: bad envelope: %w", err)
	}

	m.mu.RLock()
	factory, ok := m.registry[env.Type]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, env.Type)
	}

	job := factory()
	if err := json.Unmarshal(env.Payload, job); err != nil {
		return fmt.Errorf("queue: unmarshal %s: %w", env.Type, err)
	}

	m.runWithRetry(ctx, job, env)
	return nil
}

func (m *Manager) runWithRetry(ctx context.Context, job Job, env envelope) {
	start := time.Now()
	var lastErr error
	for attempt := 1; attempt <= m.maxRetry; attempt++ {
		if err := job.Handle(ctx); err != nil {
			lastErr = err
			logger.Warn("queue: job failed",
				"type", env.Type, "attempt", attempt, "error", err)
			if attempt < m.maxRetry {
				sleep(ctx, m.backoff(attempt))
			}
			continue
		}
		metrics.RecordQueueJob(env.Type, "success", start)
		logger.Debug("queue: job processed", "type", env.Type, "attempts", attempt)
		return
	}

	metrics.RecordQueueJob(env.Type, "failed", start)
	m.persistFailed(ctx, FailedJob{
		Type:     env.Type,
		Payload:  env.Payload,
		Err:      lastErr,
		FailedAt: time.Now(),
		Attempts: m.maxRetry,
	})
	logger.Error("queue: job exhausted retries", "type", env.Type, "error", lastErr)
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
