package queue_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/shashiranjanraj/vastra/pkg/queue"
)

// ─── Job types ────────────────────────────────────────────────────────────────

var (
	greeted  atomic.Int32
	attempts atomic.Int32
)

type greetJob struct {
	Name string `json:"name"`
}

func (j *greetJob) Handle(context.Context) error {
	if j.Name == "" {
		return errors.New("no name")
	}
	greeted.Add(1)
	return nil
}

type flakyJob struct {
	FailTimes int32 `json:"fail_times"`
}

func (j *flakyJob) Handle(context.Context) error {
	if attempts.Add(1) <= j.FailTimes {
		return errors.New("transient")
	}
	return nil
}

func newManager(opts ...queue.Option) (*queue.Manager, *queue.MemoryDriver) {
	d := queue.NewMemoryDriver(10)
	opts = append([]queue.Option{queue.WithBackoff(func(int) time.Duration { return 0 })}, opts...)
	m := queue.New(d, opts...)
	m.Register(func() queue.Job { return &greetJob{} })
	m.Register(func() queue.Job { return &flakyJob{} })
	return m, d
}

// ─── Tests ────────────────────────────────────────────────────────────────────

func TestDispatchAndWork(t *testing.T) {
	greeted.Store(0)
	m, _ := newManager()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Work(ctx, 2)
		close(done)
	}()

	for i := 0; i < 5; i++ {
		require.NoError(t, m.Dispatch(ctx, &greetJob{Name: "asha"}))
	}

	require.Eventually(t, func() bool { return greeted.Load() == 5 }, 2*time.Second, 10*time.Millisecond)
	cancel()
	<-done
}

func TestRetryThenSucceed(t *testing.T) {
	attempts.Store(0)
	m, d := newManager(queue.WithMaxRetry(3))
	ctx := context.Background()

	require.NoError(t, m.Dispatch(ctx, &flakyJob{FailTimes: 2}))
	raw, err := d.Pop(ctx)
	require.NoError(t, err)
	require.NoError(t, m.Process(ctx, raw))

	assert.Equal(t, int32(3), attempts.Load())
	assert.Empty(t, m.FailedJobs())
}

func TestExhaustedJobIsPersisted(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&queue.FailedJobRecord{}))

	m, d := newManager(queue.WithMaxRetry(2), queue.WithFailedJobStore(db))
	ctx := context.Background()

	require.NoError(t, m.Dispatch(ctx, &greetJob{}))
	raw, err := d.Pop(ctx)
	require.NoError(t, err)
	require.NoError(t, m.Process(ctx, raw))

	failed := m.FailedJobs()
	require.Len(t, failed, 1)
	assert.Equal(t, "queue_test.greetJob", failed[0].Type)
	assert.Equal(t, 2, failed[0].Attempts)

	var records []queue.FailedJobRecord
	require.NoError(t, db.Find(&records).Error)
	require.Len(t, records, 1)
	assert.Equal(t, "no name", records[0].Error)
}

func TestUnknownJobType(t *testing.T) {
	m := queue.New(queue.NewMemoryDriver(1))
	err := m.Process(context.Background(), []byte(`{"type":"nope","payload":{}}`))
	assert.ErrorIs(t, err, queue.ErrUnknownJob)
}

func TestMemoryDriverFull(t *testing.T) {
	d := queue.NewMemoryDriver(1)
	ctx := context.Background()
	require.NoError(t, d.Push(ctx, []byte("a")))
	assert.ErrorIs(t, d.Push(ctx, []byte("b")), queue.ErrQueueFull)
	assert.Equal(t, 1, d.Len())
}

func TestDispatchAfterWithMemoryDriver(t *testing.T) {
	m, d := newManager()
	require.NoError(t, m.DispatchAfter(context.Background(), &greetJob{Name: "later"}, 20*time.Millisecond))
	assert.Equal(t, 0, d.Len())
	require.Eventually(t, func() bool { return d.Len() == 1 }, time.Second, 5*time.Millisecond)
}
