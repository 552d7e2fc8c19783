// Package schedule runs periodic maintenance such as expiring abandoned
// payment intents and refreshing the catalog snapshot.
//
//	s := schedule.New()
//	s.Every(5).Minutes().Name("payments:expire").WithoutOverlapping().Run(expire)
//	s.Cron("0 3 * * *").Name("reports:daily").Run(report)
//	go s.Start(ctx)
package schedule

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shashiranjanraj/vastra/pkg/logger"
)

// Task is the function signature for a scheduled task.
type Task func(ctx context.Context) error

type entry struct {
	id        string
	interval  time.Duration
	cronExpr  string
	task      Task
	lastRun   time.Time
	running   bool
	noOverlap bool
	mu        sync.Mutex
}

// Scheduler holds registered entries and dispatches them when due.
type Scheduler struct {
	mu      sync.Mutex
	entries []*entry
	wg      sync.WaitGroup
	tick    time.Duration
	now     func() time.Time
}

// New returns an empty scheduler that checks entries every second.
func New() *Scheduler {
	return &Scheduler{tick: time.Second, now: time.Now}
}

// Builder configures a single entry before it is registered.
type Builder struct {
	s *Scheduler
	e *entry
}

// Every starts a fluent builder with n units.
func (s *Scheduler) Every(n int) *Frequency { return &Frequency{s: s, n: n} }

// Cron schedules using a 5-field expression (min hour dom mon dow). Each
// field accepts *, n, */step, a-b and comma lists of those. A cron entry
// runs at most once per matching minute.
func (s *Scheduler) Cron(expr string) *Builder {
	return &Builder{s: s, e: &entry{cronExpr: expr}}
}

// Frequency is the "Every(n)" half of the fluent builder.
type Frequency struct {
	s *Scheduler
	n int
}

func (f *Frequency) unit(d time.Duration) *Builder {
	return &Builder{s: f.s, e: &entry{interval: time.Duration(f.n) * d}}
}

func (f *Frequency) Seconds() *Builder { return f.unit(time.Second) }
func (f *Frequency) Minutes() *Builder { return f.unit(time.Minute) }
func (f *Frequency) Hours() *Builder   { return f.unit(time.Hour) }

// WithoutOverlapping skips a run while the previous one is still executing.
func (b *Builder) WithoutOverlapping() *Builder {
	b.e.noOverlap = true
	return b
}

// Name gives the entry an identifier for logs and schedule:list.
func (b *Builder) Name(id string) *Builder {
	b.e.id = id
	return b
}

// Run registers the task.
func (b *Builder) Run(fn Task) {
	b.e.task = fn
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	if b.e.id == "" {
		b.e.id = fmt.Sprintf("task-%d", len(b.s.entries)+1)
	}
	b.s.entries = append(b.s.entries, b.e)
}

// ------------------- Scheduler loop -------------------

// Start dispatches due tasks until ctx is cancelled, then waits for running
// tasks to return.
func (s *Scheduler) Start(ctx context.Context) {
	logger.Info("schedule: scheduler started", "entries", len(s.List()))
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			logger.Info("schedule: scheduler stopped")
			return
		case <-ticker.C:
			s.RunDue(ctx)
		}
	}
}

// RunDue dispatches every entry that is due now.
func (s *Scheduler) RunDue(ctx context.Context) {
	now := s.now()
	s.mu.Lock()
	current := make([]*entry, len(s.entries))
	copy(current, s.entries)
	s.mu.Unlock()

	for _, e := range current {
		if isDue(e, now) {
			s.dispatch(ctx, e, now)
		}
	}
}

// Wait blocks until every dispatched task has returned.
func (s *Scheduler) Wait() { s.wg.Wait() }

func isDue(e *entry, now time.Time) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cronExpr != "" {
		minute := now.Truncate(time.Minute)
		return matchCron(e.cronExpr, now) && !e.lastRun.Equal(minute)
	}
	if e.lastRun.IsZero() {
		return true
	}
	return now.Sub(e.lastRun) >= e.interval
}

func (s *Scheduler) dispatch(ctx context.Context, e *entry, now time.Time) {
	e.mu.Lock()
	if e.noOverlap && e.running {
		e.mu.Unlock()
		logger.Warn("schedule: skipping overlapping task", "id", e.id)
		return
	}
	e.running = true
	if e.cronExpr != "" {
		e.lastRun = now.Truncate(time.Minute)
	} else {
		e.lastRun = now
	}
	e.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			e.mu.Lock()
			e.running = false
			e.mu.Unlock()
			if r := recover(); r != nil {
				logger.Error("schedule: task panicked", "id", e.id, "panic", r)
			}
		}()

		start := time.Now()
		if err := e.task(ctx); err != nil {
			logger.Error("schedule: task failed", "id", e.id, "error", err)
			return
		}
		logger.Debug("schedule: task finished", "id", e.id, "duration", time.Since(start))
	}()
}

// ------------------- Cron matching -------------------

func matchCron(expr string, t time.Time) bool {
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return false
	}
	values := []int{t.Minute(), t.Hour(), t.Day(), int(t.Month()), int(t.Weekday())}
	for i, f := range fields {
		if !matchField(f, values[i]) {
			return false
		}
	}
	return true
}

func matchField(field string, val int) bool {
	for _, part := range strings.Split(field, ",") {
		if matchPart(part, val) {
			return true
		}
	}
	return false
}

func matchPart(part string, val int) bool {
	switch {
	case part == "*":
		return true
	case strings.HasPrefix(part, "*/"):
		step, err := strconv.Atoi(part[2:])
		return err == nil && step > 0 && val%step == 0
	case strings.Contains(part, "-"):
		lo, hi, _ := strings.Cut(part, "-")
		a, errA := strconv.Atoi(lo)
		b, errB := strconv.Atoi(hi)
		return errA == nil && errB == nil && val >= a && val <= b
	default:
		n, err := strconv.Atoi(part)
		return err == nil && n == val
	}
}

// List describes the registered entries for schedule:list.
func (s *Scheduler) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		freq := e.cronExpr
		if freq == "" {
			freq = "every " + e.interval.String()
		}
		out = append(out, fmt.Sprintf("%s  [%s]", e.id, freq))
	}
	return out
}
