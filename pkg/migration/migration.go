// Package migration runs and tracks schema migrations.
//
// Migrations register themselves from init():
//
//	func init() {
//	    migration.Register("20240301000000_create_products_table", &CreateProductsTable{})
//	}
//
// and run from the CLI:
//
//	vastra migrate             // run all pending
//	vastra migrate:rollback    // roll back the last batch
//	vastra migrate:status
package migration

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/vastra/pkg/logger"
)

// Migration is the interface every migration must implement.
type Migration interface {
	Up(db *gorm.DB) error
	Down(db *gorm.DB) error
}

// Entry is a named migration.
type Entry struct {
	Name      string
	Migration Migration
}

// Record is the row stored in the tracking table.
type Record struct {
	ID    uint      `gorm:"primaryKey;autoIncrement"`
	Name  string    `gorm:"uniqueIndex;size:255;not null"`
	Batch int       `gorm:"not null"`
	RunAt time.Time `gorm:"autoCreateTime"`
}

func (Record) TableName() string { return "vastra_migrations" }

// ------------------- Registry -------------------

var (
	regMu    sync.Mutex
	registry []Entry
)

// Register adds a migration to the global registry. name should carry a
// sortable timestamp prefix; migrations run in name order.
func Register(name string, m Migration) {
	regMu.Lock()
	defer regMu.Unlock()
	registry = append(registry, Entry{Name: name, Migration: m})
}

// Registered returns the global registry sorted by name.
func Registered() []Entry {
	regMu.Lock()
	defer regMu.Unlock()
	out := make([]Entry, len(registry))
	copy(out, registry)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ------------------- Runner -------------------

// Runner executes and tracks a list of migrations.
type Runner struct {
	db      *gorm.DB
	entries []Entry
}

// New creates a Runner over the global registry.
func New(db *gorm.DB) *Runner {
	return NewWith(db, Registered())
}

// NewWith creates a Runner over an explicit list.
func NewWith(db *gorm.DB, entries []Entry) *Runner {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	return &Runner{db: db, entries: sorted}
}

func (r *Runner) ensureTable(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&Record{}); err != nil {
		return fmt.Errorf("migration: ensure table: %w", err)
	}
	return nil
}

func (r *Runner) ran(ctx context.Context) (map[string]Record, error) {
	var rows []Record
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("migration: load records: %w", err)
	}
	out := make(map[string]Record, len(rows))
	for _, rec := range rows {
		out[rec.Name] = rec
	}
	return out, nil
}

// Pending returns the migrations that have not run yet.
func (r *Runner) Pending(ctx context.Context) ([]Entry, error) {
	if err := r.ensureTable(ctx); err != nil {
		return nil, err
	}
	ran, err := r.ran(ctx)
	if err != nil {
		return nil, err
	}
	var pending []Entry
	for _, e := range r.entries {
		if _, ok := ran[e.Name]; !ok {
			pending = append(pending, e)
		}
	}
	return pending, nil
}

// Run executes all pending migrations as one batch and returns their names.
// Each migration and its record are written in one transaction.
func (r *Runner) Run(ctx context.Context) ([]string, error) {
	pending, err := r.Pending(ctx)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		logger.Info("migration: nothing to migrate")
		return nil, nil
	}

	batch, err := r.lastBatch(ctx)
	if err != nil {
		return nil, err
	}
	batch++

	var done []string
	for _, e := range pending {
		logger.Info("migration: running", "name", e.Name)
		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := e.Migration.Up(tx); err != nil {
				return err
			}
			return tx.Create(&Record{Name: e.Name, Batch: batch}).Error
		})
		if err != nil {
			return done, fmt.Errorf("migration: %s up: %w", e.Name, err)
		}
		done = append(done, e.Name)
	}

	logger.Info("migration: done", "ran", len(done), "batch", batch)
	return done, nil
}

// Rollback reverses every migration of the most recent batch, newest first.
func (r *Runner) Rollback(ctx context.Context) ([]string, error) {
	if err := r.ensureTable(ctx); err != nil {
		return nil, err
	}
	batch, err := r.lastBatch(ctx)
	if err != nil || batch == 0 {
		return nil, err
	}

	var records []Record
	if err := r.db.WithContext(ctx).Where("batch = ?", batch).Order("id desc").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("migration: load batch %d: %w", batch, err)
	}

	known := make(map[string]Migration, len(r.entries))
	for _, e := range r.entries {
		known[e.Name] = e.Migration
	}

	var done []string
	for _, rec := range records {
		m, ok := known[rec.Name]
		if !ok {
			return done, fmt.Errorf("migration: cannot roll back %s: not registered", rec.Name)
		}
		logger.Info("migration: rolling back", "name", rec.Name)
		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := m.Down(tx); err != nil {
				return err
			}
			return tx.Delete(&Record{}, rec.ID).Error
		})
		if err != nil {
			return done, fmt.Errorf("migration: %s down: %w", rec.Name, err)
		}
		done = append(done, rec.Name)
	}
	return done, nil
}

// Status is one row of migrate:status.
type Status struct {
	Name  string
	Ran   bool
	Batch int
}

// Status reports every known migration and whether it has run.
func (r *Runner) Status(ctx context.Context) ([]Status, error) {
	if err := r.ensureTable(ctx); err != nil {
		return nil, err
	}
	ran, err := r.ran(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Status, 0, len(r.entries))
	for _, e := range r.entries {
		rec, ok := ran[e.Name]
		out = append(out, Status{Name: e.Name, Ran: ok, Batch: rec.Batch})
	}
	return out, nil
}

func (r *Runner) lastBatch(ctx context.Context) (int, error) {
	var max *int
	err := r.db.WithContext(ctx).Model(&Record{}).Select("MAX(batch)").Scan(&max).Error
	if err != nil {
		return 0, fmt.Errorf("migration: read batch: %w", err)
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}
