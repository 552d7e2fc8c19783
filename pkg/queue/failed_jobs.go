package queue

import (
	"context"
	"time"

	"github.com/shashiranjanraj/vastra/pkg/logger"
)

// FailedJobRecord is the row written for every job that exhausted its
// retries. The table is created by the migrations.
type FailedJobRecord struct {
	ID       uint      `gorm:"primaryKey;autoIncrement"`
	JobType  string    `gorm:"size:255;not null;index"`
	Payload  string    `gorm:"type:text;not null"`
	Error    string    `gorm:"type:text"`
	Attempts int       `gorm:"not null;default:0"`
	FailedAt time.Time `gorm:"not null"`
}

func (FailedJobRecord) TableName() string { return "failed_jobs" }

// persistFailed keeps the failure in memory and, when a store is
// configured, writes it to the database.
func (m *Manager) persistFailed(ctx context.Context, f FailedJob) {
	m.mu.Lock()
	m.failed = append(m.failed, f)
	m.mu.Unlock()

	if m.db == nil {
		return
	}

	record := FailedJobRecord{
		JobType:  f.Type,
		Payload:  string(f.Payload),
		Attempts: f.Attempts,
		FailedAt: f.FailedAt,
	}
	if f.Err != nil {
		record.Error = f.Err.Error()
	}
	if err := m.db.WithContext(ctx).Create(&record).Error; err != nil {
		logger.Error("queue: persist failed job", "type", f.Type, "error", err)
	}
}

// FailedJobs returns the failures recorded by this process.
func (m *Manager) FailedJobs() []FailedJob {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]FailedJob, len(m.failed))
	copy(out, m.failed)
	return out
}
