package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/shashiranjanraj/vastra/config"
	"github.com/shashiranjanraj/vastra/pkg/logger"
)

// Manager holds the configured disks.
type Manager struct {
	mu          sync.RWMutex
	disks       map[string]Disk
	defaultDisk string
}

// NewManager returns a manager whose default disk is named def.
func NewManager(def string) *Manager {
	return &Manager{disks: map[string]Disk{}, defaultDisk: def}
}

// FromConfig boots the local disk and, when S3_BUCKET is set, the s3 disk.
// A misconfigured S3 disk is logged and left out; if it was the default the
// local disk takes over.
func FromConfig(ctx context.Context) (*Manager, error) {
	m := NewManager(config.StorageDefault())

	local, err := NewLocalDisk(config.StorageLocalRoot(), config.StorageURL())
	if err != nil {
		return nil, err
	}
	m.Register("local", local)

	if config.StorageS3Bucket() != "" {
		d, err := NewS3Disk(ctx, S3Config{
			Bucket:   config.StorageS3Bucket(),
			Region:   config.StorageS3Region(),
			Key:      config.StorageS3Key(),
			Secret:   config.StorageS3Secret(),
			Endpoint: config.StorageS3Endpoint(),
			URL:      config.StorageS3URL(),
		})
		if err != nil {
			logger.Warn("storage: s3 disk disabled", "error", err)
		} else {
			m.Register("s3", d)
		}
	}

	if _, err := m.Disk(m.defaultDisk); err != nil {
		logger.Warn("storage: default disk unavailable, using local", "disk", m.defaultDisk)
		m.defaultDisk = "local"
	}
	return m, nil
}

// Register adds or replaces a disk.
func (m *Manager) Register(name string, d Disk) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disks[name] = d
}

// Disk returns the named disk.
func (m *Manager) Disk(name string) (Disk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.disks[name]
	if !ok {
		return nil, fmt.Errorf("storage: disk %q is not configured", name)
	}
	return d, nil
}

// Default returns the default disk. It panics when the default disk was
// never registered, which FromConfig rules out.
func (m *Manager) Default() Disk {
	d, err := m.Disk(m.defaultDisk)
	if err != nil {
		panic(err)
	}
	return d
}

// Local returns the local disk when one is registered.
func (m *Manager) Local() (*LocalDisk, bool) {
	d, err := m.Disk("local")
	if err != nil {
		return nil, false
	}
	l, ok := d.(*LocalDisk)
	return l, ok
}

// Names lists the registered disks.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.disks))
	for name := range m.disks {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
