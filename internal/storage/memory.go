package storage

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStorage is an in-memory Storage implementation, useful for tests and
// simple single-process deployments.
type MemoryStorage struct {
	mu       sync.RWMutex
	tariffs  map[string]Tariff
	snaps    map[string]TariffSnapshot
	prefs    map[string]Preferences
	settings map[string]string
	jobs     map[string]ScheduledJob
}

// NewMemory returns an empty MemoryStorage.
func NewMemory() *MemoryStorage {
	return &MemoryStorage{
		tariffs:  make(map[string]Tariff),
		snaps:    make(map[string]TariffSnapshot),
		prefs:    make(map[string]Preferences),
		settings: make(map[string]string),
		jobs:     make(map[string]ScheduledJob),
	}
}

// NewMemoryWithTariffs returns a MemoryStorage preloaded with tariffs.
// Conversion from the rates catalog is done by callers to avoid an import
// cycle.
func NewMemoryWithTariffs(list []Tariff) *MemoryStorage {
	m := NewMemory()
	for _, t := range list {
		m.tariffs[t.Key] = t
	}
	return m
}

func (m *MemoryStorage) Close() error { return nil }

func (m *MemoryStorage) Ping(ctx context.Context) error { return nil }

func (m *MemoryStorage) ListTariffs(ctx context.Context) ([]Tariff, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Tariff, 0, len(m.tariffs))
	for _, t := range m.tariffs {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *MemoryStorage) GetTariff(ctx context.Context, key string) (*Tariff, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tariffs[key]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (m *MemoryStorage) UpsertTariff(ctx context.Context, t Tariff) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tariffs[t.Key] = t
	return nil
}

func (m *MemoryStorage) GetTariffSnapshot(ctx context.Context, tariff string) (*TariffSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.snaps[tariff]
	if !ok {
		return nil, nil
	}
	cp := s
	cp.Payload = append([]byte(nil), s.Payload...)
	return &cp, nil
}

func (m *MemoryStorage) SaveTariffSnapshot(ctx context.Context, snap TariffSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if snap.FetchedAt.IsZero() {
		snap.FetchedAt = time.Now()
	}
	snap.Payload = append([]byte(nil), snap.Payload...)
	m.snaps[snap.Tariff] = snap
	return nil
}

func (m *MemoryStorage) GetPreferences(ctx context.Context, owner string) (*Preferences, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.prefs[owner]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *MemoryStorage) SavePreferences(ctx context.Context, p Preferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now()
	}
	m.prefs[p.Owner] = p
	return nil
}

func (m *MemoryStorage) GetSetting(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings[key], nil
}

func (m *MemoryStorage) SetSetting(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[key] = value
	return nil
}

// AcquireAdvisoryLock always succeeds: a memory backend is a single instance.
func (m *MemoryStorage) AcquireAdvisoryLock(ctx context.Context, key int64) (bool, error) {
	return true, nil
}

func (m *MemoryStorage) ReleaseAdvisoryLock(ctx context.Context, key int64) (bool, error) {
	return true, nil
}

func (m *MemoryStorage) UpdateScheduledJob(ctx context.Context, name string, started time.Time, dur time.Duration, success bool, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	status := 0
	if success {
		status = 1
	}
	m.jobs[name] = ScheduledJob{
		Name:           name,
		LastRunAt:      started,
		LastDurationMs: dur.Milliseconds(),
		LastSuccess:    status,
		LastError:      errMsg,
	}
	return nil
}

func (m *MemoryStorage) GetScheduledJob(ctx context.Context, name string) (*ScheduledJob, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	j, ok := m.jobs[name]
	if !ok {
		return nil, nil
	}
	return &j, nil
}
