package storage

import (
	"context"
	"time"
)

// Storage abstracts persistence for tariffs, tariff snapshots and user
// preferences. Appliance data is never persisted.
type Storage interface {
	// Tariffs
	ListTariffs(ctx context.Context) ([]Tariff, error)
	GetTariff(ctx context.Context, key string) (*Tariff, error)
	UpsertTariff(ctx context.Context, t Tariff) error

	// Tariff snapshots
	GetTariffSnapshot(ctx context.Context, tariff string) (*TariffSnapshot, error)
	SaveTariffSnapshot(ctx context.Context, snap TariffSnapshot) error

	// Preferences
	GetPreferences(ctx context.Context, owner string) (*Preferences, error)
	SavePreferences(ctx context.Context, p Preferences) error

	// Settings
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error

	// Scheduled jobs & locking
	AcquireAdvisoryLock(ctx context.Context, key int64) (bool, error)
	ReleaseAdvisoryLock(ctx context.Context, key int64) (bool, error)
	UpdateScheduledJob(ctx context.Context, name string, started time.Time, dur time.Duration, success bool, errMsg string) error
	GetScheduledJob(ctx context.Context, name string) (*ScheduledJob, error)

	Ping(ctx context.Context) error
	// Close releases any resources (no-op for in-memory).
	Close() error
}
