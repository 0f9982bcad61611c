package storage

import (
	"context"
	"fmt"
	"log/slog"
)

// Config controls how the storage backend is opened.
type Config struct {
	Driver  string
	DSN     string
	Tariffs []Tariff
}

// Open constructs a Storage based on the given configuration. Tariffs are
// seeded into every backend so the catalog is never empty.
func Open(ctx context.Context, cfg Config) (Storage, error) {
	drv := cfg.Driver
	if drv == "" {
		drv = "memory"
	}
	switch drv {
	case "memory":
		slog.Info("storage: using in-memory backend")
		return NewMemoryWithTariffs(cfg.Tariffs), nil

	case "sqlite", "postgres":
		slog.Info("storage: using gorm", "driver", drv)
		st, err := NewGormStorage(drv, cfg.DSN)
		if err != nil {
			return nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			st.Close()
			return nil, fmt.Errorf("storage migrate: %w", err)
		}
		for _, t := range cfg.Tariffs {
			if err := st.UpsertTariff(ctx, t); err != nil {
				st.Close()
				return nil, fmt.Errorf("storage seed tariff %s: %w", t.Key, err)
			}
		}
		return st, nil

	default:
		return nil, fmt.Errorf("unsupported storage driver %q", drv)
	}
}
