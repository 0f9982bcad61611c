package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/bher20/ebillcalc/internal/billing"
	"github.com/bher20/ebillcalc/internal/storage"
)

// ErrUnknownTariff is returned for a key that is neither in the catalog nor
// in storage.
var ErrUnknownTariff = errors.New("rates: unknown tariff")

// Config controls how the rates service behaves.
type Config struct {
	// PDFPaths overrides a tariff's PDFPath by key.
	PDFPaths map[string]string
}

// Service resolves tariff keys to rate schedules, caching parsed schedules
// in storage.
type Service struct {
	cfg   Config
	store storage.Storage // may be nil for catalog-only mode
	now   func() time.Time
}

// Snapshot is the stored form of a resolved schedule.
type Snapshot struct {
	Tariff    string             `json:"tariff"`
	Source    string             `json:"source"`
	FetchedAt time.Time          `json:"fetched_at"`
	Bands     []billing.RateBand `json:"bands"`
}

// NewService returns a Service without storage caching.
func NewService(cfg Config) *Service {
	return &Service{cfg: cfg, now: time.Now}
}

// NewServiceWithStorage returns a Service that reads and writes schedule
// snapshots through st.
func NewServiceWithStorage(cfg Config, st storage.Storage) *Service {
	return &Service{cfg: cfg, store: st, now: time.Now}
}

// ListTariffs returns the catalog merged with tariffs known only to storage.
func (s *Service) ListTariffs(ctx context.Context) ([]TariffDescriptor, error) {
	out := Tariffs()
	if s.store == nil {
		return out, nil
	}
	rows, err := s.store.ListTariffs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tariffs: %w", err)
	}
	seen := make(map[string]bool, len(out))
	for _, t := range out {
		seen[strings.ToLower(t.Key)] = true
	}
	for _, row := range rows {
		if !seen[strings.ToLower(row.Key)] {
			out = append(out, descriptorFromRow(row))
		}
	}
	return out, nil
}

// Describe returns the descriptor for key with any configured PDF path
// applied.
func (s *Service) Describe(ctx context.Context, key string) (TariffDescriptor, error) {
	t, ok := GetTariff(key)
	if !ok && s.store != nil {
		row, err := s.store.GetTariff(ctx, key)
		if err != nil {
			return TariffDescriptor{}, fmt.Errorf("get tariff %s: %w", key, err)
		}
		if row != nil {
			t, ok = descriptorFromRow(*row), true
		}
	}
	if !ok {
		return TariffDescriptor{}, fmt.Errorf("%w: %s", ErrUnknownTariff, key)
	}
	if p := s.cfg.PDFPaths[strings.ToLower(t.Key)]; p != "" {
		t.PDFPath = p
	}
	return t, nil
}

// GetSchedule returns the schedule for key. It consults storage first; on a
// miss it parses the tariff PDF (or uses the built-in bands when no PDF is
// available) and writes a new snapshot.
func (s *Service) GetSchedule(ctx context.Context, key string) (*billing.RateSchedule, error) {
	t, err := s.Describe(ctx, key)
	if err != nil {
		return nil, err
	}

	if s.store != nil {
		snap, err := s.store.GetTariffSnapshot(ctx, t.Key)
		if err == nil && snap != nil && len(snap.Payload) > 0 {
			var cached Snapshot
			if err := json.Unmarshal(snap.Payload, &cached); err == nil {
				if sched, err := billing.NewRateSchedule(cached.Bands); err == nil {
					return sched, nil
				}
			}
			slog.Warn("rates: discarding unreadable snapshot", "tariff", t.Key)
		}
	}

	sched, source, err := s.load(t, false)
	if err != nil {
		return nil, err
	}
	s.save(ctx, t.Key, source, sched)
	return sched, nil
}

// ForceRefresh re-parses the tariff PDF, bypassing the cache. Unlike
// GetSchedule it fails when a configured PDF cannot be read.
func (s *Service) ForceRefresh(ctx context.Context, key string) (*billing.RateSchedule, error) {
	t, err := s.Describe(ctx, key)
	if err != nil {
		return nil, err
	}
	sched, source, err := s.load(t, true)
	if err != nil {
		return nil, err
	}
	s.save(ctx, t.Key, source, sched)
	return sched, nil
}

// ImportPDF parses the PDF at path and stores it as the current schedule of
// key, registering the tariff in storage when it is new.
func (s *Service) ImportPDF(ctx context.Context, key, path string) (*billing.RateSchedule, error) {
	if key == "" {
		return nil, &billing.ValidationError{Field: "tariff", Value: key}
	}
	sched, err := ParserFor(key).ParsePDF(path)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", path, err)
	}
	if s.store != nil {
		row, err := s.store.GetTariff(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("get tariff %s: %w", key, err)
		}
		if row == nil {
			t, ok := GetTariff(key)
			if !ok {
				t = TariffDescriptor{Key: key, Name: strings.ToUpper(key), Currency: "BDT"}
			}
			t.PDFPath = path
			if err := s.store.UpsertTariff(ctx, t.storageRow()); err != nil {
				return nil, fmt.Errorf("register tariff %s: %w", key, err)
			}
		}
	}
	s.save(ctx, key, "pdf:"+path, sched)
	return sched, nil
}

// Refreshable returns the tariffs that have a PDF to re-import.
func (s *Service) Refreshable(ctx context.Context) ([]TariffDescriptor, error) {
	list, err := s.ListTariffs(ctx)
	if err != nil {
		return nil, err
	}
	var out []TariffDescriptor
	for _, t := range list {
		if p := s.cfg.PDFPaths[strings.ToLower(t.Key)]; p != "" {
			t.PDFPath = p
		}
		if t.PDFPath != "" {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Service) load(t TariffDescriptor, strict bool) (*billing.RateSchedule, string, error) {
	if t.PDFPath != "" {
		if _, err := os.Stat(t.PDFPath); err == nil {
			sched, err := ParserFor(t.Key).ParsePDF(t.PDFPath)
			if err == nil {
				return sched, "pdf:" + t.PDFPath, nil
			}
			if strict {
				return nil, "", fmt.Errorf("parse %s pdf: %w", t.Key, err)
			}
			slog.Warn("rates: pdf parse failed, using built-in bands", "tariff", t.Key, "err", err)
		} else if strict {
			return nil, "", fmt.Errorf("%s pdf not found at %s: %w", t.Key, t.PDFPath, err)
		}
	} else if strict && len(t.Bands) == 0 {
		return nil, "", fmt.Errorf("no PDF path configured for %s", t.Key)
	}

	if len(t.Bands) == 0 {
		return nil, "", fmt.Errorf("tariff %s has no schedule", t.Key)
	}
	sched, err := billing.NewRateSchedule(t.Bands)
	if err != nil {
		return nil, "", fmt.Errorf("tariff %s: %w", t.Key, err)
	}
	return sched, "builtin", nil
}

// save is best-effort, like any cache write-back.
func (s *Service) save(ctx context.Context, key, source string, sched *billing.RateSchedule) {
	if s.store == nil {
		return
	}
	now := s.now().UTC()
	payload, err := json.Marshal(Snapshot{Tariff: key, Source: source, FetchedAt: now, Bands: sched.Bands()})
	if err != nil {
		return
	}
	if err := s.store.SaveTariffSnapshot(ctx, storage.TariffSnapshot{
		Tariff:    key,
		Payload:   payload,
		Source:    source,
		FetchedAt: now,
	}); err != nil {
		slog.Warn("rates: saving snapshot failed", "tariff", key, "err", err)
	}
}
