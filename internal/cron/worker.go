// Package cron periodically re-imports tariff PDFs.
package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/bher20/ebillcalc/internal/alerting"
	"github.com/bher20/ebillcalc/internal/metrics"
	"github.com/bher20/ebillcalc/internal/rates"
	"github.com/bher20/ebillcalc/internal/storage"
)

const (
	JobName = "tariff_refresh"

	// IntervalSetting is the settings key that overrides the configured
	// interval at runtime.
	IntervalSetting = "refresh_interval"

	lockKey         int64 = 42
	defaultInterval       = time.Hour
)

// Worker refreshes every tariff that has a PDF path.
type Worker struct {
	store    storage.Storage
	svc      *rates.Service
	alerter  *alerting.Alerter
	interval string

	// Download fetches a fresh PDF from the tariff's landing page before
	// parsing.
	Download bool
	Client   *http.Client
	// Tick is how often the loop checks the schedule and settings.
	Tick time.Duration
}

// NewWorker builds a worker. interval is integer seconds or a standard cron
// expression. alerter may be nil.
func NewWorker(st storage.Storage, svc *rates.Service, alerter *alerting.Alerter, interval string) *Worker {
	return &Worker{
		store:    st,
		svc:      svc,
		alerter:  alerter,
		interval: interval,
		Tick:     10 * time.Second,
	}
}

// NextRun returns when the job runs next after last, given an interval
// setting. Unparseable settings fall back to one hour.
func NextRun(setting string, last time.Time) time.Time {
	if v, err := strconv.Atoi(setting); err == nil && v > 0 {
		return last.Add(time.Duration(v) * time.Second)
	}
	if sched, err := cron.ParseStandard(setting); err == nil {
		return sched.Next(last)
	}
	return last.Add(defaultInterval)
}

// ValidInterval reports whether setting is a positive number of seconds or a
// standard five-field cron expression.
func ValidInterval(setting string) error {
	if v, err := strconv.Atoi(setting); err == nil {
		if v <= 0 {
			return fmt.Errorf("interval must be positive, got %d", v)
		}
		return nil
	}
	if _, err := cron.ParseStandard(setting); err != nil {
		return fmt.Errorf("invalid interval %q: %w", setting, err)
	}
	return nil
}

// Run executes the job immediately and then on schedule until ctx is done.
// A settings row overrides the interval without a restart.
func (w *Worker) Run(ctx context.Context) error {
	setting := w.interval
	if v, err := w.store.GetSetting(ctx, IntervalSetting); err == nil && v != "" {
		setting = v
	}

	ticker := time.NewTicker(w.Tick)
	defer ticker.Stop()

	nextRun := time.Now()
	slog.Info("cron: worker starting", "interval", setting)

	for {
		if !time.Now().Before(nextRun) {
			if err := w.RunOnce(ctx); err != nil {
				slog.Error("cron: run failed", "job", JobName, "err", err)
			}
			nextRun = NextRun(setting, time.Now())
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if v, err := w.store.GetSetting(ctx, IntervalSetting); err == nil && v != "" && v != setting {
				slog.Info("cron: interval updated", "from", setting, "to", v)
				setting = v
				nextRun = NextRun(setting, time.Now())
			}
		}
	}
}

// RunOnce refreshes all tariffs once under the advisory lock. It returns nil
// without doing anything when another instance holds the lock.
func (w *Worker) RunOnce(ctx context.Context) error {
	started := time.Now()

	ok, err := w.store.AcquireAdvisoryLock(ctx, lockKey)
	if err != nil {
		metrics.UpdateJobMetrics(JobName, started, err)
		return fmt.Errorf("acquire advisory lock: %w", err)
	}
	if !ok {
		slog.Info("cron: advisory lock held by another worker, skipping run")
		return nil
	}
	defer func() {
		if _, err := w.store.ReleaseAdvisoryLock(ctx, lockKey); err != nil {
			slog.Warn("cron: release advisory lock failed", "err", err)
		}
	}()

	alert, runErr := w.refreshAll(ctx)
	alert.Duration = time.Since(started)
	alert.Timestamp = started.UTC()

	metrics.UpdateJobMetrics(JobName, started, runErr)
	errMsg := ""
	if runErr != nil {
		errMsg = runErr.Error()
	}
	if err := w.store.UpdateScheduledJob(ctx, JobName, started, alert.Duration, runErr == nil, errMsg); err != nil {
		slog.Warn("cron: update scheduled_jobs failed", "err", err)
	}

	if alert.FailedCount > 0 && w.alerter != nil {
		if err := w.alerter.SendRefreshAlert(ctx, alert); err != nil {
			slog.Warn("cron: send alert failed", "err", err)
		}
	}

	slog.Info("cron: job completed", "job", JobName,
		"tariffs", alert.TotalCount, "failed", alert.FailedCount, "duration", alert.Duration)
	return runErr
}

func (w *Worker) refreshAll(ctx context.Context) (alerting.RefreshAlert, error) {
	alert := alerting.RefreshAlert{JobName: JobName}

	tariffs, err := w.svc.Refreshable(ctx)
	if err != nil {
		return alert, err
	}
	alert.TotalCount = len(tariffs)

	var errs []error
	for _, t := range tariffs {
		if err := w.refreshOne(ctx, t); err != nil {
			slog.Warn("cron: tariff refresh failed", "tariff", t.Key, "err", err)
			metrics.TariffRefreshTotal.WithLabelValues(t.Key, "error").Inc()
			alert.FailedCount++
			alert.Failures = append(alert.Failures, alerting.TariffFailure{Tariff: t.Key, Error: err.Error()})
			errs = append(errs, fmt.Errorf("%s: %w", t.Key, err))
			continue
		}
		metrics.TariffRefreshTotal.WithLabelValues(t.Key, "ok").Inc()
		alert.SuccessCount++
	}
	return alert, errors.Join(errs...)
}

func (w *Worker) refreshOne(ctx context.Context, t rates.TariffDescriptor) error {
	if w.Download && t.LandingURL != "" {
		u, err := rates.DownloadTariffPDF(ctx, w.Client, t)
		if err != nil {
			return fmt.Errorf("download: %w", err)
		}
		slog.Debug("cron: downloaded tariff pdf", "tariff", t.Key, "url", u)
	}
	_, err := w.svc.ForceRefresh(ctx, t.Key)
	return err
}
