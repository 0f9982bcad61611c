package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bher20/ebillcalc/internal/billing"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ebillcalc_requests_total",
			Help: "Total number of API requests per route",
		},
		[]string{"route"},
	)

	RequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ebillcalc_request_duration_seconds",
			Help:    "Request duration in seconds per route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	RequestErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ebillcalc_request_errors_total",
			Help: "Total number of error responses per route and status code",
		},
		[]string{"route", "code"},
	)
)

var (
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ebillcalc_sessions_active",
			Help: "Number of live billing sessions",
		},
	)

	SnapshotsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ebillcalc_snapshots_total",
			Help: "Total number of bill snapshots computed",
		},
	)

	BillingErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ebillcalc_billing_errors_total",
			Help: "Billing operations rejected, by error kind",
		},
		[]string{"kind"},
	)

	ExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ebillcalc_exports_total",
			Help: "Reports exported, by format",
		},
		[]string{"format"},
	)
)

// ErrorKind names the billing error kind of err, or "internal".
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, billing.ErrValidation):
		return "validation"
	case errors.Is(err, billing.ErrDuplicateName):
		return "duplicate_name"
	case errors.Is(err, billing.ErrNotFound):
		return "not_found"
	case errors.Is(err, billing.ErrInvalidSchedule):
		return "invalid_schedule"
	case errors.Is(err, billing.ErrInvalidInput):
		return "invalid_input"
	default:
		return "internal"
	}
}

// ObserveBillingError counts err under its kind.
func ObserveBillingError(err error) {
	if err == nil {
		return
	}
	BillingErrorsTotal.WithLabelValues(ErrorKind(err)).Inc()
}

var (
	ScheduledJobLastRun = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ebillcalc_job_last_run_timestamp",
			Help: "Unix timestamp of the last completed run for a job",
		},
		[]string{"job"},
	)

	ScheduledJobLastDurationSeconds = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ebillcalc_job_last_duration_seconds",
			Help: "Duration of the last completed run for a job",
		},
		[]string{"job"},
	)

	ScheduledJobFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ebillcalc_job_failures_total",
			Help: "Total number of failed executions per job",
		},
		[]string{"job"},
	)

	TariffRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ebillcalc_tariff_refresh_total",
			Help: "Tariff refresh attempts per tariff and result",
		},
		[]string{"tariff", "result"},
	)
)

func UpdateJobMetrics(job string, startedAt time.Time, err error) {
	dur := time.Since(startedAt).Seconds()
	ScheduledJobLastDurationSeconds.WithLabelValues(job).Set(dur)
	ScheduledJobLastRun.WithLabelValues(job).Set(float64(time.Now().Unix()))
	if err != nil {
		ScheduledJobFailuresTotal.WithLabelValues(job).Inc()
	}
}
