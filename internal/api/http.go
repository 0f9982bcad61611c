package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bher20/ebillcalc/internal/api/swagger"
	"github.com/bher20/ebillcalc/internal/auth"
	"github.com/bher20/ebillcalc/internal/billing"
	"github.com/bher20/ebillcalc/internal/metrics"
	"github.com/bher20/ebillcalc/internal/notification"
	"github.com/bher20/ebillcalc/internal/rates"
	"github.com/bher20/ebillcalc/internal/storage"
)

// Options wires the server's collaborators. Rates, Store and Notifier may
// be nil; the matching endpoints then degrade to built-in defaults or 503.
// A nil Auth leaves the admin endpoints open.
type Options struct {
	Rates           *rates.Service
	Store           storage.Storage
	Notifier        *notification.Service
	Auth            *auth.Service
	Registry        *Registry
	DefaultTariff   string
	UnitPrice       float64
	RefreshInterval string
}

type Server struct {
	rates           *rates.Service
	store           storage.Storage
	notifier        *notification.Service
	auth            *auth.Service
	reg             *Registry
	defaultTariff   string
	unitPrice       float64
	refreshInterval string
}

func NewServer(opts Options) *Server {
	s := &Server{
		rates:           opts.Rates,
		store:           opts.Store,
		notifier:        opts.Notifier,
		auth:            opts.Auth,
		reg:             opts.Registry,
		defaultTariff:   opts.DefaultTariff,
		unitPrice:       opts.UnitPrice,
		refreshInterval: opts.RefreshInterval,
	}
	if s.reg == nil {
		s.reg = NewRegistry()
	}
	if s.defaultTariff == "" {
		s.defaultTariff = rates.DefaultTariff
	}
	if s.unitPrice <= 0 {
		s.unitPrice = billing.DefaultUnitPrice
	}
	return s
}

// Registry exposes the session registry, e.g. for the idle-session janitor.
func (s *Server) Registry() *Registry { return s.reg }

// handlerFunc is an http.HandlerFunc that reports failures as errors.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// instrument counts and times requests per route and renders errors.
func instrument(route string, h handlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		metrics.RequestsTotal.WithLabelValues(route).Inc()
		defer func() {
			metrics.RequestDurationSeconds.WithLabelValues(route).Observe(time.Since(start).Seconds())
		}()

		if err := h(w, r); err != nil {
			code := writeError(w, err)
			metrics.RequestErrorsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
		}
	})
}

// Handler returns the HTTP mux with the API, metrics, health endpoints and
// API docs.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	route := func(pattern string, h handlerFunc) {
		mux.Handle(pattern, instrument(pattern, h))
	}
	admin := func(pattern, obj, act string, h handlerFunc) {
		var next http.Handler = instrument(pattern, h)
		if s.auth != nil {
			next = s.auth.RequirePermission(obj, act, next)
		}
		mux.Handle(pattern, next)
	}

	route("POST /api/v1/sessions", s.createSession)
	route("GET /api/v1/sessions/{id}", s.getSession)
	route("DELETE /api/v1/sessions/{id}", s.deleteSession)
	route("POST /api/v1/sessions/{id}/appliances", s.addAppliance)
	route("DELETE /api/v1/sessions/{id}/appliances/{applianceID}", s.removeAppliance)
	route("PUT /api/v1/sessions/{id}/unit-price", s.changeUnitPrice)
	route("PUT /api/v1/sessions/{id}/tariff", s.switchTariff)
	route("GET /api/v1/sessions/{id}/export", s.exportSession)
	route("POST /api/v1/sessions/{id}/email", s.emailSession)

	route("GET /api/v1/presets", s.listPresets)
	route("GET /api/v1/tariffs", s.listTariffs)
	route("GET /api/v1/tariffs/{key}", s.getTariff)
	admin("POST /api/v1/tariffs/{key}/refresh", auth.ObjTariffs, auth.ActWrite, s.refreshTariff)
	admin("GET /api/v1/settings/refresh-interval", auth.ObjSettings, auth.ActRead, s.getRefreshInterval)
	admin("PUT /api/v1/settings/refresh-interval", auth.ObjSettings, auth.ActWrite, s.putRefreshInterval)
	admin("GET /api/v1/jobs/{name}", auth.ObjJobs, auth.ActRead, s.getJob)

	route("GET /api/v1/preferences/{owner}", s.getPreferences)
	route("PUT /api/v1/preferences/{owner}", s.putPreferences)

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if s.store != nil {
			if err := s.store.Ping(r.Context()); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	mux.HandleFunc("/livez", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("live"))
	})

	mux.Handle("/swagger/", http.StripPrefix("/swagger", swagger.Handler()))

	if s.auth != nil {
		return s.auth.Middleware(mux)
	}
	return mux
}
