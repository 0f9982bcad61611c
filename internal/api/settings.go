package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/bher20/ebillcalc/internal/billing"
	"github.com/bher20/ebillcalc/internal/cron"
)

// IntervalResponse is the tariff refresh interval in effect.
type IntervalResponse struct {
	Interval string `json:"interval"`
	// Source is "setting" when stored at runtime, else "config".
	Source string `json:"source"`
}

type IntervalRequest struct {
	Interval string `json:"interval"`
}

// JobResponse is the last recorded run of a scheduled job.
type JobResponse struct {
	Name         string    `json:"name"`
	LastRunAt    time.Time `json:"last_run_at"`
	LastDuration string    `json:"last_duration"`
	Success      bool      `json:"success"`
	LastError    string    `json:"last_error,omitempty"`
}

func (s *Server) getRefreshInterval(w http.ResponseWriter, r *http.Request) error {
	if s.store == nil {
		return errStorageDisabled
	}
	v, err := s.store.GetSetting(r.Context(), cron.IntervalSetting)
	if err != nil {
		return err
	}
	resp := IntervalResponse{Interval: v, Source: "setting"}
	if v == "" {
		resp = IntervalResponse{Interval: s.refreshInterval, Source: "config"}
	}
	writeJSON(w, http.StatusOK, resp)
	return nil
}

func (s *Server) putRefreshInterval(w http.ResponseWriter, r *http.Request) error {
	if s.store == nil {
		return errStorageDisabled
	}
	var req IntervalRequest
	if err := decode(r, &req); err != nil {
		return err
	}
	req.Interval = strings.TrimSpace(req.Interval)
	if err := cron.ValidInterval(req.Interval); err != nil {
		return &billing.ValidationError{Field: "interval", Value: req.Interval}
	}
	if err := s.store.SetSetting(r.Context(), cron.IntervalSetting, req.Interval); err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, IntervalResponse{Interval: req.Interval, Source: "setting"})
	return nil
}

func (s *Server) getJob(w http.ResponseWriter, r *http.Request) error {
	if s.store == nil {
		return errStorageDisabled
	}
	job, err := s.store.GetScheduledJob(r.Context(), r.PathValue("name"))
	if err != nil {
		return err
	}
	if job == nil {
		return errJobNotFound
	}
	writeJSON(w, http.StatusOK, JobResponse{
		Name:         job.Name,
		LastRunAt:    job.LastRunAt,
		LastDuration: (time.Duration(job.LastDurationMs) * time.Millisecond).String(),
		Success:      job.LastSuccess == 1,
		LastError:    job.LastError,
	})
	return nil
}
