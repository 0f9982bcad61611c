package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bher20/ebillcalc/internal/billing"
	"github.com/bher20/ebillcalc/internal/metrics"
	"github.com/bher20/ebillcalc/internal/notification"
	"github.com/bher20/ebillcalc/internal/report"
)

// Numeric accepts a JSON number or string and keeps its text, so the
// billing input boundary does the parsing.
type Numeric string

func (n *Numeric) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = Numeric(s)
		return nil
	}
	if bytes.Equal(b, []byte("null")) {
		*n = ""
		return nil
	}
	*n = Numeric(b)
	return nil
}

type CreateSessionRequest struct {
	Tariff    string  `json:"tariff,omitempty"`
	UnitPrice Numeric `json:"unit_price,omitempty"`
}

// AddApplianceRequest adds either a preset by name or a custom appliance.
type AddApplianceRequest struct {
	Preset       string  `json:"preset,omitempty"`
	Name         string  `json:"name,omitempty"`
	PowerWatts   Numeric `json:"power_watts,omitempty"`
	HoursPerDay  Numeric `json:"hours_per_day,omitempty"`
	DaysPerMonth Numeric `json:"days_per_month,omitempty"`
}

type UnitPriceRequest struct {
	UnitPrice Numeric `json:"unit_price"`
	// Reset restores the default price and ignores UnitPrice.
	Reset bool `json:"reset,omitempty"`
}

type TariffRequest struct {
	Tariff string `json:"tariff"`
}

type EmailRequest struct {
	To string `json:"to"`
}

// SessionResponse is the full view of a session after every change.
type SessionResponse struct {
	ID         string               `json:"id"`
	Tariff     string               `json:"tariff"`
	UnitPrice  float64              `json:"unit_price"`
	Summary    billing.BillSnapshot `json:"summary"`
	Appliances []report.Appliance   `json:"appliances"`
	Tips       []billing.Tip        `json:"tips"`
}

func decode(r *http.Request, v interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
	}
	return nil
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid %s", errBadRequest, name)
	}
	return id, nil
}

func (s *Server) view(id uuid.UUID, e *sessionEntry) (SessionResponse, error) {
	snap, err := e.session.Snapshot()
	if err != nil {
		return SessionResponse{}, err
	}
	metrics.SnapshotsTotal.Inc()
	entries := e.session.Entries()
	doc := report.NewDocument(snap, entries, time.Now())
	tips := billing.Tips(snap, entries)
	if tips == nil {
		tips = []billing.Tip{}
	}
	return SessionResponse{
		ID:         id.String(),
		Tariff:     e.tariff,
		UnitPrice:  e.session.UnitPrice(),
		Summary:    doc.Summary,
		Appliances: doc.Appliances,
		Tips:       tips,
	}, nil
}

// mutate runs fn on the session and responds with the updated view.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, code int, fn func(e *sessionEntry) error) error {
	id, err := pathUUID(r, "id")
	if err != nil {
		return err
	}
	var resp SessionResponse
	err = s.reg.With(id, func(e *sessionEntry) error {
		if fn != nil {
			if err := fn(e); err != nil {
				return err
			}
		}
		resp, err = s.view(id, e)
		return err
	})
	if err != nil {
		return err
	}
	writeJSON(w, code, resp)
	return nil
}

func (s *Server) schedule(r *http.Request, key string) (*billing.RateSchedule, error) {
	if s.rates == nil {
		if !strings.EqualFold(key, s.defaultTariff) {
			return nil, &billing.ValidationError{Field: "tariff", Value: key}
		}
		return billing.DefaultSchedule(), nil
	}
	return s.rates.GetSchedule(r.Context(), key)
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) error {
	var req CreateSessionRequest
	if err := decode(r, &req); err != nil {
		return err
	}
	tariff := req.Tariff
	if tariff == "" {
		tariff = s.defaultTariff
	}
	price := s.unitPrice
	if req.UnitPrice != "" {
		p, err := billing.ParseUnitPrice(string(req.UnitPrice))
		if err != nil {
			return err
		}
		price = p
	}
	sched, err := s.schedule(r, tariff)
	if err != nil {
		return err
	}

	id := s.reg.Create(billing.NewSession(sched, price), tariff)
	r.SetPathValue("id", id.String())
	return s.mutate(w, r, http.StatusCreated, nil)
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) error {
	return s.mutate(w, r, http.StatusOK, nil)
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) error {
	id, err := pathUUID(r, "id")
	if err != nil {
		return err
	}
	if !s.reg.Delete(id) {
		return errSessionNotFound
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (s *Server) addAppliance(w http.ResponseWriter, r *http.Request) error {
	var req AddApplianceRequest
	if err := decode(r, &req); err != nil {
		return err
	}
	return s.mutate(w, r, http.StatusCreated, func(e *sessionEntry) error {
		if req.Preset != "" {
			_, err := e.session.AddPreset(req.Preset)
			return err
		}
		in, err := billing.ParseApplianceInput(billing.RawAppliance{
			Name:  req.Name,
			Power: string(req.PowerWatts),
			Hours: string(req.HoursPerDay),
			Days:  string(req.DaysPerMonth),
		})
		if err != nil {
			return err
		}
		_, err = e.session.AddAppliance(in)
		return err
	})
}

func (s *Server) removeAppliance(w http.ResponseWriter, r *http.Request) error {
	aid, err := pathUUID(r, "applianceID")
	if err != nil {
		return err
	}
	return s.mutate(w, r, http.StatusOK, func(e *sessionEntry) error {
		return e.session.RemoveAppliance(aid)
	})
}

func (s *Server) changeUnitPrice(w http.ResponseWriter, r *http.Request) error {
	var req UnitPriceRequest
	if err := decode(r, &req); err != nil {
		return err
	}
	return s.mutate(w, r, http.StatusOK, func(e *sessionEntry) error {
		if req.Reset {
			return e.session.ResetUnitPrice()
		}
		p, err := billing.ParseUnitPrice(string(req.UnitPrice))
		if err != nil {
			return err
		}
		return e.session.ChangeUnitPrice(p)
	})
}

func (s *Server) switchTariff(w http.ResponseWriter, r *http.Request) error {
	var req TariffRequest
	if err := decode(r, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Tariff) == "" {
		return &billing.ValidationError{Field: "tariff", Value: req.Tariff}
	}
	sched, err := s.schedule(r, req.Tariff)
	if err != nil {
		return err
	}
	return s.mutate(w, r, http.StatusOK, func(e *sessionEntry) error {
		if err := e.session.ReplaceSchedule(sched); err != nil {
			return err
		}
		e.tariff = req.Tariff
		return nil
	})
}

func (s *Server) exportSession(w http.ResponseWriter, r *http.Request) error {
	id, err := pathUUID(r, "id")
	if err != nil {
		return err
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "text"
	}
	if format != "text" && format != "json" {
		return fmt.Errorf("%w: unsupported format %q", errBadRequest, format)
	}

	var buf bytes.Buffer
	now := time.Now()
	err = s.reg.With(id, func(e *sessionEntry) error {
		snap, err := e.session.Snapshot()
		if err != nil {
			return err
		}
		metrics.SnapshotsTotal.Inc()
		if format == "json" {
			return report.WriteJSON(&buf, snap, e.session.Entries(), now)
		}
		return report.WriteText(&buf, snap, e.session.Entries(), report.Options{Now: now})
	})
	if err != nil {
		return err
	}
	metrics.ExportsTotal.WithLabelValues(format).Inc()

	name := report.FileName(now)
	if format == "json" {
		w.Header().Set("Content-Type", "application/json")
		name = strings.TrimSuffix(name, ".txt") + ".json"
	} else {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", name))
	_, err = w.Write(buf.Bytes())
	return err
}

func (s *Server) emailSession(w http.ResponseWriter, r *http.Request) error {
	id, err := pathUUID(r, "id")
	if err != nil {
		return err
	}
	var req EmailRequest
	if err := decode(r, &req); err != nil {
		return err
	}
	if s.notifier == nil || !s.notifier.Enabled() {
		return notification.ErrNotConfigured
	}

	var snap billing.BillSnapshot
	var entries []billing.ApplianceEntry
	err = s.reg.With(id, func(e *sessionEntry) error {
		var err error
		snap, err = e.session.Snapshot()
		entries = e.session.Entries()
		return err
	})
	if err != nil {
		return err
	}
	if err := s.notifier.SendReport(r.Context(), req.To, snap, entries); err != nil {
		return err
	}
	w.WriteHeader(http.StatusAccepted)
	return nil
}

func (s *Server) listPresets(w http.ResponseWriter, r *http.Request) error {
	writeJSON(w, http.StatusOK, billing.Presets())
	return nil
}
