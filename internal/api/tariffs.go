package api

import (
	"net/http"
	"time"

	"github.com/bher20/ebillcalc/internal/billing"
	"github.com/bher20/ebillcalc/internal/rates"
)

// TariffResponse is a tariff with its currently resolved bands.
type TariffResponse struct {
	Key         string             `json:"key"`
	Name        string             `json:"name"`
	Currency    string             `json:"currency"`
	LandingURL  string             `json:"landing_url,omitempty"`
	Notes       string             `json:"notes,omitempty"`
	Bands       []billing.RateBand `json:"bands,omitempty"`
	Progressive bool               `json:"progressive"`
}

// RefreshResponse reports a forced tariff refresh.
type RefreshResponse struct {
	Tariff      string             `json:"tariff"`
	Status      string             `json:"status"`
	RefreshedAt time.Time          `json:"refreshed_at"`
	Bands       []billing.RateBand `json:"bands"`
}

func tariffResponse(t rates.TariffDescriptor, sched *billing.RateSchedule) TariffResponse {
	resp := TariffResponse{
		Key:        t.Key,
		Name:       t.Name,
		Currency:   t.Currency,
		LandingURL: t.LandingURL,
		Notes:      t.Notes,
	}
	if sched != nil {
		resp.Bands = sched.Bands()
		resp.Progressive = sched.Progressive()
	}
	return resp
}

func (s *Server) listTariffs(w http.ResponseWriter, r *http.Request) error {
	if s.rates == nil {
		writeJSON(w, http.StatusOK, []TariffResponse{{
			Key:         s.defaultTariff,
			Name:        s.defaultTariff,
			Currency:    "BDT",
			Bands:       billing.DefaultBands(),
			Progressive: true,
		}})
		return nil
	}
	list, err := s.rates.ListTariffs(r.Context())
	if err != nil {
		return err
	}
	out := make([]TariffResponse, 0, len(list))
	for _, t := range list {
		out = append(out, tariffResponse(t, nil))
	}
	writeJSON(w, http.StatusOK, out)
	return nil
}

func (s *Server) getTariff(w http.ResponseWriter, r *http.Request) error {
	key := r.PathValue("key")
	if s.rates == nil {
		sched, err := s.schedule(r, key)
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, tariffResponse(rates.TariffDescriptor{Key: key, Name: key, Currency: "BDT"}, sched))
		return nil
	}
	t, err := s.rates.Describe(r.Context(), key)
	if err != nil {
		return err
	}
	sched, err := s.rates.GetSchedule(r.Context(), key)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, tariffResponse(t, sched))
	return nil
}

func (s *Server) refreshTariff(w http.ResponseWriter, r *http.Request) error {
	if s.rates == nil {
		return rates.ErrUnknownTariff
	}
	key := r.PathValue("key")
	sched, err := s.rates.ForceRefresh(r.Context(), key)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, RefreshResponse{
		Tariff:      key,
		Status:      "refreshed",
		RefreshedAt: time.Now().UTC(),
		Bands:       sched.Bands(),
	})
	return nil
}
