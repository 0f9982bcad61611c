package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/bher20/ebillcalc/internal/billing"
	"github.com/bher20/ebillcalc/internal/storage"
)

// PreferencesRequest updates a user's stored UI state. Nil fields are left
// unchanged.
type PreferencesRequest struct {
	DarkMode *bool `json:"dark_mode,omitempty"`
	Visited  *bool `json:"visited,omitempty"`
}

func ownerParam(r *http.Request) (string, error) {
	owner := strings.TrimSpace(r.PathValue("owner"))
	if owner == "" || len(owner) > 128 {
		return "", &billing.ValidationError{Field: "owner", Value: owner}
	}
	return owner, nil
}

func (s *Server) loadPreferences(r *http.Request, owner string) (storage.Preferences, error) {
	p, err := s.store.GetPreferences(r.Context(), owner)
	if err != nil {
		return storage.Preferences{}, err
	}
	if p == nil {
		return storage.Preferences{Owner: owner}, nil
	}
	return *p, nil
}

func (s *Server) getPreferences(w http.ResponseWriter, r *http.Request) error {
	owner, err := ownerParam(r)
	if err != nil {
		return err
	}
	if s.store == nil {
		writeJSON(w, http.StatusOK, storage.Preferences{Owner: owner})
		return nil
	}
	p, err := s.loadPreferences(r, owner)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, p)
	return nil
}

func (s *Server) putPreferences(w http.ResponseWriter, r *http.Request) error {
	owner, err := ownerParam(r)
	if err != nil {
		return err
	}
	var req PreferencesRequest
	if err := decode(r, &req); err != nil {
		return err
	}
	if s.store == nil {
		return errStorageDisabled
	}
	p, err := s.loadPreferences(r, owner)
	if err != nil {
		return err
	}
	if req.DarkMode != nil {
		p.DarkMode = *req.DarkMode
	}
	if req.Visited != nil {
		p.Visited = *req.Visited
	}
	p.UpdatedAt = time.Now().UTC()
	if err := s.store.SavePreferences(r.Context(), p); err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, p)
	return nil
}
