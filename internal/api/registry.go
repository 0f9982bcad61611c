package api

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bher20/ebillcalc/internal/billing"
	"github.com/bher20/ebillcalc/internal/metrics"
)

var errSessionNotFound = errors.New("api: session not found")

// sessionEntry guards one billing.Session, which is not safe for concurrent
// use on its own.
type sessionEntry struct {
	mu       sync.Mutex
	session  *billing.Session
	tariff   string
	lastUsed time.Time
}

// Registry holds live sessions by ID.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*sessionEntry
	now      func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[uuid.UUID]*sessionEntry),
		now:      time.Now,
	}
}

// Create registers s and returns its ID.
func (r *Registry) Create(s *billing.Session, tariff string) uuid.UUID {
	id := uuid.New()
	r.mu.Lock()
	r.sessions[id] = &sessionEntry{session: s, tariff: tariff, lastUsed: r.now()}
	n := len(r.sessions)
	r.mu.Unlock()
	metrics.SessionsActive.Set(float64(n))
	return id
}

// With runs fn while holding the session's lock.
func (r *Registry) With(id uuid.UUID, fn func(e *sessionEntry) error) error {
	r.mu.RLock()
	e, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return errSessionNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastUsed = r.now()
	return fn(e)
}

// Delete drops a session. It reports whether the session existed.
func (r *Registry) Delete(id uuid.UUID) bool {
	r.mu.Lock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	n := len(r.sessions)
	r.mu.Unlock()
	metrics.SessionsActive.Set(float64(n))
	return ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep drops sessions idle for longer than maxIdle and returns how many
// were removed.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)
	r.mu.Lock()
	removed := 0
	for id, e := range r.sessions {
		e.mu.Lock()
		idle := e.lastUsed.Before(cutoff)
		e.mu.Unlock()
		if idle {
			delete(r.sessions, id)
			removed++
		}
	}
	n := len(r.sessions)
	r.mu.Unlock()
	metrics.SessionsActive.Set(float64(n))
	return removed
}

// RunJanitor sweeps idle sessions every interval until ctx is done.
func (r *Registry) RunJanitor(ctx context.Context, every, maxIdle time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.Sweep(maxIdle)
		}
	}
}
