package billing

import (
	"github.com/google/uuid"
)

// DefaultUnitPrice is the flat per-kWh price a new session starts with.
const DefaultUnitPrice = 8.5

// Session is one user's in-memory bill: a ledger, the active rate schedule
// and the current flat unit price. Callers own the session and pass it
// around explicitly; it is not safe for concurrent use.
type Session struct {
	ledger    *Ledger
	schedule  *RateSchedule
	unitPrice float64
}

// NewSession returns an empty session. A nil schedule selects
// DefaultSchedule; a non-positive unit price selects DefaultUnitPrice.
func NewSession(schedule *RateSchedule, unitPrice float64) *Session {
	if schedule == nil {
		schedule = DefaultSchedule()
	}
	if !positiveFinite(unitPrice) {
		unitPrice = DefaultUnitPrice
	}
	return &Session{ledger: NewLedger(), schedule: schedule, unitPrice: unitPrice}
}

// AddAppliance registers an appliance priced at the session's unit price.
func (s *Session) AddAppliance(in ApplianceInput) (ApplianceEntry, error) {
	return s.ledger.Add(in.Name, in.PowerWatts, in.HoursPerDay, in.DaysPerMonth, s.unitPrice)
}

// AddPreset registers a catalog appliance by name.
func (s *Session) AddPreset(name string) (ApplianceEntry, error) {
	p, ok := LookupPreset(name)
	if !ok {
		return ApplianceEntry{}, &ValidationError{Field: "preset", Value: name}
	}
	return s.AddAppliance(p.Input())
}

// RemoveAppliance removes an appliance by identity.
func (s *Session) RemoveAppliance(id uuid.UUID) error {
	return s.ledger.Remove(id)
}

// RemoveApplianceAt removes an appliance by position.
func (s *Session) RemoveApplianceAt(index int) error {
	return s.ledger.RemoveAt(index)
}

// ChangeUnitPrice reprices every appliance. Consumption is left untouched.
func (s *Session) ChangeUnitPrice(unitPrice float64) error {
	if err := s.ledger.RepriceAll(unitPrice); err != nil {
		return err
	}
	s.unitPrice = unitPrice
	return nil
}

// ResetUnitPrice restores DefaultUnitPrice and reprices every appliance.
func (s *Session) ResetUnitPrice() error {
	return s.ChangeUnitPrice(DefaultUnitPrice)
}

// ReplaceSchedule swaps the active tariff wholesale.
func (s *Session) ReplaceSchedule(schedule *RateSchedule) error {
	if schedule == nil {
		return &InvalidScheduleError{Band: -1, Reason: "nil schedule"}
	}
	s.schedule = schedule
	return nil
}

// UnitPrice returns the current flat unit price.
func (s *Session) UnitPrice() float64 { return s.unitPrice }

// Schedule returns the active rate schedule.
func (s *Session) Schedule() *RateSchedule { return s.schedule }

// Entries returns the session's appliances in insertion order.
func (s *Session) Entries() []ApplianceEntry { return s.ledger.Entries() }

// Snapshot recomputes the bill against the active schedule.
func (s *Session) Snapshot() (BillSnapshot, error) {
	return BuildSnapshot(s.ledger, s.schedule)
}

// SnapshotWith recomputes the bill against another schedule without changing
// the active one.
func (s *Session) SnapshotWith(schedule *RateSchedule) (BillSnapshot, error) {
	return BuildSnapshot(s.ledger, schedule)
}
