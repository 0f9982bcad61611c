package billing

import (
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var wattsPerKilowatt = decimal.NewFromInt(1000)

// ApplianceEntry is one registered appliance with its derived monthly
// consumption and flat-rate cost.
type ApplianceEntry struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	PowerWatts   decimal.Decimal `json:"power_watts"`
	HoursPerDay  decimal.Decimal `json:"hours_per_day"`
	DaysPerMonth decimal.Decimal `json:"days_per_month"`
	DerivedKwh   decimal.Decimal `json:"derived_kwh"`
	DerivedCost  decimal.Decimal `json:"derived_cost"`
}

// Totals is a fold over the ledger's entries.
type Totals struct {
	Kwh   decimal.Decimal
	Cost  decimal.Decimal
	Count int
}

// Ledger owns the appliance entries of one bill, in insertion order.
// It is not safe for concurrent use.
type Ledger struct {
	entries []ApplianceEntry
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Add validates the attributes, derives kWh and cost and appends a new entry.
func (l *Ledger) Add(name string, powerWatts, hoursPerDay, daysPerMonth, unitPrice float64) (ApplianceEntry, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return ApplianceEntry{}, &ValidationError{Field: "name", Value: name}
	}
	if !positiveFinite(powerWatts) {
		return ApplianceEntry{}, &ValidationError{Field: "powerWatts", Value: formatFloat(powerWatts)}
	}
	if math.IsNaN(hoursPerDay) || math.IsInf(hoursPerDay, 0) || hoursPerDay < 0 {
		return ApplianceEntry{}, &ValidationError{Field: "hoursPerDay", Value: formatFloat(hoursPerDay)}
	}
	if !positiveFinite(daysPerMonth) {
		return ApplianceEntry{}, &ValidationError{Field: "daysPerMonth", Value: formatFloat(daysPerMonth)}
	}
	if !positiveFinite(unitPrice) {
		return ApplianceEntry{}, &ValidationError{Field: "unitPrice", Value: formatFloat(unitPrice)}
	}
	if l.indexOfName(name) >= 0 {
		return ApplianceEntry{}, &DuplicateNameError{Name: name}
	}

	e := ApplianceEntry{
		ID:           uuid.New(),
		Name:         name,
		PowerWatts:   decimal.NewFromFloat(powerWatts),
		HoursPerDay:  decimal.NewFromFloat(hoursPerDay),
		DaysPerMonth: decimal.NewFromFloat(daysPerMonth),
	}
	e.DerivedKwh = e.PowerWatts.Mul(e.HoursPerDay).Mul(e.DaysPerMonth).Div(wattsPerKilowatt)
	e.DerivedCost = e.DerivedKwh.Mul(decimal.NewFromFloat(unitPrice))

	l.entries = append(l.entries, e)
	return e, nil
}

// Remove deletes the entry with the given identity.
func (l *Ledger) Remove(id uuid.UUID) error {
	for i := range l.entries {
		if l.entries[i].ID == id {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			return nil
		}
	}
	return &NotFoundError{ID: id.String()}
}

// RemoveAt deletes the entry at a position. Later entries shift down by one,
// so callers holding positions must re-resolve them afterwards.
func (l *Ledger) RemoveAt(index int) error {
	if index < 0 || index >= len(l.entries) {
		return &NotFoundError{Index: index}
	}
	l.entries = append(l.entries[:index], l.entries[index+1:]...)
	return nil
}

// RepriceAll recomputes every entry's cost from its stored kWh.
func (l *Ledger) RepriceAll(unitPrice float64) error {
	if !positiveFinite(unitPrice) {
		return &ValidationError{Field: "unitPrice", Value: formatFloat(unitPrice)}
	}
	price := decimal.NewFromFloat(unitPrice)
	for i := range l.entries {
		l.entries[i].DerivedCost = l.entries[i].DerivedKwh.Mul(price)
	}
	return nil
}

// Entries returns a copy of the entries in insertion order.
func (l *Ledger) Entries() []ApplianceEntry {
	out := make([]ApplianceEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Get returns the entry with the given identity.
func (l *Ledger) Get(id uuid.UUID) (ApplianceEntry, bool) {
	for _, e := range l.entries {
		if e.ID == id {
			return e, true
		}
	}
	return ApplianceEntry{}, false
}

// Len returns the number of entries.
func (l *Ledger) Len() int { return len(l.entries) }

// Totals sums consumption and flat cost over all entries.
func (l *Ledger) Totals() Totals {
	t := Totals{Kwh: decimal.Zero, Cost: decimal.Zero, Count: len(l.entries)}
	for _, e := range l.entries {
		t.Kwh = t.Kwh.Add(e.DerivedKwh)
		t.Cost = t.Cost.Add(e.DerivedCost)
	}
	return t
}

func (l *Ledger) indexOfName(name string) int {
	for i, e := range l.entries {
		if strings.EqualFold(e.Name, name) {
			return i
		}
	}
	return -1
}

func positiveFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
