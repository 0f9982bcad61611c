package billing

import (
	"github.com/shopspring/decimal"
)

var (
	daysPerBillingMonth = decimal.NewFromInt(30)
	monthsPerYear       = decimal.NewFromInt(12)
)

// DisplayPlaces is the number of decimal places used when a snapshot is
// presented or exported.
const DisplayPlaces = 2

// BillSnapshot is a computed, read-only view of a bill. TotalCost is the
// tiered total from the slab breakdown; FlatCost is the sum of the entries'
// unit-price costs.
type BillSnapshot struct {
	TotalKwh           decimal.Decimal `json:"total_kwh"`
	TotalCost          decimal.Decimal `json:"total_cost"`
	FlatCost           decimal.Decimal `json:"flat_cost"`
	ApplianceCount     int             `json:"appliance_count"`
	DailyAverageCost   decimal.Decimal `json:"daily_average_cost"`
	AnnualEstimateCost decimal.Decimal `json:"annual_estimate_cost"`
	SlabBreakdown      []SlabResult    `json:"slab_breakdown"`
}

// Empty reports whether the snapshot was built from an empty ledger.
func (s BillSnapshot) Empty() bool { return s.ApplianceCount == 0 }

// Rounded returns a copy with every amount rounded for display.
func (s BillSnapshot) Rounded() BillSnapshot {
	out := s
	out.TotalKwh = s.TotalKwh.Round(DisplayPlaces)
	out.TotalCost = s.TotalCost.Round(DisplayPlaces)
	out.FlatCost = s.FlatCost.Round(DisplayPlaces)
	out.DailyAverageCost = s.DailyAverageCost.Round(DisplayPlaces)
	out.AnnualEstimateCost = s.AnnualEstimateCost.Round(DisplayPlaces)
	out.SlabBreakdown = make([]SlabResult, len(s.SlabBreakdown))
	for i, r := range s.SlabBreakdown {
		r.UnitsInBand = r.UnitsInBand.Round(DisplayPlaces)
		r.Cost = r.Cost.Round(DisplayPlaces)
		out.SlabBreakdown[i] = r
	}
	return out
}

func emptySnapshot() BillSnapshot {
	return BillSnapshot{
		TotalKwh:           decimal.Zero,
		TotalCost:          decimal.Zero,
		FlatCost:           decimal.Zero,
		DailyAverageCost:   decimal.Zero,
		AnnualEstimateCost: decimal.Zero,
		SlabBreakdown:      []SlabResult{},
	}
}

// BuildSnapshot computes a fresh snapshot from the ledger's current entries
// and the given schedule. An empty ledger yields a zero snapshot.
func BuildSnapshot(l *Ledger, schedule *RateSchedule) (BillSnapshot, error) {
	totals := l.Totals()
	if totals.Count == 0 {
		return emptySnapshot(), nil
	}

	alloc, err := Allocate(totals.Kwh, schedule)
	if err != nil {
		return BillSnapshot{}, err
	}

	return BillSnapshot{
		TotalKwh:           totals.Kwh,
		TotalCost:          alloc.TotalCost,
		FlatCost:           totals.Cost,
		ApplianceCount:     totals.Count,
		DailyAverageCost:   alloc.TotalCost.Div(daysPerBillingMonth),
		AnnualEstimateCost: alloc.TotalCost.Mul(monthsPerYear),
		SlabBreakdown:      alloc.Breakdown,
	}, nil
}
