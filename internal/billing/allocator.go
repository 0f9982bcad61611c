package billing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// SlabResult is the share of consumption and cost that fell into one band.
type SlabResult struct {
	BandLabel   string          `json:"band_label"`
	UnitsInBand decimal.Decimal `json:"units_in_band"`
	RatePerUnit decimal.Decimal `json:"rate_per_unit"`
	Cost        decimal.Decimal `json:"cost"`
}

// Allocation is the result of distributing consumption over a schedule.
type Allocation struct {
	TotalCost decimal.Decimal `json:"total_cost"`
	Breakdown []SlabResult    `json:"breakdown"`
}

// Allocate walks the schedule's bands in ascending order, filling each band
// up to its capacity until totalUnits is exhausted. Bands past the one that
// exhausts consumption are not evaluated, and bands receiving nothing are not
// reported. Costs keep full precision; nothing is rounded between bands.
func Allocate(totalUnits decimal.Decimal, schedule *RateSchedule) (Allocation, error) {
	if totalUnits.IsNegative() {
		return Allocation{}, &InvalidInputError{Field: "totalUnits", Value: totalUnits.String()}
	}
	if schedule == nil {
		return Allocation{}, &InvalidScheduleError{Band: -1, Reason: "nil schedule"}
	}

	out := Allocation{TotalCost: decimal.Zero, Breakdown: []SlabResult{}}
	remaining := totalUnits

	for _, band := range schedule.bands {
		if !remaining.IsPositive() {
			break
		}

		var units decimal.Decimal
		var label string
		if band.IsUnbounded() {
			units = remaining
			// The open band is labelled by where this bill's consumption ends.
			end := decimal.NewFromInt(band.Lower).Add(remaining).Sub(decimal.NewFromInt(1))
			label = fmt.Sprintf("%d-%s", band.Lower, end.String())
		} else {
			units = decimal.Min(remaining, band.Capacity())
			label = band.Label()
		}
		if !units.IsPositive() {
			continue
		}

		cost := units.Mul(band.Rate)
		out.Breakdown = append(out.Breakdown, SlabResult{
			BandLabel:   label,
			UnitsInBand: units,
			RatePerUnit: band.Rate,
			Cost:        cost,
		})
		out.TotalCost = out.TotalCost.Add(cost)
		remaining = remaining.Sub(units)
	}

	return out, nil
}
