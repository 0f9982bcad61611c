package billing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Unbounded marks a RateBand without an upper bound.
const Unbounded int64 = -1

// RateBand is one slab of a RateSchedule. Bounds are inclusive unit numbers.
type RateBand struct {
	Lower int64           `json:"lower" yaml:"lower"`
	Upper int64           `json:"upper" yaml:"upper"`
	Rate  decimal.Decimal `json:"rate" yaml:"rate"`
}

// IsUnbounded reports whether the band absorbs all remaining consumption.
func (b RateBand) IsUnbounded() bool { return b.Upper == Unbounded }

// Capacity returns how many units the band can hold. Units are numbered from
// 1, so a band that starts at 0 holds Upper units, not Upper+1.
func (b RateBand) Capacity() decimal.Decimal {
	first := b.Lower
	if first < 1 {
		first = 1
	}
	return decimal.NewFromInt(b.Upper - first + 1)
}

// Label is the static "lower-upper" label of a bounded band.
func (b RateBand) Label() string {
	return fmt.Sprintf("%d-%d", b.Lower, b.Upper)
}

// RateSchedule is an immutable, validated list of contiguous bands.
type RateSchedule struct {
	bands []RateBand
}

// NewRateSchedule validates bands and returns a schedule holding a copy of
// them. Bands must be ascending and contiguous, non-negative, carry a positive
// rate, and exactly the last band must be unbounded.
func NewRateSchedule(bands []RateBand) (*RateSchedule, error) {
	if len(bands) == 0 {
		return nil, &InvalidScheduleError{Band: -1, Reason: "no bands"}
	}
	for i, b := range bands {
		if b.Lower < 0 {
			return nil, &InvalidScheduleError{Band: i, Reason: "negative lower bound"}
		}
		if b.Upper < 0 && !b.IsUnbounded() {
			return nil, &InvalidScheduleError{Band: i, Reason: "negative upper bound"}
		}
		if !b.Rate.IsPositive() {
			return nil, &InvalidScheduleError{Band: i, Reason: "rate must be positive"}
		}
		last := i == len(bands)-1
		if b.IsUnbounded() {
			if !last {
				return nil, &InvalidScheduleError{Band: i, Reason: "only the last band may be unbounded"}
			}
			continue
		}
		if last {
			return nil, &InvalidScheduleError{Band: i, Reason: "last band must be unbounded"}
		}
		if b.Upper < b.Lower || !b.Capacity().IsPositive() {
			return nil, &InvalidScheduleError{Band: i, Reason: "band holds no units"}
		}
		if bands[i+1].Lower != b.Upper+1 {
			return nil, &InvalidScheduleError{
				Band:   i + 1,
				Reason: fmt.Sprintf("lower bound %d does not follow %d", bands[i+1].Lower, b.Upper),
			}
		}
	}
	cp := make([]RateBand, len(bands))
	copy(cp, bands)
	return &RateSchedule{bands: cp}, nil
}

// MustRateSchedule is like NewRateSchedule but panics on error. It is meant
// for package-level literals.
func MustRateSchedule(bands []RateBand) *RateSchedule {
	s, err := NewRateSchedule(bands)
	if err != nil {
		panic(err)
	}
	return s
}

// Bands returns a copy of the bands in ascending order.
func (s *RateSchedule) Bands() []RateBand {
	out := make([]RateBand, len(s.bands))
	copy(out, s.bands)
	return out
}

// Progressive reports whether rates never decrease from one band to the next.
// Allocation does not require it.
func (s *RateSchedule) Progressive() bool {
	for i := 1; i < len(s.bands); i++ {
		if s.bands[i].Rate.LessThan(s.bands[i-1].Rate) {
			return false
		}
	}
	return true
}

// DefaultBands is the five-slab residential tariff.
func DefaultBands() []RateBand {
	return []RateBand{
		{Lower: 0, Upper: 75, Rate: decimal.RequireFromString("3.5")},
		{Lower: 76, Upper: 200, Rate: decimal.RequireFromString("4.75")},
		{Lower: 201, Upper: 300, Rate: decimal.RequireFromString("5.5")},
		{Lower: 301, Upper: 400, Rate: decimal.RequireFromString("6.5")},
		{Lower: 401, Upper: Unbounded, Rate: decimal.RequireFromString("9.9")},
	}
}

// DefaultSchedule returns the five-slab residential schedule.
func DefaultSchedule() *RateSchedule {
	return MustRateSchedule(DefaultBands())
}
