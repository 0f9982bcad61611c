package billing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRateSchedule_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		bands    []RateBand
		wantBand int
	}{
		{name: "empty", bands: nil, wantBand: -1},
		{
			name: "gap between bands",
			bands: []RateBand{
				{Lower: 0, Upper: 75, Rate: d("3.5")},
				{Lower: 80, Upper: Unbounded, Rate: d("4")},
			},
			wantBand: 1,
		},
		{
			name: "overlap",
			bands: []RateBand{
				{Lower: 0, Upper: 75, Rate: d("3.5")},
				{Lower: 75, Upper: Unbounded, Rate: d("4")},
			},
			wantBand: 1,
		},
		{
			name: "two open bands",
			bands: []RateBand{
				{Lower: 0, Upper: Unbounded, Rate: d("3.5")},
				{Lower: 1, Upper: Unbounded, Rate: d("4")},
			},
			wantBand: 0,
		},
		{
			name: "no open band",
			bands: []RateBand{
				{Lower: 0, Upper: 75, Rate: d("3.5")},
				{Lower: 76, Upper: 200, Rate: d("4")},
			},
			wantBand: 1,
		},
		{
			name:     "negative lower",
			bands:    []RateBand{{Lower: -5, Upper: Unbounded, Rate: d("1")}},
			wantBand: 0,
		},
		{
			name: "negative upper",
			bands: []RateBand{
				{Lower: 0, Upper: -7, Rate: d("1")},
				{Lower: 1, Upper: Unbounded, Rate: d("1")},
			},
			wantBand: 0,
		},
		{
			name:     "zero rate",
			bands:    []RateBand{{Lower: 0, Upper: Unbounded, Rate: d("0")}},
			wantBand: 0,
		},
		{
			name: "descending bounds",
			bands: []RateBand{
				{Lower: 10, Upper: 5, Rate: d("1")},
				{Lower: 6, Upper: Unbounded, Rate: d("1")},
			},
			wantBand: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewRateSchedule(tt.bands)
			require.Error(t, err)
			assert.Nil(t, s)
			assert.True(t, errors.Is(err, ErrInvalidSchedule))

			var schedErr *InvalidScheduleError
			require.True(t, errors.As(err, &schedErr))
			assert.Equal(t, tt.wantBand, schedErr.Band)
		})
	}
}

func TestNewRateSchedule_CopiesBands(t *testing.T) {
	bands := DefaultBands()
	s, err := NewRateSchedule(bands)
	require.NoError(t, err)

	bands[0].Rate = d("100")
	assert.True(t, s.Bands()[0].Rate.Equal(d("3.5")))

	out := s.Bands()
	out[1].Rate = d("100")
	assert.True(t, s.Bands()[1].Rate.Equal(d("4.75")))
}

func TestRateSchedule_Progressive(t *testing.T) {
	assert.True(t, DefaultSchedule().Progressive())

	s := MustRateSchedule([]RateBand{
		{Lower: 0, Upper: 100, Rate: d("5")},
		{Lower: 101, Upper: Unbounded, Rate: d("4")},
	})
	assert.False(t, s.Progressive())
}

func TestRateBand_Capacity(t *testing.T) {
	assert.True(t, RateBand{Lower: 0, Upper: 75}.Capacity().Equal(d("75")))
	assert.True(t, RateBand{Lower: 1, Upper: 75}.Capacity().Equal(d("75")))
	assert.True(t, RateBand{Lower: 76, Upper: 200}.Capacity().Equal(d("125")))
}
