package rates

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bher20/ebillcalc/internal/billing"
)

func TestParseSlabText(t *testing.T) {
	text := `Residential tariff (LT-A)
Slab      Rate
0-75 3.50
76 to 200 units: Tk 4.75
201-300 5.50
301 – 400 6.50
401 - above 9.90
Demand charge 42`

	sched, err := ParseSlabText(text)
	require.NoError(t, err)

	bands := sched.Bands()
	require.Len(t, bands, 5)
	assert.Equal(t, int64(0), bands[0].Lower)
	assert.Equal(t, int64(75), bands[0].Upper)
	assert.True(t, bands[1].Rate.Equal(decimal.RequireFromString("4.75")))
	assert.Equal(t, int64(301), bands[3].Lower)
	assert.True(t, bands[4].IsUnbounded())
	assert.True(t, bands[4].Rate.Equal(decimal.RequireFromString("9.9")))

	alloc, err := billing.Allocate(decimal.NewFromInt(250), sched)
	require.NoError(t, err)
	assert.Equal(t, "1131.25", alloc.TotalCost.StringFixed(2))
}

func TestParseSlabText_OpenBandForms(t *testing.T) {
	for _, line := range []string{"101+ 7.00", "101 and above 7", "101 above 7.0"} {
		t.Run(line, func(t *testing.T) {
			sched, err := ParseSlabText("0-100 5\n" + line)
			require.NoError(t, err)
			bands := sched.Bands()
			require.Len(t, bands, 2)
			assert.Equal(t, int64(101), bands[1].Lower)
			assert.True(t, bands[1].IsUnbounded())
		})
	}
}

func TestParseSlabText_Invalid(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", "no table here"},
		{"gap", "0-75 3.5\n80-200 4.75\n201+ 5.5"},
		{"no open band", "0-75 3.5\n76-200 4.75"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSlabText(tt.text)
			assert.True(t, errors.Is(err, billing.ErrInvalidSchedule), "got %v", err)
		})
	}
}

func TestParserFor_FallsBackToSlab(t *testing.T) {
	p := ParserFor("unknown-utility")
	assert.Equal(t, SlabParser, p.Key)
	require.NotNil(t, p.ParseText)
}

func TestParseSlabPDF_MissingFile(t *testing.T) {
	_, err := ParseSlabPDF("/nonexistent/tariff.pdf")
	assert.Error(t, err)
}
