package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tipCodes(tips []Tip) []TipCode {
	out := make([]TipCode, 0, len(tips))
	for _, t := range tips {
		out = append(out, t.Code)
	}
	return out
}

func TestTips(t *testing.T) {
	t.Run("empty bill", func(t *testing.T) {
		assert.Empty(t, Tips(emptySnapshot(), nil))
	})

	t.Run("efficient", func(t *testing.T) {
		s := NewSession(nil, 0)
		_, err := s.AddPreset("LED Bulb")
		require.NoError(t, err)
		snap, err := s.Snapshot()
		require.NoError(t, err)
		assert.Equal(t, []TipCode{TipEfficient}, tipCodes(Tips(snap, s.Entries())))
	})

	t.Run("heavy use", func(t *testing.T) {
		s := NewSession(nil, 0)
		_, err := s.AddPreset("Air Conditioner")
		require.NoError(t, err)
		snap, err := s.Snapshot()
		require.NoError(t, err)

		tips := Tips(snap, s.Entries())
		assert.Equal(t, []TipCode{
			TipHighConsumption,
			TipAirConditioner,
			TipHighWattage,
			TipHighCost,
			TipLoadShedding,
		}, tipCodes(tips))
		assert.Equal(t, "Air Conditioner", tips[2].Subject)
	})
}
