package billing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// TipCode identifies an energy-saving tip. Presentation layers map codes to
// text; Subject names the appliance a tip is about, when there is one.
type TipCode string

const (
	TipHighConsumption TipCode = "high_consumption"
	TipAirConditioner  TipCode = "air_conditioner"
	TipHighWattage     TipCode = "high_wattage"
	TipHighCost        TipCode = "high_cost"
	TipLoadShedding    TipCode = "load_shedding"
	TipEfficient       TipCode = "efficient"
)

type Tip struct {
	Code    TipCode `json:"code"`
	Subject string  `json:"subject,omitempty"`
}

var (
	highConsumptionKwh = decimal.NewFromInt(300)
	loadSheddingKwh    = decimal.NewFromInt(200)
	highCostThreshold  = decimal.NewFromInt(2000)
	highWattage        = decimal.NewFromInt(1000)
)

// Tips derives energy-saving tips from a snapshot and its entries. An empty
// bill has no tips.
func Tips(snap BillSnapshot, entries []ApplianceEntry) []Tip {
	if len(entries) == 0 {
		return nil
	}

	var tips []Tip
	if snap.TotalKwh.GreaterThan(highConsumptionKwh) {
		tips = append(tips, Tip{Code: TipHighConsumption})
	}
	for _, e := range entries {
		if isAirConditioner(e.Name) {
			tips = append(tips, Tip{Code: TipAirConditioner, Subject: e.Name})
			break
		}
	}
	for _, e := range entries {
		if e.PowerWatts.GreaterThan(highWattage) {
			tips = append(tips, Tip{Code: TipHighWattage, Subject: e.Name})
			break
		}
	}
	if snap.FlatCost.GreaterThan(highCostThreshold) {
		tips = append(tips, Tip{Code: TipHighCost})
	}
	if snap.TotalKwh.GreaterThan(loadSheddingKwh) {
		tips = append(tips, Tip{Code: TipLoadShedding})
	}
	if len(tips) == 0 {
		tips = append(tips, Tip{Code: TipEfficient})
	}
	return tips
}

func isAirConditioner(name string) bool {
	n := strings.ToLower(name)
	return strings.Contains(n, "ac") || strings.Contains(n, "air") || strings.Contains(n, "conditioner")
}
