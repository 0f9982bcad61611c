package billing

import (
	"sort"
	"strings"
)

// Preset is a common household appliance with typical usage figures.
type Preset struct {
	Name         string  `json:"name"`
	PowerWatts   float64 `json:"power_watts"`
	HoursPerDay  float64 `json:"hours_per_day"`
	DaysPerMonth float64 `json:"days_per_month"`
}

// Input converts the preset into validated appliance input.
func (p Preset) Input() ApplianceInput {
	return ApplianceInput{
		Name:         p.Name,
		PowerWatts:   p.PowerWatts,
		HoursPerDay:  p.HoursPerDay,
		DaysPerMonth: p.DaysPerMonth,
	}
}

var presets = []Preset{
	{Name: "Ceiling Fan", PowerWatts: 75, HoursPerDay: 10, DaysPerMonth: 30},
	{Name: "LED Bulb", PowerWatts: 10, HoursPerDay: 6, DaysPerMonth: 30},
	{Name: "Tube Light", PowerWatts: 40, HoursPerDay: 6, DaysPerMonth: 30},
	{Name: "Refrigerator", PowerWatts: 150, HoursPerDay: 24, DaysPerMonth: 30},
	{Name: "Television", PowerWatts: 100, HoursPerDay: 5, DaysPerMonth: 30},
	{Name: "Air Conditioner", PowerWatts: 1500, HoursPerDay: 8, DaysPerMonth: 30},
	{Name: "Rice Cooker", PowerWatts: 700, HoursPerDay: 1, DaysPerMonth: 30},
	{Name: "Iron", PowerWatts: 1000, HoursPerDay: 0.5, DaysPerMonth: 15},
	{Name: "Water Pump", PowerWatts: 750, HoursPerDay: 1, DaysPerMonth: 30},
	{Name: "Laptop", PowerWatts: 65, HoursPerDay: 6, DaysPerMonth: 30},
}

// Presets returns the catalog sorted by name.
func Presets() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// LookupPreset finds a preset by case-insensitive name.
func LookupPreset(name string) (Preset, bool) {
	name = strings.TrimSpace(name)
	for _, p := range presets {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Preset{}, false
}
