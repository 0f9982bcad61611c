package billing

import (
	"math"
	"strconv"
	"strings"
)

// RawAppliance is appliance input as it arrives from a form, query string or
// file: every field is text and nothing has been checked yet.
type RawAppliance struct {
	Name  string `json:"name" yaml:"name"`
	Power string `json:"power" yaml:"power"`
	Hours string `json:"hours" yaml:"hours"`
	Days  string `json:"days" yaml:"days"`
}

// ApplianceInput is validated, typed appliance input.
type ApplianceInput struct {
	Name         string
	PowerWatts   float64
	HoursPerDay  float64
	DaysPerMonth float64
}

// ParseApplianceInput converts raw text into ApplianceInput. It rejects an
// empty name and any field that is not a finite number in range.
func ParseApplianceInput(raw RawAppliance) (ApplianceInput, error) {
	in := ApplianceInput{Name: strings.TrimSpace(raw.Name)}
	if in.Name == "" {
		return ApplianceInput{}, &ValidationError{Field: "name", Value: raw.Name}
	}

	var err error
	if in.PowerWatts, err = parseNumber("powerWatts", raw.Power); err != nil {
		return ApplianceInput{}, err
	}
	if in.PowerWatts <= 0 {
		return ApplianceInput{}, &ValidationError{Field: "powerWatts", Value: raw.Power}
	}
	if in.HoursPerDay, err = parseNumber("hoursPerDay", raw.Hours); err != nil {
		return ApplianceInput{}, err
	}
	if in.HoursPerDay < 0 {
		return ApplianceInput{}, &ValidationError{Field: "hoursPerDay", Value: raw.Hours}
	}
	if in.DaysPerMonth, err = parseNumber("daysPerMonth", raw.Days); err != nil {
		return ApplianceInput{}, err
	}
	if in.DaysPerMonth <= 0 {
		return ApplianceInput{}, &ValidationError{Field: "daysPerMonth", Value: raw.Days}
	}
	return in, nil
}

// ParseUnitPrice converts a raw unit price into a positive finite number.
func ParseUnitPrice(raw string) (float64, error) {
	v, err := parseNumber("unitPrice", raw)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, &ValidationError{Field: "unitPrice", Value: raw}
	}
	return v, nil
}

func parseNumber(field, raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &ValidationError{Field: field, Value: raw}
	}
	return v, nil
}
