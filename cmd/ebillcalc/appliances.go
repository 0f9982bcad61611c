package main

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bher20/ebillcalc/internal/billing"
	"github.com/bher20/ebillcalc/internal/config"
	"github.com/bher20/ebillcalc/internal/rates"
)

// applianceFile is the YAML (or JSON) input of estimate and export.
type applianceFile struct {
	Tariff     string                 `yaml:"tariff,omitempty"`
	UnitPrice  string                 `yaml:"unit_price,omitempty"`
	Presets    []string               `yaml:"presets,omitempty"`
	Appliances []billing.RawAppliance `yaml:"appliances"`
}

func readApplianceFile(path string) (applianceFile, error) {
	var f applianceFile
	if path == "" {
		return f, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return f, fmt.Errorf("reading appliance file: %w", err)
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("parsing appliance file: %w", err)
	}
	return f, nil
}

// sessionInput is what estimate and export share: where appliances come
// from and how to price them. Flags override the file.
type sessionInput struct {
	file      string
	presets   []string
	tariff    string
	unitPrice string
}

// buildSession resolves the tariff schedule and loads every appliance into a
// fresh session.
func buildSession(ctx context.Context, cfg config.Config, in sessionInput) (*billing.Session, string, error) {
	f, err := readApplianceFile(in.file)
	if err != nil {
		return nil, "", err
	}

	tariff := firstNonEmpty(in.tariff, f.Tariff, cfg.Tariff)
	price := cfg.UnitPrice
	if raw := firstNonEmpty(in.unitPrice, f.UnitPrice); raw != "" {
		if price, err = billing.ParseUnitPrice(raw); err != nil {
			return nil, "", err
		}
	}

	sched, err := rates.NewService(rates.Config{PDFPaths: cfg.PDFPaths}).GetSchedule(ctx, tariff)
	if err != nil {
		return nil, "", err
	}
	s := billing.NewSession(sched, price)

	for _, name := range append(f.Presets, in.presets...) {
		if _, err := s.AddPreset(name); err != nil {
			return nil, "", err
		}
	}
	for i, raw := range f.Appliances {
		a, err := billing.ParseApplianceInput(raw)
		if err != nil {
			return nil, "", fmt.Errorf("appliance %d: %w", i+1, err)
		}
		if _, err := s.AddAppliance(a); err != nil {
			return nil, "", fmt.Errorf("appliance %d: %w", i+1, err)
		}
	}
	return s, tariff, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
