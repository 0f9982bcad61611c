package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/bher20/ebillcalc/internal/billing"
)

var estimateIn sessionInput

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate a monthly bill from an appliance list",
	Long: `Reads appliances from a YAML or JSON file and/or built-in presets and
prints the monthly bill with its slab breakdown and energy-saving tips.

Example file:

  tariff: bpdb
  unit_price: "8.5"
  presets: [Refrigerator]
  appliances:
    - {name: Fan, power: 75, hours: 10, days: 30}`,
	RunE: runEstimate,
}

func init() {
	addSessionFlags(estimateCmd, &estimateIn)
	rootCmd.AddCommand(estimateCmd)
}

func addSessionFlags(cmd *cobra.Command, in *sessionInput) {
	cmd.Flags().StringVarP(&in.file, "file", "f", "", "Appliance file (YAML or JSON)")
	cmd.Flags().StringSliceVar(&in.presets, "preset", nil, "Add a preset appliance by name (repeatable)")
	cmd.Flags().StringVar(&in.tariff, "tariff", "", "Tariff key (default from config)")
	cmd.Flags().StringVar(&in.unitPrice, "unit-price", "", "Flat per-kWh price for per-appliance costs")
}

func runEstimate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, tariff, err := buildSession(cmd.Context(), cfg, estimateIn)
	if err != nil {
		return err
	}
	snap, err := s.Snapshot()
	if err != nil {
		return err
	}
	if snap.Empty() {
		return fmt.Errorf("no appliances given: use --file or --preset")
	}
	printEstimate(cmd.OutOrStdout(), tariff, s.UnitPrice(), snap, s.Entries())
	return nil
}

func printEstimate(w io.Writer, tariff string, unitPrice float64, snap billing.BillSnapshot, entries []billing.ApplianceEntry) {
	const p = billing.DisplayPlaces

	fmt.Fprintf(w, "Tariff: %s (flat unit price %g)\n\n", tariff, unitPrice)
	fmt.Fprintf(w, "%-20s  %8s  %10s\n", "Appliance", "kWh", "Cost")
	fmt.Fprintln(w, "------------------------------------------")
	for _, e := range entries {
		fmt.Fprintf(w, "%-20s  %8s  %10s\n", e.Name, e.DerivedKwh.StringFixed(p), e.DerivedCost.StringFixed(p))
	}

	fmt.Fprintf(w, "\n%-12s  %10s  %8s  %10s\n", "Slab", "Units", "Rate", "Cost")
	fmt.Fprintln(w, "------------------------------------------")
	for _, r := range snap.SlabBreakdown {
		fmt.Fprintf(w, "%-12s  %10s  %8s  %10s\n", r.BandLabel, r.UnitsInBand.StringFixed(p), r.RatePerUnit.String(), r.Cost.StringFixed(p))
	}

	fmt.Fprintln(w, "------------------------------------------")
	fmt.Fprintf(w, "Appliances:      %d\n", snap.ApplianceCount)
	fmt.Fprintf(w, "Monthly usage:   %s kWh\n", snap.TotalKwh.StringFixed(p))
	fmt.Fprintf(w, "Monthly bill:    %s\n", snap.TotalCost.StringFixed(p))
	fmt.Fprintf(w, "Daily average:   %s\n", snap.DailyAverageCost.StringFixed(p))
	fmt.Fprintf(w, "Annual estimate: %s\n", snap.AnnualEstimateCost.StringFixed(p))

	tips := billing.Tips(snap, entries)
	if len(tips) > 0 {
		fmt.Fprintln(w, "\nTips:")
		for _, t := range tips {
			fmt.Fprintf(w, "  - %s\n", tipText(t))
		}
	}
}

func tipText(t billing.Tip) string {
	switch t.Code {
	case billing.TipHighConsumption:
		return "Your consumption is high (300+ kWh). Consider energy-efficient appliances to reduce costs."
	case billing.TipAirConditioner:
		return "Set AC temperature to 24-26°C to save 20-30% on cooling costs."
	case billing.TipHighWattage:
		return fmt.Sprintf("Your %s uses significant power. Consider reducing usage hours.", t.Subject)
	case billing.TipHighCost:
		return "Switch to LED bulbs and energy star appliances to save ৳500-800/month."
	case billing.TipLoadShedding:
		return "During load shedding hours, your actual consumption may be lower. Consider this in your planning."
	case billing.TipEfficient:
		return "Your electricity usage looks efficient! Keep up the good energy-saving habits."
	default:
		return string(t.Code)
	}
}
