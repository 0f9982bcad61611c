// Package report renders bill snapshots for export: a fixed-layout text
// report and a JSON document.
package report

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bher20/ebillcalc/internal/billing"
)

// ErrNoData is returned when there is nothing to export.
var ErrNoData = errors.New("report: no appliances to export")

// Options controls the text report's fixed strings.
type Options struct {
	Title    string
	Footer   string
	Currency string
	// Now stamps the report; zero means time.Now().
	Now time.Time
}

// DefaultOptions returns the standard report layout.
func DefaultOptions() Options {
	return Options{
		Title:    "BANGLADESH ELECTRICITY BILL REPORT",
		Footer:   "Generated by BD Bill Calculator",
		Currency: "৳",
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Title == "" {
		o.Title = def.Title
	}
	if o.Footer == "" {
		o.Footer = def.Footer
	}
	if o.Currency == "" {
		o.Currency = def.Currency
	}
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	return o
}

// FileName returns the download name for a report generated at t.
func FileName(t time.Time) string {
	return fmt.Sprintf("BD-Bill-Report-%s.txt", t.Format("2006-01-02"))
}

// WriteText writes the human-readable report. Amounts are rounded to two
// decimal places here and nowhere earlier.
func WriteText(w io.Writer, snap billing.BillSnapshot, entries []billing.ApplianceEntry, opts Options) error {
	if len(entries) == 0 {
		return ErrNoData
	}
	opts = opts.withDefaults()
	cur := opts.Currency

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s\n", opts.Title)
	fmt.Fprintf(bw, "%s\n\n", strings.Repeat("=", 35))
	fmt.Fprintf(bw, "Generated on: %s at %s\n\n", opts.Now.Format("2006-01-02"), opts.Now.Format("15:04:05"))

	fmt.Fprintf(bw, "BILL SUMMARY\n")
	fmt.Fprintf(bw, "------------\n")
	fmt.Fprintf(bw, "Total Appliances: %d items\n", snap.ApplianceCount)
	fmt.Fprintf(bw, "Monthly Consumption: %s kWh\n", snap.TotalKwh.StringFixed(billing.DisplayPlaces))
	fmt.Fprintf(bw, "Monthly Cost: %s%s\n", cur, snap.TotalCost.StringFixed(billing.DisplayPlaces))
	fmt.Fprintf(bw, "Daily Average: %s%s\n", cur, snap.DailyAverageCost.StringFixed(billing.DisplayPlaces))
	fmt.Fprintf(bw, "Annual Estimate: %s%s\n\n", cur, snap.AnnualEstimateCost.StringFixed(billing.DisplayPlaces))

	fmt.Fprintf(bw, "APPLIANCE BREAKDOWN\n")
	fmt.Fprintf(bw, "-------------------\n")
	fmt.Fprintf(bw, "%-20s | %-8s | %-9s | %-10s | %-5s | Cost(%s)\n", "Name", "Power(W)", "Hours/Day", "Days/Month", "kWh", cur)
	fmt.Fprintf(bw, "%s\n", strings.Repeat("-", 69))
	for _, e := range entries {
		fmt.Fprintf(bw, "%-20s | %-8s | %-9s | %-10s | %-5s | %s\n",
			e.Name,
			e.PowerWatts.String(),
			e.HoursPerDay.String(),
			e.DaysPerMonth.String(),
			e.DerivedKwh.StringFixed(billing.DisplayPlaces),
			e.DerivedCost.StringFixed(billing.DisplayPlaces),
		)
	}

	fmt.Fprintf(bw, "\n%s\n", opts.Footer)
	return bw.Flush()
}

// Document is the JSON export shape.
type Document struct {
	GeneratedAt time.Time            `json:"generated_at"`
	Summary     billing.BillSnapshot `json:"summary"`
	Appliances  []Appliance          `json:"appliances"`
}

// Appliance is one table row of the export, with display-rounded amounts.
type Appliance struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	PowerWatts   string `json:"power_watts"`
	HoursPerDay  string `json:"hours_per_day"`
	DaysPerMonth string `json:"days_per_month"`
	Kwh          string `json:"kwh"`
	Cost         string `json:"cost"`
}

// NewDocument builds the JSON export shape from a snapshot and its entries.
func NewDocument(snap billing.BillSnapshot, entries []billing.ApplianceEntry, now time.Time) Document {
	doc := Document{
		GeneratedAt: now.UTC(),
		Summary:     snap.Rounded(),
		Appliances:  make([]Appliance, 0, len(entries)),
	}
	for _, e := range entries {
		doc.Appliances = append(doc.Appliances, Appliance{
			ID:           e.ID.String(),
			Name:         e.Name,
			PowerWatts:   e.PowerWatts.String(),
			HoursPerDay:  e.HoursPerDay.String(),
			DaysPerMonth: e.DaysPerMonth.String(),
			Kwh:          e.DerivedKwh.StringFixed(billing.DisplayPlaces),
			Cost:         e.DerivedCost.StringFixed(billing.DisplayPlaces),
		})
	}
	return doc
}

// WriteJSON writes the snapshot and entries as an indented JSON document.
func WriteJSON(w io.Writer, snap billing.BillSnapshot, entries []billing.ApplianceEntry, now time.Time) error {
	if len(entries) == 0 {
		return ErrNoData
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewDocument(snap, entries, now))
}
