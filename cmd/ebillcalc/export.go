package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bher20/ebillcalc/internal/report"
)

var (
	exportIn     sessionInput
	exportFormat string
	exportOut    string
	exportEmail  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a bill report to a file, stdout or email",
	Long: `Builds the same bill as estimate and writes it as a text or JSON report.

Without --out the report is saved as BD-Bill-Report-<date>.txt (or .json) in
the current directory. Use --out - for stdout, or --email to send the text
report through the configured email provider.`,
	RunE: runExport,
}

func init() {
	addSessionFlags(exportCmd, &exportIn)
	exportCmd.Flags().StringVar(&exportFormat, "format", "text", "Report format: text or json")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file, or - for stdout")
	exportCmd.Flags().StringVar(&exportEmail, "email", "", "Email the report to this address instead")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportFormat != "text" && exportFormat != "json" {
		return fmt.Errorf("unknown format %q (available: text, json)", exportFormat)
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, _, err := buildSession(cmd.Context(), cfg, exportIn)
	if err != nil {
		return err
	}
	snap, err := s.Snapshot()
	if err != nil {
		return err
	}

	if exportEmail != "" {
		if err := newNotifier(cfg).SendReport(cmd.Context(), exportEmail, snap, s.Entries()); err != nil {
			return fmt.Errorf("sending report: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Report sent to %s\n", exportEmail)
		return nil
	}

	now := time.Now()
	write := func(w io.Writer) error {
		if exportFormat == "json" {
			return report.WriteJSON(w, snap, s.Entries(), now)
		}
		return report.WriteText(w, snap, s.Entries(), report.Options{Now: now})
	}

	if exportOut == "-" {
		return write(cmd.OutOrStdout())
	}
	path := exportOut
	if path == "" {
		path = report.FileName(now)
		if exportFormat == "json" {
			path = strings.TrimSuffix(path, ".txt") + ".json"
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Report saved to %s\n", path)
	return nil
}
