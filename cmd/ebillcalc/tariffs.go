package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bher20/ebillcalc/internal/billing"
	"github.com/bher20/ebillcalc/internal/rates"
)

var tariffsCmd = &cobra.Command{
	Use:   "tariffs",
	Short: "Inspect and update tariff schedules",
}

var tariffsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known tariffs",
	RunE:  runTariffsList,
}

var tariffsShowCmd = &cobra.Command{
	Use:   "show [tariff]",
	Short: "Show the resolved slab schedule of a tariff",
	Args:  cobra.ExactArgs(1),
	RunE:  runTariffsShow,
}

var tariffsImportCmd = &cobra.Command{
	Use:   "import-pdf [tariff] [pdf]",
	Short: "Parse a tariff PDF and store its schedule",
	Long: `Parses the slab table out of a published tariff PDF and stores it as the
tariff's current schedule. Unknown keys are registered as new tariffs.`,
	Args: cobra.ExactArgs(2),
	RunE: runTariffsImport,
}

var tariffsRefreshDownload bool

var tariffsRefreshCmd = &cobra.Command{
	Use:   "refresh [tariff]",
	Short: "Re-parse a tariff's PDF now",
	Args:  cobra.ExactArgs(1),
	RunE:  runTariffsRefresh,
}

func init() {
	tariffsRefreshCmd.Flags().BoolVar(&tariffsRefreshDownload, "download", false, "Download the latest PDF from the tariff's landing page first")
	tariffsCmd.AddCommand(tariffsListCmd, tariffsShowCmd, tariffsImportCmd, tariffsRefreshCmd)
	rootCmd.AddCommand(tariffsCmd)
}

func runTariffsList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStorage(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	list, err := newRatesService(cfg, st).ListTariffs(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing tariffs: %w", err)
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%-12s  %-32s  %-8s  %s\n", "Key", "Name", "Currency", "PDF")
	fmt.Fprintln(w, "----------------------------------------------------------------------")
	for _, t := range list {
		fmt.Fprintf(w, "%-12s  %-32s  %-8s  %s\n", t.Key, t.Name, t.Currency, t.PDFPath)
	}
	return nil
}

func runTariffsShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStorage(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	svc := newRatesService(cfg, st)
	t, err := svc.Describe(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	sched, err := svc.GetSchedule(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", t.Name, t.Key)
	if t.LandingURL != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Source: %s\n", t.LandingURL)
	}
	printBands(cmd, sched)
	return nil
}

func runTariffsImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStorage(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	sched, err := newRatesService(cfg, st).ImportPDF(cmd.Context(), args[0], args[1])
	if err != nil {
		return fmt.Errorf("importing %s: %w", args[1], err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d slabs for %s\n", len(sched.Bands()), args[0])
	printBands(cmd, sched)
	return nil
}

func runTariffsRefresh(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStorage(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	svc := newRatesService(cfg, st)
	if tariffsRefreshDownload {
		t, err := svc.Describe(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		path, err := rates.DownloadTariffPDF(cmd.Context(), nil, t)
		if err != nil {
			return fmt.Errorf("downloading PDF: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Downloaded %s\n", path)
	}
	sched, err := svc.ForceRefresh(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("refreshing %s: %w", args[0], err)
	}
	printBands(cmd, sched)
	return nil
}

func printBands(cmd *cobra.Command, sched *billing.RateSchedule) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "\n%-14s  %8s\n", "Units", "Rate")
	fmt.Fprintln(w, "------------------------")
	for _, b := range sched.Bands() {
		label := b.Label()
		if b.IsUnbounded() {
			label = fmt.Sprintf("%d+", b.Lower)
		}
		fmt.Fprintf(w, "%-14s  %8s\n", label, b.Rate.String())
	}
	if !sched.Progressive() {
		fmt.Fprintln(w, "\nwarning: rates are not non-decreasing across slabs")
	}
}
