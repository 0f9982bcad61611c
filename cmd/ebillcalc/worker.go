package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bher20/ebillcalc/internal/cron"
)

var workerOnce bool

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Refresh tariff schedules on a schedule",
	Long: `Re-parses every tariff with a configured PDF on the refresh interval
(integer seconds or a cron expression). Only one worker runs at a time
when several share a postgres database.`,
	RunE: runWorker,
}

func init() {
	workerCmd.Flags().BoolVar(&workerOnce, "once", false, "Run a single refresh and exit")
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	w := cron.NewWorker(st, newRatesService(cfg, st), newAlerter(cfg), cfg.RefreshInterval)
	w.Download = cfg.DownloadPDFs

	if workerOnce {
		return w.RunOnce(ctx)
	}
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
