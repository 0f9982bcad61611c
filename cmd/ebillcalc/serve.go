package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bher20/ebillcalc/internal/api"
	"github.com/bher20/ebillcalc/internal/cron"
	"github.com/bher20/ebillcalc/internal/migrate"
)

var (
	serveWithWorker bool
	serveIdleTTL    time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Starts the bill calculator API with Prometheus metrics, health endpoints
and API docs under /swagger/.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveWithWorker, "with-worker", false, "Also run the tariff refresh worker in-process")
	serveCmd.Flags().DurationVar(&serveIdleTTL, "session-ttl", 2*time.Hour, "Drop sessions idle for longer than this")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.DB.AutoMigrate && cfg.DB.Driver != "memory" {
		if err := migrate.Up(ctx, cfg.DB.Driver, cfg.DB.DSN); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
	}

	st, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	authSvc, err := newAuth(cfg)
	if err != nil {
		return err
	}

	svc := newRatesService(cfg, st)
	srv := api.NewServer(api.Options{
		Rates:           svc,
		Store:           st,
		Notifier:        newNotifier(cfg),
		Auth:            authSvc,
		DefaultTariff:   cfg.Tariff,
		UnitPrice:       cfg.UnitPrice,
		RefreshInterval: cfg.RefreshInterval,
	})

	go srv.Registry().RunJanitor(ctx, 5*time.Minute, serveIdleTTL)

	if serveWithWorker {
		w := cron.NewWorker(st, svc, newAlerter(cfg), cfg.RefreshInterval)
		w.Download = cfg.DownloadPDFs
		go func() {
			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("worker stopped", "err", err)
			}
		}()
	}

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("BD Bill Calculator listening", "addr", httpSrv.Addr, "tariff", cfg.Tariff, "storage", cfg.DB.Driver)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
