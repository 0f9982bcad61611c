package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bher20/ebillcalc/internal/alerting"
	"github.com/bher20/ebillcalc/internal/auth"
	"github.com/bher20/ebillcalc/internal/config"
	"github.com/bher20/ebillcalc/internal/notification"
	"github.com/bher20/ebillcalc/internal/rates"
	"github.com/bher20/ebillcalc/internal/storage"
	"github.com/bher20/ebillcalc/pkg/logging"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "ebillcalc",
	Short: "Estimate monthly electricity bills under slab tariffs",
	Long: `ebillcalc estimates household electricity bills from an appliance list
using tiered (slab) tariffs such as the BPDB residential LT-A schedule.

It runs as an HTTP API, as a one-shot CLI estimator, or as a background
worker that keeps tariff schedules fresh from published PDFs.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logging.SetupWithLevel(logging.ParseLevel(cfg.LogLevel))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./ebillcalc.yaml)")
}

// getConfigPath returns the config file path
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return "ebillcalc.yaml"
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return config.Config{}, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// openStorage opens the configured backend seeded with the tariff catalog.
func openStorage(ctx context.Context, cfg config.Config) (storage.Storage, error) {
	st, err := storage.Open(ctx, storage.Config{
		Driver:  cfg.DB.Driver,
		DSN:     cfg.DB.DSN,
		Tariffs: rates.StorageTariffs(rates.Tariffs()),
	})
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}
	return st, nil
}

func newRatesService(cfg config.Config, st storage.Storage) *rates.Service {
	return rates.NewServiceWithStorage(rates.Config{PDFPaths: cfg.PDFPaths}, st)
}

func newAlerter(cfg config.Config) *alerting.Alerter {
	return alerting.NewAlerter(alerting.AlertConfig{
		WebhookURL:             cfg.Alert.WebhookURL,
		WebhookType:            cfg.Alert.WebhookType,
		MinFailuresBeforeAlert: cfg.Alert.MinFailures,
	})
}

func newNotifier(cfg config.Config) *notification.Service {
	return notification.NewService(notification.Config{
		Provider:    cfg.Email.Provider,
		FromName:    cfg.Email.FromName,
		FromAddress: cfg.Email.FromAddress,
		APIKey:      cfg.Email.APIKey,
		Host:        cfg.Email.Host,
		Port:        cfg.Email.Port,
		Username:    cfg.Email.Username,
		Password:    cfg.Email.Password,
		Encryption:  cfg.Email.Encryption,
	})
}

// newAuth returns nil when no tokens are configured.
func newAuth(cfg config.Config) (*auth.Service, error) {
	if len(cfg.Auth.Tokens) == 0 {
		return nil, nil
	}
	tokens := make([]auth.Token, 0, len(cfg.Auth.Tokens))
	for _, t := range cfg.Auth.Tokens {
		tokens = append(tokens, auth.Token{Name: t.Name, Role: t.Role, Hash: t.Hash})
	}
	svc, err := auth.NewService(tokens)
	if err != nil {
		return nil, fmt.Errorf("configuring auth: %w", err)
	}
	return svc, nil
}
