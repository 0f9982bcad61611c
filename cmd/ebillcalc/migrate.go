package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bher20/ebillcalc/internal/config"
	"github.com/bher20/ebillcalc/internal/migrate"
)

var (
	migrateDriver string
	migrateDSN    string
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
	Long: `Applies or rolls back the SQL migrations for the sqlite or postgres
backend. Driver and DSN default to the db section of the config.`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		driver, dsn, err := migrateTarget()
		if err != nil {
			return err
		}
		if err := migrate.Up(cmd.Context(), driver, dsn); err != nil {
			return err
		}
		return printVersion(cmd, driver, dsn)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		driver, dsn, err := migrateTarget()
		if err != nil {
			return err
		}
		if err := migrate.Down(cmd.Context(), driver, dsn); err != nil {
			return err
		}
		return printVersion(cmd, driver, dsn)
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the status of every migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		driver, dsn, err := migrateTarget()
		if err != nil {
			return err
		}
		return migrate.Status(cmd.Context(), driver, dsn)
	},
}

func init() {
	migrateCmd.PersistentFlags().StringVar(&migrateDriver, "driver", "", "Database driver: sqlite or postgres")
	migrateCmd.PersistentFlags().StringVar(&migrateDSN, "dsn", "", "Database DSN")
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd)
	rootCmd.AddCommand(migrateCmd)
}

func migrateTarget() (string, string, error) {
	cfg, err := loadConfig()
	if err != nil {
		return "", "", err
	}
	return resolveMigrateTarget(cfg, migrateDriver, migrateDSN)
}

func resolveMigrateTarget(cfg config.Config, driver, dsn string) (string, string, error) {
	if driver == "" {
		driver = cfg.DB.Driver
	}
	if dsn == "" {
		dsn = cfg.DB.DSN
	}
	switch driver {
	case "sqlite":
		if dsn == "" {
			dsn = migrate.DefaultDSN
		}
	case "postgres":
		if dsn == "" {
			return "", "", fmt.Errorf("postgres requires --dsn or EBILLCALC_DB_DSN")
		}
	default:
		return "", "", fmt.Errorf("migrations need a sqlite or postgres driver, got %q", driver)
	}
	return driver, dsn, nil
}

func printVersion(cmd *cobra.Command, driver, dsn string) error {
	v, err := migrate.Version(cmd.Context(), driver, dsn)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Schema version: %d\n", v)
	return nil
}
