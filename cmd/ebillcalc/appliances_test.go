package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bher20/ebillcalc/internal/config"
	"github.com/bher20/ebillcalc/internal/migrate"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestBuildSession_YAML(t *testing.T) {
	path := writeFile(t, "home.yaml", `
unit_price: "10"
presets: [LED Bulb]
appliances:
  - {name: Fan, power: 100, hours: 5, days: 30}
`)
	s, tariff, err := buildSession(context.Background(), config.Default(), sessionInput{file: path})
	require.NoError(t, err)
	assert.Equal(t, "bpdb", tariff)
	assert.Equal(t, 10.0, s.UnitPrice())

	entries := s.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "LED Bulb", entries[0].Name)
	assert.Equal(t, "Fan", entries[1].Name)

	snap, err := s.Snapshot()
	require.NoError(t, err)
	// 1.8 + 15 kWh, all in the first slab.
	assert.Equal(t, "58.8", snap.TotalCost.String())
}

func TestBuildSession_JSONAndFlags(t *testing.T) {
	path := writeFile(t, "home.json", `{"appliances":[{"name":"TV","power":"120","hours":"4.5","days":"30"}]}`)
	s, _, err := buildSession(context.Background(), config.Default(), sessionInput{
		file:      path,
		presets:   []string{"refrigerator"},
		unitPrice: "9",
	})
	require.NoError(t, err)
	assert.Equal(t, 9.0, s.UnitPrice())
	assert.Len(t, s.Entries(), 2)
}

func TestBuildSession_Errors(t *testing.T) {
	cfg := config.Default()

	bad := writeFile(t, "bad.yaml", "appliances:\n  - {name: Fan, power: lots, hours: 1, days: 1}\n")
	_, _, err := buildSession(context.Background(), cfg, sessionInput{file: bad})
	assert.ErrorContains(t, err, "appliance 1")

	_, _, err = buildSession(context.Background(), cfg, sessionInput{presets: []string{"Toaster"}})
	assert.Error(t, err)

	_, _, err = buildSession(context.Background(), cfg, sessionInput{tariff: "nope"})
	assert.Error(t, err)

	_, _, err = buildSession(context.Background(), cfg, sessionInput{unitPrice: "0"})
	assert.Error(t, err)

	_, _, err = buildSession(context.Background(), cfg, sessionInput{file: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)
}

func TestPrintEstimate(t *testing.T) {
	s, tariff, err := buildSession(context.Background(), config.Default(), sessionInput{presets: []string{"Air Conditioner"}})
	require.NoError(t, err)
	snap, err := s.Snapshot()
	require.NoError(t, err)

	var buf bytes.Buffer
	printEstimate(&buf, tariff, s.UnitPrice(), snap, s.Entries())
	out := buf.String()
	assert.Contains(t, out, "Tariff: bpdb")
	assert.Contains(t, out, "0-75")
	assert.Contains(t, out, "301-400")
	assert.Contains(t, out, "Monthly usage:   360.00 kWh")
	assert.Contains(t, out, "Set AC temperature")
}

func TestResolveMigrateTarget(t *testing.T) {
	cfg := config.Default()

	_, _, err := resolveMigrateTarget(cfg, "", "")
	assert.Error(t, err, "memory driver has no schema")

	driver, dsn, err := resolveMigrateTarget(cfg, "sqlite", "")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", driver)
	assert.Equal(t, migrate.DefaultDSN, dsn)

	_, _, err = resolveMigrateTarget(cfg, "postgres", "")
	assert.Error(t, err)

	cfg.DB = config.DBConfig{Driver: "postgres", DSN: "postgres://localhost/bills"}
	driver, dsn, err = resolveMigrateTarget(cfg, "", "")
	require.NoError(t, err)
	assert.Equal(t, "postgres", driver)
	assert.Equal(t, "postgres://localhost/bills", dsn)
}
