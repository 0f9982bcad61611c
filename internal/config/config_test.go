package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "EBILLCALC_DB_DRIVER", "EBILLCALC_TARIFF", "EBILLCALC_UNIT_PRICE", "EBILLCALC_REFRESH_INTERVAL"} {
		t.Setenv(k, "")
	}
	cfg := FromEnv()
	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "memory", cfg.DB.Driver)
	assert.Equal(t, "bpdb", cfg.Tariff)
	assert.Equal(t, 8.5, cfg.UnitPrice)
	assert.Equal(t, "3600", cfg.RefreshInterval)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("EBILLCALC_DB_DRIVER", "sqlite")
	t.Setenv("EBILLCALC_DB_DSN", "bill.db")
	t.Setenv("EBILLCALC_UNIT_PRICE", "10.25")
	t.Setenv("BPDB_PDF_PATH", "/data/bpdb.pdf")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("EBILLCALC_AUTO_MIGRATE", "true")
	t.Setenv("EBILLCALC_ADMIN_TOKEN_HASH", "$2a$10$abc")

	cfg := FromEnv()
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, "bill.db", cfg.DB.DSN)
	assert.True(t, cfg.DB.AutoMigrate)
	assert.Equal(t, 10.25, cfg.UnitPrice)
	assert.Equal(t, "/data/bpdb.pdf", cfg.PDFPaths["bpdb"])
	assert.Equal(t, 2525, cfg.Email.Port)
	require.Len(t, cfg.Auth.Tokens, 1)
	assert.Equal(t, TokenConfig{Name: "env-admin", Role: "admin", Hash: "$2a$10$abc"}, cfg.Auth.Tokens[0])
}

func TestFromEnv_InvalidUnitPriceIgnored(t *testing.T) {
	t.Setenv("EBILLCALC_UNIT_PRICE", "-3")
	assert.Equal(t, 8.5, FromEnv().UnitPrice)
}

func TestLoad(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("EBILLCALC_TARIFF", "")
	t.Setenv("EBILLCALC_DB_DRIVER", "postgres")

	path := filepath.Join(t.TempDir(), "ebillcalc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "7000"
tariff: desco
db:
  driver: sqlite
  dsn: file.db
pdf_paths:
  desco: /srv/desco.pdf
email:
  provider: smtp
  host: mail.example.com
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.Port)
	assert.Equal(t, "desco", cfg.Tariff)
	assert.Equal(t, "postgres", cfg.DB.Driver, "env wins over file")
	assert.Equal(t, "file.db", cfg.DB.DSN)
	assert.Equal(t, "/srv/desco.pdf", cfg.PDFPaths["desco"])
	assert.Equal(t, "mail.example.com", cfg.Email.Host)
	assert.Equal(t, 587, cfg.Email.Port)
	assert.Equal(t, 8.5, cfg.UnitPrice)
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.Port)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: [unclosed"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}
