// Package config loads runtime settings from the environment and an
// optional YAML file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port            string            `yaml:"port"`
	LogLevel        string            `yaml:"log_level,omitempty"`
	DB              DBConfig          `yaml:"db"`
	Tariff          string            `yaml:"tariff"`
	UnitPrice       float64           `yaml:"unit_price"`
	PDFPaths        map[string]string `yaml:"pdf_paths,omitempty"`
	RefreshInterval string            `yaml:"refresh_interval"`
	DownloadPDFs    bool              `yaml:"download_pdfs,omitempty"`
	Alert           AlertConfig       `yaml:"alert,omitempty"`
	Email           EmailConfig       `yaml:"email,omitempty"`
	Auth            AuthConfig        `yaml:"auth,omitempty"`
}

type DBConfig struct {
	Driver      string `yaml:"driver"` // memory, sqlite or postgres
	DSN         string `yaml:"dsn,omitempty"`
	AutoMigrate bool   `yaml:"auto_migrate,omitempty"`
}

type AlertConfig struct {
	WebhookURL  string `yaml:"webhook_url,omitempty"`
	WebhookType string `yaml:"webhook_type,omitempty"`
	MinFailures int    `yaml:"min_failures,omitempty"`
}

// AuthConfig lists the API tokens allowed on admin endpoints. With no
// tokens those endpoints are open.
type AuthConfig struct {
	Tokens []TokenConfig `yaml:"tokens,omitempty"`
}

type TokenConfig struct {
	Name string `yaml:"name"`
	Role string `yaml:"role"` // admin or viewer
	Hash string `yaml:"hash"` // bcrypt hash, see "ebillcalc token create"
}

type EmailConfig struct {
	Provider    string `yaml:"provider,omitempty"` // sendgrid, smtp or empty
	FromName    string `yaml:"from_name,omitempty"`
	FromAddress string `yaml:"from_address,omitempty"`
	APIKey      string `yaml:"api_key,omitempty"`
	Host        string `yaml:"host,omitempty"`
	Port        int    `yaml:"port,omitempty"`
	Username    string `yaml:"username,omitempty"`
	Password    string `yaml:"password,omitempty"`
	Encryption  string `yaml:"encryption,omitempty"` // none, ssl or tls
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Port:            "8000",
		DB:              DBConfig{Driver: "memory"},
		Tariff:          "bpdb",
		UnitPrice:       8.5,
		PDFPaths:        map[string]string{},
		RefreshInterval: "3600",
		Email: EmailConfig{
			FromName: "BD Bill Calculator",
			Port:     587,
		},
	}
}

// FromEnv builds a Config from environment variables, with sane defaults.
func FromEnv() Config {
	cfg := Default()
	cfg.applyEnv()
	return cfg
}

// Load reads a YAML file over the defaults and then applies environment
// variables, which win. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parsing config file: %w", err)
			}
		case !os.IsNotExist(err):
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}
	if cfg.PDFPaths == nil {
		cfg.PDFPaths = map[string]string{}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Port, "PORT")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.DB.Driver, "EBILLCALC_DB_DRIVER")
	setString(&c.DB.DSN, "EBILLCALC_DB_DSN")
	setBool(&c.DB.AutoMigrate, "EBILLCALC_AUTO_MIGRATE")
	setString(&c.Tariff, "EBILLCALC_TARIFF")
	if v, err := strconv.ParseFloat(os.Getenv("EBILLCALC_UNIT_PRICE"), 64); err == nil && v > 0 {
		c.UnitPrice = v
	}
	setString(&c.RefreshInterval, "EBILLCALC_REFRESH_INTERVAL")
	setBool(&c.DownloadPDFs, "EBILLCALC_DOWNLOAD_PDFS")

	setString(&c.Alert.WebhookURL, "ALERT_WEBHOOK_URL")
	setString(&c.Alert.WebhookType, "ALERT_WEBHOOK_TYPE")
	if v, err := strconv.Atoi(os.Getenv("ALERT_MIN_FAILURES")); err == nil && v > 0 {
		c.Alert.MinFailures = v
	}

	setString(&c.Email.Provider, "EBILLCALC_EMAIL_PROVIDER")
	setString(&c.Email.FromName, "EBILLCALC_EMAIL_FROM_NAME")
	setString(&c.Email.FromAddress, "EBILLCALC_EMAIL_FROM")
	setString(&c.Email.APIKey, "SENDGRID_API_KEY")
	setString(&c.Email.Host, "SMTP_HOST")
	if v, err := strconv.Atoi(os.Getenv("SMTP_PORT")); err == nil && v > 0 {
		c.Email.Port = v
	}
	setString(&c.Email.Username, "SMTP_USERNAME")
	setString(&c.Email.Password, "SMTP_PASSWORD")
	setString(&c.Email.Encryption, "SMTP_ENCRYPTION")

	if h := os.Getenv("EBILLCALC_ADMIN_TOKEN_HASH"); h != "" {
		c.Auth.Tokens = append(c.Auth.Tokens, TokenConfig{Name: "env-admin", Role: "admin", Hash: h})
	}

	// <KEY>_PDF_PATH, e.g. BPDB_PDF_PATH=/data/bpdb.pdf
	for _, kv := range os.Environ() {
		name, val, ok := strings.Cut(kv, "=")
		if !ok || val == "" || !strings.HasSuffix(name, "_PDF_PATH") {
			continue
		}
		key := strings.ToLower(strings.TrimSuffix(name, "_PDF_PATH"))
		if key == "" {
			continue
		}
		if c.PDFPaths == nil {
			c.PDFPaths = map[string]string{}
		}
		c.PDFPaths[key] = val
	}
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, env string) {
	if v, err := strconv.ParseBool(os.Getenv(env)); err == nil {
		*dst = v
	}
}
