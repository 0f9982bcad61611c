// Package alerting posts tariff refresh failures to a chat or generic webhook.
package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// AlertConfig holds alerting configuration.
type AlertConfig struct {
	// WebhookURL is a Slack, Discord or custom endpoint.
	WebhookURL string
	// WebhookType is "slack", "discord" or "generic"; empty means detect
	// from the URL.
	WebhookType string
	Enabled     bool
	// MinFailuresBeforeAlert is the number of failed tariffs needed to alert.
	MinFailuresBeforeAlert int
	Timeout                time.Duration
}

// DefaultAlertConfig reads ALERT_WEBHOOK_URL, ALERT_WEBHOOK_TYPE and
// ALERT_MIN_FAILURES.
func DefaultAlertConfig() AlertConfig {
	cfg := AlertConfig{
		WebhookURL:             os.Getenv("ALERT_WEBHOOK_URL"),
		WebhookType:            os.Getenv("ALERT_WEBHOOK_TYPE"),
		MinFailuresBeforeAlert: 1,
	}
	if v, err := strconv.Atoi(os.Getenv("ALERT_MIN_FAILURES")); err == nil && v > 0 {
		cfg.MinFailuresBeforeAlert = v
	}
	return cfg.normalized()
}

func (c AlertConfig) normalized() AlertConfig {
	c.Enabled = c.WebhookURL != ""
	if c.WebhookType == "" {
		switch {
		case strings.Contains(c.WebhookURL, "slack.com"):
			c.WebhookType = "slack"
		case strings.Contains(c.WebhookURL, "discord.com"):
			c.WebhookType = "discord"
		default:
			c.WebhookType = "generic"
		}
	}
	if c.MinFailuresBeforeAlert <= 0 {
		c.MinFailuresBeforeAlert = 1
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	return c
}

// Alerter sends alerts to the configured webhook.
type Alerter struct {
	cfg    AlertConfig
	client *http.Client
}

func NewAlerter(cfg AlertConfig) *Alerter {
	cfg = cfg.normalized()
	return &Alerter{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// RefreshAlert summarizes one tariff refresh run.
type RefreshAlert struct {
	JobName      string
	TotalCount   int
	SuccessCount int
	FailedCount  int
	Duration     time.Duration
	Failures     []TariffFailure
	Timestamp    time.Time
}

// TariffFailure is one tariff that could not be refreshed.
type TariffFailure struct {
	Tariff string `json:"tariff"`
	Error  string `json:"error"`
}

// SendRefreshAlert posts alert unless alerting is disabled or the failure
// count is below the threshold.
func (a *Alerter) SendRefreshAlert(ctx context.Context, alert RefreshAlert) error {
	if !a.cfg.Enabled {
		slog.Debug("alerting: disabled, skipping")
		return nil
	}
	if alert.FailedCount < a.cfg.MinFailuresBeforeAlert {
		slog.Debug("alerting: below threshold", "failed", alert.FailedCount, "threshold", a.cfg.MinFailuresBeforeAlert)
		return nil
	}

	var payload []byte
	var err error
	switch a.cfg.WebhookType {
	case "slack":
		payload, err = buildSlackPayload(alert)
	case "discord":
		payload, err = buildDiscordPayload(alert)
	default:
		payload, err = buildGenericPayload(alert)
	}
	if err != nil {
		return fmt.Errorf("build payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	slog.Info("alerting: sent refresh alert", "job", alert.JobName, "failed", alert.FailedCount)
	return nil
}

func failureLines(alert RefreshAlert, bold string) string {
	var b strings.Builder
	for _, f := range alert.Failures {
		fmt.Fprintf(&b, "• %s%s%s: %s\n", bold, f.Tariff, bold, f.Error)
	}
	return b.String()
}

func buildSlackPayload(alert RefreshAlert) ([]byte, error) {
	emoji := ":warning:"
	if alert.FailedCount == alert.TotalCount {
		emoji = ":x:"
	}

	payload := map[string]interface{}{
		"blocks": []map[string]interface{}{
			{
				"type": "header",
				"text": map[string]string{
					"type": "plain_text",
					"text": fmt.Sprintf("%s Tariff refresh: %s", emoji, alert.JobName),
				},
			},
			{
				"type": "section",
				"fields": []map[string]string{
					{"type": "mrkdwn", "text": fmt.Sprintf("*Status:*\n%d/%d failed", alert.FailedCount, alert.TotalCount)},
					{"type": "mrkdwn", "text": fmt.Sprintf("*Duration:*\n%s", alert.Duration.Round(time.Millisecond))},
					{"type": "mrkdwn", "text": fmt.Sprintf("*Timestamp:*\n%s", alert.Timestamp.Format(time.RFC3339))},
				},
			},
			{
				"type": "section",
				"text": map[string]string{
					"type": "mrkdwn",
					"text": "*Failed tariffs:*\n" + failureLines(alert, "*"),
				},
			},
		},
	}
	return json.Marshal(payload)
}

func buildDiscordPayload(alert RefreshAlert) ([]byte, error) {
	color := 16776960 // yellow
	if alert.FailedCount == alert.TotalCount {
		color = 16711680 // red
	}

	payload := map[string]interface{}{
		"embeds": []map[string]interface{}{
			{
				"title":       fmt.Sprintf("Tariff refresh: %s", alert.JobName),
				"description": fmt.Sprintf("%d/%d tariffs failed", alert.FailedCount, alert.TotalCount),
				"color":       color,
				"fields": []map[string]interface{}{
					{"name": "Success", "value": strconv.Itoa(alert.SuccessCount), "inline": true},
					{"name": "Failed", "value": strconv.Itoa(alert.FailedCount), "inline": true},
					{"name": "Duration", "value": alert.Duration.Round(time.Millisecond).String(), "inline": true},
					{"name": "Failed tariffs", "value": failureLines(alert, "**"), "inline": false},
				},
				"timestamp": alert.Timestamp.Format(time.RFC3339),
			},
		},
	}
	return json.Marshal(payload)
}

func buildGenericPayload(alert RefreshAlert) ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"alert_type":    "tariff_refresh_failure",
		"job_name":      alert.JobName,
		"total_count":   alert.TotalCount,
		"success_count": alert.SuccessCount,
		"failed_count":  alert.FailedCount,
		"duration_ms":   alert.Duration.Milliseconds(),
		"timestamp":     alert.Timestamp.Format(time.RFC3339),
		"failures":      alert.Failures,
	})
}
