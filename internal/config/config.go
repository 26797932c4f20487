// Package config builds NodeGuardian's resolved configuration record from
// defaulted struct tags and environment overrides, and watches the mounted
// secret/config directory for changes, re-running Load on each change. Load
// reads environment variables only; it does not read the files in that
// directory.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/nodeguardian/nodeguardian/internal/durationx"
)

// EmailConfig holds SMTP settings for the email alert channel.
type EmailConfig struct {
	SMTPHost  string `validate:"required_with=Enabled"`
	SMTPPort  int    `validate:"omitempty,gt=0,lt=65536"`
	From      string `validate:"omitempty,email"`
	To        []string
	StartTLS  bool
	Enabled   bool
}

// WebhookConfig holds the generic JSON webhook channel settings.
type WebhookConfig struct {
	URL     string `validate:"required_with=Enabled,omitempty,url"`
	Enabled bool
}

// ChatConfig holds the Slack incoming-webhook settings for the chat channel.
type ChatConfig struct {
	WebhookURL string `validate:"required_with=Enabled,omitempty,url"`
	Enabled    bool
}

// Config is the fully resolved, validated configuration record consumed by
// the engine at startup. It is immutable once built; reloadable subsections
// are swapped in under a watcher rather than mutated in place.
type Config struct {
	StateDir             string   `validate:"required"`
	SecretsDir           string   `validate:"omitempty"`
	PrometheusURL        string   `validate:"omitempty,url"`
	MetricsServerURL     string   `validate:"omitempty,url"`
	DefaultChannels      []string `validate:"required,min=1,dive,oneof=log email webhook chat"`
	MaxConcurrentChecks  int      `validate:"gt=0"`
	LogLevel             string   `validate:"oneof=debug info warn error"`
	CheckIntervalFloor   string   `validate:"ngduration"`
	RecoveryTickInterval string   `validate:"ngduration"`

	Email   EmailConfig
	Webhook WebhookConfig
	Chat    ChatConfig
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("ngduration", func(fl validator.FieldLevel) bool {
		return durationx.Valid(fl.Field().String())
	})
	return v
}

// Defaults returns a Config with every field set to its documented default.
// Callers layer environment overrides on top, then Validate.
func Defaults() *Config {
	return &Config{
		StateDir:             "/var/lib/nodeguardian",
		SecretsDir:           "",
		DefaultChannels:      []string{"log"},
		MaxConcurrentChecks:  10,
		LogLevel:             "info",
		CheckIntervalFloor:   "5s",
		RecoveryTickInterval: "30s",
	}
}

// Load builds a Config from defaults overridden by environment variables
// under the NODEGUARDIAN_ prefix.
func Load() (*Config, error) {
	c := Defaults()

	if v := os.Getenv("NODEGUARDIAN_STATE_DIR"); v != "" {
		c.StateDir = v
	}
	if v := os.Getenv("NODEGUARDIAN_SECRETS_DIR"); v != "" {
		c.SecretsDir = v
	}
	if v := os.Getenv("NODEGUARDIAN_PROMETHEUS_URL"); v != "" {
		c.PrometheusURL = v
	}
	if v := os.Getenv("NODEGUARDIAN_METRICS_SERVER_URL"); v != "" {
		c.MetricsServerURL = v
	}
	if v := os.Getenv("NODEGUARDIAN_DEFAULT_CHANNELS"); v != "" {
		c.DefaultChannels = strings.Split(v, ",")
	}
	if v := os.Getenv("NODEGUARDIAN_MAX_CONCURRENT_CHECKS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config: NODEGUARDIAN_MAX_CONCURRENT_CHECKS: %w", err)
		}
		c.MaxConcurrentChecks = n
	}
	if v := os.Getenv("NODEGUARDIAN_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}

	c.Email = EmailConfig{
		SMTPHost: os.Getenv("NODEGUARDIAN_SMTP_HOST"),
		From:     os.Getenv("NODEGUARDIAN_SMTP_FROM"),
		StartTLS: os.Getenv("NODEGUARDIAN_SMTP_STARTTLS") != "false",
		Enabled:  os.Getenv("NODEGUARDIAN_SMTP_HOST") != "",
	}
	if v := os.Getenv("NODEGUARDIAN_SMTP_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config: NODEGUARDIAN_SMTP_PORT: %w", err)
		}
		c.Email.SMTPPort = p
	}
	if v := os.Getenv("NODEGUARDIAN_SMTP_TO"); v != "" {
		c.Email.To = strings.Split(v, ",")
	}

	c.Webhook = WebhookConfig{
		URL:     os.Getenv("NODEGUARDIAN_WEBHOOK_URL"),
		Enabled: os.Getenv("NODEGUARDIAN_WEBHOOK_URL") != "",
	}
	c.Chat = ChatConfig{
		WebhookURL: os.Getenv("NODEGUARDIAN_SLACK_WEBHOOK_URL"),
		Enabled:    os.Getenv("NODEGUARDIAN_SLACK_WEBHOOK_URL") != "",
	}

	if err := Validate(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate runs struct-tag validation over c, returning the validator's
// error wrapped with fmt.Errorf on failure. Callers in the hot path should call this once at
// startup and on every successful reload, never per-request.
func Validate(c *Config) error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: invalid configuration: %w", err)
	}
	return nil
}
