package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
)

// Validate checks the complete configuration. Every missing required value is
// reported at once, by its environment variable name.
func (c *Config) Validate() error {
	var missing []string
	require := func(value, name string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}

	require(c.Telegram.BotToken, EnvBotToken)
	require(c.Telegram.SignalChatID, EnvSignalChatID)
	require(c.Telegram.DebugChatID, EnvDebugChatID)
	require(c.Target.URL, EnvURL)
	require(c.Target.Model, EnvModel)
	require(c.Target.Color, EnvColor)
	require(c.Target.Capacity, EnvCapacity)

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingRequired, strings.Join(missing, ", "))
	}

	if err := validateTargetURL(c.Target.URL); err != nil {
		return err
	}

	if err := c.validateMonitorConfig(); err != nil {
		return err
	}

	if c.Telegram.Timeout <= 0 {
		return fmt.Errorf("%w: telegram timeout must be positive", ErrInvalidValue)
	}
	if c.Telegram.RatePerSec <= 0 {
		return fmt.Errorf("%w: telegram rate_per_sec must be positive", ErrInvalidValue)
	}

	if c.Server.Enabled && (c.Server.Port <= 0 || c.Server.Port > 65535) {
		return fmt.Errorf("%w: server port must be in 1-65535", ErrInvalidValue)
	}

	if env := c.App.Environment; env != "development" && env != "production" {
		return fmt.Errorf("%w: app environment must be 'development' or 'production', got %q", ErrInvalidValue, env)
	}

	return nil
}

func validateTargetURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidValue, EnvURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: %s must be an http(s) URL", ErrInvalidValue, EnvURL)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: %s has no host", ErrInvalidValue, EnvURL)
	}
	return nil
}

func (c *Config) validateMonitorConfig() error {
	m := c.Monitor

	if m.Interval <= 0 {
		return fmt.Errorf("%w: monitor interval must be positive", ErrInvalidValue)
	}
	if m.WaitTimeout <= 0 {
		return fmt.Errorf("%w: monitor wait_timeout must be positive", ErrInvalidValue)
	}
	if m.UnavailableAlertAfter < 0 {
		return fmt.Errorf("%w: monitor unavailable_alert_after must not be negative", ErrInvalidValue)
	}

	if m.Schedule != "" {
		if _, err := cron.ParseStandard(m.Schedule); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidCron, m.Schedule, err)
		}
	}

	return nil
}
