package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvConfigPath, "")
	t.Setenv(EnvBotToken, "123:abc")
	t.Setenv(EnvSignalChatID, "-1001")
	t.Setenv(EnvDebugChatID, "-1002")
	t.Setenv(EnvURL, "https://reserve.example.com/kr/ko/reserve/A/availability")
	t.Setenv(EnvModel, "Pro Max")
	t.Setenv(EnvColor, "Desert")
	t.Setenv(EnvCapacity, "256GB")
}

func TestLoadConfigFromEnv(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Telegram.BotToken != "123:abc" {
		t.Errorf("Expected bot token from env, got %q", cfg.Telegram.BotToken)
	}
	if cfg.Telegram.SignalChatID != "-1001" || cfg.Telegram.DebugChatID != "-1002" {
		t.Errorf("Unexpected chat ids: %+v", cfg.Telegram)
	}
	if cfg.Target.Model != "Pro Max" || cfg.Target.Color != "Desert" || cfg.Target.Capacity != "256GB" {
		t.Errorf("Unexpected target: %+v", cfg.Target)
	}
	if cfg.Monitor.Interval != DefaultInterval {
		t.Errorf("Expected default interval %d, got %d", DefaultInterval, cfg.Monitor.Interval)
	}
	if cfg.Monitor.WaitTimeout != DefaultWaitTimeout {
		t.Errorf("Expected default wait timeout %d, got %d", DefaultWaitTimeout, cfg.Monitor.WaitTimeout)
	}
	if !cfg.Browser.Headless {
		t.Error("Browser should default to headless")
	}
	if cfg.Server.Enabled {
		t.Error("Status server should be disabled by default")
	}
	if cfg.Telegram.APIBase != DefaultTelegramAPIBase {
		t.Errorf("Expected default API base, got %q", cfg.Telegram.APIBase)
	}
}

func TestLoadConfigMissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv(EnvDebugChatID, "")
	t.Setenv(EnvCapacity, "")

	_, err := LoadConfig("")
	if !errors.Is(err, ErrMissingRequired) {
		t.Fatalf("Expected ErrMissingRequired, got %v", err)
	}
	for _, name := range []string{EnvDebugChatID, EnvCapacity} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("Error %q should name %s", err, name)
		}
	}
}

func TestLoadConfigInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
		want error
	}{
		{"non-numeric interval", "MONITOR_INTERVAL", "soon", ErrInvalidValue},
		{"zero interval", "MONITOR_INTERVAL", "0", ErrInvalidValue},
		{"zero wait timeout", "MONITOR_WAIT_TIMEOUT", "0", ErrInvalidValue},
		{"bad bool", "BROWSER_HEADLESS", "maybe", ErrInvalidValue},
		{"bad cron", "MONITOR_SCHEDULE", "every minute", ErrInvalidCron},
		{"relative url", EnvURL, "/reserve", ErrInvalidValue},
		{"bad environment", "APP_ENV", "staging", ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.key, tt.val)

			_, err := LoadConfig("")
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadConfigFileWithEnvOverride(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv(EnvModel, "")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
target:
  url: https://file.example.com/reserve
  model: iPhone 16 Pro
monitor:
  interval: 120
  schedule: "*/2 9-21 * * *"
  unavailable_alert_after: 30
browser:
  exec_path: /opt/chrome/chrome
server:
  enabled: true
  port: 9100
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Target.Model != "iPhone 16 Pro" {
		t.Errorf("Expected model from file, got %q", cfg.Target.Model)
	}
	// env wins over the file
	if cfg.Target.URL != "https://reserve.example.com/kr/ko/reserve/A/availability" {
		t.Errorf("Expected URL from env, got %q", cfg.Target.URL)
	}
	if cfg.Monitor.Interval != 120 || cfg.Monitor.Schedule != "*/2 9-21 * * *" {
		t.Errorf("Unexpected monitor config: %+v", cfg.Monitor)
	}
	if cfg.Monitor.WaitTimeout != DefaultWaitTimeout {
		t.Errorf("Fields absent from the file should keep defaults, got wait_timeout=%d", cfg.Monitor.WaitTimeout)
	}
	if cfg.Monitor.UnavailableAlertAfter != 30 {
		t.Errorf("Expected unavailable_alert_after 30, got %d", cfg.Monitor.UnavailableAlertAfter)
	}
	if !cfg.Browser.Headless || cfg.Browser.ExecPath != "/opt/chrome/chrome" {
		t.Errorf("Unexpected browser config: %+v", cfg.Browser)
	}
	if !cfg.Server.Enabled || cfg.Server.Addr() != "127.0.0.1:9100" {
		t.Errorf("Unexpected server config: %+v", cfg.Server)
	}
}

func TestLoadConfigJSONFile(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv(EnvBotToken, "")

	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"telegram":{"bot_token":"file-token"}}`), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Telegram.BotToken != "file-token" {
		t.Errorf("Expected token from file, got %q", cfg.Telegram.BotToken)
	}
	if cfg.Telegram.Timeout != 30 {
		t.Errorf("Expected default timeout to survive partial section, got %d", cfg.Telegram.Timeout)
	}
}

func TestLoadConfigFileErrors(t *testing.T) {
	setRequiredEnv(t)
	dir := t.TempDir()

	if _, err := LoadConfig(filepath.Join(dir, "missing.yaml")); !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("Expected ErrConfigNotFound, got %v", err)
	}

	bad := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(bad, []byte("x = 1"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	if _, err := LoadConfig(bad); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("Expected ErrInvalidFormat, got %v", err)
	}

	broken := filepath.Join(dir, "broken.yaml")
	if err := os.WriteFile(broken, []byte("target: [unclosed"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	if _, err := LoadConfig(broken); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("Expected ErrInvalidFormat, got %v", err)
	}
}

func TestLoadConfigKeepsLabelsVerbatim(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv(EnvModel, "iPhone 16 Pro ")
	t.Setenv(EnvColor, " Black")
	t.Setenv(EnvBotToken, "  123:abc  ")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Target.Model != "iPhone 16 Pro " || cfg.Target.Color != " Black" {
		t.Errorf("Labels must be kept exactly, got %q / %q", cfg.Target.Model, cfg.Target.Color)
	}
	if cfg.Telegram.BotToken != "123:abc" {
		t.Errorf("Non-label values are still trimmed, got %q", cfg.Telegram.BotToken)
	}
}

func TestLoadConfigBlankLabelIsMissing(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv(EnvCapacity, "   ")

	_, err := LoadConfig("")
	if !errors.Is(err, ErrMissingRequired) {
		t.Fatalf("Expected ErrMissingRequired, got %v", err)
	}
}
