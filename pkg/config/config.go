package config

import (
	"fmt"
	"time"
)

const (
	DefaultTelegramAPIBase = "https://api.telegram.org"
	DefaultInterval        = 60 // seconds
	DefaultWaitTimeout     = 10 // seconds
)

// TelegramConfig holds the bot credential and the two destination chats.
type TelegramConfig struct {
	BotToken     string `json:"bot_token" yaml:"bot_token"`
	SignalChatID string `json:"signal_chat_id" yaml:"signal_chat_id"` // availability events
	DebugChatID  string `json:"debug_chat_id" yaml:"debug_chat_id"`   // startup, errors, "not available"
	APIBase      string `json:"api_base" yaml:"api_base"`
	Timeout      int    `json:"timeout" yaml:"timeout"` // seconds
	RatePerSec   int    `json:"rate_per_sec" yaml:"rate_per_sec"`
}

// TargetConfig identifies the reservation page and the variant to select on it.
type TargetConfig struct {
	URL      string `json:"url" yaml:"url"`
	Model    string `json:"model" yaml:"model"`
	Color    string `json:"color" yaml:"color"`
	Capacity string `json:"capacity" yaml:"capacity"`
}

// MonitorConfig controls the poll loop.
type MonitorConfig struct {
	Interval              int    `json:"interval" yaml:"interval"`         // seconds between probes
	Schedule              string `json:"schedule" yaml:"schedule"`         // optional cron expression, overrides Interval
	WaitTimeout           int    `json:"wait_timeout" yaml:"wait_timeout"` // seconds per element wait
	UnavailableAlertAfter int    `json:"unavailable_alert_after" yaml:"unavailable_alert_after"`
}

// BrowserConfig controls the Chrome instance.
type BrowserConfig struct {
	ExecPath     string `json:"exec_path" yaml:"exec_path"`
	Headless     bool   `json:"headless" yaml:"headless"`
	UserAgent    string `json:"user_agent" yaml:"user_agent"`
	WindowWidth  int    `json:"window_width" yaml:"window_width"`
	WindowHeight int    `json:"window_height" yaml:"window_height"`
}

// ServerConfig represents the optional status server
type ServerConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Address string `json:"address" yaml:"address"`
	Port    int    `json:"port" yaml:"port"`
}

// AppConfig represents application configuration settings
type AppConfig struct {
	LogLevel    string `json:"log_level" yaml:"log_level"`
	LogFile     string `json:"log_file" yaml:"log_file"`
	Environment string `json:"environment" yaml:"environment"` // development, production
}

// NewTelegramConfig creates a Telegram configuration with defaults
func NewTelegramConfig() *TelegramConfig {
	return &TelegramConfig{
		APIBase:    DefaultTelegramAPIBase,
		Timeout:    30,
		RatePerSec: 1,
	}
}

// NewMonitorConfig creates a monitor configuration with defaults
func NewMonitorConfig() *MonitorConfig {
	return &MonitorConfig{
		Interval:    DefaultInterval,
		WaitTimeout: DefaultWaitTimeout,
	}
}

// NewBrowserConfig creates a browser configuration with defaults
func NewBrowserConfig() *BrowserConfig {
	return &BrowserConfig{
		Headless:     true,
		WindowWidth:  1280,
		WindowHeight: 900,
	}
}

// NewServerConfig creates a server configuration with defaults
func NewServerConfig() *ServerConfig {
	return &ServerConfig{
		Enabled: false,
		Address: "127.0.0.1",
		Port:    8090,
	}
}

// NewAppConfig creates an application configuration with defaults
func NewAppConfig() *AppConfig {
	return &AppConfig{
		LogLevel:    "info",
		Environment: "development",
	}
}

// HTTPTimeout returns the notifier request timeout.
func (t *TelegramConfig) HTTPTimeout() time.Duration {
	return time.Duration(t.Timeout) * time.Second
}

// IntervalDuration returns the fixed sleep between probes.
func (m *MonitorConfig) IntervalDuration() time.Duration {
	return time.Duration(m.Interval) * time.Second
}

// WaitTimeoutDuration returns the bound applied to each element wait.
func (m *MonitorConfig) WaitTimeoutDuration() time.Duration {
	return time.Duration(m.WaitTimeout) * time.Second
}

// Addr returns host:port for the status server.
func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Address, s.Port)
}

// IsProduction reports whether the production logger should be used.
func (a *AppConfig) IsProduction() bool {
	return a.Environment == "production"
}
