package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variable names. The required ones have no default.
const (
	EnvConfigPath = "RESERVEWATCH_CONFIG"

	EnvBotToken     = "TELEGRAM_BOT_TOKEN"
	EnvSignalChatID = "TELEGRAM_AVAILABILITY_CHAT_ID"
	EnvDebugChatID  = "TELEGRAM_DEBUG_CHAT_ID"
	EnvURL          = "RESERVATION_URL"
	EnvModel        = "MODEL_NAME"
	EnvColor        = "COLOR_NAME"
	EnvCapacity     = "CAPACITY_NAME"
)

// LoadConfig reads the optional config file at configPath, merges the
// environment on top of it and validates the result.
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = getDefaultConfigPath()
	}

	config := getDefaultConfig()

	if configPath != "" {
		if err := decodeFile(configPath, config); err != nil {
			return nil, err
		}
		config.fillMissingSections()
	}

	if err := mergeEnvVars(config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func decodeFile(configPath string, config *Config) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfigNotFound, err)
	}

	switch ext := filepath.Ext(configPath); ext {
	case ".json":
		if err := json.Unmarshal(data, config); err != nil {
			return fmt.Errorf("%w: JSON parsing failed: %v", ErrInvalidFormat, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, config); err != nil {
			return fmt.Errorf("%w: YAML parsing failed: %v", ErrInvalidFormat, err)
		}
	default:
		return fmt.Errorf("%w: unsupported config file format: %s", ErrInvalidFormat, ext)
	}
	return nil
}

// getDefaultConfigPath returns the first existing config file, or "" when the
// process is configured from the environment alone.
func getDefaultConfigPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}

	paths := []string{
		"./config.yaml",
		"./config.yml",
		"./config.json",
		"/etc/reservewatch/config.yaml",
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// mergeEnvVars overlays environment variables; env always wins over the file.
func mergeEnvVars(config *Config) error {
	tg := config.Telegram
	envString(EnvBotToken, &tg.BotToken)
	envString(EnvSignalChatID, &tg.SignalChatID)
	envString(EnvDebugChatID, &tg.DebugChatID)
	envString("TELEGRAM_API_BASE", &tg.APIBase)

	t := config.Target
	envString(EnvURL, &t.URL)
	envLabel(EnvModel, &t.Model)
	envLabel(EnvColor, &t.Color)
	envLabel(EnvCapacity, &t.Capacity)

	m := config.Monitor
	envString("MONITOR_SCHEDULE", &m.Schedule)

	b := config.Browser
	envString("CHROME_PATH", &b.ExecPath)
	envString("BROWSER_USER_AGENT", &b.UserAgent)

	s := config.Server
	envString("SERVER_ADDRESS", &s.Address)

	a := config.App
	envString("LOG_LEVEL", &a.LogLevel)
	envString("LOG_FILE", &a.LogFile)
	envString("APP_ENV", &a.Environment)

	ints := map[string]*int{
		"TELEGRAM_TIMEOUT":                &tg.Timeout,
		"TELEGRAM_RATE_PER_SEC":           &tg.RatePerSec,
		"MONITOR_INTERVAL":                &m.Interval,
		"MONITOR_WAIT_TIMEOUT":            &m.WaitTimeout,
		"MONITOR_UNAVAILABLE_ALERT_AFTER": &m.UnavailableAlertAfter,
		"SERVER_PORT":                     &s.Port,
	}
	for key, ptr := range ints {
		if err := envInt(key, ptr); err != nil {
			return err
		}
	}

	bools := map[string]*bool{
		"BROWSER_HEADLESS": &b.Headless,
		"SERVER_ENABLED":   &s.Enabled,
	}
	for key, ptr := range bools {
		if err := envBool(key, ptr); err != nil {
			return err
		}
	}

	return nil
}

func envString(key string, dst *string) {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		*dst = strings.TrimSpace(value)
	}
}

// envLabel keeps the value verbatim; labels are matched as exact substrings of
// the page text, so surrounding spaces are significant.
func envLabel(key string, dst *string) {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		*dst = value
	}
}

func envInt(key string, dst *int) error {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidValue, key, value)
	}
	*dst = n
	return nil
}

func envBool(key string, dst *bool) error {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return nil
	}
	v, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("%w: %s=%q is not a boolean", ErrInvalidValue, key, value)
	}
	*dst = v
	return nil
}
