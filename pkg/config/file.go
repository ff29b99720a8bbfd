package config

// Config is the process-wide configuration. It is built once by LoadConfig and
// must not be mutated afterwards; components receive it by pointer.
type Config struct {
	Telegram *TelegramConfig `json:"telegram" yaml:"telegram"`
	Target   *TargetConfig   `json:"target" yaml:"target"`
	Monitor  *MonitorConfig  `json:"monitor" yaml:"monitor"`
	Browser  *BrowserConfig  `json:"browser" yaml:"browser"`
	Server   *ServerConfig   `json:"server" yaml:"server"`
	App      *AppConfig      `json:"app" yaml:"app"`
}

// getDefaultConfig returns a config with every section populated with defaults.
// Required values (token, chat ids, target) have no default.
func getDefaultConfig() *Config {
	return &Config{
		Telegram: NewTelegramConfig(),
		Target:   &TargetConfig{},
		Monitor:  NewMonitorConfig(),
		Browser:  NewBrowserConfig(),
		Server:   NewServerConfig(),
		App:      NewAppConfig(),
	}
}

// fillMissingSections replaces sections a config file set to null.
func (c *Config) fillMissingSections() {
	defaults := getDefaultConfig()
	if c.Telegram == nil {
		c.Telegram = defaults.Telegram
	}
	if c.Target == nil {
		c.Target = defaults.Target
	}
	if c.Monitor == nil {
		c.Monitor = defaults.Monitor
	}
	if c.Browser == nil {
		c.Browser = defaults.Browser
	}
	if c.Server == nil {
		c.Server = defaults.Server
	}
	if c.App == nil {
		c.App = defaults.App
	}
}
