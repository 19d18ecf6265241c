package config

import "path/filepath"

// Defaults returns the baseline configuration written by `echobox init`.
func Defaults() *Config {
	return &Config{
		General: GeneralConfig{
			LogLevel: "info",
			DBPath:   filepath.Join(DefaultConfigDir(), "echobox.db"),
		},
		Service: ServiceConfig{
			BaseURL:        "https://inbox.example.com/api",
			TimeoutSeconds: 30,
		},
		Watch: WatchConfig{
			PollIntervalSeconds: 60,
		},
		Notify: NotifyConfig{
			Telegram: TelegramConfig{
				ParseMode: "Markdown",
			},
		},
	}
}
