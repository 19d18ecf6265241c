package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Config is the root configuration for echobox.
type Config struct {
	General GeneralConfig `json:"general"`
	Service ServiceConfig `json:"service"`
	Watch   WatchConfig   `json:"watch"`
	Notify  NotifyConfig  `json:"notify"`
}

type GeneralConfig struct {
	LogLevel string `json:"logLevel"`
	LogFile  string `json:"logFile,omitempty"` // optional log file path
	DBPath   string `json:"dbPath"`
}

// ServiceConfig points at the remote inbox service.
type ServiceConfig struct {
	BaseURL        string `json:"baseUrl"`
	TimeoutSeconds int    `json:"timeoutSeconds"`
}

// WatchConfig configures the polling daemon.
type WatchConfig struct {
	PollIntervalSeconds int    `json:"pollIntervalSeconds"`
	RulesPath           string `json:"rulesPath,omitempty"` // optional YAML routing rules
}

// NotifyConfig configures the admin notification channels.
type NotifyConfig struct {
	Telegram TelegramConfig `json:"telegram"`
	Discord  DiscordConfig  `json:"discord,omitempty"`
	Slack    SlackConfig    `json:"slack,omitempty"`
}

type TelegramConfig struct {
	Enabled   bool   `json:"enabled"`
	Token     string `json:"token"`
	ChatID    string `json:"chatId"`
	ParseMode string `json:"parseMode"`
}

type DiscordConfig struct {
	Enabled   bool   `json:"enabled"`
	Token     string `json:"token"`
	ChannelID string `json:"channelId"`
}

type SlackConfig struct {
	Enabled  bool   `json:"enabled"`
	BotToken string `json:"botToken"`
	Channel  string `json:"channel"`
}

// DefaultConfigDir returns the default config directory (~/.echobox).
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".echobox"
	}
	return filepath.Join(home, ".echobox")
}

func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

func Load(path string) (*Config, error) {
	path = ExpandPath(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	// Substitute environment variables: ${VAR} and ${VAR:-default}
	data = []byte(ExpandEnvVars(string(data)))

	cfg := Defaults()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config file %s: %w", path, err)
	}

	cfg.General.DBPath = ExpandPath(cfg.General.DBPath)
	cfg.General.LogFile = ExpandPath(cfg.General.LogFile)
	cfg.Watch.RulesPath = ExpandPath(cfg.Watch.RulesPath)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns in config strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-(.*?))?\}`)

// ExpandEnvVars replaces ${VAR} with the environment variable value.
// Supports default values: ${VAR:-default} uses "default" when VAR is
// unset or empty.
func ExpandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		varName := groups[1]
		defaultVal := ""
		hasDefault := len(groups) >= 3 && groups[2] != ""
		if hasDefault {
			defaultVal = groups[2]
		}

		val, exists := os.LookupEnv(varName)
		if !exists || val == "" {
			if hasDefault {
				return defaultVal
			}
			return match // keep original if no env var and no default
		}
		return val
	})
}

func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

// Validate checks that the config has valid values.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.Service.BaseURL == "" {
		errs = append(errs, "service.baseUrl is required")
	} else if !strings.HasPrefix(cfg.Service.BaseURL, "http://") &&
		!strings.HasPrefix(cfg.Service.BaseURL, "https://") {
		errs = append(errs, "service.baseUrl must start with http:// or https://")
	}
	if cfg.Service.TimeoutSeconds < 1 {
		errs = append(errs, "service.timeoutSeconds must be >= 1")
	}
	if cfg.Watch.PollIntervalSeconds < 5 {
		errs = append(errs, "watch.pollIntervalSeconds must be >= 5")
	}

	switch cfg.General.LogLevel {
	case "", "debug", "info", "warn", "error":
		// valid
	default:
		errs = append(errs, "general.logLevel must be one of: debug, info, warn, error")
	}

	if cfg.Notify.Telegram.Enabled && cfg.Notify.Telegram.Token == "" {
		errs = append(errs, "notify.telegram: token is required when enabled")
	}
	if cfg.Notify.Telegram.Enabled && cfg.Notify.Telegram.ChatID == "" {
		errs = append(errs, "notify.telegram: chatId is required when enabled")
	}
	if cfg.Notify.Discord.Enabled && (cfg.Notify.Discord.Token == "" || cfg.Notify.Discord.ChannelID == "") {
		errs = append(errs, "notify.discord: token and channelId are required when enabled")
	}
	if cfg.Notify.Slack.Enabled && (cfg.Notify.Slack.BotToken == "" || cfg.Notify.Slack.Channel == "") {
		errs = append(errs, "notify.slack: botToken and channel are required when enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// ExpandPath resolves ~/ to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
