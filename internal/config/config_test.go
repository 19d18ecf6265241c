package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_MergesOverDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"service": {"baseUrl": "https://box.example.org/api"}
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Service.BaseURL != "https://box.example.org/api" {
		t.Errorf("baseUrl = %q", cfg.Service.BaseURL)
	}
	// Unspecified fields keep their defaults.
	if cfg.Service.TimeoutSeconds != 30 {
		t.Errorf("timeoutSeconds = %d", cfg.Service.TimeoutSeconds)
	}
	if cfg.Watch.PollIntervalSeconds != 60 {
		t.Errorf("pollIntervalSeconds = %d", cfg.Watch.PollIntervalSeconds)
	}
	if cfg.General.LogLevel != "info" {
		t.Errorf("logLevel = %q", cfg.General.LogLevel)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("missing config file must fail")
	}
}

func TestLoad_MalformedJSON(t *testing.T) {
	path := writeConfig(t, `{"service": `)
	if _, err := Load(path); err == nil {
		t.Fatal("malformed config must fail")
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("ECHOBOX_TEST_URL", "https://env.example.com/api")
	path := writeConfig(t, `{
		"service": {"baseUrl": "${ECHOBOX_TEST_URL}"}
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Service.BaseURL != "https://env.example.com/api" {
		t.Errorf("baseUrl = %q", cfg.Service.BaseURL)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("ECHOBOX_SET", "value")
	os.Unsetenv("ECHOBOX_UNSET")

	cases := []struct {
		in   string
		want string
	}{
		{"${ECHOBOX_SET}", "value"},
		{"${ECHOBOX_SET:-fallback}", "value"},
		{"${ECHOBOX_UNSET:-fallback}", "fallback"},
		{"${ECHOBOX_UNSET}", "${ECHOBOX_UNSET}"}, // kept verbatim
		{"prefix-${ECHOBOX_SET}-suffix", "prefix-value-suffix"},
		{"no variables here", "no variables here"},
		{"${ECHOBOX_SET} ${ECHOBOX_SET}", "value value"},
	}
	for _, tc := range cases {
		if got := ExpandEnvVars(tc.in); got != tc.want {
			t.Errorf("ExpandEnvVars(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config { return Defaults() }

	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults are valid", func(c *Config) {}, ""},
		{"missing base url", func(c *Config) { c.Service.BaseURL = "" }, "baseUrl is required"},
		{"non-http base url", func(c *Config) { c.Service.BaseURL = "ftp://x" }, "must start with http"},
		{"zero timeout", func(c *Config) { c.Service.TimeoutSeconds = 0 }, "timeoutSeconds"},
		{"poll interval too small", func(c *Config) { c.Watch.PollIntervalSeconds = 2 }, "pollIntervalSeconds"},
		{"bad log level", func(c *Config) { c.General.LogLevel = "verbose" }, "logLevel"},
		{"telegram enabled without token", func(c *Config) {
			c.Notify.Telegram.Enabled = true
			c.Notify.Telegram.ChatID = "123"
		}, "token is required"},
		{"telegram enabled without chat id", func(c *Config) {
			c.Notify.Telegram.Enabled = true
			c.Notify.Telegram.Token = "t"
		}, "chatId is required"},
		{"discord enabled incomplete", func(c *Config) {
			c.Notify.Discord.Enabled = true
		}, "notify.discord"},
		{"slack enabled incomplete", func(c *Config) {
			c.Notify.Slack.Enabled = true
			c.Notify.Slack.BotToken = "xoxb"
		}, "notify.slack"},
	}

	for _, tc := range cases {
		cfg := valid()
		tc.mutate(cfg)
		err := Validate(cfg)
		if tc.wantErr == "" {
			if err != nil {
				t.Errorf("%s: unexpected error: %v", tc.name, err)
			}
			continue
		}
		if err == nil {
			t.Errorf("%s: expected error", tc.name)
			continue
		}
		if !strings.Contains(err.Error(), tc.wantErr) {
			t.Errorf("%s: error %q does not mention %q", tc.name, err, tc.wantErr)
		}
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg := Defaults()
	cfg.Service.BaseURL = "https://box.example.org/api"
	cfg.Notify.Telegram.Enabled = true
	cfg.Notify.Telegram.Token = "bot-token"
	cfg.Notify.Telegram.ChatID = "42"

	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Service.BaseURL != cfg.Service.BaseURL {
		t.Errorf("baseUrl = %q", loaded.Service.BaseURL)
	}
	if !loaded.Notify.Telegram.Enabled || loaded.Notify.Telegram.ChatID != "42" {
		t.Errorf("telegram = %+v", loaded.Notify.Telegram)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := ExpandPath("~/data/box.db"); got != filepath.Join(home, "data/box.db") {
		t.Errorf("ExpandPath = %q", got)
	}
	if got := ExpandPath("/abs/path"); got != "/abs/path" {
		t.Errorf("absolute paths pass through, got %q", got)
	}
	if got := ExpandPath(""); got != "" {
		t.Errorf("empty path passes through, got %q", got)
	}
}
