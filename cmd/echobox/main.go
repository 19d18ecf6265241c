package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"echobox/internal/config"
	"echobox/internal/inbox"
	"echobox/internal/store"

	"github.com/spf13/cobra"
)

var (
	version    = "0.1.0"
	logger     *slog.Logger
	configPath string // overridable via --config flag
)

var errNotLoggedIn = errors.New("not logged in: run 'echobox login' first")

func main() {
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	root := &cobra.Command{
		Use:   "echobox",
		Short: "echobox: anonymous message box client",
		Long:  "echobox sends anonymous messages (text, image, voice, document) to a recipient's inbox and gives the inbox owner a review surface: list, mark read, delete, save files, and push notifications.",
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.json (default: ~/.echobox/config.json)")

	root.AddCommand(initCmd())
	root.AddCommand(sendCmd())
	root.AddCommand(loginCmd())
	root.AddCommand(logoutCmd())
	root.AddCommand(inboxCmd())
	root.AddCommand(readCmd())
	root.AddCommand(deleteCmd())
	root.AddCommand(saveCmd())
	root.AddCommand(watchCmd())
	root.AddCommand(statusCmd())
	root.AddCommand(doctorCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveConfigPath returns the config path from --config flag or default.
func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultConfigPath()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		return nil, err
	}
	setupLogger(cfg)
	return cfg, nil
}

// setupLogger reconfigures the process logger from the config's level and
// optional log file.
func setupLogger(cfg *config.Config) {
	level := slog.LevelInfo
	switch cfg.General.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	out := os.Stderr
	if cfg.General.LogFile != "" {
		f, err := os.OpenFile(cfg.General.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			logger.Warn("cannot open log file, logging to stderr", "path", cfg.General.LogFile, "err", err)
		} else {
			out = f
		}
	}

	logger = slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
}

func openStore(cfg *config.Config) (*store.Store, error) {
	return store.Open(cfg.General.DBPath, logger)
}

func newInboxClient(cfg *config.Config) *inbox.Client {
	return inbox.NewClient(inbox.ClientConfig{
		BaseURL: cfg.Service.BaseURL,
		Timeout: time.Duration(cfg.Service.TimeoutSeconds) * time.Second,
		Logger:  logger,
	})
}

// requireAdmin gates the review commands on the persisted session. The
// check happens once, at command startup.
func requireAdmin(st *store.Store) error {
	if !store.NewSession(st).IsAuthenticated() {
		return errNotLoggedIn
	}
	return nil
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize config and data directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgDir := config.DefaultConfigDir()
			cfgPath := config.DefaultConfigPath()
			if err := os.MkdirAll(cfgDir, 0o755); err != nil {
				return err
			}
			if _, err := os.Stat(cfgPath); err == nil {
				return fmt.Errorf("config already exists at %s", cfgPath)
			}
			cfg := config.Defaults()
			if err := config.Save(cfgPath, cfg); err != nil {
				return err
			}
			fmt.Printf("Initialized config at %s\n", cfgPath)
			fmt.Println("Edit service.baseUrl to point at your inbox service.")
			return nil
		},
	}
}

func loginCmd() *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in as the inbox admin on this machine",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := store.NewSession(st).Login(token); err != nil {
				return err
			}
			fmt.Println("Logged in.")
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "session token (default: generated marker)")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the admin session",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := store.NewSession(st).Logout(); err != nil {
				return err
			}
			fmt.Println("Logged out.")
			return nil
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show configuration and session status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			authed := store.NewSession(st).IsAuthenticated()
			sent, _ := st.SentCount(cmd.Context())

			fmt.Printf("echobox v%s\n\n", version)
			fmt.Printf("Config:    %s\n", resolveConfigPath())
			fmt.Printf("Service:   %s\n", cfg.Service.BaseURL)
			fmt.Printf("Admin:     logged %s\n", map[bool]string{true: "in", false: "out"}[authed])
			fmt.Printf("Sent log:  %d message(s)\n", sent)
			fmt.Printf("Notify:    telegram=%v discord=%v slack=%v\n",
				cfg.Notify.Telegram.Enabled, cfg.Notify.Discord.Enabled, cfg.Notify.Slack.Enabled)
			return nil
		},
	}
}
