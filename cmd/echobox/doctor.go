package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"echobox/internal/config"

	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Run diagnostic checks on your echobox installation",
		Long: `Verifies that echobox's configuration, local database, and inbox
service are correctly set up. Reports pass/fail for each check.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := resolveConfigPath()
			fmt.Printf("echobox doctor v%s\n", version)
			fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

			passed := 0
			failed := 0
			warned := 0

			// 1. Config file exists
			if _, err := os.Stat(cfgPath); err != nil {
				printFail("Config file", fmt.Sprintf("not found at %s", cfgPath))
				fmt.Printf("\nRun 'echobox init' to create a default configuration.\n")
				return nil
			}
			printPass("Config file", cfgPath)
			passed++

			// 2. Config loads and validates
			cfg, err := config.Load(cfgPath)
			if err != nil {
				printFail("Config validation", err.Error())
				failed++
				fmt.Printf("\n%d passed, %d failed\n", passed, failed)
				return nil
			}
			printPass("Config validation", "valid")
			passed++

			// 3. Database writable
			if err := checkDatabase(cfg.General.DBPath); err != nil {
				printFail("Database", err.Error())
				failed++
			} else {
				printPass("Database", cfg.General.DBPath)
				passed++
			}

			// 4. Inbox service reachable
			client := newInboxClient(cfg)
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			if messages, err := client.FetchMessages(ctx); err != nil {
				printFail("Inbox service", err.Error())
				failed++
			} else {
				printPass("Inbox service", fmt.Sprintf("%s (%d messages)", cfg.Service.BaseURL, len(messages)))
				passed++
			}

			// 5. Notification channels
			channels := 0
			if cfg.Notify.Telegram.Enabled {
				channels++
			}
			if cfg.Notify.Discord.Enabled {
				channels++
			}
			if cfg.Notify.Slack.Enabled {
				channels++
			}
			if channels == 0 {
				printWarn("Notifications", "no channels enabled ('echobox watch' will refuse to start)")
				warned++
			} else {
				printPass("Notifications", fmt.Sprintf("%d channel(s) enabled", channels))
				passed++
			}

			// 6. Rules file, when configured
			if cfg.Watch.RulesPath != "" {
				if _, err := os.Stat(cfg.Watch.RulesPath); err != nil {
					printWarn("Routing rules", fmt.Sprintf("configured but missing: %s", cfg.Watch.RulesPath))
					warned++
				} else {
					printPass("Routing rules", cfg.Watch.RulesPath)
					passed++
				}
			}

			fmt.Printf("\n%d passed, %d failed, %d warning(s)\n", passed, failed, warned)
			return nil
		},
	}
}

func checkDatabase(dbPath string) error {
	db, err := sql.Open("sqlite", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return err
	}
	defer db.Close()
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS doctor_probe (id INTEGER)`); err != nil {
		return err
	}
	_, err = db.Exec(`DROP TABLE doctor_probe`)
	return err
}

func printPass(name, detail string) { fmt.Printf("  ✓ %-20s %s\n", name, detail) }
func printFail(name, detail string) { fmt.Printf("  ✗ %-20s %s\n", name, detail) }
func printWarn(name, detail string) { fmt.Printf("  ! %-20s %s\n", name, detail) }
