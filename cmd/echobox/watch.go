package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"echobox/internal/bus"
	"echobox/internal/config"
	"echobox/internal/domain"
	"echobox/internal/notify"
	"echobox/internal/review"
	"echobox/internal/watch"

	"github.com/spf13/cobra"
)

const notifyTimeout = 30 * time.Second

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Poll the inbox and push new-message notifications",
		Long:  "Runs in the foreground, polling the inbox service on the configured interval and announcing new unread messages on the enabled notification channels.",
		RunE:  runWatch,
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	if err := requireAdmin(st); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eventBus := bus.New(100, logger)
	defer eventBus.Close()

	notifiers, err := buildNotifiers(cfg)
	if err != nil {
		return err
	}
	if len(notifiers) == 0 {
		return fmt.Errorf("no notification channels enabled; enable one under notify in %s", resolveConfigPath())
	}
	for _, n := range notifiers {
		registerNotifier(eventBus, n)
	}

	rules, err := notify.LoadRules(cfg.Watch.RulesPath, logger)
	if err != nil {
		return err
	}

	watcher := watch.New(watch.Config{
		Inbox:    review.New(newInboxClient(cfg), logger),
		Marks:    st,
		Bus:      eventBus,
		Rules:    rules,
		Interval: time.Duration(cfg.Watch.PollIntervalSeconds) * time.Second,
		Logger:   logger,
	})

	logger.Info("watch started",
		"interval_s", cfg.Watch.PollIntervalSeconds,
		"channels", eventBus.Channels(),
	)
	return watcher.Run(ctx)
}

func buildNotifiers(cfg *config.Config) ([]domain.Notifier, error) {
	var notifiers []domain.Notifier

	if cfg.Notify.Telegram.Enabled {
		tg, err := notify.NewTelegram(notify.TelegramConfig{
			Token:     cfg.Notify.Telegram.Token,
			ChatID:    cfg.Notify.Telegram.ChatID,
			ParseMode: cfg.Notify.Telegram.ParseMode,
			Logger:    logger,
		})
		if err != nil {
			return nil, err
		}
		notifiers = append(notifiers, tg)
	}

	if cfg.Notify.Discord.Enabled {
		dc, err := notify.NewDiscord(notify.DiscordConfig{
			Token:     cfg.Notify.Discord.Token,
			ChannelID: cfg.Notify.Discord.ChannelID,
			Logger:    logger,
		})
		if err != nil {
			return nil, err
		}
		notifiers = append(notifiers, dc)
	}

	if cfg.Notify.Slack.Enabled {
		sl, err := notify.NewSlack(notify.SlackConfig{
			BotToken: cfg.Notify.Slack.BotToken,
			Channel:  cfg.Notify.Slack.Channel,
			Logger:   logger,
		})
		if err != nil {
			return nil, err
		}
		notifiers = append(notifiers, sl)
	}

	return notifiers, nil
}

func registerNotifier(eventBus *bus.Bus, n domain.Notifier) {
	eventBus.OnEvent(n.Name(), func(ev domain.InboxEvent) {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := n.Notify(ctx, ev); err != nil {
			logger.Error("notification failed",
				"channel", n.Name(),
				"message_id", ev.Message.ID,
				"err", err,
			)
		}
	})
}
