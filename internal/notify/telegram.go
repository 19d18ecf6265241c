package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"echobox/internal/domain"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const telegramMaxSendRetries = 3

// Telegram pushes inbox events to the admin's Telegram chat.
type Telegram struct {
	chatID    int64
	parseMode string
	bot       *tgbotapi.BotAPI
	logger    *slog.Logger
}

// TelegramConfig configures the Telegram notifier.
type TelegramConfig struct {
	Token     string
	ChatID    string
	ParseMode string
	Logger    *slog.Logger
}

// NewTelegram connects to the Telegram bot API.
func NewTelegram(cfg TelegramConfig) (*Telegram, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	chatID, err := strconv.ParseInt(strings.TrimSpace(cfg.ChatID), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("telegram: invalid chat ID %q: %w", cfg.ChatID, err)
	}
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	if cfg.ParseMode == "" {
		cfg.ParseMode = "Markdown"
	}
	cfg.Logger.Info("telegram notifier connected", "username", bot.Self.UserName)
	return &Telegram{
		chatID:    chatID,
		parseMode: cfg.ParseMode,
		bot:       bot,
		logger:    cfg.Logger,
	}, nil
}

func (t *Telegram) Name() string { return "telegram" }

// Notify sends the event summary to the configured chat.
func (t *Telegram) Notify(ctx context.Context, ev domain.InboxEvent) error {
	return t.send(ctx, Summary(ev.Message))
}

// send delivers one message with retry and rate limit handling.
// Strategy: try the configured parse mode first, on parse error fall back
// to plain text, back off on 429.
func (t *Telegram) send(ctx context.Context, text string) error {
	var lastErr error

	for attempt := 0; attempt <= telegramMaxSendRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		msg := tgbotapi.NewMessage(t.chatID, text)
		if attempt == 0 && t.parseMode != "" {
			msg.ParseMode = t.parseMode
		}
		// Subsequent attempts go out as plain text (the parse mode may be
		// what the API rejected).

		_, err := t.bot.Send(msg)
		if err == nil {
			return nil
		}
		lastErr = err
		errStr := err.Error()

		if strings.Contains(errStr, "Too Many Requests") || strings.Contains(errStr, "429") {
			retryAfter := time.Duration(attempt+1) * 3 * time.Second
			t.logger.Warn("telegram rate limited, backing off",
				"retry_after", retryAfter, "attempt", attempt+1)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryAfter):
			}
			continue
		}

		if attempt == 0 && msg.ParseMode != "" && strings.Contains(errStr, "can't parse entities") {
			t.logger.Warn("telegram parse error, retrying as plain text", "err", err)
			continue
		}

		if attempt < telegramMaxSendRetries {
			backoff := time.Duration(attempt+1) * time.Second
			t.logger.Warn("telegram send error, retrying", "err", err, "backoff", backoff)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			continue
		}
	}

	return fmt.Errorf("telegram send failed after %d attempts: %w", telegramMaxSendRetries+1, lastErr)
}
