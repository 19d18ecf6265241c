package notify

import (
	"context"
	"fmt"
	"log/slog"

	"echobox/internal/domain"

	"github.com/slack-go/slack"
)

// Slack pushes inbox events to a Slack channel via the Web API.
type Slack struct {
	client  *slack.Client
	channel string
	logger  *slog.Logger
}

// SlackConfig configures the Slack notifier.
type SlackConfig struct {
	BotToken string
	Channel  string
	Logger   *slog.Logger
}

// NewSlack creates a Slack notifier and verifies the token.
func NewSlack(cfg SlackConfig) (*Slack, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	client := slack.New(cfg.BotToken)
	authResp, err := client.AuthTest()
	if err != nil {
		return nil, fmt.Errorf("slack auth: %w", err)
	}
	cfg.Logger.Info("slack notifier connected", "user", authResp.User)
	return &Slack{
		client:  client,
		channel: cfg.Channel,
		logger:  cfg.Logger,
	}, nil
}

func (s *Slack) Name() string { return "slack" }

// Notify sends the event summary to the configured channel.
func (s *Slack) Notify(ctx context.Context, ev domain.InboxEvent) error {
	_, _, err := s.client.PostMessageContext(ctx, s.channel,
		slack.MsgOptionText(Summary(ev.Message), false))
	if err != nil {
		return fmt.Errorf("slack send: %w", err)
	}
	return nil
}
