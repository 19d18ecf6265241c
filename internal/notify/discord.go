package notify

import (
	"context"
	"fmt"
	"log/slog"

	"echobox/internal/domain"

	"github.com/bwmarrin/discordgo"
)

const discordMaxMsgLen = 2000

// Discord pushes inbox events to a Discord channel. Sends go over the
// REST API only; no gateway connection is opened.
type Discord struct {
	channelID string
	session   *discordgo.Session
	logger    *slog.Logger
}

// DiscordConfig configures the Discord notifier.
type DiscordConfig struct {
	Token     string
	ChannelID string
	Logger    *slog.Logger
}

// NewDiscord creates a Discord notifier.
func NewDiscord(cfg DiscordConfig) (*Discord, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	return &Discord{
		channelID: cfg.ChannelID,
		session:   session,
		logger:    cfg.Logger,
	}, nil
}

func (d *Discord) Name() string { return "discord" }

// Notify sends the event summary to the configured channel.
func (d *Discord) Notify(ctx context.Context, ev domain.InboxEvent) error {
	content := Summary(ev.Message)
	for _, chunk := range splitMessage(content, discordMaxMsgLen) {
		if _, err := d.session.ChannelMessageSend(d.channelID, chunk); err != nil {
			return fmt.Errorf("discord send: %w", err)
		}
	}
	return nil
}

// splitMessage breaks content into chunks of at most maxLen bytes,
// preferring newline boundaries.
func splitMessage(text string, maxLen int) []string {
	if len(text) <= maxLen {
		return []string{text}
	}
	var chunks []string
	for len(text) > 0 {
		if len(text) <= maxLen {
			chunks = append(chunks, text)
			break
		}
		cut := maxLen
		for i := maxLen; i > maxLen/2; i-- {
			if text[i-1] == '\n' {
				cut = i
				break
			}
		}
		chunks = append(chunks, text[:cut])
		text = text[cut:]
	}
	return chunks
}
