package domain

import "context"

// InboxEvent announces a newly observed unread message to the admin's
// notification channels.
type InboxEvent struct {
	Message Message
}

// Notifier is the interface for admin-facing push channels (Telegram,
// Discord, Slack).
type Notifier interface {
	Name() string
	Notify(ctx context.Context, ev InboxEvent) error
}
