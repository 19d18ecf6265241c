package watch

import (
	"context"
	"log/slog"
	"time"

	"echobox/internal/bus"
	"echobox/internal/domain"
	"echobox/internal/notify"
	"echobox/internal/review"
)

// Watermark persists which message ids have already been announced.
type Watermark interface {
	SeenIDs(ctx context.Context) (map[string]bool, error)
	MarkSeen(ctx context.Context, ids []string) error
}

// Watcher polls the inbox and publishes an event for every unread message
// that has not been announced before.
type Watcher struct {
	inbox    *review.Inbox
	marks    Watermark
	bus      *bus.Bus
	rules    *notify.Rules
	interval time.Duration
	logger   *slog.Logger

	// primed is set once the first poll completes. Only that first cycle
	// may baseline an empty watermark; later polls announce everything new
	// even when the inbox was empty at startup.
	primed bool
}

// Config configures the watcher.
type Config struct {
	Inbox    *review.Inbox
	Marks    Watermark
	Bus      *bus.Bus
	Rules    *notify.Rules
	Interval time.Duration
	Logger   *slog.Logger
}

// New creates a watcher.
func New(cfg Config) *Watcher {
	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	return &Watcher{
		inbox:    cfg.Inbox,
		marks:    cfg.Marks,
		bus:      cfg.Bus,
		rules:    cfg.Rules,
		interval: interval,
		logger:   cfg.Logger,
	}
}

// Run polls until the context is cancelled. The first poll against an
// empty watermark only establishes a baseline, so enabling the daemon on
// an existing inbox does not flood the admin with old messages.
func (w *Watcher) Run(ctx context.Context) error {
	go w.dispatch(ctx)

	w.poll(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watcher stopping")
			return nil
		case <-ticker.C:
			w.poll(ctx)
		}
	}
}

// dispatch routes published events to the notification channels selected
// by the routing rules.
func (w *Watcher) dispatch(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.bus.Subscribe():
			if !ok {
				return
			}
			for _, channel := range w.rules.ChannelsFor(ev.Message.Kind, w.bus.Channels()) {
				w.bus.SendTo(channel, ev)
			}
		}
	}
}

func (w *Watcher) poll(ctx context.Context) {
	if err := w.inbox.Refresh(ctx); err != nil {
		// Transient fetch failures leave the previous state untouched;
		// the next tick retries.
		w.logger.Warn("inbox refresh failed", "err", err)
		return
	}

	seen, err := w.marks.SeenIDs(ctx)
	if err != nil {
		w.logger.Error("cannot read watermark", "err", err)
		return
	}

	messages := w.inbox.Messages()

	if !w.primed && len(seen) == 0 {
		ids := make([]string, 0, len(messages))
		for _, m := range messages {
			if m.ID != "" {
				ids = append(ids, m.ID)
			}
		}
		if err := w.marks.MarkSeen(ctx, ids); err != nil {
			w.logger.Error("cannot establish watermark baseline", "err", err)
			return
		}
		w.primed = true
		if len(ids) > 0 {
			w.logger.Info("watermark baseline established", "messages", len(ids))
		}
		return
	}
	w.primed = true

	var announced []string
	for _, m := range messages {
		if m.ID == "" || seen[m.ID] {
			continue
		}
		if !m.IsRead {
			w.bus.Publish(domain.InboxEvent{Message: m})
		}
		// Read-on-arrival messages are recorded without announcing.
		announced = append(announced, m.ID)
	}

	if err := w.marks.MarkSeen(ctx, announced); err != nil {
		w.logger.Error("cannot advance watermark", "err", err)
		return
	}
	if len(announced) > 0 {
		w.logger.Info("new messages observed", "count", len(announced))
	}
}
