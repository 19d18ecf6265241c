package bus

import (
	"log/slog"
	"sync"
	"time"

	"echobox/internal/domain"
)

const publishTimeout = 10 * time.Second

// Bus is a Go-channel based fan-out between the watch poller and the
// notification channels.
type Bus struct {
	events   chan domain.InboxEvent
	handlers map[string]func(domain.InboxEvent)
	mu       sync.RWMutex
	closed   bool
	logger   *slog.Logger
}

// New creates a Bus with the given buffer size.
func New(bufferSize int, logger *slog.Logger) *Bus {
	if bufferSize <= 0 {
		bufferSize = 100
	}
	return &Bus{
		events:   make(chan domain.InboxEvent, bufferSize),
		handlers: make(map[string]func(domain.InboxEvent)),
		logger:   logger,
	}
}

// Publish enqueues an event. Blocks up to 10 seconds if the bus is full
// instead of dropping.
func (b *Bus) Publish(ev domain.InboxEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		b.logger.Warn("attempted to publish to closed bus")
		return
	}

	select {
	case b.events <- ev:
	default:
		b.logger.Warn("event bus full, waiting...", "message_id", ev.Message.ID)
		timer := time.NewTimer(publishTimeout)
		defer timer.Stop()
		select {
		case b.events <- ev:
		case <-timer.C:
			b.logger.Error("event dropped: bus full for 10s", "message_id", ev.Message.ID)
		}
	}
}

// Subscribe returns the event stream consumed by the dispatch loop.
func (b *Bus) Subscribe() <-chan domain.InboxEvent {
	return b.events
}

// OnEvent registers the handler for one notification channel.
func (b *Bus) OnEvent(channel string, handler func(domain.InboxEvent)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[channel] = handler
}

// SendTo delivers an event to one registered channel handler.
func (b *Bus) SendTo(channel string, ev domain.InboxEvent) {
	b.mu.RLock()
	handler, ok := b.handlers[channel]
	b.mu.RUnlock()

	if !ok {
		b.logger.Warn("no handler registered for channel", "channel", channel)
		return
	}
	handler(ev)
}

// Channels lists the registered channel names.
func (b *Bus) Channels() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	names := make([]string, 0, len(b.handlers))
	for name := range b.handlers {
		names = append(names, name)
	}
	return names
}

// Close shuts the bus down. Publish becomes a logged no-op.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	close(b.events)
}
