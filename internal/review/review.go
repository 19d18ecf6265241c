package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"echobox/internal/domain"
)

// Transport is the slice of the inbox service the review surface needs.
type Transport interface {
	FetchMessages(ctx context.Context) ([]domain.Message, error)
	MarkRead(ctx context.Context, id string) error
}

var (
	// ErrInFlight reports an operation suppressed because the same
	// operation is already outstanding (refresh, or mark-read for the
	// same id).
	ErrInFlight = errors.New("operation already in flight")

	// ErrNotFound reports an id absent from the owned collection.
	ErrNotFound = errors.New("message not found")
)

// Inbox owns the admin's working set of messages. It is the only writer:
// Refresh batch-replaces after a successful fetch, MarkRead flips a
// single read flag after transport confirmation, Delete removes locally.
//
// Inbox is confined to a single goroutine (cooperative scheduling); the
// in-flight guards are plain flags, not locks.
type Inbox struct {
	transport Transport
	logger    *slog.Logger

	messages   []domain.Message
	fetched    bool
	refreshing bool
	marking    map[string]bool
}

// New creates an empty review inbox.
func New(transport Transport, logger *slog.Logger) *Inbox {
	if logger == nil {
		logger = slog.Default()
	}
	return &Inbox{
		transport: transport,
		logger:    logger,
		marking:   make(map[string]bool),
	}
}

// Refresh fetches the full inbox and replaces the owned collection. On
// failure the previous collection is kept untouched: a failed fetch means
// "state unknown", not "empty inbox".
func (in *Inbox) Refresh(ctx context.Context) error {
	if in.refreshing {
		return ErrInFlight
	}
	in.refreshing = true
	defer func() { in.refreshing = false }()

	messages, err := in.transport.FetchMessages(ctx)
	if err != nil {
		return err
	}

	in.messages = messages
	in.fetched = true
	return nil
}

// Fetched reports whether at least one Refresh has succeeded.
func (in *Inbox) Fetched() bool { return in.fetched }

// Messages returns a copy of the collection sorted newest first. The
// service does not guarantee ordering, so display order is imposed here.
func (in *Inbox) Messages() []domain.Message {
	out := make([]domain.Message, len(in.messages))
	copy(out, in.messages)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Unread returns the unread subset, newest first.
func (in *Inbox) Unread() []domain.Message {
	var out []domain.Message
	for _, m := range in.Messages() {
		if !m.IsRead {
			out = append(out, m)
		}
	}
	return out
}

// Get returns the message with the given id.
func (in *Inbox) Get(id string) (domain.Message, bool) {
	for _, m := range in.messages {
		if m.ID == id {
			return m, true
		}
	}
	return domain.Message{}, false
}

// MarkRead performs the one-way Unread -> Read transition for one id.
// Already-read messages are a no-op (the action is never offered for
// them). The local flag flips only after the transport confirms; every
// other message is left untouched. A second call for the same id while
// one is outstanding returns ErrInFlight.
func (in *Inbox) MarkRead(ctx context.Context, id string) error {
	idx := -1
	for i, m := range in.messages {
		if m.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if in.messages[idx].IsRead {
		return nil
	}
	if in.marking[id] {
		return ErrInFlight
	}

	in.marking[id] = true
	defer delete(in.marking, id)

	if err := in.transport.MarkRead(ctx, id); err != nil {
		return err
	}

	in.messages[idx].IsRead = true
	in.logger.Debug("message marked read", "id", id)
	return nil
}

// Delete removes a message from the owned collection. The service models
// no delete endpoint; the inbox is the sole owner of its working set.
func (in *Inbox) Delete(id string) bool {
	for i, m := range in.messages {
		if m.ID == id {
			in.messages = append(in.messages[:i], in.messages[i+1:]...)
			return true
		}
	}
	return false
}
