package composer

import (
	"context"
	"errors"
	"log/slog"
)

// Transport delivers an assembled payload to the inbox service.
type Transport interface {
	Submit(ctx context.Context, p *Payload) error
}

// ErrSubmitInFlight reports a second Submit while one is outstanding.
// The duplicate is suppressed, not queued.
var ErrSubmitInFlight = errors.New("a submission is already in flight")

// Composer owns the sender's draft across its lifecycle: set, submitted
// exactly once, then reset to an empty text draft on success or kept
// unchanged on failure so the sender can retry without re-entering
// content.
//
// Composer is confined to a single goroutine; the in-flight guard is a
// plain flag, not a lock.
type Composer struct {
	transport Transport
	logger    *slog.Logger

	draft      Draft
	submitting bool
}

// New creates a composer starting from an empty text draft.
func New(transport Transport, logger *slog.Logger) *Composer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Composer{
		transport: transport,
		logger:    logger,
		draft:     NewTextDraft(""),
	}
}

// SetDraft replaces the in-progress draft. Switching kinds discards the
// previous kind's content entirely.
func (c *Composer) SetDraft(d Draft) { c.draft = d }

// Draft returns the current in-progress draft.
func (c *Composer) Draft() Draft { return c.draft }

// Submit validates the current draft, builds the payload, and delivers
// it. Validation failures and ErrNothingToSend are reported before any
// network activity. On success the draft resets to an empty text draft
// regardless of which kind was sent.
func (c *Composer) Submit(ctx context.Context) error {
	if c.submitting {
		return ErrSubmitInFlight
	}

	payload, err := c.draft.Build()
	if err != nil {
		return err
	}

	c.submitting = true
	defer func() { c.submitting = false }()

	if err := c.transport.Submit(ctx, payload); err != nil {
		c.logger.Warn("submission failed, draft preserved", "kind", payload.Kind, "err", err)
		return err
	}

	c.draft = NewTextDraft("")
	return nil
}
