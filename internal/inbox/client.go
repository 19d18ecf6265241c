package inbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"echobox/internal/composer"
	"echobox/internal/domain"
)

// Client talks to the remote inbox service. All operations are single
// attempts: failures surface to the caller, and retry is a user decision,
// never automatic.
type Client struct {
	baseURL string
	httpc   *http.Client
	logger  *slog.Logger
}

// ClientConfig configures the inbox client.
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
	Logger  *slog.Logger
}

// NewClient creates a client for the service rooted at cfg.BaseURL.
func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpc:   newHTTPClient(cfg.Timeout),
		logger:  logger,
	}
}

// BaseURL returns the service root the client was configured with.
func (c *Client) BaseURL() string { return c.baseURL }

// FetchMessages retrieves and normalizes the full inbox. A non-2xx
// response or transport failure is an error; callers must treat it as
// "state unknown", never as an empty inbox.
func (c *Client) FetchMessages(ctx context.Context) ([]domain.Message, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/get-messages", nil)
	if err != nil {
		return nil, fmt.Errorf("fetch messages: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch messages: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch messages: HTTP %d", resp.StatusCode)
	}

	var records []wireRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("fetch messages: decode response: %w", err)
	}

	messages := make([]domain.Message, 0, len(records))
	for _, rec := range records {
		messages = append(messages, normalizeRecord(c.baseURL, rec))
	}

	c.logger.Debug("messages fetched", "count", len(messages))
	return messages, nil
}

// MarkRead asks the service to flag one message as read. The caller must
// not flip local state until this returns nil.
func (c *Client) MarkRead(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/read-message/"+url.PathEscape(id), nil)
	if err != nil {
		return fmt.Errorf("mark read %s: %w", id, err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("mark read %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("mark read %s: HTTP %d", id, resp.StatusCode)
	}
	return nil
}

// Submit delivers a composed payload. The draft it was built from is the
// caller's to keep on failure.
func (c *Client) Submit(ctx context.Context, p *composer.Payload) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/send-message", bytes.NewReader(p.Body))
	if err != nil {
		return fmt.Errorf("submit message: %w", err)
	}
	req.Header.Set("Content-Type", p.ContentType)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("submit message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("submit message: HTTP %d", resp.StatusCode)
	}

	c.logger.Info("message submitted", "kind", p.Kind)
	return nil
}

// FetchMedia opens the byte stream behind a file locator. The caller
// closes the reader. Size is -1 when the service does not declare one.
func (c *Client) FetchMedia(ctx context.Context, locator string) (io.ReadCloser, int64, error) {
	if locator == "" {
		return nil, 0, fmt.Errorf("fetch media: empty locator")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("fetch media: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("fetch media: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, 0, fmt.Errorf("fetch media: HTTP %d", resp.StatusCode)
	}
	return resp.Body, resp.ContentLength, nil
}
