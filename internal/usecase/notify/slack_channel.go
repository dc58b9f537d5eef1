package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// SlackConfig configures the Slack webhook channel.
type SlackConfig struct {
	Enabled    bool
	WebhookURL string
	Timeout    time.Duration
}

// SlackChannel delivers run summaries to a Slack incoming webhook.
type SlackChannel struct {
	cfg        SlackConfig
	httpClient *http.Client
}

// NewSlackChannel creates the Slack channel. A nil httpClient gets a default
// one with the configured timeout.
func NewSlackChannel(cfg SlackConfig, httpClient *http.Client) *SlackChannel {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &SlackChannel{cfg: cfg, httpClient: httpClient}
}

// Name returns the channel identifier "slack".
func (c *SlackChannel) Name() string {
	return "slack"
}

// IsEnabled reports whether a webhook URL is configured.
func (c *SlackChannel) IsEnabled() bool {
	return c.cfg.Enabled && c.cfg.WebhookURL != ""
}

// Send posts the summary as a single webhook message: headline plus the
// detailed body in a code block.
func (c *SlackChannel) Send(ctx context.Context, summary *RunSummary) error {
	if !c.IsEnabled() {
		return ErrChannelDisabled
	}
	if summary == nil {
		return ErrInvalidSummary
	}

	payload, err := json.Marshal(map[string]string{
		"text": fmt.Sprintf("%s\n```%s```", summary.Subject(), summary.Body()),
	})
	if err != nil {
		return fmt.Errorf("slack: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("slack: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("slack: webhook request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack: webhook returned status %d", resp.StatusCode)
	}
	return nil
}
