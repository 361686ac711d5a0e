package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout is the webhook request timeout. It is never shorter than the
// RPC timeout so a slow chat service does not look like a dead node.
const DefaultTimeout = 15 * time.Second

// placeholders are webhook values shipped in example configs.
var placeholders = []string{
	"your_webhook_url_here",
	"changeme",
}

// Webhook posts {"content": message} to a Discord-compatible webhook.
type Webhook struct {
	url        string
	httpClient *http.Client
}

// NewWebhook creates a webhook notifier. A non-positive timeout selects DefaultTimeout.
func NewWebhook(url string, timeout time.Duration) *Webhook {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Webhook{
		url:        strings.TrimSpace(url),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether the webhook has a usable URL.
func (w *Webhook) Enabled() bool {
	return IsConfigured(w.url)
}

// IsConfigured reports whether url is a real webhook rather than empty or a placeholder.
func IsConfigured(url string) bool {
	url = strings.TrimSpace(url)
	if url == "" {
		return false
	}
	for _, p := range placeholders {
		if strings.EqualFold(url, p) {
			return false
		}
	}
	return true
}

// Send delivers the message. It is a no-op when the webhook is not configured.
func (w *Webhook) Send(ctx context.Context, message string) error {
	if !w.Enabled() {
		return nil
	}

	payload, err := json.Marshal(map[string]string{"content": message})
	if err != nil {
		return &SendError{Err: fmt.Errorf("marshal payload: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(payload))
	if err != nil {
		return &SendError{Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return &SendError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &SendError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected response: %s", strings.TrimSpace(string(body))),
		}
	}
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
