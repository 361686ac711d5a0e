// Package notify delivers alert messages to chat webhooks.
package notify

import (
	"context"
	"fmt"
)

// Notifier sends an alert message to a downstream channel.
type Notifier interface {
	Send(ctx context.Context, message string) error
}

// Nop discards every message.
type Nop struct{}

func (Nop) Send(_ context.Context, _ string) error { return nil }

// SendError is returned when a webhook delivery fails.
type SendError struct {
	StatusCode int // 0 for transport failures
	Err        error
}

func (e *SendError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("webhook send failed: http %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("webhook send failed: %v", e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}
