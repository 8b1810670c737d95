package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

type Sender interface {
	Send(ctx context.Context, n Notification) error
}

// LogSender writes each notification as a structured log line.
type LogSender struct {
	Logger *slog.Logger
}

func (s LogSender) Send(ctx context.Context, n Notification) error {
	s.Logger.InfoContext(ctx, "notification",
		"department", n.Department,
		"event_type", n.EventType,
		"event_id", n.EventID,
		"listing_id", n.ListingID,
		"claim_id", n.ClaimID,
		"subject", n.Subject,
		"message", n.Message)
	return nil
}

// WebhookSender POSTs each notification as JSON to a URL.
type WebhookSender struct {
	url    string
	client *http.Client
}

func NewWebhookSender(url string, timeout time.Duration) *WebhookSender {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &WebhookSender{url: url, client: &http.Client{Timeout: timeout}}
}

func (s *WebhookSender) Send(ctx context.Context, n Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// MultiSender delivers to every sender and reports the first failure.
type MultiSender []Sender

func (m MultiSender) Send(ctx context.Context, n Notification) error {
	var firstErr error
	for _, s := range m {
		if err := s.Send(ctx, n); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
