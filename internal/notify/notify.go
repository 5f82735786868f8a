// Package notify delivers user-facing messages.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"sahamwatch/internal/errors"
)

// Notifier defines the interface for sending a message to a user.
// Delivery failure is non-fatal to callers: the alert engine keeps the
// affected alert and retries on the next tick.
type Notifier interface {
	Notify(ctx context.Context, userID, text string) error
}

// TelegramNotifier sends messages through the Telegram Bot API.
// The user identifier doubles as the Telegram chat ID.
type TelegramNotifier struct {
	botToken string
	baseURL  string
	client   *http.Client
}

// NewTelegramNotifier creates a Telegram notifier. baseURL is overridable
// for tests; empty means the public Bot API endpoint.
func NewTelegramNotifier(botToken, baseURL string) *TelegramNotifier {
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}
	return &TelegramNotifier{
		botToken: botToken,
		baseURL:  baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Notify sends a Markdown-formatted message to the given chat.
func (t *TelegramNotifier) Notify(ctx context.Context, userID, text string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.botToken)

	payload := map[string]interface{}{
		"chat_id":    userID,
		"text":       text,
		"parse_mode": "Markdown",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "marshaling telegram payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return errors.NewGatewayError("notify", "", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return errors.NewGatewayError("notify", "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.NewGatewayError("notify", "", fmt.Errorf("telegram API returned status %d", resp.StatusCode))
	}
	return nil
}

// NoOpNotifier discards all messages (for tests or disabled notifications).
type NoOpNotifier struct{}

// NewNoOpNotifier creates a new NoOpNotifier.
func NewNoOpNotifier() *NoOpNotifier {
	return &NoOpNotifier{}
}

// Notify does nothing.
func (n *NoOpNotifier) Notify(ctx context.Context, userID, text string) error {
	return nil
}
