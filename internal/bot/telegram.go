package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"sahamwatch/internal/errors"
)

// Update is one inbound Telegram update.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

// Message is an inbound chat message.
type Message struct {
	MessageID int64  `json:"message_id"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text"`
}

// Chat identifies the conversation; its ID doubles as the opaque user ID.
type Chat struct {
	ID int64 `json:"id"`
}

// UserID returns the chat ID as the opaque user identifier used in storage.
func (m *Message) UserID() string {
	return strconv.FormatInt(m.Chat.ID, 10)
}

// Client is a minimal Telegram Bot API client for long polling.
type Client struct {
	botToken string
	baseURL  string
	client   *http.Client
}

// NewClient creates a Telegram client. baseURL is overridable for tests.
func NewClient(botToken, baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}
	return &Client{
		botToken: botToken,
		baseURL:  baseURL,
		client: &http.Client{
			// Long-poll requests stay open up to the poll timeout.
			Timeout: 60 * time.Second,
		},
	}
}

type updatesResponse struct {
	OK          bool     `json:"ok"`
	Result      []Update `json:"result"`
	Description string   `json:"description"`
}

// GetUpdates long-polls for updates after the given offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	params := url.Values{}
	params.Set("offset", strconv.FormatInt(offset, 10))
	params.Set("timeout", strconv.Itoa(int(timeout.Seconds())))
	params.Set("allowed_updates", `["message"]`)

	endpoint := fmt.Sprintf("%s/bot%s/getUpdates?%s", c.baseURL, c.botToken, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.NewGatewayError("getUpdates", "", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.NewGatewayError("getUpdates", "", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, errors.NewGatewayError("getUpdates", "", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewGatewayError("getUpdates", "", fmt.Errorf("telegram API returned status %d", resp.StatusCode))
	}

	var payload updatesResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, errors.NewGatewayError("getUpdates", "", errors.Wrap(err, "decoding updates"))
	}
	if !payload.OK {
		return nil, errors.NewGatewayError("getUpdates", "", fmt.Errorf("telegram API error: %s", payload.Description))
	}
	return payload.Result, nil
}
