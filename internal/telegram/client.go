package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sellers-pro/sellers_pro/internal/notification"
)

// DefaultAPIURL is the public Bot API endpoint.
const DefaultAPIURL = "https://api.telegram.org"

const maxResponseBytes = 1 << 20

// ClientConfig configures a Bot API client.
type ClientConfig struct {
	Token string
	// APIURL overrides DefaultAPIURL, for tests and self-hosted Bot API servers.
	APIURL string
	// HTTPClient is used for all requests. If nil, a client with a 10s timeout is used.
	HTTPClient *http.Client
}

// Client calls the Telegram Bot API over JSON.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient validates cfg and builds a client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("telegram: bot token is required")
	}
	apiURL := strings.TrimRight(cfg.APIURL, "/")
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: apiURL + "/bot" + cfg.Token, httpClient: httpClient}, nil
}

// SendMessage posts a message to a chat.
func (c *Client) SendMessage(ctx context.Context, req SendMessageRequest) error {
	if err := c.call(ctx, "sendMessage", req); err != nil {
		return fmt.Errorf("telegram: send message: %w", err)
	}
	return nil
}

// SetWebhook points the bot's updates at url.
func (c *Client) SetWebhook(ctx context.Context, req SetWebhookRequest) error {
	if err := c.call(ctx, "setWebhook", req); err != nil {
		return fmt.Errorf("telegram: set webhook: %w", err)
	}
	return nil
}

// Send implements notification.Notifier. Login codes also remove the contact keyboard.
func (c *Client) Send(ctx context.Context, message notification.Message) error {
	req := SendMessageRequest{ChatID: message.Destination, Text: message.Body, ParseMode: "Markdown"}
	if message.Kind == notification.KindLoginCode {
		req.ReplyMarkup = ReplyKeyboardRemove{RemoveKeyboard: true}
	}
	return c.SendMessage(ctx, req)
}

func (c *Client) call(ctx context.Context, method string, body any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", method, err)
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+method, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("create %s request: %w", method, err)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		// The request URL carries the bot token; never surface it.
		return fmt.Errorf("%s request failed", method)
	}
	defer response.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read %s response: %w", method, err)
	}

	var parsed apiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("unexpected %d response from %s", response.StatusCode, method)
	}
	if !parsed.OK || response.StatusCode >= http.StatusBadRequest {
		return &APIError{StatusCode: response.StatusCode, ErrorCode: parsed.ErrorCode, Description: parsed.Description}
	}
	return nil
}
