package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"mime/multipart"
	"net/http"
)

const telegramBaseURL = "https://api.telegram.org"

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=notify_test -destination=mock_http_client_test.go -source=telegram.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Telegram is a Sink posting to the Bot API. Text reports go out as a
// <pre> block so the table columns survive the client's proportional font.
type Telegram struct {
	// baseURL is the Bot API endpoint, overridable for tests.
	baseURL string
	// token is the bot token from BotFather.
	token string
	// chatID is the destination chat. Opaque: channels, groups and
	// direct chats all work.
	chatID string
	// httpClient is the HTTP httpClient.
	httpClient HTTPClient
}

// TelegramOption is a configuration option for the Telegram sink.
type TelegramOption func(*Telegram)

// WithBaseURL sets the Bot API base URL.
func WithBaseURL(baseURL string) TelegramOption {
	return func(t *Telegram) {
		t.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client for the sink.
func WithHTTPClient(httpClient HTTPClient) TelegramOption {
	return func(t *Telegram) {
		t.httpClient = httpClient
	}
}

// NewTelegram creates a new Telegram sink.
func NewTelegram(token, chatID string, options ...TelegramOption) (*Telegram, error) {
	if token == "" {
		return nil, errors.New("telegram: empty bot token")
	}
	if chatID == "" {
		return nil, errors.New("telegram: empty chat id")
	}
	t := &Telegram{
		baseURL:    telegramBaseURL,
		token:      token,
		chatID:     chatID,
		httpClient: http.DefaultClient,
	}
	for _, option := range options {
		option(t)
	}
	return t, nil
}

func (t *Telegram) SendText(ctx context.Context, text string) error {
	payload, err := json.Marshal(map[string]string{
		"chat_id":    t.chatID,
		"text":       "<pre>" + html.EscapeString(text) + "</pre>",
		"parse_mode": "HTML",
	})
	if err != nil {
		return fmt.Errorf("telegram: encode message: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.method("sendMessage"), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return t.send(req)
}

func (t *Telegram) SendImage(ctx context.Context, caption string, png []byte) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("chat_id", t.chatID); err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	if caption != "" {
		if err := mw.WriteField("caption", caption); err != nil {
			return fmt.Errorf("telegram: %w", err)
		}
	}
	fw, err := mw.CreateFormFile("photo", "rates.png")
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	if _, err := fw.Write(png); err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("telegram: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.method("sendPhoto"), &body)
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return t.send(req)
}

func (t *Telegram) method(name string) string {
	return t.baseURL + "/bot" + t.token + "/" + name
}

func (t *Telegram) send(req *http.Request) error {
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	defer resp.Body.Close()

	var body struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("telegram: decode response (status %d): %w", resp.StatusCode, err)
	}
	if !body.OK {
		return fmt.Errorf("telegram: api error (status %d): %s", resp.StatusCode, body.Description)
	}
	return nil
}
