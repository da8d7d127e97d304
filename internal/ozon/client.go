// Package ozon — клиент Seller API маркетплейса: отправления FBS и чаты с покупателями.
package ozon

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Gunvolt24/order_notifier/internal/ports"
)

// Проверка, что Client удовлетворяет интерфейсу ports.OrderSource.
var _ ports.OrderSource = (*Client)(nil)

const (
	DefaultBaseURL   = "https://api-seller.ozon.ru"
	maxPageLimit     = 100
	maxResponseBytes = 10 << 20
)

// ErrChatIDMissing — /v1/chat/start ответил без chat_id.
var ErrChatIDMissing = errors.New("ozon: chat_id not found in /v1/chat/start")

// APIError — ответ API с кодом вне 2xx.
type APIError struct {
	Path       string `json:"-"`
	StatusCode int    `json:"-"`
	Code       int    `json:"code"`
	Message    string `json:"message"`
	Body       string `json:"-"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("ozon: %s: http %d: %s", e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("ozon: %s: http %d: %s", e.Path, e.StatusCode, e.Body)
}

// Options — параметры клиента.
type Options struct {
	ClientID   string
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client — HTTP-клиент Seller API. Все методы — POST с заголовками Client-Id и Api-Key.
type Client struct {
	clientID string
	apiKey   string
	baseURL  string
	http     *http.Client
}

func NewClient(opts Options) *Client {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{
		clientID: opts.ClientID,
		apiKey:   opts.APIKey,
		baseURL:  base,
		http:     hc,
	}
}

// post — JSON POST на path с декодированием ответа в T.
func post[T any](ctx context.Context, c *Client, path string, payload any) (*T, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("ozon: marshal %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("ozon: create %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Client-Id", c.clientID)
	req.Header.Set("Api-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ozon: %s request failed: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("ozon: read %s response: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Path: path, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
		_ = json.Unmarshal(body, apiErr)
		return nil, apiErr
	}

	var out T
	if len(bytes.TrimSpace(body)) == 0 {
		return &out, nil
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("ozon: decode %s response: %w", path, err)
	}
	return &out, nil
}
