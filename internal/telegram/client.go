// Package telegram — тонкий клиент Telegram Bot API для административного бота.
package telegram

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
)

const (
	DefaultAPIURL    = "https://api.telegram.org"
	maxAttempts      = 3
	initialBackoff   = time.Second
	maxResponseBytes = 10 << 20
)

// Client — HTTP-клиент Bot API.
type Client struct {
	token   string
	baseURL string
	http    *http.Client
}

// NewClient — timeout должен быть больше таймаута long-poll.
func NewClient(token, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		token:   token,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// do — JSON POST в метод Bot API. 429 повторяется с retry_after (не более трёх попыток).
func do[T any](ctx context.Context, c *Client, method string, payload any) (*T, error) {
	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("telegram: marshal %s request: %w", method, err)
	}

	backoff := initialBackoff
	for attempt := range maxAttempts {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("telegram: create %s request: %w", method, err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, c.requestFailed(method, err)
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		_ = resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("telegram: read %s response: %w", method, err)
		}

		if resp.StatusCode == http.StatusTooManyRequests && attempt < maxAttempts-1 {
			var apiResp APIResponse[json.RawMessage]
			if err := json.Unmarshal(body, &apiResp); err == nil && apiResp.Parameters != nil && apiResp.Parameters.RetryAfter > 0 {
				backoff = time.Duration(apiResp.Parameters.RetryAfter) * time.Second
			}
			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
			backoff *= 2
			continue
		}

		var apiResp APIResponse[T]
		if err := json.Unmarshal(body, &apiResp); err != nil {
			return nil, fmt.Errorf("telegram: decode %s response (http %d): %w", method, resp.StatusCode, err)
		}
		if !apiResp.OK {
			apiErr := &APIError{Code: apiResp.ErrorCode, Description: apiResp.Description}
			if apiResp.Parameters != nil {
				apiErr.RetryAfter = apiResp.Parameters.RetryAfter
			}
			return nil, apiErr
		}
		return &apiResp.Result, nil
	}

	return nil, fmt.Errorf("telegram: %s: max retries exceeded", method)
}

// requestFailed — ошибка транспорта без токена в тексте (URL содержит токен, а логи уходят в чаты).
func (c *Client) requestFailed(method string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("telegram: %s request failed: %w", method, err)
	}
	msg := err.Error()
	if c.token != "" {
		msg = strings.ReplaceAll(msg, c.token, "<token>")
	}
	return fmt.Errorf("telegram: %s request failed: %s", method, msg)
}

type getUpdatesRequest struct {
	Offset         int64    `json:"offset,omitempty"`
	Timeout        int      `json:"timeout"`
	AllowedUpdates []string `json:"allowed_updates,omitempty"`
}

type sendMessageRequest struct {
	ChatID      int64                 `json:"chat_id"`
	Text        string                `json:"text"`
	ReplyMarkup *InlineKeyboardMarkup `json:"reply_markup,omitempty"`
}

type editMessageTextRequest struct {
	ChatID      int64                 `json:"chat_id"`
	MessageID   int64                 `json:"message_id"`
	Text        string                `json:"text"`
	ReplyMarkup *InlineKeyboardMarkup `json:"reply_markup,omitempty"`
}

type deleteMessageRequest struct {
	ChatID    int64 `json:"chat_id"`
	MessageID int64 `json:"message_id"`
}

type answerCallbackQueryRequest struct {
	CallbackQueryID string `json:"callback_query_id"`
	Text            string `json:"text,omitempty"`
}

// GetUpdates — long-poll: ждёт до wait обновлений с update_id >= offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64, wait time.Duration) ([]Update, error) {
	res, err := do[[]Update](ctx, c, "getUpdates", getUpdatesRequest{
		Offset:         offset,
		Timeout:        int(wait / time.Second),
		AllowedUpdates: []string{"message", "callback_query"},
	})
	if err != nil {
		return nil, err
	}
	return *res, nil
}

// SendMessage — markup может быть nil.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, markup *InlineKeyboardMarkup) (*Message, error) {
	return do[Message](ctx, c, "sendMessage", sendMessageRequest{ChatID: chatID, Text: text, ReplyMarkup: markup})
}

func (c *Client) EditMessageText(ctx context.Context, chatID, messageID int64, text string, markup *InlineKeyboardMarkup) error {
	_, err := do[json.RawMessage](ctx, c, "editMessageText", editMessageTextRequest{
		ChatID: chatID, MessageID: messageID, Text: text, ReplyMarkup: markup,
	})
	return err
}

func (c *Client) DeleteMessage(ctx context.Context, chatID, messageID int64) error {
	_, err := do[bool](ctx, c, "deleteMessage", deleteMessageRequest{ChatID: chatID, MessageID: messageID})
	return err
}

func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackID string) error {
	_, err := do[bool](ctx, c, "answerCallbackQuery", answerCallbackQueryRequest{CallbackQueryID: callbackID})
	return err
}
