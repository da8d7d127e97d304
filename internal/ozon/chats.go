package ozon

import "context"

// StartChat — создаёт чат по отправлению или возвращает уже существующий.
func (c *Client) StartChat(ctx context.Context, postingNumber string) (string, error) {
	resp, err := post[chatStartResponse](ctx, c, "/v1/chat/start", postingNumberRequest{PostingNumber: postingNumber})
	if err != nil {
		return "", err
	}
	id := resp.chatID()
	if id == "" {
		return "", ErrChatIDMissing
	}
	return id, nil
}

func (c *Client) SendChatMessage(ctx context.Context, chatID, text string) error {
	_, err := post[struct{}](ctx, c, "/v1/chat/send/message", chatSendRequest{ChatID: chatID, Text: text})
	return err
}
