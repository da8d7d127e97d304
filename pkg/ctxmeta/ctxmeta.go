// Пакет ctxmeta — нейтральный слой для работы с метаданными,
// которые прокидываются через context.Context (request_id, отправление, чат бота).
// Идея: HTTP-слой, цикл рассылки, бот и логгер зависят от небольшого общего пакета, но не друг от друга.
package ctxmeta

import (
	"context"
	"strconv"
)

type ctxKey string

const (
	// Ключи контекста (неэкспортируемые типы — чтобы избежать коллизий).
	KeyRequestID ctxKey = "request_id"
	KeyPosting   ctxKey = "posting"
	KeyBotChat   ctxKey = "bot_chat"
)

// WithRequestID кладёт request_id в контекст (если пусто — ничего не делает).
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return withString(ctx, KeyRequestID, requestID)
}

// RequestIDFromContext достаёт request_id из контекста.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, KeyRequestID)
}

// WithPosting кладёт номер отправления, которое сейчас обрабатывается.
func WithPosting(ctx context.Context, postingNumber string) context.Context {
	return withString(ctx, KeyPosting, postingNumber)
}

// PostingFromContext достаёт номер отправления.
func PostingFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, KeyPosting)
}

// WithBotChat кладёт id чата администратора, чьё обновление обрабатывается.
func WithBotChat(ctx context.Context, chatID int64) context.Context {
	if chatID == 0 {
		return ctx
	}
	return withString(ctx, KeyBotChat, strconv.FormatInt(chatID, 10))
}

// BotChatFromContext достаёт id чата администратора (строкой, для логов).
func BotChatFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, KeyBotChat)
}

func withString(ctx context.Context, key ctxKey, value string) context.Context {
	if ctx == nil || value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func stringFrom(ctx context.Context, key ctxKey) (string, bool) {
	if ctx == nil {
		return "", false
	}
	if v, ok := ctx.Value(key).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
