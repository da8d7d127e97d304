// Package bot — администрирование через чат: авторизация паролем, панели настроек,
// двухшаговое редактирование, long-poll обновлений и зеркало логов в чаты.
package bot

import (
	"context"
	"time"

	"github.com/Gunvolt24/order_notifier/internal/telegram"
)

// Sender — отправка сообщений (нужна и движку, и зеркалу логов).
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string, markup *telegram.InlineKeyboardMarkup) (*telegram.Message, error)
}

// Transport — клиент Bot API, которым пользуется бот.
type Transport interface {
	Sender
	GetUpdates(ctx context.Context, offset int64, wait time.Duration) ([]telegram.Update, error)
	EditMessageText(ctx context.Context, chatID, messageID int64, text string, markup *telegram.InlineKeyboardMarkup) error
	DeleteMessage(ctx context.Context, chatID, messageID int64) error
	AnswerCallbackQuery(ctx context.Context, callbackID string) error
}

// Проверка, что telegram.Client подходит как транспорт.
var _ Transport = (*telegram.Client)(nil)
