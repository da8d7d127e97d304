package ports

import (
	"context"

	"github.com/Gunvolt24/order_notifier/internal/domain"
)

// OrderSource — клиент маркетплейса: отправления и чаты с покупателями.
type OrderSource interface {
	// ListPostings — одна страница отправлений по фильтру; пустая страница означает конец выборки.
	ListPostings(ctx context.Context, filter domain.PostingFilter, limit, offset int) ([]domain.Posting, error)

	// StartChat — открыть (или получить существующий) чат по отправлению.
	StartChat(ctx context.Context, postingNumber string) (string, error)

	// GetPosting — полная информация об отправлении.
	GetPosting(ctx context.Context, postingNumber string) (*domain.PostingDetail, error)

	// SendChatMessage — отправить текст в чат.
	SendChatMessage(ctx context.Context, chatID, text string) error
}
