package ports

import (
	"context"

	"github.com/Gunvolt24/order_notifier/internal/domain"
)

// EventPublisher — публикация событий рассылки.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.NotificationEvent) error
	Close() error
}
