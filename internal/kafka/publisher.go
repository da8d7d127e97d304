package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/Gunvolt24/order_notifier/internal/domain"
	"github.com/Gunvolt24/order_notifier/internal/ports"
	"github.com/Gunvolt24/order_notifier/pkg/metrics"
	"github.com/segmentio/kafka-go"
)

// Проверка, что Publisher удовлетворяет интерфейсу ports.EventPublisher.
var _ ports.EventPublisher = (*Publisher)(nil)

// writer — минимальный контракт над kafka.Writer, чтобы подменять его в тестах.
type writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher — события рассылки в топик. Ключ сообщения — номер отправления,
// так все события одного отправления попадают в одну партицию.
type Publisher struct {
	writer    writer
	topic     string
	timeout   time.Duration
	closeOnce sync.Once
}

func NewPublisher(cfg *PublisherConfig) *Publisher {
	return &Publisher{writer: cfg.newWriter(), topic: cfg.Topic, timeout: cfg.writeTimeout()}
}

// Publish — синхронная запись одного события.
func (p *Publisher) Publish(ctx context.Context, event domain.NotificationEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(event.PostingNumber),
		Value: value,
		Time:  event.At,
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(event.Kind)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		metrics.EventsPublished.WithLabelValues("error").Inc()
		return fmt.Errorf("write to %s: %w", p.topic, err)
	}
	metrics.EventsPublished.WithLabelValues("ok").Inc()
	return nil
}

// Close — закрывает writer. Вызывается при остановке приложения.
func (p *Publisher) Close() (retErr error) {
	p.closeOnce.Do(func() {
		retErr = p.writer.Close()
	})
	return retErr
}

// Noop — публикатор для запуска без брокера.
type Noop struct{}

var _ ports.EventPublisher = Noop{}

func (Noop) Publish(context.Context, domain.NotificationEvent) error { return nil }
func (Noop) Close() error                                          { return nil }
