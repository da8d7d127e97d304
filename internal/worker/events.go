package worker

import (
	"context"

	"github.com/Gunvolt24/order_notifier/internal/domain"
	"github.com/Gunvolt24/order_notifier/internal/ports"
	"github.com/Gunvolt24/order_notifier/pkg/metrics"
)

// outcomes — метки метрики Notifications для каждого вида события.
var outcomes = map[domain.EventKind][2]string{
	domain.EventPrimarySent:       {"primary", "sent"},
	domain.EventPrimaryFailed:     {"primary", "failed"},
	domain.EventPrimaryDryRun:     {"primary", "dry_run"},
	domain.EventPrimaryChatReused: {"primary", "chat_reused"},
	domain.EventFollowUpSent:      {"followup", "sent"},
	domain.EventFollowUpFailed:    {"followup", "failed"},
	domain.EventFollowUpSkipped:   {"followup", "skipped"},
}

// emit — метрика и событие для внешних потребителей. Ошибка публикации только логируется.
func (w *Worker) emit(ctx context.Context, kind domain.EventKind, pn, chatID string, cause error) {
	if l, ok := outcomes[kind]; ok {
		metrics.Notifications.WithLabelValues(l[0], l[1]).Inc()
	}

	ev := domain.NotificationEvent{Kind: kind, PostingNumber: pn, ChatID: chatID, At: w.now().UTC()}
	if cause != nil {
		ev.Error = cause.Error()
	}
	if err := w.events.Publish(ctx, ev); err != nil {
		w.log.Warnf(ctx, "publish %s event: %v", kind, err)
	}
}

// mark — вставка в хранилище с моментом «сейчас»; ошибка сохранения не фатальна.
func (w *Worker) mark(ctx context.Context, store ports.TimestampStore, name, key string) {
	if err := store.Insert(ctx, key, w.now()); err != nil {
		w.log.Warnf(ctx, "%s store insert %s: %v", name, key, err)
	}
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, domain.NotificationEvent) error { return nil }
func (noopPublisher) Close() error                                          { return nil }

