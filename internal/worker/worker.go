// Package worker — цикл обработки заказов: очистка кешей, вторые сообщения, стартовые сообщения.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/Gunvolt24/order_notifier/internal/domain"
	"github.com/Gunvolt24/order_notifier/internal/ports"
	"github.com/Gunvolt24/order_notifier/pkg/metrics"
	"github.com/Gunvolt24/order_notifier/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

// Проверка, что Worker удовлетворяет интерфейсу ports.Runner.
var _ ports.Runner = (*Worker)(nil)

// Config — параметры цикла.
type Config struct {
	Interval      time.Duration // пауза между итерациями
	Window        time.Duration // ширина окна поиска отправлений
	FollowUpDelay time.Duration // через сколько после стартового шлётся второе
	Throttle      time.Duration // пауза между обращениями к API по разным отправлениям

	SentRetention    time.Duration
	PendingRetention time.Duration
	ChatRetention    time.Duration

	Status       string
	PageLimit    int
	DeepLinkBase string
}

// Stores — три хранилища «ключ → время», которыми владеет только Worker.
type Stores struct {
	Sent    ports.TimestampStore // отправления, по которым стартовое уже отправлено или пропущено
	Pending ports.TimestampStore // отправления, ждущие второго сообщения
	Chats   ports.TimestampStore // чаты, куда недавно уже писали
}

// Worker — планировщик рассылки.
type Worker struct {
	source   ports.OrderSource
	stores   Stores
	settings ports.SettingsReader
	events   ports.EventPublisher
	log      ports.Logger
	cfg      Config

	limiter *rate.Limiter
	now     func() time.Time
	tracer  trace.Tracer
}

// Option — настройка Worker.
type Option func(*Worker)

// WithClock — источник текущего времени (для тестов).
func WithClock(now func() time.Time) Option {
	return func(w *Worker) { w.now = now }
}

// New — конструктор. events может быть nil.
func New(source ports.OrderSource, stores Stores, settings ports.SettingsReader, events ports.EventPublisher, log ports.Logger, cfg Config, opts ...Option) *Worker {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.Window <= 0 {
		cfg.Window = 3 * time.Hour
	}
	if cfg.FollowUpDelay <= 0 {
		cfg.FollowUpDelay = 12 * time.Hour
	}
	if cfg.Status == "" {
		cfg.Status = domain.PostingStatusAwaitingPackaging
	}
	if cfg.PageLimit <= 0 || cfg.PageLimit > 100 {
		cfg.PageLimit = 100
	}
	if events == nil {
		events = noopPublisher{}
	}

	limit := rate.Inf
	if cfg.Throttle > 0 {
		limit = rate.Every(cfg.Throttle)
	}

	w := &Worker{
		source:   source,
		stores:   stores,
		settings: settings,
		events:   events,
		log:      log,
		cfg:      cfg,
		limiter:  rate.NewLimiter(limit, 1),
		now:      time.Now,
		tracer:   telemetry.Tracer(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run — бесконечный цикл до отмены контекста. Ошибки итерации логируются и не прерывают цикл.
func (w *Worker) Run(ctx context.Context) error {
	w.log.Infof(ctx, "order worker started interval=%s window=%s follow_up_delay=%s", w.cfg.Interval, w.cfg.Window, w.cfg.FollowUpDelay)

	for {
		if err := w.safeRunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.log.Errorf(ctx, "cycle error: %v", err)
		}
		if !sleepCtx(ctx, w.cfg.Interval) {
			w.log.Infof(context.Background(), "order worker stopped")
			return ctx.Err()
		}
	}
}

// safeRunOnce — итерация с перехватом паники.
func (w *Worker) safeRunOnce(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			metrics.WorkerIterations.WithLabelValues("panic").Inc()
			err = fmt.Errorf("iteration panic: %v", r)
		}
	}()
	return w.RunOnce(ctx)
}

// RunOnce — одна итерация: очистка, вторые сообщения, стартовые сообщения.
func (w *Worker) RunOnce(ctx context.Context) error {
	ctx, span := w.tracer.Start(ctx, "worker.iteration")
	defer span.End()

	w.prune(ctx)
	w.processFollowUps(ctx)

	if err := w.processNewPostings(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		metrics.WorkerIterations.WithLabelValues("error").Inc()
		return err
	}
	metrics.WorkerIterations.WithLabelValues("ok").Inc()
	return nil
}

// prune — удаляет записи старше горизонта хранения каждого хранилища.
func (w *Worker) prune(ctx context.Context) {
	w.evict(ctx, "sent", w.stores.Sent, w.cfg.SentRetention)
	w.evict(ctx, "pending", w.stores.Pending, w.cfg.PendingRetention)
	w.evict(ctx, "chats", w.stores.Chats, w.cfg.ChatRetention)
}

func (w *Worker) evict(ctx context.Context, name string, store ports.TimestampStore, age time.Duration) {
	if age <= 0 {
		return
	}
	n, err := store.EvictOlderThan(ctx, age)
	if err != nil {
		w.log.Warnf(ctx, "evict %s: %v", name, err)
	}
	if n > 0 {
		w.log.Infof(ctx, "evicted %d expired entries from %s", n, name)
	}
}

// sleepCtx ждёт d или останавливается по контексту.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// PrimaryMessage — текст стартового сообщения: шаблон и ссылка на отправление.
func PrimaryMessage(template, deepLinkBase, postingNumber string) string {
	return template + "\n\n" + deepLinkBase + postingNumber
}

func (w *Worker) postingSpan(ctx context.Context, name, postingNumber string) (context.Context, trace.Span) {
	return w.tracer.Start(ctx, name, trace.WithAttributes(attribute.String("posting_number", postingNumber)))
}
