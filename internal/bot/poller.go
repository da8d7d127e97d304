package bot

import (
	"context"
	"time"

	"github.com/Gunvolt24/order_notifier/internal/ports"
	"github.com/Gunvolt24/order_notifier/internal/telegram"
	"github.com/Gunvolt24/order_notifier/pkg/metrics"
)

// Проверка, что Poller удовлетворяет интерфейсу ports.Runner.
var _ ports.Runner = (*Poller)(nil)

// Poller — long-poll цикл: забирает обновления и по одному отдаёт их в Engine.
type Poller struct {
	tr      Transport
	engine  *Engine
	log     ports.Logger
	wait    time.Duration
	backoff time.Duration

	offset int64 // последний увиденный update_id, только в памяти
}

// NewPoller — wait: серверное ожидание getUpdates; backoff: пауза после ошибки транспорта.
func NewPoller(tr Transport, engine *Engine, log ports.Logger, wait, backoff time.Duration) *Poller {
	if wait <= 0 {
		wait = 30 * time.Second
	}
	if backoff <= 0 {
		backoff = 5 * time.Second
	}
	return &Poller{tr: tr, engine: engine, log: log, wait: wait, backoff: backoff}
}

// Offset — последний обработанный update_id.
func (p *Poller) Offset() int64 { return p.offset }

// Run — до отмены контекста. Ошибки транспорта логируются, после них пауза backoff.
func (p *Poller) Run(ctx context.Context) error {
	p.log.Infof(ctx, "bot poller started")
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.PollOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			metrics.BotPollErrors.Inc()
			p.log.Errorf(ctx, "bot poll error: %v", err)
			if !sleepCtx(ctx, p.backoff) {
				return ctx.Err()
			}
		}
	}
}

// PollOnce — один запрос getUpdates и обработка всех полученных обновлений.
func (p *Poller) PollOnce(ctx context.Context) error {
	updates, err := p.tr.GetUpdates(ctx, p.offset+1, p.wait)
	if err != nil {
		return err
	}
	for _, u := range updates {
		if u.UpdateID > p.offset {
			p.offset = u.UpdateID
		}
		p.safeHandle(ctx, u)
	}
	return nil
}

// safeHandle — паника в обработчике не должна останавливать цикл.
func (p *Poller) safeHandle(ctx context.Context, u telegram.Update) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Errorf(ctx, "bot: panic while handling update %d: %v", u.UpdateID, r)
		}
	}()
	p.engine.HandleUpdate(ctx, u)
}

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
