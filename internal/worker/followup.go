package worker

import (
	"context"

	"github.com/Gunvolt24/order_notifier/internal/domain"
	"github.com/Gunvolt24/order_notifier/pkg/ctxmeta"
)

// processFollowUps — вторые сообщения по отправлениям, у которых подошёл срок.
// Запись удаляется при выключенной рассылке, при успехе и при ошибке отправки.
// Если до отправки дело не дошло (контекст отменён на паузе), запись остаётся в очереди.
func (w *Worker) processFollowUps(ctx context.Context) {
	threshold := w.now().Add(-w.cfg.FollowUpDelay)

	due, err := w.stores.Pending.RecordedAtOrBefore(ctx, threshold)
	if err != nil {
		w.log.Warnf(ctx, "follow-up queue: %v", err)
		return
	}
	if len(due) == 0 {
		return
	}

	cfg := w.settings.Snapshot(ctx)
	w.log.Infof(ctx, "processing %d postings for follow-up message", len(due))

	for _, pn := range due {
		if ctx.Err() != nil {
			return
		}
		pctx := ctxmeta.WithPosting(ctx, pn)

		if !cfg.FollowUpEnabled {
			w.log.Infof(pctx, "%s: follow-up skipped (disabled in settings)", pn)
			w.dropPending(pctx, pn)
			w.emit(pctx, domain.EventFollowUpSkipped, pn, "", nil)
			continue
		}

		if !w.sendFollowUp(pctx, pn, cfg.FollowUpTemplate) {
			w.log.Infof(pctx, "%s: follow-up postponed (%v)", pn, ctx.Err())
			return
		}
		w.dropPending(pctx, pn)
	}
}

// sendFollowUp — false, если попытки отправки не было.
func (w *Worker) sendFollowUp(ctx context.Context, pn, text string) bool {
	ctx, span := w.postingSpan(ctx, "worker.followup", pn)
	defer span.End()

	if err := w.limiter.Wait(ctx); err != nil {
		return false
	}

	chatID, err := w.source.StartChat(ctx, pn)
	if err != nil {
		span.RecordError(err)
		w.log.Errorf(ctx, "%s: failed to send follow-up message (start chat: %v)", pn, err)
		w.emit(ctx, domain.EventFollowUpFailed, pn, "", err)
		return true
	}
	if err := w.source.SendChatMessage(ctx, chatID, text); err != nil {
		span.RecordError(err)
		w.log.Errorf(ctx, "%s: failed to send follow-up message (%v)", pn, err)
		w.emit(ctx, domain.EventFollowUpFailed, pn, chatID, err)
		return true
	}
	w.log.Infof(ctx, "%s: sent follow-up message to chat %s", pn, chatID)
	w.emit(ctx, domain.EventFollowUpSent, pn, chatID, nil)
	return true
}

func (w *Worker) dropPending(ctx context.Context, pn string) {
	if err := w.stores.Pending.Remove(ctx, pn); err != nil {
		w.log.Warnf(ctx, "%s: remove from follow-up queue: %v", pn, err)
	}
}
