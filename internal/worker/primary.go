package worker

import (
	"context"
	"fmt"

	"github.com/Gunvolt24/order_notifier/internal/domain"
	"github.com/Gunvolt24/order_notifier/pkg/ctxmeta"
	"github.com/Gunvolt24/order_notifier/pkg/metrics"
	"github.com/Gunvolt24/order_notifier/pkg/validate"
)

// processNewPostings — стартовые сообщения по новым отправлениям в окне.
func (w *Worker) processNewPostings(ctx context.Context) error {
	postings, err := w.fetchAll(ctx)
	if err != nil {
		return fmt.Errorf("fetch postings: %w", err)
	}
	if len(postings) == 0 {
		w.log.Infof(ctx, "no new postings")
		return nil
	}
	w.log.Infof(ctx, "found %d postings in %s", len(postings), w.cfg.Status)

	for _, p := range postings {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := validate.Posting(p); err != nil {
			w.log.Warnf(ctx, "skip posting: %v", err)
			continue
		}
		w.processPosting(ctxmeta.WithPosting(ctx, p.PostingNumber), p.PostingNumber)
	}
	return nil
}

// fetchAll — все страницы окна, пока API не вернёт пустую страницу.
func (w *Worker) fetchAll(ctx context.Context) ([]domain.Posting, error) {
	filter := domain.PostingFilter{
		Status: w.cfg.Status,
		Window: domain.WindowEndingAt(w.now(), w.cfg.Window),
	}

	var all []domain.Posting
	offset := 0
	for {
		page, err := w.source.ListPostings(ctx, filter, w.cfg.PageLimit, offset)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			return all, nil
		}
		metrics.PostingsFetched.Add(float64(len(page)))
		all = append(all, page...)
		offset += len(page)
	}
}

// processPosting — одно отправление. Неудачная отправка оставляет его неотмеченным
// для повтора на следующей итерации.
func (w *Worker) processPosting(ctx context.Context, pn string) {
	sent, err := w.stores.Sent.Contains(ctx, pn)
	if err != nil {
		w.log.Warnf(ctx, "%s: check sent store: %v (skipped this cycle)", pn, err)
		return
	}
	if sent {
		return
	}

	ctx, span := w.postingSpan(ctx, "worker.primary", pn)
	defer span.End()

	if err := w.limiter.Wait(ctx); err != nil {
		return
	}

	chatID, err := w.source.StartChat(ctx, pn)
	if err != nil {
		span.RecordError(err)
		w.log.Errorf(ctx, "%s: failed to process posting (%v)", pn, err)
		w.emit(ctx, domain.EventPrimaryFailed, pn, "", err)
		return
	}

	cfg := w.settings.Snapshot(ctx)

	if !cfg.PrimaryEnabled {
		w.log.Infof(ctx, "%s: dry run, sending disabled in settings", pn)
		w.mark(ctx, w.stores.Sent, "sent", pn)
		w.dropPending(ctx, pn)
		w.emit(ctx, domain.EventPrimaryDryRun, pn, chatID, nil)
		return
	}

	recent, err := w.stores.Chats.Contains(ctx, chatID)
	if err != nil {
		w.log.Warnf(ctx, "%s: check chat store: %v (skipped this cycle)", pn, err)
		return
	}
	if recent {
		w.log.Infof(ctx, "%s: chat %s already received a message recently", pn, chatID)
		w.mark(ctx, w.stores.Sent, "sent", pn)
		w.emit(ctx, domain.EventPrimaryChatReused, pn, chatID, nil)
		return
	}

	text := PrimaryMessage(cfg.PrimaryTemplate, w.cfg.DeepLinkBase, pn)
	if err := w.source.SendChatMessage(ctx, chatID, text); err != nil {
		span.RecordError(err)
		w.log.Errorf(ctx, "%s: failed to send initial message (%v)", pn, err)
		w.emit(ctx, domain.EventPrimaryFailed, pn, chatID, err)
		return
	}
	w.log.Infof(ctx, "%s: sent initial message to chat %s", pn, chatID)

	w.mark(ctx, w.stores.Sent, "sent", pn)
	w.mark(ctx, w.stores.Chats, "chats", chatID)
	w.mark(ctx, w.stores.Pending, "pending", pn)
	w.emit(ctx, domain.EventPrimarySent, pn, chatID, nil)
}
