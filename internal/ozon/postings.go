package ozon

import (
	"context"
	"time"

	"github.com/Gunvolt24/order_notifier/internal/domain"
)

// timeLayout — ISO-8601 с миллисекундами, как ждёт /v3/posting/fbs/list.
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// ListPostings — одна страница отправлений по статусу в окне времени (limit не больше 100).
func (c *Client) ListPostings(ctx context.Context, filter domain.PostingFilter, limit, offset int) ([]domain.Posting, error) {
	if limit <= 0 || limit > maxPageLimit {
		limit = maxPageLimit
	}
	req := fbsListRequest{
		Dir: "ASC",
		Filter: fbsListFilter{
			Since:  formatTime(filter.Window.Since),
			To:     formatTime(filter.Window.To),
			Status: filter.Status,
		},
		Limit:  limit,
		Offset: offset,
	}

	resp, err := post[fbsListResponse](ctx, c, "/v3/posting/fbs/list", req)
	if err != nil {
		return nil, err
	}
	if resp.Result == nil {
		return nil, nil
	}
	return resp.Result.Postings, nil
}

// GetPosting — полная информация об отправлении; nil, если API вернул пустой result.
func (c *Client) GetPosting(ctx context.Context, postingNumber string) (*domain.PostingDetail, error) {
	resp, err := post[fbsGetResponse](ctx, c, "/v3/posting/fbs/get", postingNumberRequest{PostingNumber: postingNumber})
	if err != nil {
		return nil, err
	}
	return resp.Result, nil
}

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }
