package rest_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Gunvolt24/order_notifier/internal/domain"
	"github.com/Gunvolt24/order_notifier/internal/ozon"
	"github.com/Gunvolt24/order_notifier/internal/ports"
	"github.com/Gunvolt24/order_notifier/internal/ports/mocks"
	rest "github.com/Gunvolt24/order_notifier/internal/transport/http"
	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
)

type noopLogger struct{}

func (noopLogger) Infof(context.Context, string, ...any)  {}
func (noopLogger) Warnf(context.Context, string, ...any)  {}
func (noopLogger) Errorf(context.Context, string, ...any) {}

type fixedSettings struct{ s domain.Settings }

func (f fixedSettings) Snapshot(context.Context) domain.Settings { return f.s }

type botStatus int

func (b botStatus) AuthorizedCount() int { return int(b) }

func init() { gin.SetMode(gin.TestMode) }

func serve(r http.Handler, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func newRouter(postings rest.PostingReader, stores map[string]ports.TimestampStore) *gin.Engine {
	settings := fixedSettings{s: domain.Settings{
		Password:        "secret-pass",
		PrimaryTemplate: "hello",
		PrimaryEnabled:  true,
		LogChatIDs:      []int64{1, 2},
	}}
	h := rest.NewHandler(postings, settings, stores, botStatus(3), noopLogger{}, time.Second)
	return rest.NewRouter(h, "")
}

func TestGetPosting_Found(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mocks.NewMockOrderSource(ctrl)

	want := &domain.PostingDetail{PostingNumber: "123-1", Products: []domain.PostingProduct{{Name: "Диск R17", Quantity: 4}}}
	src.EXPECT().GetPosting(gomock.Any(), "123-1").Return(want, nil)

	w := serve(newRouter(src, nil), http.MethodGet, "/postings/123-1")
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d, body=%s", w.Code, w.Body.String())
	}
	var got domain.PostingDetail
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got.PostingNumber != "123-1" || len(got.Products) != 1 || got.Products[0].Quantity != 4 {
		t.Fatalf("unexpected posting: %+v", got)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("X-Request-ID header must be set")
	}
}

func TestGetPosting_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mocks.NewMockOrderSource(ctrl)

	src.EXPECT().GetPosting(gomock.Any(), "missing").
		Return(nil, fmt.Errorf("get posting: %w", &ozon.APIError{Path: "/v3/posting/fbs/get", StatusCode: 404}))

	w := serve(newRouter(src, nil), http.MethodGet, "/postings/missing")
	if w.Code != http.StatusNotFound {
		t.Fatalf("want 404, got %d, body=%s", w.Code, w.Body.String())
	}
}

func TestGetPosting_UpstreamError(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mocks.NewMockOrderSource(ctrl)

	src.EXPECT().GetPosting(gomock.Any(), "boom").Return(nil, errors.New("dial tcp: timeout"))

	w := serve(newRouter(src, nil), http.MethodGet, "/postings/boom")
	if w.Code != http.StatusBadGateway {
		t.Fatalf("want 502, got %d, body=%s", w.Code, w.Body.String())
	}
}

func TestStatus_HidesPassword(t *testing.T) {
	ctrl := gomock.NewController(t)
	sent := mocks.NewMockTimestampStore(ctrl)
	chats := mocks.NewMockTimestampStore(ctrl)
	sent.EXPECT().Len(gomock.Any()).Return(5, nil)
	chats.EXPECT().Len(gomock.Any()).Return(2, nil)

	w := serve(newRouter(nil, map[string]ports.TimestampStore{"sent": sent, "chats": chats}), http.MethodGet, "/status")
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", w.Code)
	}
	var got map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got["primary_enabled"] != true || got["follow_up_enabled"] != false {
		t.Fatalf("unexpected flags: %v", got)
	}
	if got["log_chats"] != float64(2) || got["authorized_chats"] != float64(3) {
		t.Fatalf("unexpected counters: %v", got)
	}
	stores := got["stores"].(map[string]any)
	if stores["sent"] != float64(5) || stores["chats"] != float64(2) {
		t.Fatalf("unexpected stores: %v", stores)
	}
	for _, forbidden := range []string{"secret-pass", "hello"} {
		if strings.Contains(w.Body.String(), forbidden) {
			t.Fatalf("status leaks %q: %s", forbidden, w.Body.String())
		}
	}
}

func TestStatus_StoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	sent := mocks.NewMockTimestampStore(ctrl)
	sent.EXPECT().Len(gomock.Any()).Return(0, errors.New("conn refused"))

	w := serve(newRouter(nil, map[string]ports.TimestampStore{"sent": sent}), http.MethodGet, "/status")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("want 500, got %d", w.Code)
	}
}

func TestListStore_Pagination(t *testing.T) {
	ctrl := gomock.NewController(t)
	pending := mocks.NewMockTimestampStore(ctrl)

	base := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	entries := []domain.CacheEntry{
		{Key: "a", At: base},
		{Key: "b", At: base.Add(time.Hour)},
		{Key: "c", At: base.Add(2 * time.Hour)},
	}
	pending.EXPECT().Entries(gomock.Any()).Return(entries, nil).Times(2)

	r := newRouter(nil, map[string]ports.TimestampStore{"pending": pending})

	w := serve(r, http.MethodGet, "/stores/pending?limit=2&offset=1")
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", w.Code)
	}
	var page struct {
		Total   int                 `json:"total"`
		Limit   int                 `json:"limit"`
		Offset  int                 `json:"offset"`
		Entries []domain.CacheEntry `json:"entries"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if page.Total != 3 || page.Limit != 2 || page.Offset != 1 || len(page.Entries) != 2 || page.Entries[0].Key != "b" {
		t.Fatalf("unexpected page: %+v", page)
	}

	// offset за концом — пустая страница, а не ошибка
	w = serve(r, http.MethodGet, "/stores/pending?offset=10")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"entries":[]`) {
		t.Fatalf("want empty page, got %d %s", w.Code, w.Body.String())
	}
}

func TestListStore_BadPaging(t *testing.T) {
	ctrl := gomock.NewController(t)
	sent := mocks.NewMockTimestampStore(ctrl) // Entries не вызывается

	r := newRouter(nil, map[string]ports.TimestampStore{"sent": sent})
	for _, q := range []string{"limit=foo", "offset=-1"} {
		if w := serve(r, http.MethodGet, "/stores/sent?"+q); w.Code != http.StatusBadRequest {
			t.Fatalf("%s: want 400, got %d", q, w.Code)
		}
	}
}

func TestListStore_Unknown(t *testing.T) {
	w := serve(newRouter(nil, map[string]ports.TimestampStore{}), http.MethodGet, "/stores/nope")
	if w.Code != http.StatusNotFound {
		t.Fatalf("want 404, got %d", w.Code)
	}
}

func TestServiceEndpoints(t *testing.T) {
	r := newRouter(nil, nil)

	if w := serve(r, http.MethodGet, "/ping"); w.Code != http.StatusOK || w.Body.String() != "pong" {
		t.Fatalf("ping: %d %q", w.Code, w.Body.String())
	}
	if w := serve(r, http.MethodGet, "/healthz"); w.Code != http.StatusOK {
		t.Fatalf("healthz: %d", w.Code)
	}
	if w := serve(r, http.MethodGet, "/metrics"); w.Code != http.StatusOK {
		t.Fatalf("metrics: %d", w.Code)
	}
	if w := serve(r, http.MethodGet, "/nope"); w.Code != http.StatusNotFound {
		t.Fatalf("no route: %d", w.Code)
	}
	w := serve(r, http.MethodPost, "/status")
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("want 405, got %d", w.Code)
	}
	if w.Header().Get("Allow") != "GET" {
		t.Fatalf("want Allow: GET, got %q", w.Header().Get("Allow"))
	}
}
