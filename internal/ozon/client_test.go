package ozon

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Gunvolt24/order_notifier/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	path    string
	headers http.Header
	body    map[string]any
}

func newTestServer(t *testing.T, handler func(path string) (int, string)) (*Client, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)
		calls = append(calls, recorded{path: r.URL.Path, headers: r.Header.Clone(), body: body})

		status, resp := handler(r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, resp)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(Options{ClientID: "cid", APIKey: "key", BaseURL: srv.URL + "/", Timeout: 5 * time.Second})
	return c, &calls
}

func TestListPostings_RequestShapeAndDecode(t *testing.T) {
	c, calls := newTestServer(t, func(string) (int, string) {
		return http.StatusOK, `{"result":{"postings":[{"posting_number":"111-1","status":"awaiting_packaging","in_process_at":"2025-03-01T10:00:00Z"}],"has_next":false}}`
	})

	since := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	filter := domain.PostingFilter{
		Status: domain.PostingStatusAwaitingPackaging,
		Window: domain.WindowEndingAt(since.Add(3*time.Hour), 3*time.Hour),
	}
	got, err := c.ListPostings(context.Background(), filter, 500, 100)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "111-1", got[0].PostingNumber)

	require.Len(t, *calls, 1)
	call := (*calls)[0]
	assert.Equal(t, "/v3/posting/fbs/list", call.path)
	assert.Equal(t, "cid", call.headers.Get("Client-Id"))
	assert.Equal(t, "key", call.headers.Get("Api-Key"))
	assert.Equal(t, "ASC", call.body["dir"])
	assert.EqualValues(t, 100, call.body["limit"], "limit ограничен сотней")
	assert.EqualValues(t, 100, call.body["offset"])

	f := call.body["filter"].(map[string]any)
	assert.Equal(t, "2025-03-01T09:00:00.000Z", f["since"])
	assert.Equal(t, "2025-03-01T12:00:00.000Z", f["to"])
	assert.Equal(t, "awaiting_packaging", f["status"])
	assert.Equal(t, false, call.body["with"].(map[string]any)["translit"])
}

func TestListPostings_EmptyResult(t *testing.T) {
	c, _ := newTestServer(t, func(string) (int, string) { return http.StatusOK, `{}` })
	got, err := c.ListPostings(context.Background(), domain.PostingFilter{}, 100, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStartChat_ResolvesChatID(t *testing.T) {
	cases := []struct {
		name    string
		resp    string
		want    string
		wantErr error
	}{
		{"nested", `{"result":{"chat_id":"c-1"}}`, "c-1", nil},
		{"top level", `{"chat_id":"c-2"}`, "c-2", nil},
		{"nested wins", `{"result":{"chat_id":"c-3"},"chat_id":"c-4"}`, "c-3", nil},
		{"missing", `{"result":{}}`, "", ErrChatIDMissing},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			c, calls := newTestServer(t, func(string) (int, string) { return http.StatusOK, tc.resp })
			got, err := c.StartChat(context.Background(), "111-1")
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, "/v1/chat/start", (*calls)[0].path)
			assert.Equal(t, "111-1", (*calls)[0].body["posting_number"])
		})
	}
}

func TestSendChatMessage_Non2xxIsAPIError(t *testing.T) {
	c, calls := newTestServer(t, func(string) (int, string) {
		return http.StatusForbidden, `{"code":7,"message":"chat is closed"}`
	})

	err := c.SendChatMessage(context.Background(), "c-1", "hello")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, 7, apiErr.Code)
	assert.Contains(t, apiErr.Error(), "chat is closed")

	assert.Equal(t, "/v1/chat/send/message", (*calls)[0].path)
	assert.Equal(t, "c-1", (*calls)[0].body["chat_id"])
	assert.Equal(t, "hello", (*calls)[0].body["text"])
}

func TestSendChatMessage_EmptyBodyOK(t *testing.T) {
	c, _ := newTestServer(t, func(string) (int, string) { return http.StatusOK, "" })
	require.NoError(t, c.SendChatMessage(context.Background(), "c-1", "hi"))
}

func TestGetPosting(t *testing.T) {
	c, _ := newTestServer(t, func(string) (int, string) {
		return http.StatusOK, `{"result":{"posting_number":"111-1","products":[{"name":"Диск R17","quantity":4}]}}`
	})
	got, err := c.GetPosting(context.Background(), "111-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []domain.PostingProduct{{Name: "Диск R17", Quantity: 4}}, got.Products)
}
