package bot

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/Gunvolt24/order_notifier/internal/settings"
	"github.com/Gunvolt24/order_notifier/internal/telegram"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func msgUpdate(id int64, text string) telegram.Update {
	return telegram.Update{UpdateID: id, Message: &telegram.Message{MessageID: id, Chat: telegram.Chat{ID: chat}, Text: text}}
}

func newPoller(t *testing.T, tr *fakeTransport) (*Poller, *Engine) {
	t.Helper()
	st := settings.Open(context.Background(), filepath.Join(t.TempDir(), "s.json"), "123321", noopLogger{})
	engine := NewEngine(tr, st, noopLogger{}, WithAckTTL(0))
	return NewPoller(tr, engine, noopLogger{}, time.Second, 10*time.Millisecond), engine
}

func TestPollOnce_AdvancesOffset(t *testing.T) {
	tr := newFakeTransport()
	tr.updates = [][]telegram.Update{
		{msgUpdate(5, "/start 123321"), msgUpdate(6, "/ping")},
		{msgUpdate(9, "/ping")},
	}
	p, engine := newPoller(t, tr)
	ctx := context.Background()

	require.NoError(t, p.PollOnce(ctx))
	assert.Equal(t, int64(6), p.Offset())
	require.NoError(t, p.PollOnce(ctx))
	assert.Equal(t, int64(9), p.Offset())

	assert.Equal(t, []int64{1, 7}, tr.offsets)
	assert.True(t, engine.Authorized(chat))
	assert.Equal(t, []string{startOK, "pong", "pong"}, tr.texts())
}

func TestRun_BacksOffOnTransportError(t *testing.T) {
	tr := newFakeTransport()
	tr.pollErrs = []error{errors.New("dial tcp: timeout"), errors.New("502")}
	tr.updates = [][]telegram.Update{{msgUpdate(3, "hi")}}
	p, _ := newPoller(t, tr)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool {
		tr.mu.Lock()
		defer tr.mu.Unlock()
		return len(tr.offsets) == 4
	}, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop")
	}

	tr.mu.Lock()
	defer tr.mu.Unlock()
	// после ошибок offset не меняется
	assert.Equal(t, []int64{1, 1, 1, 4}, tr.offsets)
	assert.Equal(t, helpUnauthorized, tr.sent[0].Text)
}

type panicTransport struct{ *fakeTransport }

func (p panicTransport) SendMessage(context.Context, int64, string, *telegram.InlineKeyboardMarkup) (*telegram.Message, error) {
	panic("boom")
}

func TestPollOnce_RecoversHandlerPanic(t *testing.T) {
	tr := newFakeTransport()
	tr.updates = [][]telegram.Update{{msgUpdate(1, "x"), msgUpdate(2, "y")}}
	pt := panicTransport{tr}
	st := settings.Open(context.Background(), filepath.Join(t.TempDir(), "s.json"), "123321", noopLogger{})
	p := NewPoller(pt, NewEngine(pt, st, noopLogger{}), noopLogger{}, time.Second, time.Millisecond)

	require.NotPanics(t, func() { require.NoError(t, p.PollOnce(context.Background())) })
	assert.Equal(t, int64(2), p.Offset())
}
