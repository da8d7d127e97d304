package bot

import (
	"context"
	"errors"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/Gunvolt24/order_notifier/internal/telegram"
)

type noopLogger struct{}

func (noopLogger) Infof(context.Context, string, ...any)  {}
func (noopLogger) Warnf(context.Context, string, ...any)  {}
func (noopLogger) Errorf(context.Context, string, ...any) {}

type sent struct {
	ChatID int64
	Text   string
	Markup *telegram.InlineKeyboardMarkup
}

type edited struct {
	ChatID    int64
	MessageID int64
	Text      string
}

// fakeTransport — запоминает все вызовы Bot API.
type fakeTransport struct {
	mu       sync.Mutex
	nextID   int64
	sent     []sent
	edited   []edited
	deleted  []int64
	answered []string

	editErr  error
	sendErr  map[int64]error
	updates  [][]telegram.Update
	offsets  []int64
	pollErrs []error
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{nextID: 100, sendErr: map[int64]error{}}
}

func (f *fakeTransport) SendMessage(_ context.Context, chatID int64, text string, markup *telegram.InlineKeyboardMarkup) (*telegram.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.sendErr[chatID]; err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(text) > maxLineRunes {
		return nil, &telegram.APIError{Code: 400, Description: "Bad Request: message is too long"}
	}
	f.nextID++
	f.sent = append(f.sent, sent{ChatID: chatID, Text: text, Markup: markup})
	return &telegram.Message{MessageID: f.nextID, Chat: telegram.Chat{ID: chatID}, Text: text}, nil
}

func (f *fakeTransport) EditMessageText(_ context.Context, chatID, messageID int64, text string, _ *telegram.InlineKeyboardMarkup) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.editErr != nil {
		return f.editErr
	}
	f.edited = append(f.edited, edited{ChatID: chatID, MessageID: messageID, Text: text})
	return nil
}

func (f *fakeTransport) DeleteMessage(_ context.Context, _ int64, messageID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, messageID)
	return errors.New("message can't be deleted")
}

func (f *fakeTransport) AnswerCallbackQuery(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answered = append(f.answered, id)
	return nil
}

// GetUpdates — отдаёт заготовленные ошибки, затем пачки; когда всё кончилось, ждёт отмены.
func (f *fakeTransport) GetUpdates(ctx context.Context, offset int64, _ time.Duration) ([]telegram.Update, error) {
	f.mu.Lock()
	f.offsets = append(f.offsets, offset)
	if len(f.pollErrs) > 0 {
		err := f.pollErrs[0]
		f.pollErrs = f.pollErrs[1:]
		f.mu.Unlock()
		return nil, err
	}
	if len(f.updates) > 0 {
		batch := f.updates[0]
		f.updates = f.updates[1:]
		f.mu.Unlock()
		return batch, nil
	}
	f.mu.Unlock()
	<-ctx.Done()
	return nil, ctx.Err()
}

func (f *fakeTransport) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.sent))
	for _, s := range f.sent {
		out = append(out, s.Text)
	}
	return out
}

func (f *fakeTransport) last() sent {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return sent{}
	}
	return f.sent[len(f.sent)-1]
}

func (f *fakeTransport) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent, f.edited, f.deleted, f.answered = nil, nil, nil, nil
}
