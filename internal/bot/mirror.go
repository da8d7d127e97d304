package bot

import (
	"context"
	"unicode/utf8"

	"github.com/Gunvolt24/order_notifier/internal/ports"
	"github.com/Gunvolt24/order_notifier/pkg/logger"
	"github.com/Gunvolt24/order_notifier/pkg/metrics"
)

var (
	_ logger.Sink  = (*LogMirror)(nil)
	_ ports.Runner = (*LogMirror)(nil)
)

// LogChats — источник множества чатов, подписанных на логи.
type LogChats interface {
	LogChatIDs(ctx context.Context) []int64
}

// maxLineRunes — лимит длины сообщения в Bot API.
const maxLineRunes = 4096

// LogMirror — рассылка строк лога в подписанные чаты.
// Mirror не блокируется: при переполнении очереди строка отбрасывается.
// Доставкой занимается одна горутина (Run); множество чатов читается
// заново для каждой строки, ошибка одного получателя не мешает остальным.
type LogMirror struct {
	sender Sender
	chats  LogChats
	log    ports.Logger // без зеркала, иначе ошибки доставки уйдут по кругу
	queue  chan string
}

func NewLogMirror(sender Sender, chats LogChats, log ports.Logger, size int) *LogMirror {
	if size < 1 {
		size = 1
	}
	return &LogMirror{sender: sender, chats: chats, log: log, queue: make(chan string, size)}
}

// Mirror — поставить строку в очередь.
func (m *LogMirror) Mirror(line string) {
	select {
	case m.queue <- line:
	default:
		metrics.MirrorDropped.Inc()
	}
}

// Run — доставка до отмены контекста.
func (m *LogMirror) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line := <-m.queue:
			m.deliver(ctx, line)
		}
	}
}

func (m *LogMirror) deliver(ctx context.Context, line string) {
	chats := m.chats.LogChatIDs(ctx)
	if len(chats) == 0 {
		return
	}
	if utf8.RuneCountInString(line) > maxLineRunes {
		line = string([]rune(line)[:maxLineRunes])
	}
	for _, id := range chats {
		if _, err := m.sender.SendMessage(ctx, id, line, nil); err != nil {
			m.log.Warnf(ctx, "log mirror: chat %d: %v", id, err)
		}
	}
}
