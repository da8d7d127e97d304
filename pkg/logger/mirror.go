package logger

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap/zapcore"
)

// Sink — получатель зеркалируемых строк лога (например, чаты администраторов).
// Mirror вызывается синхронно из записи лога и не должен блокироваться.
type Sink interface {
	Mirror(line string)
}

type sinkBox struct{ sink Sink }

// mirrorCore — ядро zap, которое превращает запись в строку "[время] сообщение"
// и передаёт её в Sink. Поля записи в строку не попадают.
type mirrorCore struct {
	zapcore.LevelEnabler
	sink *atomic.Pointer[sinkBox]
}

func newMirrorCore(level zapcore.LevelEnabler) *mirrorCore {
	return &mirrorCore{LevelEnabler: level, sink: &atomic.Pointer[sinkBox]{}}
}

func (c *mirrorCore) attach(s Sink) {
	if s == nil {
		c.sink.Store(nil)
		return
	}
	c.sink.Store(&sinkBox{sink: s})
}

// With — поля не нужны зеркалу; ядро разделяет тот же приёмник.
func (c *mirrorCore) With([]zapcore.Field) zapcore.Core { return c }

func (c *mirrorCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) && c.sink.Load() != nil {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *mirrorCore) Write(ent zapcore.Entry, _ []zapcore.Field) error {
	box := c.sink.Load()
	if box == nil {
		return nil
	}
	box.sink.Mirror(FormatLine(ent.Time, ent.Message))
	return nil
}

func (c *mirrorCore) Sync() error { return nil }

// FormatLine — формат зеркалируемой строки.
func FormatLine(at time.Time, message string) string {
	return "[" + at.Format(time.RFC3339) + "] " + message
}
