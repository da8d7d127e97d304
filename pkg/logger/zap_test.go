package logger_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Gunvolt24/order_notifier/pkg/ctxmeta"
	"github.com/Gunvolt24/order_notifier/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type captureSink struct {
	mu    sync.Mutex
	lines []string
}

func (s *captureSink) Mirror(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, line)
}

func (s *captureSink) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lines...)
}

func TestZapLogger_MirrorsInfoAndAbove(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := logger.NewFromCore(core)
	ctx := context.Background()

	l.Infof(ctx, "до подключения")

	sink := &captureSink{}
	l.AttachMirror(sink)

	l.Infof(ctx, "отправлено %d", 1)
	l.Warnf(ctx, "предупреждение")
	l.Errorf(ctx, "ошибка %s", "x")
	l.Sugared().Debugf("отладка")

	lines := sink.Lines()
	require.Len(t, lines, 3)
	assert.True(t, strings.HasSuffix(lines[0], "] отправлено 1"), lines[0])
	assert.True(t, strings.HasSuffix(lines[2], "] ошибка x"), lines[2])

	// локальный вывод получил всё
	assert.Equal(t, 5, logs.Len())

	l.AttachMirror(nil)
	l.Infof(ctx, "после отключения")
	assert.Len(t, sink.Lines(), 3)
}

func TestZapLogger_LocalSkipsMirror(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := logger.NewFromCore(core)
	sink := &captureSink{}
	l.AttachMirror(sink)

	l.Local().Errorf(context.Background(), "не зеркалируется")
	l.Local().AttachMirror(sink) // no-op

	assert.Empty(t, sink.Lines())
	assert.Equal(t, 1, logs.Len())
}

func TestZapLogger_ContextFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := logger.NewFromCore(core)

	ctx := ctxmeta.WithRequestID(context.Background(), "rid-1")
	ctx = ctxmeta.WithPosting(ctx, "123-1")
	ctx = ctxmeta.WithBotChat(ctx, 42)
	l.Infof(ctx, "hello")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "rid-1", fields["request_id"])
	assert.Equal(t, "123-1", fields["posting"])
	assert.Equal(t, "42", fields["bot_chat"])
}

func TestFormatLine(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "[2025-03-01T10:00:00Z] msg", logger.FormatLine(at, "msg"))
}
