package logger

import (
	"context"

	"github.com/Gunvolt24/order_notifier/internal/ports"
	"github.com/Gunvolt24/order_notifier/pkg/ctxmeta"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Проверка, что ZapLogger удовлетворяет интерфейсу ports.Logger.
var _ ports.Logger = (*ZapLogger)(nil)

// ZapLogger — обёртка над zap с зеркалированием строк в подключаемый Sink.
type ZapLogger struct {
	base   *zap.Logger // с зеркалом
	local  *zap.Logger // без зеркала
	sugar  *zap.SugaredLogger
	mirror *mirrorCore
	isProd bool
}

// NewZapLogger — логгер в dev/prod режиме. Зеркало подключается позже через AttachMirror.
func NewZapLogger(isProd bool) (*ZapLogger, func() error, error) {
	var (
		logger *zap.Logger
		err    error
	)

	if isProd {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}

	if err != nil {
		return nil, nil, err
	}

	return wrap(logger, isProd)
}

// NewFromCore — логгер поверх готового ядра (используется в тестах с observer).
func NewFromCore(core zapcore.Core) *ZapLogger {
	z, _, _ := wrap(zap.New(core), false)
	return z
}

func wrap(local *zap.Logger, isProd bool) (*ZapLogger, func() error, error) {
	mc := newMirrorCore(zapcore.InfoLevel)
	base := local.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapcore.NewTee(c, mc)
	}))

	loggerWrap := &ZapLogger{
		base:   base,
		local:  local,
		sugar:  base.Sugar(),
		mirror: mc,
		isProd: isProd,
	}

	cleanup := func() error { return loggerWrap.base.Sync() }
	return loggerWrap, cleanup, nil
}

// AttachMirror — подключить приёмник зеркала (nil — отключить).
func (z *ZapLogger) AttachMirror(sink Sink) {
	if z.mirror != nil {
		z.mirror.attach(sink)
	}
}

// Local — тот же вывод, но без зеркала. Нужен самому зеркалу,
// чтобы его собственные ошибки не уходили по кругу.
func (z *ZapLogger) Local() *ZapLogger {
	return &ZapLogger{
		base:   z.local,
		local:  z.local,
		sugar:  z.local.Sugar(),
		isProd: z.isProd,
	}
}

func (z *ZapLogger) Infof(ctx context.Context, format string, args ...any) {
	z.withContext(ctx).Infof(format, args...)
}
func (z *ZapLogger) Warnf(ctx context.Context, format string, args ...any) {
	z.withContext(ctx).Warnf(format, args...)
}
func (z *ZapLogger) Errorf(ctx context.Context, format string, args ...any) {
	z.withContext(ctx).Errorf(format, args...)
}

func (z *ZapLogger) Base() *zap.Logger           { return z.base }
func (z *ZapLogger) Sugared() *zap.SugaredLogger { return z.sugar }

// withContext — добавляет к записи метаданные из контекста (request_id, trace_id, отправление, чат).
func (z *ZapLogger) withContext(ctx context.Context) *zap.SugaredLogger {
	if ctx == nil {
		return z.sugar
	}
	var kv []any
	if rid, ok := ctxmeta.RequestIDFromContext(ctx); ok {
		kv = append(kv, "request_id", rid)
	}
	if tid, ok := ctxmeta.TraceIDFromContext(ctx); ok {
		kv = append(kv, "trace_id", tid)
	}
	if pn, ok := ctxmeta.PostingFromContext(ctx); ok {
		kv = append(kv, "posting", pn)
	}
	if chat, ok := ctxmeta.BotChatFromContext(ctx); ok {
		kv = append(kv, "bot_chat", chat)
	}
	if len(kv) == 0 {
		return z.sugar
	}
	return z.sugar.With(kv...)
}
