package bot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/Gunvolt24/order_notifier/internal/domain"
	"github.com/Gunvolt24/order_notifier/internal/ports"
	"github.com/Gunvolt24/order_notifier/internal/telegram"
	"github.com/Gunvolt24/order_notifier/pkg/ctxmeta"
	"github.com/Gunvolt24/order_notifier/pkg/metrics"
	"github.com/Gunvolt24/order_notifier/pkg/telemetry"
	"github.com/Gunvolt24/order_notifier/pkg/validate"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Engine — конечный автомат диалога по каждому чату.
// Обновления обрабатываются по одному (из Poller); мьютекс защищает карты
// от чтения снаружи (Authorized, State).
type Engine struct {
	tr       Transport
	settings ports.SettingsStore
	log      ports.Logger
	ackTTL   time.Duration
	tracer   trace.Tracer

	mu         sync.Mutex
	states     map[int64]domain.ConversationState
	authorized map[int64]struct{}
}

// EngineOption — настройка Engine.
type EngineOption func(*Engine)

// WithAckTTL — сколько живёт короткое подтверждение (0 — удалять сразу).
func WithAckTTL(d time.Duration) EngineOption {
	return func(e *Engine) { e.ackTTL = d }
}

// NewEngine — все чаты изначально не авторизованы и в состоянии Idle.
func NewEngine(tr Transport, settings ports.SettingsStore, log ports.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		tr:         tr,
		settings:   settings,
		log:        log,
		ackTTL:     time.Second,
		tracer:     telemetry.Tracer(),
		states:     make(map[int64]domain.ConversationState),
		authorized: make(map[int64]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// HandleUpdate — обработать одно обновление до конца.
func (e *Engine) HandleUpdate(ctx context.Context, u telegram.Update) {
	switch {
	case u.CallbackQuery != nil:
		metrics.BotUpdates.WithLabelValues("callback").Inc()
		ctx, span := e.tracer.Start(ctx, "bot.callback", trace.WithAttributes(attribute.String("data", u.CallbackQuery.Data)))
		defer span.End()
		e.handleCallback(ctx, u.CallbackQuery)
	case u.Message != nil:
		metrics.BotUpdates.WithLabelValues("message").Inc()
		ctx, span := e.tracer.Start(ctx, "bot.message", trace.WithAttributes(attribute.Int64("chat_id", u.Message.Chat.ID)))
		defer span.End()
		e.handleMessage(ctxmeta.WithBotChat(ctx, u.Message.Chat.ID), u.Message)
	default:
		metrics.BotUpdates.WithLabelValues("other").Inc()
	}
}

// Authorized — прошёл ли чат /start с верным паролем.
func (e *Engine) Authorized(chatID int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.authorized[chatID]
	return ok
}

// AuthorizedCount — число авторизованных чатов.
func (e *Engine) AuthorizedCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.authorized)
}

// State — текущее состояние диалога чата.
func (e *Engine) State(chatID int64) domain.ConversationState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.states[chatID]
}

func (e *Engine) setState(chatID int64, s domain.ConversationState) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s.IsIdle() {
		delete(e.states, chatID)
		return
	}
	e.states[chatID] = s
}

func (e *Engine) authorize(chatID int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.authorized[chatID] = struct{}{}
}

func (e *Engine) handleMessage(ctx context.Context, msg *telegram.Message) {
	chatID := msg.Chat.ID
	text := msg.Text

	// команды важнее захвата черновика
	fields := strings.Fields(text)
	if len(fields) > 0 && fields[0] == "/start" {
		e.handleStart(ctx, chatID, fields)
		return
	}

	if !e.Authorized(chatID) {
		e.reply(ctx, chatID, helpText(false))
		return
	}

	switch strings.TrimSpace(text) {
	case "/ping":
		e.reply(ctx, chatID, "pong")
		return
	case "/settings":
		e.showSettings(ctx, chatID)
		return
	case "/develop_settings":
		e.showDeveloper(ctx, chatID)
		return
	}

	state := e.State(chatID)
	if state.Step == domain.StepAwaiting {
		e.captureDraft(ctx, chatID, state.Target, text)
		return
	}
	e.reply(ctx, chatID, helpText(true))
}

func (e *Engine) handleStart(ctx context.Context, chatID int64, fields []string) {
	if len(fields) != 2 {
		e.reply(ctx, chatID, startUsage)
		return
	}
	if fields[1] != e.settings.Snapshot(ctx).Password {
		e.log.Warnf(ctx, "bot: wrong password from chat %d", chatID)
		e.reply(ctx, chatID, startBadPass)
		return
	}
	e.authorize(chatID)
	e.log.Infof(ctx, "bot: chat %d authorized", chatID)
	e.reply(ctx, chatID, startOK)
}

// captureDraft — текст в состоянии Awaiting* становится черновиком.
// Непригодный черновик оставляет чат в Awaiting* и объясняет причину.
func (e *Engine) captureDraft(ctx context.Context, chatID int64, target domain.EditTarget, text string) {
	if err := validate.Draft(target, text); err != nil {
		e.reply(ctx, chatID, "Не подходит: "+draftReason(err)+". Отправь ещё раз.")
		return
	}
	e.setState(chatID, domain.ConfirmingState(target, text))
	body, kb := confirmView(target, text)
	e.send(ctx, chatID, body, kb)
}

func draftReason(err error) string {
	reason := err.Error()
	if errors.Is(err, validate.ErrInvalidDraft) {
		reason = strings.TrimPrefix(reason, validate.ErrInvalidDraft.Error()+": ")
	}
	return reason
}

func (e *Engine) handleCallback(ctx context.Context, cb *telegram.CallbackQuery) {
	// ответ на нажатие нужен всегда, иначе клиент крутит индикатор загрузки
	if err := e.tr.AnswerCallbackQuery(ctx, cb.ID); err != nil {
		e.log.Warnf(ctx, "bot: answer callback %s: %v", cb.ID, err)
	}
	if cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID
	ctx = ctxmeta.WithBotChat(ctx, chatID)
	if !e.Authorized(chatID) {
		return
	}

	switch cb.Data {
	case cbEditPrimary:
		e.beginEdit(ctx, chatID, domain.TargetPrimaryTemplate)
	case cbEditFollowUp:
		e.beginEdit(ctx, chatID, domain.TargetFollowUpTemplate)
	case cbChangePassword:
		e.beginEdit(ctx, chatID, domain.TargetPassword)

	case cbConfirmPrimary:
		e.confirm(ctx, chatID, domain.TargetPrimaryTemplate)
	case cbConfirmFollowUp:
		e.confirm(ctx, chatID, domain.TargetFollowUpTemplate)
	case cbConfirmPassword:
		e.confirm(ctx, chatID, domain.TargetPassword)

	case cbCancelPrimary, cbCancelFollowUp, cbCancelPassword:
		e.setState(chatID, domain.IdleState())
		e.ack(ctx, chatID, ackCancelled)

	case cbTogglePrimary:
		enabled, err := e.settings.TogglePrimary(ctx)
		e.persistWarn(ctx, "toggle primary", err)
		e.log.Infof(ctx, "bot: primary sending %s by chat %d", enabledWord(enabled), chatID)
		e.ack(ctx, chatID, toggleAck("Стартовое сообщение", enabled))
		text, kb := settingsPanel(e.settings.Snapshot(ctx))
		e.redisplay(ctx, cb.Message, text, kb)
	case cbToggleFollowUp:
		enabled, err := e.settings.ToggleFollowUp(ctx)
		e.persistWarn(ctx, "toggle follow-up", err)
		e.log.Infof(ctx, "bot: follow-up sending %s by chat %d", enabledWord(enabled), chatID)
		e.ack(ctx, chatID, toggleAck("Второе сообщение", enabled))
		text, kb := settingsPanel(e.settings.Snapshot(ctx))
		e.redisplay(ctx, cb.Message, text, kb)
	case cbToggleLogs:
		enabled, err := e.settings.ToggleLogs(ctx, chatID)
		e.persistWarn(ctx, "toggle logs", err)
		if enabled {
			e.ack(ctx, chatID, "Логи включены")
		} else {
			e.ack(ctx, chatID, "Логи выключены")
		}
		text, kb := developerPanel(e.settings.Snapshot(ctx), chatID)
		e.redisplay(ctx, cb.Message, text, kb)

	default:
		e.log.Warnf(ctx, "bot: unknown callback %q from chat %d", cb.Data, chatID)
	}
}

func (e *Engine) beginEdit(ctx context.Context, chatID int64, target domain.EditTarget) {
	e.setState(chatID, domain.AwaitingState(target))
	e.reply(ctx, chatID, flows[target].prompt)
}

// confirm — применить черновик. Нажатие, не совпавшее с текущим состоянием, ничего не делает.
func (e *Engine) confirm(ctx context.Context, chatID int64, target domain.EditTarget) {
	state := e.State(chatID)
	if state.Step != domain.StepConfirming || state.Target != target {
		return
	}

	var err error
	switch target {
	case domain.TargetPrimaryTemplate:
		err = e.settings.SetPrimaryTemplate(ctx, state.Draft)
	case domain.TargetFollowUpTemplate:
		err = e.settings.SetFollowUpTemplate(ctx, state.Draft)
	case domain.TargetPassword:
		err = e.settings.SetPassword(ctx, state.Draft)
	}
	e.persistWarn(ctx, "update "+target.String(), err)
	e.setState(chatID, domain.IdleState())
	e.log.Infof(ctx, "bot: %s updated by chat %d", target, chatID)

	e.ack(ctx, chatID, flows[target].confirmAck)
	if target == domain.TargetPassword {
		e.showDeveloper(ctx, chatID)
		return
	}
	e.showSettings(ctx, chatID)
}

func (e *Engine) showSettings(ctx context.Context, chatID int64) {
	text, kb := settingsPanel(e.settings.Snapshot(ctx))
	e.send(ctx, chatID, text, kb)
}

func (e *Engine) showDeveloper(ctx context.Context, chatID int64) {
	text, kb := developerPanel(e.settings.Snapshot(ctx), chatID)
	e.send(ctx, chatID, text, kb)
}

// redisplay — обновить панель, к которой относится кнопка; если не вышло — прислать новую.
func (e *Engine) redisplay(ctx context.Context, panel *telegram.Message, text string, kb *telegram.InlineKeyboardMarkup) {
	if err := e.tr.EditMessageText(ctx, panel.Chat.ID, panel.MessageID, text, kb); err != nil {
		e.send(ctx, panel.Chat.ID, text, kb)
	}
}

// ack — короткое сообщение, удаляемое через ackTTL. Ошибка удаления игнорируется.
func (e *Engine) ack(ctx context.Context, chatID int64, text string) {
	msg, err := e.tr.SendMessage(ctx, chatID, text, nil)
	if err != nil {
		e.log.Warnf(ctx, "bot: send to chat %d: %v", chatID, err)
		return
	}
	if e.ackTTL > 0 {
		t := time.NewTimer(e.ackTTL)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
	}
	_ = e.tr.DeleteMessage(ctx, chatID, msg.MessageID)
}

func (e *Engine) reply(ctx context.Context, chatID int64, text string) {
	e.send(ctx, chatID, text, nil)
}

func (e *Engine) send(ctx context.Context, chatID int64, text string, kb *telegram.InlineKeyboardMarkup) {
	if _, err := e.tr.SendMessage(ctx, chatID, text, kb); err != nil {
		e.log.Warnf(ctx, "bot: send to chat %d: %v", chatID, err)
	}
}

// persistWarn — изменение уже применено в памяти; ошибку записи только логируем.
func (e *Engine) persistWarn(ctx context.Context, op string, err error) {
	if err != nil {
		e.log.Warnf(ctx, "bot: %s: %v", op, err)
	}
}

func enabledWord(v bool) string {
	if v {
		return "enabled"
	}
	return "disabled"
}
