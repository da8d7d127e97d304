package bot

import (
	"strings"
	"unicode/utf8"

	"github.com/Gunvolt24/order_notifier/internal/domain"
	"github.com/Gunvolt24/order_notifier/internal/telegram"
)

// Теги inline-кнопок.
const (
	cbEditPrimary     = "edit_msg1"
	cbTogglePrimary   = "toggle_send1"
	cbConfirmPrimary  = "confirm_new_msg1"
	cbCancelPrimary   = "cancel_new_msg1"
	cbEditFollowUp    = "edit_msg2"
	cbToggleFollowUp  = "toggle_send2"
	cbConfirmFollowUp = "confirm_new_msg2"
	cbCancelFollowUp  = "cancel_new_msg2"
	cbChangePassword  = "change_pass"
	cbConfirmPassword = "confirm_new_pass"
	cbCancelPassword  = "cancel_new_pass"
	cbToggleLogs      = "toggle_logs"
)

const (
	helpUnauthorized = "/start <пароль> — авторизация"
	helpAuthorized   = "Доступные команды:\n/settings — настройки сообщений\n/develop_settings — developer-настройки\n/ping"

	startUsage   = "Используй: /start <пароль>"
	startOK      = "Авторизация успешна. Используй /settings."
	startBadPass = "Неверный пароль."

	ackCancelled = "Отменено."
)

// panelPreviewRunes — сколько символов шаблона показывать в панели:
// оба шаблона вместе должны уместиться в одно сообщение.
const panelPreviewRunes = 1500

// editFlow — параметры одного из трёх одинаковых протоколов «изменить → подтвердить/отменить».
type editFlow struct {
	prompt     string
	preview    string // заголовок превью черновика
	confirm    string
	cancel     string
	confirmAck string
}

var flows = map[domain.EditTarget]editFlow{
	domain.TargetPrimaryTemplate: {
		prompt:     "Отправь *стартовое сообщение* одним сообщением.",
		preview:    "Новый текст *стартового* сообщения:",
		confirm:    cbConfirmPrimary,
		cancel:     cbCancelPrimary,
		confirmAck: "Стартовое сообщение обновлено.",
	},
	domain.TargetFollowUpTemplate: {
		prompt:     "Отправь *второе сообщение* одним сообщением.",
		preview:    "Новый текст *второго* сообщения:",
		confirm:    cbConfirmFollowUp,
		cancel:     cbCancelFollowUp,
		confirmAck: "Второе сообщение обновлено.",
	},
	domain.TargetPassword: {
		prompt:     "Отправь новый пароль одним сообщением.",
		preview:    "Новый пароль:",
		confirm:    cbConfirmPassword,
		cancel:     cbCancelPassword,
		confirmAck: "Пароль изменён.",
	},
}

func helpText(authorized bool) string {
	if authorized {
		return helpAuthorized
	}
	return helpUnauthorized
}

func onOff(enabled bool) string {
	if enabled {
		return "включено ✅"
	}
	return "выключено ❌"
}

func preview(text string) string {
	if utf8.RuneCountInString(text) <= panelPreviewRunes {
		return text
	}
	return string([]rune(text)[:panelPreviewRunes]) + "..."
}

// settingsPanel — /settings: шаблоны и флаги рассылки.
func settingsPanel(s domain.Settings) (string, *telegram.InlineKeyboardMarkup) {
	var b strings.Builder
	b.WriteString("Настройки сообщений:\n\n")
	b.WriteString("• Стартовое сообщение — " + onOff(s.PrimaryEnabled) + "\n")
	b.WriteString(preview(s.PrimaryTemplate))
	b.WriteString("\n\n")
	b.WriteString("• Второе сообщение — " + onOff(s.FollowUpEnabled) + "\n")
	b.WriteString(preview(s.FollowUpTemplate))

	primaryToggle := "Старт: включить"
	if s.PrimaryEnabled {
		primaryToggle = "Старт: выключить"
	}
	followUpToggle := "Второе: включить"
	if s.FollowUpEnabled {
		followUpToggle = "Второе: выключить"
	}

	kb := telegram.Keyboard(
		telegram.Row(
			telegram.Button("Изменить стартовое", cbEditPrimary),
			telegram.Button(primaryToggle, cbTogglePrimary),
		),
		telegram.Row(
			telegram.Button("Изменить второе", cbEditFollowUp),
			telegram.Button(followUpToggle, cbToggleFollowUp),
		),
	)
	return b.String(), kb
}

// developerPanel — /develop_settings. Пароль никогда не показывается.
func developerPanel(s domain.Settings, chatID int64) (string, *telegram.InlineKeyboardMarkup) {
	logs := "выключены"
	switch {
	case s.LogsEnabledFor(chatID):
		logs = "включены (этот чат)"
	case len(s.LogChatIDs) > 0:
		logs = "включены (другие чаты)"
	}
	text := "Developer settings:\n\n• Пароль: ********\n• Логи: " + logs

	logsButton := "Включить логи"
	if s.LogsEnabledFor(chatID) {
		logsButton = "Выключить логи"
	}
	kb := telegram.Keyboard(
		telegram.Row(telegram.Button("Изменить пароль", cbChangePassword)),
		telegram.Row(telegram.Button(logsButton, cbToggleLogs)),
	)
	return text, kb
}

// confirmView — превью черновика с кнопками ✅/❌. Длинный черновик обрезается
// в превью, иначе сообщение с кнопками не пройдёт лимит Bot API; сохраняется он целиком.
func confirmView(target domain.EditTarget, draft string) (string, *telegram.InlineKeyboardMarkup) {
	f := flows[target]
	text := f.preview + "\n\n" + preview(draft) + "\n\nПодтвердить?"
	kb := telegram.Keyboard(telegram.Row(
		telegram.Button("✅", f.confirm),
		telegram.Button("❌", f.cancel),
	))
	return text, kb
}

func toggleAck(name string, enabled bool) string {
	if enabled {
		return name + ": вкл"
	}
	return name + ": выкл"
}
