package ports

import (
	"context"

	"github.com/Gunvolt24/order_notifier/internal/domain"
)

// SettingsReader — чтение согласованного снимка настроек.
type SettingsReader interface {
	Snapshot(ctx context.Context) domain.Settings
}

// SettingsStore — настройки рассылки с сериализованными изменениями.
// Каждый сеттер сохраняет запись целиком; ошибка сохранения не откатывает изменение в памяти.
type SettingsStore interface {
	SettingsReader

	SetPassword(ctx context.Context, password string) error
	SetPrimaryTemplate(ctx context.Context, text string) error
	SetFollowUpTemplate(ctx context.Context, text string) error

	// TogglePrimary / ToggleFollowUp — инвертировать флаг, вернуть новое значение.
	TogglePrimary(ctx context.Context) (bool, error)
	ToggleFollowUp(ctx context.Context) (bool, error)

	// ToggleLogs — подписать/отписать чат от логов, вернуть новое состояние подписки.
	ToggleLogs(ctx context.Context, chatID int64) (bool, error)

	// LogChatIDs — множество чатов, подписанных на логи.
	LogChatIDs(ctx context.Context) []int64
}
