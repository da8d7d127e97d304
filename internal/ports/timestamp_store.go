package ports

import (
	"context"
	"time"

	"github.com/Gunvolt24/order_notifier/internal/domain"
)

// TimestampStore — долговременное хранилище «ключ → момент записи».
// Требования к реализации: потокобезопасность; каждая мутация сохраняется
// до возврата; ошибка сохранения не откатывает изменение в памяти.
type TimestampStore interface {
	// Contains — обработан ли ключ (есть ли запись).
	Contains(ctx context.Context, key string) (bool, error)

	// Insert — upsert записи с моментом at.
	Insert(ctx context.Context, key string, at time.Time) error

	// Remove — удалить запись (отсутствие ключа не ошибка).
	Remove(ctx context.Context, key string) error

	// Clear — удалить все записи вместе с файлом/таблицей хранилища.
	Clear(ctx context.Context) error

	// EvictOlderThan — удалить записи старше now-age; возвращает число удалённых.
	EvictOlderThan(ctx context.Context, age time.Duration) (int, error)

	// RecordedAtOrBefore — ключи, записанные не позже cutoff.
	RecordedAtOrBefore(ctx context.Context, cutoff time.Time) ([]string, error)

	// Len — текущее число записей.
	Len(ctx context.Context) (int, error)

	// Entries — все записи, от старых к новым.
	Entries(ctx context.Context) ([]domain.CacheEntry, error)
}
