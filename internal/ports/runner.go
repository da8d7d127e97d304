package ports

import "context"

// Runner — фоновая задача приложения (цикл обработки заказов, бот, зеркало логов).
// Run блокируется до отмены контекста.
type Runner interface {
	Run(ctx context.Context) error
}
