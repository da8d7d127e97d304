package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Gunvolt24/order_notifier/internal/domain"
)

// ErrInvalidPosting — отправление из списка непригодно для рассылки.
var ErrInvalidPosting = errors.New("invalid posting")

// Posting — минимальная проверка записи из списка отправлений.
func Posting(p domain.Posting) error {
	if strings.TrimSpace(p.PostingNumber) == "" {
		return fmt.Errorf("%w: posting_number обязателен", ErrInvalidPosting)
	}
	if strings.ContainsAny(p.PostingNumber, " \t\r\n/?#") {
		return fmt.Errorf("%w: недопустимые символы в posting_number %q", ErrInvalidPosting, p.PostingNumber)
	}
	return nil
}
