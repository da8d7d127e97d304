package validate

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Gunvolt24/order_notifier/internal/domain"
)

// ErrInvalidDraft — черновик настройки не может быть применён.
var ErrInvalidDraft = errors.New("invalid draft")

const (
	// MaxMessageRunes — лимит длины одного сообщения в чате.
	MaxMessageRunes = 4096
	// LinkReserve — место под "\n\n" и ссылку на отправление в стартовом сообщении.
	LinkReserve = 160
)

// Draft — проверяет текст, присланный оператором для target.
func Draft(target domain.EditTarget, text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: пустой текст", ErrInvalidDraft)
	}

	switch target {
	case domain.TargetPrimaryTemplate:
		if n := utf8.RuneCountInString(text); n > MaxMessageRunes-LinkReserve {
			return fmt.Errorf("%w: слишком длинный шаблон (%d > %d)", ErrInvalidDraft, n, MaxMessageRunes-LinkReserve)
		}
	case domain.TargetFollowUpTemplate:
		if n := utf8.RuneCountInString(text); n > MaxMessageRunes {
			return fmt.Errorf("%w: слишком длинный шаблон (%d > %d)", ErrInvalidDraft, n, MaxMessageRunes)
		}
	case domain.TargetPassword:
		// пароль вводится после /start через пробел
		if strings.IndexFunc(text, unicode.IsSpace) >= 0 {
			return fmt.Errorf("%w: пароль не должен содержать пробелов", ErrInvalidDraft)
		}
	default:
		return fmt.Errorf("%w: неизвестная настройка %s", ErrInvalidDraft, target)
	}
	return nil
}
