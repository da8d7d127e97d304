package validate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/Gunvolt24/order_notifier/internal/domain"
)

// ErrInvalidSettings — файл настроек не проходит проверку.
var ErrInvalidSettings = errors.New("invalid settings")

// SettingsFromJSON — строгий разбор файла настроек: без лишних полей и хвостов,
// с проверкой шаблонов и пароля теми же правилами, что и в диалоге.
func SettingsFromJSON(raw []byte) (*domain.Settings, error) {
	var s domain.Settings
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: invalid json: %v", ErrInvalidSettings, err)
	}
	if err := dec.Decode(new(struct{})); err != io.EOF {
		return nil, fmt.Errorf("%w: invalid json: trailing data", ErrInvalidSettings)
	}

	checks := []struct {
		target domain.EditTarget
		value  string
	}{
		{domain.TargetPassword, s.Password},
		{domain.TargetPrimaryTemplate, s.PrimaryTemplate},
		{domain.TargetFollowUpTemplate, s.FollowUpTemplate},
	}
	for _, c := range checks {
		if err := Draft(c.target, c.value); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidSettings, c.target, err)
		}
	}
	return &s, nil
}
