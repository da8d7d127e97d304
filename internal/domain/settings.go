package domain

import "slices"

// Settings — изменяемая во время работы конфигурация рассылки.
// JSON-ключи совместимы с файлом bot_settings.json.
type Settings struct {
	Password         string  `json:"password"`
	PrimaryTemplate  string  `json:"messageTemplate"`
	FollowUpTemplate string  `json:"secondMessageTemplate"`
	PrimaryEnabled   bool    `json:"sendMessages"`
	FollowUpEnabled  bool    `json:"sendSecondMessage"`
	LogChatIDs       []int64 `json:"logChatIds"`
}

// Clone — глубокая копия (снимок не должен делить срез с хранилищем).
func (s Settings) Clone() Settings {
	c := s
	c.LogChatIDs = slices.Clone(s.LogChatIDs)
	if c.LogChatIDs == nil {
		c.LogChatIDs = []int64{}
	}
	return c
}

// LogsEnabledFor — подписан ли чат на зеркалирование логов.
func (s Settings) LogsEnabledFor(chatID int64) bool {
	return slices.Contains(s.LogChatIDs, chatID)
}
