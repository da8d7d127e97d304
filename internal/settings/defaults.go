package settings

import "github.com/Gunvolt24/order_notifier/internal/domain"

const (
	DefaultPrimaryTemplate = "Добрый день! Мы хотим убедиться в правильности подбора параметров по вашему заказу. " +
		"Для этого сообщите, пожалуйста, марку и модель автомобиля (по возможности укажите год выпуска и объем двигателя) " +
		"для которого приобретаются диски, чтобы мы могли проверить их совместимость."
	DefaultFollowUpTemplate = "Второе сообщение по умолчанию."
)

// Defaults — запись первого запуска: стартовое сообщение включено, второе выключено, логов нет.
func Defaults(password string) domain.Settings {
	return domain.Settings{
		Password:         password,
		PrimaryTemplate:  DefaultPrimaryTemplate,
		FollowUpTemplate: DefaultFollowUpTemplate,
		PrimaryEnabled:   true,
		FollowUpEnabled:  false,
		LogChatIDs:       []int64{},
	}
}
