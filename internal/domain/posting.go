package domain

import "time"

// PostingStatusAwaitingPackaging — статус отправления «ожидает сборки».
const PostingStatusAwaitingPackaging = "awaiting_packaging"

// Posting — краткая информация об отправлении (заказе) из списка маркетплейса.
type Posting struct {
	PostingNumber string `json:"posting_number"`
	Status        string `json:"status,omitempty"`
	InProcessAt   string `json:"in_process_at,omitempty"`
	ShipmentDate  string `json:"shipment_date,omitempty"`
}

// PostingProduct — товарная позиция отправления.
type PostingProduct struct {
	Name     string `json:"name,omitempty"`
	Quantity int    `json:"quantity,omitempty"`
}

// PostingDetail — полная информация об отправлении.
type PostingDetail struct {
	PostingNumber string           `json:"posting_number,omitempty"`
	Products      []PostingProduct `json:"products,omitempty"`
}

// TimeWindow — полуинтервал времени [Since, To], в котором ищутся отправления.
type TimeWindow struct {
	Since time.Time
	To    time.Time
}

// WindowEndingAt — окно шириной width, заканчивающееся в момент to.
func WindowEndingAt(to time.Time, width time.Duration) TimeWindow {
	return TimeWindow{Since: to.Add(-width), To: to}
}

// PostingFilter — фильтр постраничного запроса списка отправлений.
type PostingFilter struct {
	Status string
	Window TimeWindow
}

// CacheEntry — запись хранилища «ключ → момент записи».
type CacheEntry struct {
	Key string    `json:"key"`
	At  time.Time `json:"at"`
}
