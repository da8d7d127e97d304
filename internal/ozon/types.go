package ozon

import "github.com/Gunvolt24/order_notifier/internal/domain"

type fbsListRequest struct {
	Dir    string         `json:"dir"`
	Filter fbsListFilter  `json:"filter"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
	With   fbsListOptions `json:"with"`
}

type fbsListFilter struct {
	Since  string `json:"since"`
	To     string `json:"to"`
	Status string `json:"status"`
}

type fbsListOptions struct {
	AnalyticsData bool `json:"analytics_data"`
	FinancialData bool `json:"financial_data"`
	Barcodes      bool `json:"barcodes"`
	Translit      bool `json:"translit"`
}

type fbsListResponse struct {
	Result *struct {
		Postings []domain.Posting `json:"postings"`
		HasNext  bool             `json:"has_next"`
	} `json:"result"`
}

type postingNumberRequest struct {
	PostingNumber string `json:"posting_number"`
}

type fbsGetResponse struct {
	Result *domain.PostingDetail `json:"result"`
}

type chatStartResponse struct {
	Result *struct {
		ChatID string `json:"chat_id"`
	} `json:"result"`
	ChatID string `json:"chat_id"`
}

// chatID — result.chat_id, иначе chat_id верхнего уровня.
func (r chatStartResponse) chatID() string {
	if r.Result != nil && r.Result.ChatID != "" {
		return r.Result.ChatID
	}
	return r.ChatID
}

type chatSendRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}
