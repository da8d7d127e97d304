package domain

import "time"

// EventKind — исход обработки отправления в одной из фаз рассылки.
type EventKind string

const (
	EventPrimarySent       EventKind = "primary_sent"
	EventPrimaryFailed     EventKind = "primary_failed"
	EventPrimaryDryRun     EventKind = "primary_dry_run"
	EventPrimaryChatReused EventKind = "primary_chat_reused"
	EventFollowUpSent      EventKind = "followup_sent"
	EventFollowUpFailed    EventKind = "followup_failed"
	EventFollowUpSkipped   EventKind = "followup_skipped"
)

// NotificationEvent — событие рассылки для внешних потребителей.
type NotificationEvent struct {
	Kind          EventKind `json:"kind"`
	PostingNumber string    `json:"posting_number"`
	ChatID        string    `json:"chat_id,omitempty"`
	Error         string    `json:"error,omitempty"`
	At            time.Time `json:"at"`
}
