package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	WorkerIterations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifier_worker_iterations_total",
			Help: "Number of order processing iterations",
		},
		[]string{"result"}, // ok|error|panic
	)
	Notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifier_notifications_total",
			Help: "Notification outcomes by phase",
		},
		[]string{"phase", "outcome"}, // primary|followup; sent|failed|dry_run|chat_reused|skipped
	)
	PostingsFetched = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "notifier_postings_fetched_total",
			Help: "Number of postings returned by the marketplace listing",
		},
	)
)

var (
	StoreSize = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "notifier_store_entries",
			Help: "Number of entries in a key-timestamp store",
		},
		[]string{"store"}, // sent|pending|chats
	)
	StoreEvicted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifier_store_evicted_total",
			Help: "Entries evicted by retention",
		},
		[]string{"store"},
	)
)

var (
	BotUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifier_bot_updates_total",
			Help: "Bot updates handled",
		},
		[]string{"kind"}, // message|callback|other
	)
	BotPollErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "notifier_bot_poll_errors_total",
			Help: "Failed getUpdates calls",
		},
	)
	EventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifier_events_published_total",
			Help: "Notification events written to the broker",
		},
		[]string{"result"}, // ok|error
	)
	MirrorDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "notifier_log_mirror_dropped_total",
			Help: "Log lines dropped because the mirror queue was full",
		},
	)
)

var registerOnce sync.Once

// MustRegister — регистрирует все метрики в DefaultRegisterer. Повторный вызов безопасен.
func MustRegister() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			WorkerIterations, Notifications, PostingsFetched,
			StoreSize, StoreEvicted,
			BotUpdates, BotPollErrors, EventsPublished, MirrorDropped,
		)
	})
}
