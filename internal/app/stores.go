package app

import (
	"context"
	"fmt"
	"time"

	"github.com/Gunvolt24/order_notifier/config"
	"github.com/Gunvolt24/order_notifier/internal/cache/jsonfile"
	"github.com/Gunvolt24/order_notifier/internal/ports"
	"github.com/Gunvolt24/order_notifier/internal/repo/postgres"
	"github.com/Gunvolt24/order_notifier/internal/worker"
)

// Имена хранилищ (метки метрик, ключи /stores/:name).
const (
	StoreSent    = "sent"
	StorePending = "pending"
	StoreChats   = "chats"
)

// openStores — три хранилища «ключ → время» по выбранному драйверу.
// Для postgres возвращается функция закрытия пула.
func openStores(ctx context.Context, cfg *config.Config, log ports.Logger) (worker.Stores, func(), error) {
	switch cfg.Storage.Driver {
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
		if err != nil {
			return worker.Stores{}, func() {}, fmt.Errorf("postgres pool: %w", err)
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return worker.Stores{}, func() {}, err
		}
		log.Infof(ctx, "timestamp stores: postgres")
		return worker.Stores{
			Sent:    postgres.NewTimestampStore(pool, StoreSent, time.Now),
			Pending: postgres.NewTimestampStore(pool, StorePending, time.Now),
			Chats:   postgres.NewTimestampStore(pool, StoreChats, time.Now),
		}, pool.Close, nil

	default:
		log.Infof(ctx, "timestamp stores: json files in %s", cfg.Storage.Dir)
		return worker.Stores{
			Sent:    jsonfile.Open(ctx, StoreSent, cfg.Storage.Path(cfg.Storage.SentFile), log),
			Pending: jsonfile.Open(ctx, StorePending, cfg.Storage.Path(cfg.Storage.PendingFile), log),
			Chats:   jsonfile.Open(ctx, StoreChats, cfg.Storage.Path(cfg.Storage.ChatsFile), log),
		}, func() {}, nil
	}
}

func storeMap(s worker.Stores) map[string]ports.TimestampStore {
	return map[string]ports.TimestampStore{
		StoreSent:    s.Sent,
		StorePending: s.Pending,
		StoreChats:   s.Chats,
	}
}
