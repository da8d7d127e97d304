//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	pgrepo "github.com/Gunvolt24/order_notifier/internal/repo/postgres"
	"github.com/Gunvolt24/order_notifier/internal/testutil"
)

func newStores(t *testing.T, now func() time.Time, names ...string) (context.Context, []*pgrepo.TimestampStore) {
	t.Helper()

	// длинный контекст — только на подъём контейнера
	ctxStart, cancelStart := context.WithTimeout(context.Background(), 2*time.Minute)
	t.Cleanup(cancelStart)

	pg, stopPG, err := testutil.StartPostgresTC(ctxStart)
	require.NoError(t, err)
	t.Cleanup(func() { _ = stopPG(context.Background()) })

	// короткий контекст — на сами БД-операции
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)

	require.NoError(t, testutil.ApplyMigrationsGoose(ctx, pg))
	// повторное применение — no-op
	require.NoError(t, pgrepo.Migrate(ctx, pg.Pool))

	stores := make([]*pgrepo.TimestampStore, 0, len(names))
	for _, n := range names {
		stores = append(stores, pgrepo.NewTimestampStore(pg.Pool, n, now))
	}
	return ctx, stores
}

// 1) Вставка, проверка, удаление; хранилища не видят чужих ключей
func TestTimestampStore_InsertContainsRemove_TC(t *testing.T) {
	t.Parallel()
	ctx, stores := newStores(t, nil, "sent", "chats")
	sent, chats := stores[0], stores[1]

	require.NoError(t, sent.Insert(ctx, "P-1", time.Time{}))
	ok, err := sent.Contains(ctx, "P-1")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = chats.Contains(ctx, "P-1")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, sent.Remove(ctx, "P-1"))
	require.NoError(t, sent.Remove(ctx, "P-1"))
	n, err := sent.Len(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
}

// 2) Вытеснение по возрасту и выборка «созревших» ключей
func TestTimestampStore_EvictAndDue_TC(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC)
	ctx, stores := newStores(t, func() time.Time { return now }, "pending")
	pending := stores[0]

	require.NoError(t, pending.Insert(ctx, "old", now.Add(-25*time.Hour)))
	require.NoError(t, pending.Insert(ctx, "due-b", now.Add(-13*time.Hour)))
	require.NoError(t, pending.Insert(ctx, "due-a", now.Add(-13*time.Hour)))
	require.NoError(t, pending.Insert(ctx, "fresh", now.Add(-time.Hour)))

	removed, err := pending.EvictOlderThan(ctx, 24*time.Hour)
	require.NoError(t, err)
	require.Equal(t, 1, removed)

	due, err := pending.RecordedAtOrBefore(ctx, now.Add(-12*time.Hour))
	require.NoError(t, err)
	require.Equal(t, []string{"due-a", "due-b"}, due)

	entries, err := pending.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, "fresh", entries[2].Key)
	require.True(t, entries[2].At.Equal(now.Add(-time.Hour)))

	require.NoError(t, pending.Clear(ctx))
	n, err := pending.Len(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
}

// 3) Повторная вставка обновляет момент записи
func TestTimestampStore_InsertIsUpsert_TC(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC)
	ctx, stores := newStores(t, func() time.Time { return now }, "sent")
	sent := stores[0]

	require.NoError(t, sent.Insert(ctx, "P", now.Add(-30*time.Hour)))
	require.NoError(t, sent.Insert(ctx, "P", now))

	removed, err := sent.EvictOlderThan(ctx, 24*time.Hour)
	require.NoError(t, err)
	require.Zero(t, removed)

	n, err := sent.Len(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}
