package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Gunvolt24/order_notifier/internal/domain"
	"github.com/Gunvolt24/order_notifier/internal/ports"
	"github.com/Gunvolt24/order_notifier/pkg/metrics"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Проверка, что TimestampStore удовлетворяет интерфейсу ports.TimestampStore.
var _ ports.TimestampStore = (*TimestampStore)(nil)

// TimestampStore — хранилище «ключ → момент записи» в общей таблице,
// записи разных хранилищ различаются колонкой store.
type TimestampStore struct {
	pool *pgxpool.Pool
	name string
	now  func() time.Time
}

// NewTimestampStore — now может быть nil (тогда time.Now).
func NewTimestampStore(pool *pgxpool.Pool, name string, now func() time.Time) *TimestampStore {
	if now == nil {
		now = time.Now
	}
	return &TimestampStore{pool: pool, name: name, now: now}
}

func (s *TimestampStore) Name() string { return s.name }

func (s *TimestampStore) Contains(ctx context.Context, key string) (bool, error) {
	var ok bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM timestamp_entries WHERE store = $1 AND key = $2)
	`, s.name, key).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("%s contains: %w", s.name, err)
	}
	return ok, nil
}

// Insert — upsert: повторная вставка обновляет момент записи.
func (s *TimestampStore) Insert(ctx context.Context, key string, at time.Time) error {
	if at.IsZero() {
		at = s.now()
	}
	if _, err := s.pool.Exec(ctx, `
		INSERT INTO timestamp_entries (store, key, recorded_at) VALUES ($1, $2, $3)
		ON CONFLICT (store, key) DO UPDATE SET recorded_at = EXCLUDED.recorded_at
	`, s.name, key, at.UTC()); err != nil {
		return fmt.Errorf("%s insert: %w", s.name, err)
	}
	s.reportSize(ctx)
	return nil
}

func (s *TimestampStore) Remove(ctx context.Context, key string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM timestamp_entries WHERE store = $1 AND key = $2`, s.name, key)
	if err != nil {
		return fmt.Errorf("%s remove: %w", s.name, err)
	}
	if tag.RowsAffected() > 0 {
		s.reportSize(ctx)
	}
	return nil
}

func (s *TimestampStore) Clear(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM timestamp_entries WHERE store = $1`, s.name); err != nil {
		return fmt.Errorf("%s clear: %w", s.name, err)
	}
	metrics.StoreSize.WithLabelValues(s.name).Set(0)
	return nil
}

func (s *TimestampStore) EvictOlderThan(ctx context.Context, age time.Duration) (int, error) {
	cutoff := s.now().Add(-age).UTC()
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM timestamp_entries WHERE store = $1 AND recorded_at < $2
	`, s.name, cutoff)
	if err != nil {
		return 0, fmt.Errorf("%s evict: %w", s.name, err)
	}
	n := int(tag.RowsAffected())
	if n > 0 {
		metrics.StoreEvicted.WithLabelValues(s.name).Add(float64(n))
		s.reportSize(ctx)
	}
	return n, nil
}

// RecordedAtOrBefore — ключи с моментом записи <= cutoff, от старых к новым.
func (s *TimestampStore) RecordedAtOrBefore(ctx context.Context, cutoff time.Time) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT key FROM timestamp_entries
		WHERE store = $1 AND recorded_at <= $2
		ORDER BY recorded_at, key
	`, s.name, cutoff.UTC())
	if err != nil {
		return nil, fmt.Errorf("%s due keys: %w", s.name, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("%s due keys scan: %w", s.name, err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (s *TimestampStore) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM timestamp_entries WHERE store = $1`, s.name).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s len: %w", s.name, err)
	}
	return n, nil
}

func (s *TimestampStore) Entries(ctx context.Context) ([]domain.CacheEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT key, recorded_at FROM timestamp_entries
		WHERE store = $1
		ORDER BY recorded_at, key
	`, s.name)
	if err != nil {
		return nil, fmt.Errorf("%s entries: %w", s.name, err)
	}
	defer rows.Close()

	var out []domain.CacheEntry
	for rows.Next() {
		var e domain.CacheEntry
		if err := rows.Scan(&e.Key, &e.At); err != nil {
			return nil, fmt.Errorf("%s entries scan: %w", s.name, err)
		}
		e.At = e.At.UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

// reportSize — метрика размера; ошибка подсчёта не важна.
func (s *TimestampStore) reportSize(ctx context.Context) {
	if n, err := s.Len(ctx); err == nil {
		metrics.StoreSize.WithLabelValues(s.name).Set(float64(n))
	}
}
