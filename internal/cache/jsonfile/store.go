package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/Gunvolt24/order_notifier/internal/domain"
	"github.com/Gunvolt24/order_notifier/internal/ports"
	"github.com/Gunvolt24/order_notifier/pkg/metrics"
)

// Проверка, что Store удовлетворяет интерфейсу ports.TimestampStore.
var _ ports.TimestampStore = (*Store)(nil)

// ErrPersist — изменение применено в памяти, но не записано на диск.
var ErrPersist = errors.New("persist cache file")

// TimeLayout — формат времени в файле (ISO-8601 с миллисекундами).
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// Store — хранилище «ключ → момент записи» в JSON-файле.
// Каждая мутация переписывает файл целиком до возврата.
type Store struct {
	name string
	path string
	now  func() time.Time

	mu      sync.Mutex
	entries map[string]time.Time
}

// Option — настройка Store.
type Option func(*Store)

// WithClock — источник текущего времени (для тестов).
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open — загружает хранилище из path. Отсутствующий или битый файл даёт
// пустое хранилище; причина пишется в лог, ошибка наружу не возвращается.
func Open(ctx context.Context, name, path string, log ports.Logger, opts ...Option) *Store {
	s := &Store{
		name:    name,
		path:    path,
		now:     time.Now,
		entries: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(s)
	}

	loaded, err := readFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Infof(ctx, "cache %s: file %s not found, starting empty", name, path)
	case err != nil:
		log.Warnf(ctx, "cache %s: %v, starting empty", name, err)
	default:
		s.entries = loaded
		log.Infof(ctx, "cache %s: loaded %d entries from %s", name, len(loaded), path)
	}
	s.reportSize()
	return s
}

func (s *Store) Name() string { return s.name }
func (s *Store) Path() string { return s.path }

func (s *Store) Contains(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[key]
	return ok, nil
}

// Insert — upsert; нулевой at означает «сейчас».
func (s *Store) Insert(_ context.Context, key string, at time.Time) error {
	if at.IsZero() {
		at = s.now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = at
	return s.persistLocked()
}

func (s *Store) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[key]; !ok {
		return nil
	}
	delete(s.entries, key)
	return s.persistLocked()
}

// Clear — очищает записи и удаляет файл.
func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]time.Time)
	s.reportSize()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w %s: %v", ErrPersist, s.path, err)
	}
	return nil
}

func (s *Store) EvictOlderThan(_ context.Context, age time.Duration) (int, error) {
	cutoff := s.now().Add(-age)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, at := range s.entries {
		if at.Before(cutoff) {
			delete(s.entries, key)
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}
	metrics.StoreEvicted.WithLabelValues(s.name).Add(float64(removed))
	return removed, s.persistLocked()
}

// RecordedAtOrBefore — ключи с моментом записи <= cutoff, от старых к новым.
func (s *Store) RecordedAtOrBefore(_ context.Context, cutoff time.Time) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []domain.CacheEntry
	for key, at := range s.entries {
		if !at.After(cutoff) {
			due = append(due, domain.CacheEntry{Key: key, At: at})
		}
	}
	sortEntries(due)

	keys := make([]string, 0, len(due))
	for _, e := range due {
		keys = append(keys, e.Key)
	}
	return keys, nil
}

func (s *Store) Len(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries), nil
}

func (s *Store) Entries(_ context.Context) ([]domain.CacheEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.CacheEntry, 0, len(s.entries))
	for key, at := range s.entries {
		out = append(out, domain.CacheEntry{Key: key, At: at})
	}
	sortEntries(out)
	return out, nil
}

// ------вспомогательные функции------

// persistLocked — пишет файл целиком; вызывается под s.mu.
func (s *Store) persistLocked() error {
	s.reportSize()

	raw := make(map[string]string, len(s.entries))
	for key, at := range s.entries {
		raw[key] = at.UTC().Format(TimeLayout)
	}
	if err := WriteJSONAtomic(s.path, raw); err != nil {
		return fmt.Errorf("%w %s: %v", ErrPersist, s.path, err)
	}
	return nil
}

func (s *Store) reportSize() {
	metrics.StoreSize.WithLabelValues(s.name).Set(float64(len(s.entries)))
}

func readFile(path string) (map[string]time.Time, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("malformed cache file %s: %w", path, err)
	}

	out := make(map[string]time.Time, len(raw))
	for key, value := range raw {
		at, err := time.Parse(time.RFC3339Nano, value)
		if err != nil {
			return nil, fmt.Errorf("malformed timestamp for %q in %s: %w", key, path, err)
		}
		out[key] = at
	}
	return out, nil
}

func sortEntries(entries []domain.CacheEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].At.Equal(entries[j].At) {
			return entries[i].Key < entries[j].Key
		}
		return entries[i].At.Before(entries[j].At)
	})
}
