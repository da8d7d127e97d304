package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/Gunvolt24/order_notifier/internal/cache/jsonfile"
	"github.com/Gunvolt24/order_notifier/internal/domain"
	"github.com/Gunvolt24/order_notifier/internal/ports"
)

// Проверка, что Store удовлетворяет интерфейсу ports.SettingsStore.
var _ ports.SettingsStore = (*Store)(nil)

// ErrPersist — настройки изменены в памяти, но не записаны на диск.
var ErrPersist = errors.New("persist settings")

// Store — настройки рассылки в JSON-файле. Все чтения и записи сериализованы
// через RWMutex: писатель один (бот), читатели получают копии.
type Store struct {
	path string

	mu  sync.RWMutex
	cur domain.Settings
}

// Open — загружает настройки из path. При отсутствии или порче файла
// берутся значения по умолчанию и сразу же сохраняются.
func Open(ctx context.Context, path, defaultPassword string, log ports.Logger) *Store {
	s := &Store{path: path}

	loaded, err := readFile(path)
	switch {
	case err == nil:
		s.cur = loaded.Clone()
		if loaded.LogChatIDs == nil {
			// старый файл без logChatIds
			if perr := s.persistLocked(); perr != nil {
				log.Warnf(ctx, "settings: %v", perr)
			}
		}
		log.Infof(ctx, "settings: loaded from %s", path)
		return s
	case errors.Is(err, os.ErrNotExist):
		log.Infof(ctx, "settings: %s not found, using defaults", path)
	default:
		log.Warnf(ctx, "settings: %v, using defaults", err)
	}

	s.cur = Defaults(defaultPassword)
	if perr := s.persistLocked(); perr != nil {
		log.Warnf(ctx, "settings: %v", perr)
	}
	return s
}

// Snapshot — неизменяемая копия текущих настроек.
func (s *Store) Snapshot(_ context.Context) domain.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur.Clone()
}

func (s *Store) SetPassword(_ context.Context, password string) error {
	return s.update(func(st *domain.Settings) { st.Password = password })
}

func (s *Store) SetPrimaryTemplate(_ context.Context, text string) error {
	return s.update(func(st *domain.Settings) { st.PrimaryTemplate = text })
}

func (s *Store) SetFollowUpTemplate(_ context.Context, text string) error {
	return s.update(func(st *domain.Settings) { st.FollowUpTemplate = text })
}

func (s *Store) TogglePrimary(_ context.Context) (bool, error) {
	var now bool
	err := s.update(func(st *domain.Settings) {
		st.PrimaryEnabled = !st.PrimaryEnabled
		now = st.PrimaryEnabled
	})
	return now, err
}

func (s *Store) ToggleFollowUp(_ context.Context) (bool, error) {
	var now bool
	err := s.update(func(st *domain.Settings) {
		st.FollowUpEnabled = !st.FollowUpEnabled
		now = st.FollowUpEnabled
	})
	return now, err
}

func (s *Store) ToggleLogs(_ context.Context, chatID int64) (bool, error) {
	var subscribed bool
	err := s.update(func(st *domain.Settings) {
		if i := slices.Index(st.LogChatIDs, chatID); i >= 0 {
			st.LogChatIDs = slices.Delete(st.LogChatIDs, i, i+1)
			return
		}
		st.LogChatIDs = append(st.LogChatIDs, chatID)
		subscribed = true
	})
	return subscribed, err
}

func (s *Store) LogChatIDs(_ context.Context) []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.cur.LogChatIDs)
}

// update — read-modify-write под эксклюзивной блокировкой с сохранением.
func (s *Store) update(fn func(*domain.Settings)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.cur.Clone()
	fn(&next)
	s.cur = next
	return s.persistLocked()
}

func (s *Store) persistLocked() error {
	if err := jsonfile.WriteJSONAtomic(s.path, s.cur); err != nil {
		return fmt.Errorf("%w %s: %v", ErrPersist, s.path, err)
	}
	return nil
}

func readFile(path string) (domain.Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Settings{}, err
	}
	var st domain.Settings
	if err := json.Unmarshal(data, &st); err != nil {
		return domain.Settings{}, fmt.Errorf("malformed settings file %s: %w", path, err)
	}
	if st.Password == "" {
		return domain.Settings{}, fmt.Errorf("malformed settings file %s: empty password", path)
	}
	return st, nil
}
