package validate

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"
)

// CacheReport — результат проверки файла кеша ключ → время.
type CacheReport struct {
	Valid   int
	Invalid []string // ключи с неразборчивым временем
}

func (r CacheReport) String() string {
	return fmt.Sprintf("%d valid / %d invalid", r.Valid, len(r.Invalid))
}

// CacheFile — проверяет, что поток содержит JSON-объект, где каждое значение
// является временем в формате ISO-8601.
func CacheFile(r io.Reader) (CacheReport, error) {
	var raw map[string]string
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return CacheReport{}, fmt.Errorf("invalid json: %w", err)
	}

	var rep CacheReport
	for key, ts := range raw {
		if _, err := time.Parse(time.RFC3339Nano, ts); err != nil || key == "" {
			rep.Invalid = append(rep.Invalid, key)
			continue
		}
		rep.Valid++
	}
	sort.Strings(rep.Invalid)
	return rep, nil
}
