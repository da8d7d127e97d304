package httpx

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ErrBadPage — limit/offset в запросе не являются числами или offset < 0.
var ErrBadPage = errors.New("bad paging parameters")

// Page — параметры постраничного вывода.
type Page struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ClampInt — ограничение значения v в диапазоне [lo, hi].
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ParsePage — читает limit/offset из query. Отсутствующий limit — defaultLimit,
// limit вне [1, maxLimit] прижимается к границе.
func ParsePage(c *gin.Context, defaultLimit, maxLimit int) (Page, error) {
	p := Page{Limit: ClampInt(defaultLimit, 1, maxLimit)}

	if raw, ok := c.GetQuery("limit"); ok {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return Page{}, fmt.Errorf("%w: limit=%q", ErrBadPage, raw)
		}
		p.Limit = ClampInt(v, 1, maxLimit)
	}
	if raw, ok := c.GetQuery("offset"); ok {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return Page{}, fmt.Errorf("%w: offset=%q", ErrBadPage, raw)
		}
		p.Offset = v
	}
	return p, nil
}

// Bounds — срез [from, to) страницы для коллекции из total элементов.
func (p Page) Bounds(total int) (from, to int) {
	from = ClampInt(p.Offset, 0, total)
	to = ClampInt(from+p.Limit, from, total)
	return from, to
}
