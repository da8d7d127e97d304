package rest

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/Gunvolt24/order_notifier/internal/domain"
	"github.com/Gunvolt24/order_notifier/internal/ozon"
	"github.com/Gunvolt24/order_notifier/internal/ports"
	"github.com/Gunvolt24/order_notifier/pkg/httpx"
	"github.com/gin-gonic/gin"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 500
)

// Handler — обработчики служебного API. Только чтение: настройки меняются через бота.
type Handler struct {
	postings PostingReader
	settings ports.SettingsReader
	stores   map[string]ports.TimestampStore
	bot      BotStatus
	log      ports.Logger
	timeout  time.Duration
}

// NewHandler — bot может быть nil (бот не запущен); timeout <= 0 — без ограничения.
func NewHandler(postings PostingReader, settings ports.SettingsReader, stores map[string]ports.TimestampStore, bot BotStatus, log ports.Logger, timeout time.Duration) *Handler {
	return &Handler{postings: postings, settings: settings, stores: stores, bot: bot, log: log, timeout: timeout}
}

func (h *Handler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), h.timeout)
}

// statusResponse — пароль и шаблоны сюда не попадают.
type statusResponse struct {
	PrimaryEnabled  bool           `json:"primary_enabled"`
	FollowUpEnabled bool           `json:"follow_up_enabled"`
	LogChats        int            `json:"log_chats"`
	AuthorizedChats int            `json:"authorized_chats"`
	Stores          map[string]int `json:"stores"`
}

func (h *Handler) status(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	s := h.settings.Snapshot(ctx)
	resp := statusResponse{
		PrimaryEnabled:  s.PrimaryEnabled,
		FollowUpEnabled: s.FollowUpEnabled,
		LogChats:        len(s.LogChatIDs),
		Stores:          make(map[string]int, len(h.stores)),
	}
	if h.bot != nil {
		resp.AuthorizedChats = h.bot.AuthorizedCount()
	}
	for name, st := range h.stores {
		n, err := st.Len(ctx)
		if err != nil {
			h.log.Errorf(ctx, "store %s len failed: %v", name, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		resp.Stores[name] = n
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getPosting(c *gin.Context) {
	number := c.Param("number")
	if number == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty posting number"})
		return
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()

	detail, err := h.postings.GetPosting(ctx, number)
	if err != nil {
		var apiErr *ozon.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "posting not found"})
			return
		}
		h.log.Errorf(ctx, "GetPosting failed number=%s err=%v", number, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "marketplace request failed"})
		return
	}
	if detail == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "posting not found"})
		return
	}
	c.JSON(http.StatusOK, detail)
}

type storePage struct {
	Store   string              `json:"store"`
	Total   int                 `json:"total"`
	Limit   int                 `json:"limit"`
	Offset  int                 `json:"offset"`
	Entries []domain.CacheEntry `json:"entries"`
}

// listStore — записи хранилища постранично, от старых к новым.
func (h *Handler) listStore(c *gin.Context) {
	name := c.Param("name")
	st, ok := h.stores[name]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown store", "known": h.storeNames()})
		return
	}
	page, err := httpx.ParsePage(c, defaultPageLimit, maxPageLimit)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	entries, err := st.Entries(ctx)
	if err != nil {
		h.log.Errorf(ctx, "store %s entries failed: %v", name, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	from, to := page.Bounds(len(entries))
	items := entries[from:to]
	if items == nil {
		items = []domain.CacheEntry{}
	}
	c.JSON(http.StatusOK, storePage{Store: name, Total: len(entries), Limit: page.Limit, Offset: page.Offset, Entries: items})
}

func (h *Handler) storeNames() []string {
	names := make([]string, 0, len(h.stores))
	for n := range h.stores {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
