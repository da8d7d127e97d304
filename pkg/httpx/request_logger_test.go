package httpx_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/Gunvolt24/order_notifier/pkg/httpx"
	"github.com/gin-gonic/gin"
)

type recLogger struct {
	mu    sync.Mutex
	infos []string
	errs  []string
}

func (l *recLogger) Infof(_ context.Context, f string, a ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, fmt.Sprintf(f, a...))
}
func (l *recLogger) Warnf(context.Context, string, ...any) {}
func (l *recLogger) Errorf(_ context.Context, f string, a ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errs = append(l.errs, fmt.Sprintf(f, a...))
}

func TestRequestLogger_SkipsProbesAndSplitsByStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	log := &recLogger{}
	r := gin.New()
	r.Use(httpx.RequestIDMiddleware(), httpx.RequestLogger(log))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for _, p := range []string{"/ping", "/ok", "/boom"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, p, http.NoBody))
	}

	if len(log.infos) != 1 || !strings.Contains(log.infos[0], "path=/ok") {
		t.Fatalf("ожидалась одна info-запись для /ok, got=%v", log.infos)
	}
	if len(log.errs) != 1 || !strings.Contains(log.errs[0], "status=500") {
		t.Fatalf("ожидалась одна error-запись для /boom, got=%v", log.errs)
	}
}
