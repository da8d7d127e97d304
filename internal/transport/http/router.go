// Package rest — служебный HTTP-сервер: health, метрики, состояние рассылки и кешей.
package rest

import (
	"context"
	"net/http"

	"github.com/Gunvolt24/order_notifier/internal/domain"
	"github.com/Gunvolt24/order_notifier/pkg/httpx"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// PostingReader — чтение подробностей отправления у маркетплейса.
type PostingReader interface {
	GetPosting(ctx context.Context, postingNumber string) (*domain.PostingDetail, error)
}

// BotStatus — сведения о сессиях бота.
type BotStatus interface {
	AuthorizedCount() int
}

// NewRouter — роутер с middleware: recovery, otel (если serviceName задан), request-id, логирование.
func NewRouter(h *Handler, serviceName string) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery())
	if serviceName != "" {
		r.Use(otelgin.Middleware(serviceName))
	}
	r.Use(httpx.RequestIDMiddleware())
	r.Use(httpx.RequestLogger(h.log))

	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/status", h.status)
	r.GET("/postings/:number", h.getPosting)
	r.GET("/stores/:name", h.listStore)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})

	return r
}
