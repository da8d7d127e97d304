package httpx

import (
	"time"

	"github.com/Gunvolt24/order_notifier/internal/ports"
	"github.com/Gunvolt24/order_notifier/pkg/ctxmeta"
	"github.com/gin-gonic/gin"
)

// quietPaths — служебные пути, которые дёргаются пробами и скрейпером.
var quietPaths = map[string]struct{}{
	"/metrics": {},
	"/ping":    {},
	"/healthz": {},
}

// RequestLogger — middleware для логирования HTTP-запросов.
// Ответы 5xx пишутся как ошибки, остальные как info.
func RequestLogger(log ports.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if _, skip := quietPaths[path]; skip {
			return
		}
		if path == "" {
			path = c.Request.URL.Path
		}

		ctx := c.Request.Context()
		rid, _ := ctxmeta.RequestIDFromContext(ctx)
		sp, _ := ctxmeta.SpanIDFromContext(ctx)

		logf := log.Infof
		if c.Writer.Status() >= 500 {
			logf = log.Errorf
		}
		logf(
			ctx,
			"request id=%s span=%s method=%s path=%s status=%d ip=%s duration=%s size=%d",
			rid, sp,
			c.Request.Method,
			path,
			c.Writer.Status(),
			c.ClientIP(),
			time.Since(start),
			c.Writer.Size(),
		)
	}
}
