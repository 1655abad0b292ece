package httpserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"habittracker/pkg/logger"
	"habittracker/pkg/metrics"
	"habittracker/pkg/trace"
	"habittracker/pkg/util"
)

// TraceMiddleware propagates X-Trace-ID into the request context.
func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := trace.FromHeader(c.GetHeader(trace.HeaderName))
		c.Request = c.Request.WithContext(trace.WithContext(c.Request.Context(), traceID))
		c.Header(trace.HeaderName, traceID)
		c.Next()
	}
}

// RequestLogMiddleware 请求日志
func RequestLogMiddleware(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		logger.WithTrace(c.Request.Context(), log).Info("HTTP Request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
		)
	}
}

// MetricsMiddleware records latency by route template, not raw path,
// so habit ids do not become label values.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordHTTPRequestDuration(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

// FormTokenMiddleware rejects form posts without a valid page token and
// exposes the token id to handlers under util.FormTokenIDKey.
func FormTokenMiddleware(tokens *util.FormTokens, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := tokens.Verify(c.PostForm("form_token"))
		if err != nil {
			logger.WithTrace(c.Request.Context(), log).Warn("Rejected form post",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
			c.String(http.StatusForbidden, "invalid or expired form, reload the page and try again")
			c.Abort()
			return
		}
		c.Set(util.FormTokenIDKey, id)
		c.Next()
	}
}
