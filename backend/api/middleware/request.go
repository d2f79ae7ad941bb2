package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"files-manager/backend/common"
	fmerrors "files-manager/backend/common/errors"
	"files-manager/backend/library/metrics"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestID reuses the caller's X-Request-Id or generates one, and echoes it
// on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(common.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(common.RequestIDKey, id)
		c.Header(common.RequestIDHeader, id)
		c.Next()
	}
}

// RequestLogger writes one line per request and feeds the HTTP metrics. reg
// may be nil.
func RequestLogger(reg *metrics.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		if reg != nil {
			reg.RequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
			reg.RequestDuration.WithLabelValues(c.Request.Method, route).Observe(latency.Seconds())
		}

		fields := []zap.Field{
			zap.String("request_id", c.GetString(common.RequestIDKey)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		}
		if status >= http.StatusInternalServerError {
			zap.L().Warn("request", fields...)
			return
		}
		zap.L().Info("request", fields...)
	}
}

// Recovery turns panics into a 500 with the usual error body.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		common.SysError("panic recovered",
			zap.String("request_id", c.GetString(common.RequestIDKey)),
			zap.Any("panic", recovered),
			zap.Stack("stack"),
		)
		common.RespErrorStr(c, http.StatusInternalServerError, fmerrors.MsgInternalServer)
	})
}

// Timeout bounds the request context; store and storage calls made with it
// give up once d has elapsed.
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
