package route

import (
	"time"

	"files-manager/backend/api/handler"
	"files-manager/backend/api/middleware"
	"files-manager/backend/library/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Options struct {
	RequestTimeout     time.Duration
	RateLimitPerMinute int
	Metrics            *metrics.Registry
}

// SetRouter installs the global middleware chain and every route on route.
func SetRouter(route *gin.Engine, h *handler.Handler, opts Options) {
	route.Use(middleware.RequestID())
	route.Use(middleware.RequestLogger(opts.Metrics))
	route.Use(middleware.Recovery())
	route.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:    []string{"Content-Type", "Content-Encoding", "Authorization", "X-Token", "X-Request-Id"},
		ExposeHeaders:   []string{"Content-Length", "X-Request-Id"},
		MaxAge:          12 * time.Hour,
	}))
	route.Use(middleware.GzipDecodeMiddleware())
	route.Use(middleware.GzipEncodeMiddleware())
	route.Use(middleware.Timeout(opts.RequestTimeout))

	SetApiRouter(route, h, opts)
	if opts.Metrics != nil {
		route.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}
	route.NoRoute(handler.NoRoute)
}
