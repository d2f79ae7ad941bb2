package route

import (
	"files-manager/backend/api/handler"
	"files-manager/backend/api/middleware"

	"github.com/gin-gonic/gin"
)

func SetApiRouter(route *gin.Engine, h *handler.Handler, opts Options) {
	limit := middleware.RateLimit(opts.RateLimitPerMinute)
	tokenAuth := middleware.TokenAuth(h.Auth)

	// Public routes
	route.GET("/status", h.GetStatus)
	route.GET("/stats", h.GetStats)
	route.POST("/users", limit, h.PostUser)

	// Session routes
	route.GET("/connect", limit, middleware.BasicAuth(h.Auth), h.GetConnect)
	route.GET("/disconnect", tokenAuth, h.GetDisconnect)
	route.GET("/users/me", tokenAuth, h.GetMe)

	fileRoute := route.Group("/files")
	{
		fileRoute.GET("/:id/data", middleware.OptionalTokenAuth(h.Auth), h.GetFileData)

		ownerRoute := fileRoute.Group("")
		ownerRoute.Use(tokenAuth)
		{
			ownerRoute.POST("", h.PostFile)
			ownerRoute.GET("", h.ListFiles)
			ownerRoute.GET("/:id", h.GetFile)
			ownerRoute.PUT("/:id/publish", h.PublishFile)
			ownerRoute.PUT("/:id/unpublish", h.UnpublishFile)
		}
	}
}
