package app

import (
	"time"
	"writequest_app/docs"
	"writequest_app/internal/config"
	"writequest_app/internal/middleware"
	"writequest_app/pkg/monitoring"
	"writequest_app/pkg/security"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)

		// 配对码认领走小额限流，防止暴力猜码
		public.POST("/pairing/claim", security.RateLimiter(10, time.Minute), c.pairing.Claim)
	}

	// 移动端接口，托管认证令牌
	appGroup := router.Group("/api")
	appGroup.Use(middleware.AppAuthMiddleware(cfg))
	{
		appGroup.POST("/pairing/codes", c.pairing.IssueCode)
		appGroup.POST("/profile/avatar", c.profile.UploadAvatar)
	}

	// 网页编辑器接口，编辑器会话令牌
	editorAuth := middleware.EditorAuthMiddleware(a.services.pairing)
	router.DELETE("/api/pairing/session", editorAuth, c.pairing.Revoke)

	editor := router.Group("/api/editor")
	editor.Use(editorAuth)
	{
		editor.GET("/project", c.pairing.GetProject)
		editor.PUT("/project", c.pairing.SaveProject)
		editor.GET("/prompt", c.pairing.GetPrompt)
	}
}
