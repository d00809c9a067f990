package app

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"blogmodapk-backend/internal/authorization"
	"blogmodapk-backend/internal/middleware"
	"blogmodapk-backend/pkg/logger"
)

func (a *Application) initRouter() {
	if a.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(logger.GinLogger())
	if a.cfg.EnableMetrics {
		router.Use(middleware.MetricsMiddleware())
	}
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     a.cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "If-None-Match", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "ETag", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(middleware.RateLimitMiddleware(a.rateLimiter))

	router.GET("/health", a.health)
	if a.cfg.EnableMetrics {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	h := a.handlers
	requireSession := middleware.AuthMiddleware(a.services.Auth)
	optionalSession := middleware.OptionalAuthMiddleware(a.services.Auth)

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/logout", h.Auth.Logout)
		auth.GET("/me", requireSession, h.Auth.Me)

		posts := v1.Group("/posts")
		posts.GET("", h.Post.List)
		posts.GET("/search", h.Post.List)
		posts.GET("/recent", h.Post.Recent)
		posts.GET("/featured", h.Post.Featured)
		posts.GET("/related", h.Post.Related)
		posts.GET("/suggestions", h.Post.Suggestions)
		posts.GET("/:slug", h.Post.GetBySlug)
		posts.POST("/:slug/views", h.Post.RecordView)
		posts.POST("/:slug/downloads", optionalSession, h.Post.RecordDownload)
		posts.GET("/:slug/comments", h.Comment.Thread)
		posts.POST("/:slug/comments", requireSession, h.Comment.Create)

		v1.GET("/categories", h.Category.GetAll)
		v1.GET("/categories/:slug", h.Category.GetBySlug)
		v1.GET("/categories/:slug/posts", h.Category.Posts)
		v1.GET("/tags", h.Tag.GetAll)
		v1.GET("/settings/public", h.Setting.Public)

		admin := v1.Group("/admin")
		admin.Use(requireSession, middleware.RequirePermission(authorization.PermissionAccessAdmin))
		{
			admin.GET("/posts", h.AdminPost.List)
			admin.GET("/posts/:id", h.AdminPost.Get)
			admin.POST("/posts", h.AdminPost.Create)
			admin.PATCH("/posts/:id", h.AdminPost.Update)
			admin.DELETE("/posts/:id", h.AdminPost.Delete)

			admin.GET("/categories", h.Category.AdminList)
			admin.POST("/categories", h.Category.Create)
			admin.PATCH("/categories/:id", h.Category.Update)
			admin.DELETE("/categories/:id", h.Category.Delete)

			admin.GET("/tags", h.Tag.GetAll)
			admin.POST("/tags", h.Tag.Create)
			admin.PATCH("/tags/:id", h.Tag.Update)
			admin.DELETE("/tags/:id", h.Tag.Delete)

			admin.GET("/media", h.Media.List)
			admin.POST("/media", h.Media.Create)
			admin.DELETE("/media/:id", h.Media.Delete)

			admin.GET("/comments", h.Comment.List)
			admin.PATCH("/comments/:id", h.Comment.UpdateStatus)
			admin.DELETE("/comments/:id", h.Comment.Delete)

			admin.GET("/users", h.User.List)
			admin.POST("/users", h.User.Create)
			admin.PATCH("/users/:id", h.User.Update)
			admin.DELETE("/users/:id", h.User.Delete)

			admin.GET("/settings", h.Setting.GetAll)
			admin.PUT("/settings", h.Setting.Update)

			admin.GET("/stats", h.Stats.Dashboard)
			admin.GET("/stats/downloads", h.Stats.Downloads)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		body := gin.H{"error": "Route not found"}
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			body["path"] = c.Request.URL.Path
		}
		c.JSON(http.StatusNotFound, body)
	})

	a.router = router
}

func (a *Application) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{"database": "ok", "cache": "ok"}
	status := http.StatusOK

	if sqlDB, err := a.db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		checks["database"] = "unavailable"
		status = http.StatusServiceUnavailable
	}
	if !a.cache.Enabled() {
		checks["cache"] = "disabled"
	} else if err := a.cache.Ping(ctx); err != nil {
		checks["cache"] = "unavailable"
		status = http.StatusServiceUnavailable
	}

	state := "healthy"
	if status != http.StatusOK {
		state = "unhealthy"
	}
	c.JSON(status, gin.H{
		"status": state,
		"checks": checks,
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
