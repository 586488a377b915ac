package main

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"mechamind.backend/internal/config"
	"mechamind.backend/internal/interfaces/http/handlers"
	"mechamind.backend/internal/interfaces/http/middleware"
	"mechamind.backend/pkg/metrics"
)

const (
	serviceName    = "mechamind-backend"
	serviceVersion = "1.0.0"
)

type routeDeps struct {
	authHandler      *handlers.AuthHandler
	chatHandler      *handlers.ChatHandler
	partHandler      *handlers.PartHandler
	oilChangeHandler *handlers.OilChangeHandler
	adminHandler     *handlers.AdminHandler
	authMiddleware   gin.HandlerFunc
	adminMiddleware  gin.HandlerFunc
}

func newRouter(cfg *config.Config, d routeDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())

	applyCORSMiddleware(r, cfg.Server.CORSOrigins)
	registerHealthRoute(r)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	registerAPIV1Routes(r, d, cfg.RateLimit)
	return r
}

func applyCORSMiddleware(r *gin.Engine, origins []string) {
	r.Use(func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && (slices.Contains(origins, origin) || slices.Contains(origins, "*")) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept-Language, Idempotency-Key, X-Session-Id, X-User-Id, X-Request-ID")
		c.Header("Access-Control-Expose-Headers", handlers.ChatIDHeader+", X-Request-ID, Retry-After")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
}

func registerHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": serviceName,
			"version": serviceVersion,
		})
	})
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps, limits config.RateLimitConfig) {
	v1 := r.Group("/api/v1")
	v1.Use(middleware.RateLimit("api", limits.APIWindow, int64(limits.APIMax), middleware.ByClientIP))
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/signup", d.authHandler.Signup)
			auth.POST("/verify", d.authHandler.Verify)
			auth.POST("/resend-otp", d.authHandler.ResendOTP)
			auth.POST("/cancel-otp", d.authHandler.CancelOTP)
			auth.POST("/signin", d.authHandler.Signin)
			auth.POST("/signout", d.authHandler.Signout)
			auth.GET("/me", d.authMiddleware, d.authHandler.Me)
			auth.POST("/update-profile", d.authMiddleware, d.authHandler.UpdateProfile)
		}

		v1.POST("/chat",
			d.authMiddleware,
			middleware.RateLimit("chat", limits.ChatWindow, int64(limits.ChatMax), middleware.ByUser),
			d.chatHandler.Chat,
		)

		chats := v1.Group("/chats")
		chats.Use(d.authMiddleware)
		{
			chats.GET("", d.chatHandler.ListChats)
			chats.GET("/:id", d.chatHandler.GetChat)
			chats.DELETE("/:id", d.chatHandler.DeleteChat)
		}

		parts := v1.Group("/parts")
		{
			parts.GET("", d.partHandler.ListParts)
			parts.GET("/:id", d.partHandler.GetPart)
			parts.POST("", d.authMiddleware, d.adminMiddleware, d.partHandler.CreatePart)
			parts.PUT("/:id", d.authMiddleware, d.adminMiddleware, d.partHandler.UpdatePart)
			parts.DELETE("/:id", d.authMiddleware, d.adminMiddleware, d.partHandler.DeletePart)
		}

		oil := v1.Group("/oil-change")
		oil.Use(d.authMiddleware)
		{
			oil.GET("", d.oilChangeHandler.ListRecords)
			oil.POST("", d.oilChangeHandler.CreateRecord)
			oil.GET("/status", d.oilChangeHandler.Status)
			oil.PUT("/:id", d.oilChangeHandler.UpdateRecord)
			oil.DELETE("/:id", d.oilChangeHandler.DeleteRecord)
		}

		admin := v1.Group("/admin")
		{
			admin.POST("/setup", d.adminHandler.Setup)
			admin.GET("/check", d.authMiddleware, d.adminHandler.Check)
			admin.GET("/stats", d.authMiddleware, d.adminMiddleware, d.adminHandler.Stats)
			admin.PUT("/users/role", d.authMiddleware, d.adminMiddleware, d.adminHandler.SetRole)
		}
	}
}
