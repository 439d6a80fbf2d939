// Package v1 provides HTTP API version 1.
package v1

import (
	"database/sql"

	"github.com/gin-gonic/gin"

	"warenbuchung/internal/domain/booking"
	"warenbuchung/internal/domain/catalog"
	"warenbuchung/internal/domain/gate"
	"warenbuchung/internal/domain/session"
	"warenbuchung/internal/domain/settings"
	"warenbuchung/internal/infrastructure/http/v1/handlers"
	"warenbuchung/internal/infrastructure/http/v1/middleware"
	"warenbuchung/pkg/logger"
)

// RouterConfig holds the wired services the router exposes.
type RouterConfig struct {
	// DB is the local store, used by readiness checks
	DB *sql.DB

	// Logger for request logging
	Logger *logger.Logger

	// SessionManager holds the app-global session
	SessionManager *session.Manager

	// Gate routes movement reads and writes
	Gate *gate.Gate

	// BookingService drives aggregation and staging
	BookingService *booking.Service

	// Resolver answers product lookups
	Resolver *catalog.Resolver

	// Searcher runs server-side catalog searches
	Searcher handlers.Searcher

	// SettingsService serves the goods-out pick lists
	SettingsService *settings.Service
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.Session(cfg.SessionManager))

	baseHandler := handlers.NewBaseHandler()

	// Health and status endpoints (no session required)
	statusHandler := handlers.NewStatusHandler(baseHandler, cfg.DB, cfg.Gate, cfg.SessionManager)
	health := router.Group("/health")
	{
		health.GET("/live", statusHandler.Live)
		health.GET("/ready", statusHandler.Ready)
	}

	// API v1
	v1 := router.Group("/api/v1")
	{
		authHandler := handlers.NewAuthHandler(baseHandler, cfg.SessionManager)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", authHandler.Me)
		}

		v1.GET("/status", statusHandler.Status)
		v1.POST("/status/probe", statusHandler.Probe)

		// Everything below works offline but needs a signed-in user.
		protected := v1.Group("")
		protected.Use(middleware.RequireSession(cfg.SessionManager))

		protected.POST("/status/sync", statusHandler.Sync)

		bookingHandler := handlers.NewBookingHandler(baseHandler, cfg.BookingService)
		bookings := protected.Group("/bookings")
		{
			bookings.GET("/aggregated", bookingHandler.Aggregated)
			bookings.GET("/staging", bookingHandler.Staging)
			bookings.PUT("/staging/meta", bookingHandler.SetMeta)
			bookings.POST("/staging/items", bookingHandler.Stage)
			bookings.POST("/staging/adjust", bookingHandler.AdjustQuantity)
			bookings.POST("/staging/quantity", bookingHandler.SetQuantity)
			bookings.POST("/staging/commit", bookingHandler.Commit)
			bookings.POST("/staging/discard", bookingHandler.Discard)
		}

		catalogHandler := handlers.NewCatalogHandler(baseHandler, cfg.Resolver, cfg.Searcher)
		products := protected.Group("/products")
		{
			products.GET("/resolve", catalogHandler.Resolve)
			products.GET("/search", catalogHandler.Search)
			products.POST("/unknown", catalogHandler.CreateUnknown)
		}

		settingsHandler := handlers.NewSettingsHandler(baseHandler, cfg.SettingsService)
		settingsGroup := protected.Group("/settings")
		{
			settingsGroup.GET("/reasons", settingsHandler.Reasons)
			settingsGroup.GET("/justifications", settingsHandler.Justifications)
		}
	}

	return router
}
