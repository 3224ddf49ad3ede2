package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/velstore/storefront-gateway/docs"
	"github.com/velstore/storefront-gateway/internal/api/handler"
	"github.com/velstore/storefront-gateway/internal/api/middleware"
	"github.com/velstore/storefront-gateway/internal/core/service"
	"github.com/velstore/storefront-gateway/internal/infrastructure/backend"
	"github.com/velstore/storefront-gateway/internal/infrastructure/config"
	redisdb "github.com/velstore/storefront-gateway/internal/infrastructure/db/redis"
	"github.com/velstore/storefront-gateway/internal/infrastructure/queue"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, audit *queue.Dispatcher, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("storefront"))

	// --- Dependencies ---
	sessions := service.NewSessionService(cfg.SessionSecret, cfg.SessionTTL)
	backendClient := backend.NewClient(cfg.BackendURL, 0, log)
	chatCache := redisdb.NewChatCache(rdb)
	chats := service.NewChatService(chatCache, backendClient, log)

	e.Use(middleware.Guard(middleware.GuardConfig{
		Sessions: sessions,
		Audit:    audit,
		Log:      log,
	}))

	authHandler := handler.NewAuthHandler(backendClient, sessions, cfg.SessionTTL, cfg.Env == "production")
	chatHandler := handler.NewChatHandler(chats)
	realtimeHandler := handler.NewRealtimeHandler(cfg.RealtimeURL, chatCache, log)

	// --- Auth routes ---
	e.POST("/api/auth/login", authHandler.Login)
	e.POST("/api/auth/logout", authHandler.Logout)
	e.GET("/api/auth/session", authHandler.Session)

	// --- Customer routes (cookie-gated inside the API namespace) ---
	customer := e.Group("", middleware.RequireCustomer(sessions))
	customer.GET("/api/chats/summary", chatHandler.Summary)
	customer.GET("/ws", realtimeHandler.Serve)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
