package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/authgate/backend/internal/config"
	"github.com/authgate/backend/internal/db"
	"github.com/authgate/backend/internal/handler"
	"github.com/authgate/backend/internal/model"
	"github.com/authgate/backend/internal/service"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal("postgres connect failed", zap.Error(err))
	}
	defer pool.Close()

	store := &db.Postgres{Pool: pool}
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Fatal("schema bootstrap failed", zap.Error(err))
	}

	authService, err := service.NewAuthService(store, store, cfg.Auth, logger)
	if err != nil {
		logger.Fatal("auth service init failed", zap.Error(err))
	}
	apiKeyService := service.NewAPIKeyService(store, logger)
	agePolicy := service.NewAgePolicy(store)

	if cfg.Admin.Email != "" || cfg.Admin.Password != "" {
		if err := authService.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
			logger.Fatal("admin seed failed", zap.Error(err))
		}
	}

	authHandler := handler.NewAuthHandler(authService)
	adminHandler := handler.NewAdminHandler(authService, apiKeyService)
	partnerHandler := handler.NewPartnerHandler()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(handler.RequestID())
	router.Use(handler.CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/healthz", handler.Healthz)

	auth := router.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", authHandler.Logout)
	}

	// Bearer is the default gate for the API group; gates and policies are
	// declared in order and each one can short-circuit the request.
	api := router.Group("/api/v1", handler.BearerAuth(authService))
	{
		api.GET("/me", authHandler.Me)
		api.GET("/content/adult", handler.RequireAdult(agePolicy), handler.AdultContent)

		admin := api.Group("/admin", handler.RequireRole(model.RoleAdmin))
		{
			admin.GET("/apikeys", adminHandler.ListAPIKeys)
			admin.POST("/apikeys", adminHandler.CreateAPIKey)
			admin.DELETE("/apikeys/:id", adminHandler.DeactivateAPIKey)
			admin.PUT("/users/:id/role", adminHandler.UpdateUserRole)
		}
	}

	// Partner prefixes use the API-key gate instead of bearer tokens.
	for _, prefix := range cfg.APIKey.PathPrefixes {
		partner := router.Group(prefix, handler.APIKeyAuth(apiKeyService, cfg.APIKey.Header))
		partner.GET("/ping", partnerHandler.Ping)
		partner.POST("/events", partnerHandler.ReportEvent)
	}

	logger.Info("listening", zap.String("port", cfg.Server.Port))
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
