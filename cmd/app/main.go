package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"taskdeck/internal/api"
	"taskdeck/internal/notifier"
	"taskdeck/internal/repository"
	"taskdeck/internal/service"
	"taskdeck/pkg/auth"
	"taskdeck/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	err = logger.Initialize(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zapLogger := logger.Logger()

	repo, err := repository.New(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to initialize repository", zap.Error(err))
	}
	defer repo.Close()

	bearerAuth := auth.NewBearerAuth(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)
	hub := api.NewHub()

	userService := service.NewUserService(repo, bearerAuth)
	taskService := service.NewTaskService(repo)
	achievementService := service.NewAchievementService(repo, hub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Telegram.BotToken != "" {
		n, err := notifier.New(cfg.Telegram.BotToken, repo, time.Duration(cfg.Telegram.NotifyIntervalSeconds)*time.Second)
		if err != nil {
			zapLogger.Fatal("Failed to initialize telegram notifier", zap.Error(err))
		}
		go n.Run(ctx)
		zapLogger.Info("Telegram notifier started")
	}

	router := gin.New()
	router.Use(gin.Recovery())

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{
		http.MethodHead,
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
	}
	config.AllowHeaders = []string{"*"}
	config.AllowCredentials = true
	config.MaxAge = 12 * time.Hour

	router.Use(cors.New(config))

	a := router.Group("/api/v1")
	api.NewUserRoutes(a, userService, bearerAuth)
	api.NewTaskRoutes(a, taskService, bearerAuth)
	api.NewAchievementRoutes(a, achievementService, bearerAuth)
	api.NewWSRoutes(a, hub, bearerAuth)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	zapLogger.Info("Starting server", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		zapLogger.Fatal("Failed to start server", zap.Error(err))
	}
}
