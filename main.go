package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/tarpaulin-edu/course-service/internal/config"
	"github.com/tarpaulin-edu/course-service/internal/events"
	"github.com/tarpaulin-edu/course-service/internal/handlers"
	miniorepo "github.com/tarpaulin-edu/course-service/internal/repositories/minio"
	"github.com/tarpaulin-edu/course-service/internal/repositories/postgres"
	"github.com/tarpaulin-edu/course-service/internal/services"
	"github.com/tarpaulin-edu/course-service/internal/utils"
	"github.com/tarpaulin-edu/course-service/internal/validator"
	"github.com/tarpaulin-edu/course-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	slogLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	logger := utils.NewSlogLogger(slogLogger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Redis is an optional cache; the service runs without it.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = pkg.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("redis unavailable, running without cache", "error", err)
		}
	}

	blobClient, err := pkg.NewBlobClient(context.Background(), cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize blob storage: %v", err)
	}

	repoManager := postgres.NewRepositoryManager(postgres.RepositoryConfig{
		DB:          db,
		RedisClient: redisClient,
		AvatarStore: miniorepo.NewAvatarMinio(blobClient, cfg.Storage.Bucket),
	})
	if err := repoManager.Initialize(); err != nil {
		log.Fatalf("Failed to initialize repositories: %v", err)
	}

	watermillLogger := watermill.NewSlogLogger(slogLogger)
	var publisher events.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		publisher, err = events.NewKafkaPublisher(cfg.KafkaBrokers, watermillLogger)
		if err != nil {
			log.Fatalf("Failed to initialize kafka publisher: %v", err)
		}
	} else {
		publisher = events.NewChannelPublisher(watermillLogger)
	}

	v := validator.New()

	serviceManager := services.NewServiceManager(repoManager.GetRepository(), slogLogger, v, publisher, cfg.OIDC)
	if err := serviceManager.Initialize(context.Background()); err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	authMiddleware, err := handlers.NewOIDCAuthMiddleware(context.Background(), cfg.OIDC, repoManager.GetRepository().User())
	if err != nil {
		log.Fatalf("Failed to initialize authentication: %v", err)
	}

	handlerManager := handlers.NewHandlerManager(serviceManager, authMiddleware, logger)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	handlers.SetupMiddleware(router, logger)
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	go func() {
		logger.Info("starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	if err := serviceManager.Shutdown(ctx); err != nil {
		logger.Error("failed to shutdown services", "error", err)
	}
	if err := repoManager.Shutdown(ctx); err != nil {
		logger.Error("failed to shutdown repositories", "error", err)
	}

	logger.Info("server stopped")
}
