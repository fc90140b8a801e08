package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"alumni-prep-backend/config"
	_ "alumni-prep-backend/docs" // Important for Swagger
	"alumni-prep-backend/internal/client/recommendation"
	"alumni-prep-backend/internal/delivery/http/middleware"
	v1 "alumni-prep-backend/internal/delivery/http/v1"
	"alumni-prep-backend/internal/repository/postgres"
	"alumni-prep-backend/internal/usecase"
	"alumni-prep-backend/pkg/database"
	"alumni-prep-backend/pkg/logger"
	"alumni-prep-backend/pkg/redis"
	"alumni-prep-backend/pkg/storage"
	"alumni-prep-backend/pkg/validation"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

// @title           Interview Prep & Alumni Connect API
// @version         1.0
// @description     Alumni mentor signup and interview practice list generation.
// @host            localhost:8080
// @BasePath        /v1
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	defer logger.Sync()
	logger.Log.Infow("Starting alumni prep backend", "port", cfg.Port, "env", cfg.Environment)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
	if err != nil {
		logger.Log.Errorw("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// 4. Setup Repositories
	alumniRepo := postgres.NewAlumniRepository(dbPool)

	// 5. Setup Object Storage
	s3Cfg := storage.S3Config{
		Provider:        storage.S3Provider(cfg.S3Provider),
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		Region:          cfg.S3Region,
		Bucket:          cfg.S3Bucket,
		PublicBaseURL:   cfg.S3PublicBaseURL,
		WasabiEndpoint:  cfg.WasabiEndpoint,
	}
	s3Cfg.ResolveWasabiEndpoint()
	s3Client, err := storage.NewS3Client(ctx, s3Cfg)
	if err != nil {
		logger.Log.Errorw("Failed to create S3 client", "error", err)
		os.Exit(1)
	}
	objectStore := storage.NewObjectStore(s3Client, s3Cfg)

	// 6. Setup UseCases
	directory := usecase.NewAlumniDirectory(alumniRepo, cfg.RecordStoreTimeout)
	if err := directory.Refresh(ctx); err != nil {
		logger.Log.Warnw("Initial alumni directory load failed", "error", err)
	}

	signupDeps := usecase.SignupDeps{
		Validate:       validation.New(),
		Uploader:       usecase.NewPictureUploader(objectStore, cfg.UploadTimeout),
		Repo:           alumniRepo,
		Directory:      directory,
		PersistTimeout: cfg.RecordStoreTimeout,
	}
	recs := recommendation.NewClient(cfg.RecommendationURL, cfg.RecommendationTimeout)

	sessions := usecase.NewSessionRegistry(signupDeps, recs, cfg.SessionIdleTTL)
	go sessions.Run(ctx, cfg.SessionSweepInterval)

	// 7. Setup Rate Limiter (Redis optional)
	var redisClient *goredis.Client
	redisClient, err = redis.Connect(ctx, redis.Config{URL: cfg.UpstashRedisURL, Password: cfg.UpstashRedisPassword})
	switch {
	case errors.Is(err, redis.ErrNotConfigured):
		redisClient = nil
	case err != nil:
		logger.Log.Warnw("Redis unavailable, rate limiting falls back to memory", "error", err)
		redisClient = nil
	default:
		defer redisClient.Close()
	}

	checks := map[string]usecase.HealthCheck{"database": dbPool.Ping}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	// 8. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		Sessions:    sessions,
		Directory:   directory,
		Health:      usecase.NewHealthUsecase(checks, 2*time.Second),
		RateLimiter: middleware.NewRateLimiter(redisClient),
		Config:      cfg,
	})

	// 9. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Errorw("Listen failed", "error", err)
			stop()
		}
	}()

	// Graceful Shutdown
	<-ctx.Done()
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
