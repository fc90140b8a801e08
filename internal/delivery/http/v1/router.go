package v1

import (
	"net/http"
	"time"

	"alumni-prep-backend/config"
	"alumni-prep-backend/internal/delivery/http/middleware"
	"alumni-prep-backend/internal/delivery/http/response"
	"alumni-prep-backend/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	Sessions    SessionStore
	Directory   Directory
	Health      usecase.HealthUsecase
	RateLimiter *middleware.RateLimiter
	Config      *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	window := time.Duration(cfg.RateLimitWindowSeconds) * time.Second

	r := gin.New()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins(), cfg.IsProduction()))
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.ErrorHandler())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	v1.Use(deps.RateLimiter.Middleware(middleware.DefaultRateLimitConfig(cfg.RateLimitGlobalThreshold, window)))

	// Health Check
	v1.GET("/health", func(c *gin.Context) {
		if deps.Health == nil {
			response.Success(c, http.StatusOK, "System operational", nil)
			return
		}
		status, healthy := deps.Health.Check(c.Request.Context())
		if !healthy {
			response.Error(c, http.StatusServiceUnavailable, "System degraded", status)
			return
		}
		response.Success(c, http.StatusOK, "System operational", status)
	})

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	write := deps.RateLimiter.Middleware(middleware.WriteRateLimitConfig(cfg.RateLimitWriteThreshold, window))

	resolveSession := NewSessionHandler(v1, deps.Sessions)
	NewAlumniHandler(v1, deps.Directory)

	session := v1.Group("/sessions/:id")
	session.Use(resolveSession)
	{
		NewSignupHandler(session, write, cfg.MaxPictureBytes)
		NewPracticeHandler(session, write)
	}

	return r
}
