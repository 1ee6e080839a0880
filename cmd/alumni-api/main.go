package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/alumni-mentorship-api/api/swagger"
	"github.com/noah-isme/alumni-mentorship-api/internal/handler"
	"github.com/noah-isme/alumni-mentorship-api/internal/middleware"
	"github.com/noah-isme/alumni-mentorship-api/internal/models"
	"github.com/noah-isme/alumni-mentorship-api/internal/repository"
	"github.com/noah-isme/alumni-mentorship-api/internal/service"
	"github.com/noah-isme/alumni-mentorship-api/pkg/cache"
	"github.com/noah-isme/alumni-mentorship-api/pkg/config"
	"github.com/noah-isme/alumni-mentorship-api/pkg/database"
	"github.com/noah-isme/alumni-mentorship-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/alumni-mentorship-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/alumni-mentorship-api/pkg/middleware/requestid"
)

// @title Alumni Mentorship API
// @version 1.0.0
// @description Mentor capacity, FIFO waiting queue and notification mailbox for the alumni network
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		applied, err := database.Migrate(ctx, db)
		if err != nil {
			logr.Fatal("failed to apply migrations", zap.Error(err))
		}
		logr.Info("migrations applied", zap.Int("count", applied))
	}

	var redisClient *redis.Client
	if cfg.Mentorship.CacheEnabled || cfg.Notifications.PushEnabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, cache and push disabled", zap.Error(err))
			redisClient = nil
		}
	}

	metrics := service.NewMetricsService()
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	dispatcher := service.NewNotificationDispatcher(cacheRepo, metrics, logr, service.NotificationDispatcherConfig{
		Enabled:       cfg.Notifications.PushEnabled && cacheRepo.Enabled(),
		Workers:       cfg.Notifications.PushWorkers,
		Retries:       cfg.Notifications.PushRetries,
		RetryDelay:    500 * time.Millisecond,
		ChannelPrefix: cfg.Notifications.ChannelPrefix,
	})
	dispatcher.Start(ctx)
	defer dispatcher.Stop()

	router := newRouter(cfg, logr, db, redisClient, cacheRepo, metrics, dispatcher)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

func newRouter(
	cfg *config.Config,
	logr *zap.Logger,
	db *sqlx.DB,
	redisClient *redis.Client,
	cacheRepo *repository.CacheRepository,
	metrics *service.MetricsService,
	dispatcher *service.NotificationDispatcher,
) *gin.Engine {
	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	mentorshipRepo := repository.NewMentorshipRepository(db)
	profileRepo := repository.NewMentorProfileRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Mentorship.CacheTTL, logr, cfg.Mentorship.CacheEnabled && redisClient != nil)
	authSvc := service.NewAuthService(logr, service.AuthConfig{AccessTokenSecret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer})
	mentorshipSvc := service.NewMentorshipService(mentorshipRepo, notificationRepo, userRepo, dispatcher, db, cacheSvc, metrics, logr,
		service.MentorshipServiceConfig{SummaryTTL: cfg.Mentorship.CacheTTL})
	availabilitySvc := service.NewAvailabilityService(profileRepo, userRepo, cacheSvc, validate, logr, cfg.Mentorship.CacheTTL)
	notificationSvc := service.NewNotificationService(notificationRepo, validate, logr)

	mentorshipHandler := handler.NewMentorshipHandler(mentorshipSvc)
	alumniHandler := handler.NewAlumniHandler(availabilitySvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)
	metricsHandler := handler.NewMetricsHandler(metrics, map[string]handler.Pinger{
		"postgres": db,
		"redis":    cacheRepo,
	})

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	if cfg.Metrics.Enabled {
		r.GET("/metrics", metricsHandler.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(authSvc))

	students := middleware.RequireRoles(models.RoleStudent)
	alumni := middleware.RequireRoles(models.RoleAlumni)

	mentorship := api.Group("/mentorship")
	mentorship.POST("/request/:alumniId", students, mentorshipHandler.Submit)
	mentorship.GET("/my-requests", students, mentorshipHandler.Mine)
	mentorship.GET("/incoming", alumni, mentorshipHandler.Incoming)
	mentorship.GET("/accepted", alumni, mentorshipHandler.Accepted)
	mentorship.GET("/accepted/export", alumni, mentorshipHandler.Export)
	mentorship.GET("/queue", alumni, mentorshipHandler.Queue)
	mentorship.GET("/summary", alumni, mentorshipHandler.Summary)
	mentorship.POST("/:requestId/accept", alumni, mentorshipHandler.Accept)
	mentorship.POST("/:requestId/reject", alumni, mentorshipHandler.Reject)

	alumniRoutes := api.Group("/alumni")
	alumniRoutes.GET("/suggestions", students, alumniHandler.Suggestions)
	alumniRoutes.PUT("/me/mentorship", alumni,
		middleware.Audit(userRepo, logr, models.AuditActionAvailabilityUpdate, "alumni_profiles"),
		alumniHandler.UpdateMentorship)
	alumniRoutes.GET("/:id/availability", alumniHandler.Availability)

	notifications := api.Group("/notifications")
	notifications.GET("", notificationHandler.List)
	notifications.GET("/unread-count", notificationHandler.UnreadCount)
	notifications.PATCH("/:id/read", notificationHandler.MarkRead)

	return r
}
