package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/derslik/derslik-api/api/swagger"
	"github.com/derslik/derslik-api/internal/handler"
	"github.com/derslik/derslik-api/internal/middleware"
	"github.com/derslik/derslik-api/internal/repository"
	"github.com/derslik/derslik-api/internal/service"
	"github.com/derslik/derslik-api/pkg/cache"
	"github.com/derslik/derslik-api/pkg/config"
	"github.com/derslik/derslik-api/pkg/database"
	"github.com/derslik/derslik-api/pkg/export"
	"github.com/derslik/derslik-api/pkg/jobs"
	"github.com/derslik/derslik-api/pkg/logger"
	"github.com/derslik/derslik-api/pkg/mailer"
	corsmiddleware "github.com/derslik/derslik-api/pkg/middleware/cors"
	reqidmiddleware "github.com/derslik/derslik-api/pkg/middleware/requestid"
)

// @title Derslik API
// @version 1.0.0
// @description Lesson planner with placement checks, recurring series, calendar views and reminders
// @BasePath /api/v1
// @schemes http

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, caching and reminder dedupe disabled", zap.Error(err))
		redisClient = nil
	}
	defer func() {
		if redisClient != nil {
			redisClient.Close()
		}
	}()

	validate := validator.New()

	lessonRepo := repository.NewLessonRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	userRepo := repository.NewUserRepository(db)

	metrics := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if redisClient != nil {
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metrics, cfg.Calendar.CacheTTL, logr, true)
	}

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "derslik-api",
	})

	settingsSvc := service.NewSettingsService(settingsRepo, nil, validate, logr)
	calendarSvc := service.NewCalendarService(lessonRepo, settingsSvc, cacheSvc, export.NewICSExporter(), logr, cfg.Calendar.CacheTTL, cfg.Calendar.FeedName)
	settingsSvc.AttachCalendarInvalidator(calendarSvc)

	lessonSvc := service.NewLessonService(lessonRepo, settingsSvc, calendarSvc, metrics, validate, logr, cfg.Scheduling.MaxSeriesInstances)
	studentSvc := service.NewStudentService(studentRepo, validate, logr)
	exportSvc := service.NewExportService(lessonRepo, nil, nil, logr)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var reminderQueue *jobs.Queue
	scheduler := cron.New()
	if cfg.Reminders.Enabled {
		var reminderSvc *service.ReminderService
		reminderQueue = jobs.NewQueue("lesson-reminders", func(ctx context.Context, job jobs.Job) error {
			return reminderSvc.HandleJob(ctx, job)
		}, jobs.QueueConfig{
			Workers:    cfg.Reminders.Workers,
			MaxRetries: cfg.Reminders.MaxRetries,
			Logger:     logr,
		})
		sender := mailer.NewResendMailer(cfg.Reminders.ResendAPIKey, cfg.Reminders.FromAddress, logr)
		reminderSvc = service.NewReminderService(lessonRepo, reminderQueue, cacheSvc, sender, metrics, logr, service.ReminderConfig{
			Lookahead: cfg.Reminders.Lookahead,
			To:        cfg.Reminders.ToAddress,
		})

		reminderQueue.Start(rootCtx)
		if _, err := scheduler.AddFunc(cfg.Reminders.CronSpec, func() {
			if _, err := reminderSvc.Run(rootCtx); err != nil {
				logr.Error("reminder scan failed", zap.Error(err))
			}
		}); err != nil {
			logr.Fatal("invalid reminders cron spec", zap.String("spec", cfg.Reminders.CronSpec), zap.Error(err))
		}
		scheduler.Start()
	}

	authHandler := handler.NewAuthHandler(authSvc)
	lessonHandler := handler.NewLessonHandler(lessonSvc)
	calendarHandler := handler.NewCalendarHandler(calendarSvc)
	settingsHandler := handler.NewSettingsHandler(settingsSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	var cachePing handler.Pinger
	if redisClient != nil {
		cachePing = redisPinger{client: redisClient}
	}
	metricsHandler := handler.NewMetricsHandler(metrics, db, cachePing)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
	auth.POST("/change-password", middleware.JWT(authSvc), authHandler.ChangePassword)
	auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)

	if cfg.Calendar.FeedEnabled {
		// calendar clients poll this URL and cannot send bearer tokens
		api.GET("/calendar/feed.ics", calendarHandler.Feed)
	}

	protected := api.Group("", middleware.JWT(authSvc))

	protected.GET("/lessons", lessonHandler.List)
	protected.POST("/lessons", lessonHandler.Create)
	protected.POST("/lessons/series", lessonHandler.CreateSeries)
	protected.GET("/lessons/series/:id", lessonHandler.ListSeries)
	protected.DELETE("/lessons/series/:id", lessonHandler.DeleteSeries)
	protected.GET("/lessons/:id", lessonHandler.Get)
	protected.PUT("/lessons/:id", lessonHandler.Update)
	protected.DELETE("/lessons/:id", lessonHandler.Delete)
	protected.POST("/lessons/:id/move", lessonHandler.Move)
	protected.POST("/placements/resolve", lessonHandler.ResolvePlacement)

	protected.GET("/calendar/view/:granularity", calendarHandler.View)

	protected.GET("/settings", settingsHandler.Get)
	protected.PUT("/settings/working-hours", settingsHandler.UpdateWorkingHours)
	protected.PUT("/settings/preferences", settingsHandler.UpdatePreferences)
	protected.GET("/settings/holidays", settingsHandler.ListCustomHolidays)
	protected.POST("/settings/holidays", settingsHandler.CreateCustomHoliday)
	protected.DELETE("/settings/holidays/:id", settingsHandler.DeleteCustomHoliday)
	protected.GET("/settings/holidays/national", settingsHandler.NationalHolidays)

	protected.GET("/students", studentHandler.List)
	protected.POST("/students", studentHandler.Create)
	protected.GET("/students/:id", studentHandler.Get)
	protected.PUT("/students/:id", studentHandler.Update)
	protected.DELETE("/students/:id", studentHandler.Delete)

	protected.GET("/exports/schedule", exportHandler.Schedule)
	protected.GET("/status", metricsHandler.Status)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-rootCtx.Done()
	logr.Info("shutting down")

	if cfg.Reminders.Enabled {
		scheduler.Stop()
		reminderQueue.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

// redisPinger adapts the go-redis client to the handler probe interface.
type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) PingContext(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
