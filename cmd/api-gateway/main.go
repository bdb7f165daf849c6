package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/mkurbatov/lessonhub-api/api/swagger"
	"github.com/mkurbatov/lessonhub-api/internal/catalog"
	"github.com/mkurbatov/lessonhub-api/internal/handler"
	"github.com/mkurbatov/lessonhub-api/internal/middleware"
	"github.com/mkurbatov/lessonhub-api/internal/repository"
	"github.com/mkurbatov/lessonhub-api/internal/service"
	"github.com/mkurbatov/lessonhub-api/pkg/cache"
	"github.com/mkurbatov/lessonhub-api/pkg/config"
	"github.com/mkurbatov/lessonhub-api/pkg/database"
	"github.com/mkurbatov/lessonhub-api/pkg/jobs"
	"github.com/mkurbatov/lessonhub-api/pkg/logger"
	corsmiddleware "github.com/mkurbatov/lessonhub-api/pkg/middleware/cors"
	reqidmiddleware "github.com/mkurbatov/lessonhub-api/pkg/middleware/requestid"
)

// @title LessonHub API
// @version 0.1.0
// @description Tutoring back office: availability, scheduling, purchases and calendar sync
// @BasePath /
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	var cacheRepo service.CacheRepository
	if cfg.Availability.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, availability cache disabled", "error", err)
			cfg.Availability.CacheEnabled = false
		} else {
			defer redisClient.Close()
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
		}
	}

	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
	}

	teacherRepo := repository.NewTeacherRepository(db)
	timelineRepo := repository.NewTimelineRepository(db)
	classRepo := repository.NewClassRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	eventRepo := repository.NewExternalEventRepository(db)

	registry := catalog.Default()
	products := catalog.DefaultProducts()
	validate := validator.New()

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Availability.CacheTTL, logr, cfg.Availability.CacheEnabled)
	availabilitySvc := service.NewAvailabilityService(
		teacherRepo, timelineRepo, registry, cacheSvc, metricsSvc, validate, logr,
		cfg.Availability.SlotGranularity, cfg.Availability.PlanningDays)
	schedulingSvc := service.NewSchedulingService(db, classRepo, timelineRepo, teacherRepo, registry, availabilitySvc, validate, logr)
	purchaseSvc := service.NewPurchaseService(db, classRepo, subRepo, customerRepo, products, registry, validate, logr)
	syncSvc := service.NewSyncService(
		eventRepo, service.NewHTTPEventFetcher(nil), service.NewLogNotifier(logr),
		availabilitySvc, metricsSvc, logr)
	exportSvc := service.NewExportService(teacherRepo, timelineRepo, registry, logr)

	availabilityHandler := handler.NewAvailabilityHandler(availabilitySvc)
	workingHoursHandler := handler.NewWorkingHoursHandler(availabilitySvc)
	schedulingHandler := handler.NewSchedulingHandler(schedulingSvc)
	purchaseHandler := handler.NewPurchaseHandler(purchaseSvc)
	syncHandler := handler.NewSyncHandler(syncSvc, eventRepo)
	exportHandler := handler.NewExportHandler(exportSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	if cfg.Metrics.Enabled {
		r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/availability/teachers", availabilityHandler.FreeTeachers)
		api.GET("/availability/dates", availabilityHandler.PlanningDates)

		api.GET("/teachers/:id/slots", availabilityHandler.FreeSlots)
		api.GET("/teachers/:id/working-hours", workingHoursHandler.List)
		api.PUT("/teachers/:id/working-hours", workingHoursHandler.Replace)
		api.GET("/teachers/:id/timetable/export", exportHandler.Timetable)

		api.GET("/classes/:id/can-be-scheduled", schedulingHandler.CanBeScheduled)
		api.POST("/classes/:id/assign", schedulingHandler.Assign)
		api.POST("/classes/:id/schedule", schedulingHandler.Schedule)
		api.POST("/classes/:id/unschedule", schedulingHandler.Unschedule)

		api.POST("/purchases/classes", purchaseHandler.BuyClass)
		api.POST("/purchases/subscriptions", purchaseHandler.BuySubscription)
		api.PATCH("/subscriptions/:id", purchaseHandler.UpdateSubscription)
		api.GET("/subscriptions/:id/classes", purchaseHandler.SubscriptionClasses)
		api.GET("/customers/:id/classes", purchaseHandler.CustomerClasses)
		api.GET("/customers/:id/subscriptions", purchaseHandler.CustomerSubscriptions)
		api.GET("/customers/:id/lesson-types", purchaseHandler.CustomerLessonTypes)

		api.GET("/sync/sources", syncHandler.ListSources)
		api.GET("/sync/sources/:id/events", syncHandler.ListEvents)
		api.PUT("/sync/sources/:id/events", syncHandler.ReplaceEvents)
		api.POST("/sync/sources/:id/run", syncHandler.SyncSource)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var syncQueue *jobs.Queue
	if cfg.Sync.Enabled {
		syncQueue = jobs.NewQueue("calendar-sync", func(ctx context.Context, job jobs.Job) error {
			sourceID, ok := job.Payload.(string)
			if !ok {
				return fmt.Errorf("unexpected payload type %T", job.Payload)
			}
			_, err := syncSvc.SyncSource(ctx, sourceID)
			return err
		}, jobs.QueueConfig{
			Workers:    cfg.Sync.Workers,
			MaxRetries: cfg.Sync.MaxRetries,
			RetryDelay: cfg.Sync.RetryDelay,
			Logger:     logr,
		})
		syncQueue.Start(ctx)
		go runSyncTicker(ctx, cfg.Sync.Interval, eventRepo, syncQueue, logr)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}
	if syncQueue != nil {
		syncQueue.Stop()
	}
}

// runSyncTicker enqueues one sync job per event source every interval.
func runSyncTicker(ctx context.Context, interval time.Duration, eventRepo *repository.ExternalEventRepository, queue *jobs.Queue, logr *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sources, err := eventRepo.ListSources(ctx)
			if err != nil {
				logr.Sugar().Errorw("failed to list event sources", "error", err)
				continue
			}
			for _, source := range sources {
				job := jobs.Job{ID: uuid.NewString(), Type: "sync-source", Payload: source.ID}
				if err := queue.Enqueue(job); err != nil {
					logr.Sugar().Warnw("failed to enqueue sync job", "source_id", source.ID, "error", err)
				}
			}
		}
	}
}
