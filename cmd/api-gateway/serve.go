package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/negative-records-api/internal/handler"
	"github.com/noah-isme/negative-records-api/internal/repository"
	"github.com/noah-isme/negative-records-api/internal/service"
	"github.com/noah-isme/negative-records-api/pkg/cache"
	"github.com/noah-isme/negative-records-api/pkg/config"
	"github.com/noah-isme/negative-records-api/pkg/database"
	"github.com/noah-isme/negative-records-api/pkg/export"
	"github.com/noah-isme/negative-records-api/pkg/jobs"
	"github.com/noah-isme/negative-records-api/pkg/logger"
	"github.com/noah-isme/negative-records-api/pkg/migration"
	"github.com/noah-isme/negative-records-api/pkg/notify"
)

const shutdownTimeout = 15 * time.Second

type pushEnqueuer interface {
	Enqueue(job jobs.Job) error
}

func serve(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logr, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := migration.Up(db.DB); err != nil {
			return err
		}
		logr.Info("database migrations applied")
	}

	metrics := service.NewMetricsService()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	checks := map[string]handler.Pinger{"database": db}
	var cacheRepo service.CacheRepository
	if redisClient != nil {
		redisRepo := repository.NewCacheRepository(redisClient, logr)
		defer redisRepo.Close() //nolint:errcheck
		cacheRepo = redisRepo
		checks["cache"] = handler.PingFunc(redisRepo.Ping)
	} else {
		cacheRepo = repository.NewMemoryCacheRepository(cfg.Cache.ProfileTTL, 2*cfg.Cache.ProfileTTL)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.ProfileTTL, logr)

	store := repository.NewStore(db)
	userRepo := repository.NewUserRepository(db)
	clientRepo := repository.NewClientRepository(db)
	recordRepo := repository.NewRecordRepository(db)
	lockRepo := repository.NewLockRepository(db)
	unlockRepo := repository.NewUnlockRequestRepository(db)
	searchLogRepo := repository.NewSearchLogRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	var push pushEnqueuer
	if cfg.Notify.PushEnabled {
		sender, err := notify.NewPushSender(cfg.Notify.PushURLs, cfg.Notify.PushTimeout)
		if err != nil {
			return err
		}
		queue := jobs.NewQueue("notification-push", notify.JobHandler(sender), jobs.QueueConfig{
			Workers:    cfg.Notify.Workers,
			MaxRetries: cfg.Notify.Retries,
			Logger:     logr,
		})
		queue.Start(ctx)
		defer queue.Stop()
		push = queue
	}

	validate := validator.New()
	dispatcher := service.NewEffectDispatcher(notificationRepo, userRepo, userRepo, push, metrics, logr)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	accessSvc := service.NewAccessService(service.AccessDependencies{
		Tx:             store,
		Records:        recordRepo,
		Locks:          lockRepo,
		UnlockRequests: unlockRepo,
		SearchLogs:     searchLogRepo,
		Clients:        clientRepo,
		Users:          userRepo,
		Cache:          cacheSvc,
		Metrics:        metrics,
	}, service.AccessConfig{
		SearchLimit: cfg.Search.ResultLimit,
		ProfileTTL:  cfg.Cache.ProfileTTL,
	}, logr)
	billingSvc := service.NewBillingService(service.BillingDependencies{
		Tx:      store,
		Records: recordRepo,
		Locks:   lockRepo,
		Clients: clientRepo,
		Users:   userRepo,
		Metrics: metrics,
	}, cfg.Billing.PrintFee, logr)
	notificationSvc := service.NewNotificationService(notificationRepo)

	handlers := routeHandlers{
		auth:          handler.NewAuthHandler(authSvc),
		records:       handler.NewRecordHandler(accessSvc, billingSvc, dispatcher, export.NewPDFExporter(), logr),
		unlocks:       handler.NewUnlockRequestHandler(accessSvc, dispatcher, validate),
		credits:       handler.NewCreditHandler(billingSvc, dispatcher, validate),
		notifications: handler.NewNotificationHandler(notificationSvc),
		metrics:       handler.NewMetricsHandler(metrics, checks),
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	router := newRouter(cfg, logr, metrics, authSvc, handlers)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
