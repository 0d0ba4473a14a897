package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/negative-records-api/api/swagger"
	"github.com/noah-isme/negative-records-api/internal/handler"
	"github.com/noah-isme/negative-records-api/internal/middleware"
	"github.com/noah-isme/negative-records-api/internal/service"
	"github.com/noah-isme/negative-records-api/pkg/config"
	"github.com/noah-isme/negative-records-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/negative-records-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/negative-records-api/pkg/middleware/requestid"
)

type routeHandlers struct {
	auth          *handler.AuthHandler
	records       *handler.RecordHandler
	unlocks       *handler.UnlockRequestHandler
	credits       *handler.CreditHandler
	notifications *handler.NotificationHandler
	metrics       *handler.MetricsHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, metrics *service.MetricsService, tokens middleware.TokenValidator, h routeHandlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", h.metrics.Health)
	r.GET("/ready", h.metrics.Ready)
	r.GET("/metrics", h.metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.WithResponseMeta())
	api.POST("/auth/login", h.auth.Login)

	secured := api.Group("")
	secured.Use(middleware.JWT(tokens))
	secured.GET("/auth/me", h.auth.Me)

	records := secured.Group("/records")
	records.GET("/search", h.records.Search)
	records.GET("/:id/lock-info", h.records.LockInfo)
	records.GET("/:id/lock-history", h.records.LockHistory)
	records.POST("/:id/print", h.records.Print)

	unlocks := secured.Group("/unlock-requests")
	unlocks.POST("", h.unlocks.Create)
	unlocks.GET("", h.unlocks.List)
	unlocks.PATCH("/:id/review", h.unlocks.Review)

	credits := secured.Group("/credits")
	credits.POST("/topup", middleware.RequireAdmin(), h.credits.TopUp)
	credits.GET("/:clientId/transactions", h.credits.Transactions)

	notifications := secured.Group("/notifications")
	notifications.GET("", h.notifications.List)
	notifications.PATCH("/:id/read", h.notifications.MarkRead)

	return r
}
