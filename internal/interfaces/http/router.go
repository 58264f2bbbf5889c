// Package http wires the HTTP surface of the service.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/turtacn/kam/internal/config"
	"github.com/turtacn/kam/internal/infrastructure/monitoring"
	"github.com/turtacn/kam/internal/interfaces/http/handlers"
	"github.com/turtacn/kam/pkg/logger"
)

// Router HTTP 路由器
type Router struct {
	engine              *gin.Engine
	config              *config.Config
	logger              logger.Logger
	tracing             *monitoring.TracingManager
	healthHandler       *handlers.HealthHandler
	authHandler         *handlers.AuthHandler
	registrationHandler *handlers.RegistrationHandler
	historyHandler      *handlers.HistoryHandler
	settingsHandler     *handlers.SettingsHandler
	server              *http.Server
}

// NewRouter 创建路由器
func NewRouter(
	cfg *config.Config,
	log logger.Logger,
	tracing *monitoring.TracingManager,
	healthHandler *handlers.HealthHandler,
	authHandler *handlers.AuthHandler,
	registrationHandler *handlers.RegistrationHandler,
	historyHandler *handlers.HistoryHandler,
	settingsHandler *handlers.SettingsHandler,
) *Router {
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	return &Router{
		engine:              gin.New(),
		config:              cfg,
		logger:              log,
		tracing:             tracing,
		healthHandler:       healthHandler,
		authHandler:         authHandler,
		registrationHandler: registrationHandler,
		historyHandler:      historyHandler,
		settingsHandler:     settingsHandler,
	}
}

// SetupRoutes 设置路由
func (r *Router) SetupRoutes() {
	r.engine.Use(handlers.RecoveryMiddleware(r.logger))
	r.engine.Use(handlers.RequestIDMiddleware())
	r.engine.Use(handlers.TracingMiddleware(r.tracing))
	r.engine.Use(handlers.LoggingMiddleware(r.logger))

	corsConfig := cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	r.engine.Use(cors.New(corsConfig))

	r.engine.GET("/health", r.healthHandler.HealthCheck)
	r.engine.GET("/ready", r.healthHandler.ReadinessCheck)
	r.engine.GET("/live", r.healthHandler.LivenessCheck)

	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if r.config.Log.Level == "debug" {
		pprof.Register(r.engine)
	}

	v1 := r.engine.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/start", r.authHandler.Start)
			auth.POST("/cancel", r.authHandler.Cancel)
			auth.GET("/status", r.authHandler.Status)
			auth.GET("/url", r.authHandler.URL)
		}

		register := v1.Group("/register")
		{
			register.POST("/start", r.registrationHandler.Start)
			register.POST("/stop", r.registrationHandler.Stop)
			register.POST("/reset", r.registrationHandler.Reset)
			register.GET("/progress", r.registrationHandler.Progress)
			register.GET("/events", r.registrationHandler.StreamEvents)
		}

		history := v1.Group("/history")
		{
			history.GET("", r.historyHandler.List)
			history.DELETE("", r.historyHandler.Clear)
			history.POST("/export", r.historyHandler.Export)
		}

		settings := v1.Group("/settings")
		{
			settings.GET("", r.settingsHandler.Get)
			settings.PUT("", r.settingsHandler.Update)
		}
	}

	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":             "not_found",
			"error_description": "The requested resource was not found",
		})
	})
}

// Start 启动 HTTP 服务器
func (r *Router) Start() error {
	r.SetupRoutes()

	addr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	r.server = &http.Server{
		Addr:           addr,
		Handler:        r.engine,
		ReadTimeout:    time.Duration(r.config.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(r.config.Server.WriteTimeout) * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	r.logger.Info(context.Background(), "Starting HTTP server", logger.Fields{"address": addr})

	if err := r.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop 停止 HTTP 服务器
func (r *Router) Stop(ctx context.Context) error {
	if r.server == nil {
		return nil
	}
	r.logger.Info(ctx, "Stopping HTTP server...")
	return r.server.Shutdown(ctx)
}
