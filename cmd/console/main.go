package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/meridianpay/console/internal/analytics"
	"github.com/meridianpay/console/internal/api"
	"github.com/meridianpay/console/internal/app"
	"github.com/meridianpay/console/internal/auth"
	"github.com/meridianpay/console/internal/console/admins"
	"github.com/meridianpay/console/internal/console/plans"
	"github.com/meridianpay/console/internal/console/staff"
	"github.com/meridianpay/console/internal/console/users"
	"github.com/meridianpay/console/internal/gate"
	"github.com/meridianpay/console/internal/observability"
	"github.com/meridianpay/console/internal/platform/cache"
	"github.com/meridianpay/console/internal/shared"
	"github.com/meridianpay/console/internal/view"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	redisClient := cache.Connect(ctx, logger, cfg.RedisAddr)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(cfg.SessionTTL, cfg.IsProduction())

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	apiClient := api.NewClient(cfg.APIBaseURL)
	gateMiddleware := gate.Middleware{Logger: logger, Forbidden: templates.Forbidden()}

	authService := auth.NewService(apiClient)
	authHandler := auth.NewHandler(logger, authService, templates)

	usersHandler := users.NewHandler(logger, users.NewService(apiClient), templates, gateMiddleware)
	plansHandler := plans.NewHandler(logger, plans.NewService(apiClient), templates, gateMiddleware)
	staffHandler := staff.NewHandler(logger, staff.NewService(apiClient), templates, gateMiddleware)
	adminsHandler := admins.NewHandler(logger, admins.NewService(apiClient), templates, gateMiddleware)

	analyticsCache := analytics.NewCache(redisClient, cfg.CacheTTL)
	analyticsService := analytics.NewService(apiClient, analyticsCache, logger)
	analyticsHandler := analytics.NewHandler(logger, analyticsService, templates, gateMiddleware)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		SessionManager:   sessionManager,
		AuthHandler:      authHandler,
		UsersHandler:     usersHandler,
		PlansHandler:     plansHandler,
		StaffHandler:     staffHandler,
		AdminsHandler:    adminsHandler,
		AnalyticsHandler: analyticsHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
