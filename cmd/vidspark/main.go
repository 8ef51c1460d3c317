package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vidspark/vidspark/internal/accounts"
	"github.com/vidspark/vidspark/internal/admin"
	"github.com/vidspark/vidspark/internal/analysis"
	"github.com/vidspark/vidspark/internal/app"
	"github.com/vidspark/vidspark/internal/auth"
	"github.com/vidspark/vidspark/internal/ledger"
	"github.com/vidspark/vidspark/internal/observability"
	"github.com/vidspark/vidspark/internal/platform/cache"
	"github.com/vidspark/vidspark/internal/platform/db"
	"github.com/vidspark/vidspark/internal/shared"
	"github.com/vidspark/vidspark/internal/trending"
	"github.com/vidspark/vidspark/internal/videos"
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

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		// The trending cache degrades to direct fetches without redis.
		logger.Warn("redis unavailable", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}
	}()

	metrics := observability.NewMetrics()

	accountRepo := accounts.NewRepository(dbpool)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	authService := auth.NewService(accountRepo, tokens, logger)
	authMiddleware := auth.Middleware{Tokens: tokens, Logger: logger}
	authHandler := auth.NewHandler(logger, authService, authMiddleware)

	ledgerRepo := ledger.NewRepository(dbpool)
	ledgerService := ledger.NewService(ledgerRepo, logger)

	competition := analysis.NewCompetitionClient(cfg.YouTubeAPIURL, cfg.YouTubeAPIKey, cfg.UpstreamTimeout)
	judgment := analysis.NewJudgmentClient(cfg.GeminiAPIURL, cfg.GeminiAPIKey, cfg.UpstreamTimeout)
	analysisService := analysis.NewService(competition, judgment, logger)
	analysisHandler := analysis.NewHandler(logger, analysisService)

	feed := trending.NewFeedClient(cfg.YouTubeAPIURL, cfg.YouTubeAPIKey, cfg.TrendingRegion, cfg.UpstreamTimeout)
	trendingService := trending.NewService(feed, redisClient, logger)
	trendingHandler := trending.NewHandler(logger, trendingService)

	videoRepo := videos.NewRepository(dbpool)
	producer := videos.NewProducerClient(cfg.VideoAPIURL, cfg.UpstreamTimeout)
	videoService := videos.NewService(ledgerService, videoRepo, producer, logger).WithObserver(metrics)
	videoHandler := videos.NewHandler(logger, videoService)

	auditLogger := shared.NewAuditLogger(dbpool)
	adminService := admin.NewService(ledgerService, accountRepo, auditLogger, logger)
	adminHandler := admin.NewHandler(logger, adminService)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		AuthMiddleware:  authMiddleware,
		AuthHandler:     authHandler,
		AnalysisHandler: analysisHandler,
		TrendingHandler: trendingHandler,
		VideoHandler:    videoHandler,
		AdminHandler:    adminHandler,
		Metrics:         metrics,
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
