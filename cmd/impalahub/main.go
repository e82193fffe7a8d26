package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/impalahub/impalahub/internal/app"
	"github.com/impalahub/impalahub/internal/clients"
	"github.com/impalahub/impalahub/internal/dashboard"
	dashboardhttp "github.com/impalahub/impalahub/internal/dashboard/http"
	"github.com/impalahub/impalahub/internal/fetch"
	"github.com/impalahub/impalahub/internal/observability"
	"github.com/impalahub/impalahub/internal/participants"
	"github.com/impalahub/impalahub/internal/platform/cache"
	"github.com/impalahub/impalahub/internal/programs"
	"github.com/impalahub/impalahub/internal/upstream"
	"github.com/impalahub/impalahub/jobs"
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

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, caching disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	source := upstream.New(cfg.UpstreamBaseURL, cfg.UpstreamTimeout, logger)

	clientsService := clients.NewService(source, logger,
		fetch.WithDebounce[clients.Client](cfg.FetchDebounce),
		fetch.WithLimit[clients.Client](cfg.FetchLimit))
	defer clientsService.Stop()
	programsService := programs.NewService(source, logger,
		fetch.WithDebounce[programs.Program](cfg.FetchDebounce),
		fetch.WithLimit[programs.Program](cfg.FetchLimit))
	defer programsService.Stop()
	participantsService := participants.NewService(source, logger,
		fetch.WithDebounce[participants.Participant](cfg.FetchDebounce),
		fetch.WithLimit[participants.Participant](cfg.FetchLimit))
	defer participantsService.Stop()

	dashboardCache := dashboard.NewCache(redisClient, cfg.CacheTTL)
	dashboardService := dashboard.NewService(source, dashboardCache, logger)
	if err := dashboardCache.ListenForInvalidation(ctx, ""); err != nil {
		logger.Warn("cache invalidation listener", slog.Any("error", err))
	}

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:              logger,
		Config:              cfg,
		ClientsHandler:      clients.NewHandler(logger, clientsService),
		ProgramsHandler:     programs.NewHandler(logger, programsService),
		ParticipantsHandler: participants.NewHandler(logger, participantsService),
		DashboardHandler:    dashboardhttp.NewHandler(logger, dashboardService),
		JobHandler:          jobHandler,
		Metrics:             metrics,
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
