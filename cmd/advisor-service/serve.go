package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang-stock-advisor/internal/advisor/config"
	"golang-stock-advisor/internal/advisor/delivery/consumer"
	delivery "golang-stock-advisor/internal/advisor/delivery/http"
	_ "golang-stock-advisor/internal/advisor/docs"
	"golang-stock-advisor/internal/advisor/service"
	"golang-stock-advisor/pkg/common"
	"golang-stock-advisor/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	swagger "github.com/swaggo/echo-swagger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the advisor HTTP API, stream consumer and watchlist scheduler",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	// Create a context that is canceled on interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	app, err := newApplication(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize advisor: %v", err)
	}
	defer app.Close()
	appLogger := app.logger

	appLogger.Info("Starting Advisor Service", logger.Field("name", cfg.App.Name), logger.Field("ai_provider", cfg.AI.Provider))

	taskSvc := service.NewRecommendationTaskService(cfg, appLogger, nil, app.orchestrator, app.notifier)
	var asyncTasks service.RecommendationTaskService
	var redisConsumer *consumer.RedisConsumer
	if app.redisClient != nil {
		if err := app.redisClient.EnsureGroup(ctx, common.RedisStreamStockRecommendation, common.RedisStreamGroup); err != nil {
			appLogger.Fatal("Failed to create consumer group", logger.ErrorField(err))
		}
		taskSvc = service.NewRecommendationTaskService(cfg, appLogger, app.redisClient.Client, app.orchestrator, app.notifier)
		asyncTasks = taskSvc

		redisConsumer = consumer.NewRedisConsumer(cfg, taskSvc, appLogger)
		redisConsumer.Start(ctx)
	}

	if len(cfg.Watchlist.Entries) > 0 {
		var dispatcher service.TaskDispatcher = service.InlineDispatcher{Tasks: taskSvc}
		if asyncTasks != nil {
			dispatcher = service.QueueDispatcher{Tasks: asyncTasks}
		}
		watchlist, err := service.NewWatchlistScheduler(cfg.Watchlist, dispatcher, appLogger, time.Now)
		if err != nil {
			appLogger.Fatal("Invalid watchlist", logger.ErrorField(err))
		}
		go watchlist.Start(ctx)
	}

	// Initialize Echo server
	e := echo.New()
	e.HideBanner = true

	analysisHandler := delivery.NewAnalysisHandler(app.orchestrator, asyncTasks, app.history, appLogger)
	apiV1 := e.Group("/api/v1")
	analysisHandler.RegisterRoutes(apiV1.Group("/stock-analysis"))

	e.GET("/swagger/*", swagger.WrapHandler)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop() // trigger shutdown
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", logger.ErrorField(err))
	}
	if redisConsumer != nil {
		redisConsumer.Stop()
	}

	appLogger.Info("Server exiting")
}
