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

	"golang-stock-dashboard/internal/dashboard/config"
	delivery "golang-stock-dashboard/internal/dashboard/delivery/http"
	"golang-stock-dashboard/internal/dashboard/repository"
	"golang-stock-dashboard/internal/dashboard/service"
	"golang-stock-dashboard/pkg/common"
	"golang-stock-dashboard/pkg/logger"
	"golang-stock-dashboard/pkg/notifier"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the dashboard service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	// Create a context that is canceled on interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Dashboard Service", logger.Field("name", cfg.App.Name))

	// Initialize notifier. Without a bot token, notifications go to the log.
	var notify notifier.Notifier
	if cfg.Telegram.BotToken != "" {
		notify, err = notifier.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			appLogger.Fatal("Failed to initialize Telegram notifier", logger.ErrorField(err))
		}
	} else {
		notify = notifier.NewLog(appLogger)
	}

	// Initialize repositories
	marketRepo := repository.NewMarketDataRepository(cfg, appLogger)

	// Initialize services
	store := service.NewCollectionStore()
	cacheSvc := service.NewStrategyCacheService(marketRepo, appLogger, cfg.MarketData.ScanResultLimit)
	tagSvc := service.NewTagService(marketRepo, appLogger)
	stockSvc := service.NewStockService(marketRepo, store, tagSvc, cacheSvc, appLogger, cfg.MarketData.ScanResultLimit)
	watchSvc := service.NewListService(common.ListKindWatch, marketRepo, cacheSvc, notify, appLogger)
	warnSvc := service.NewListService(common.ListKindWarn, marketRepo, cacheSvc, notify, appLogger)

	// Initialize Echo server
	e := echo.New()
	e.HideBanner = true

	// Initialize handlers and routes
	apiV1 := e.Group("/api/v1")

	stockHandler := delivery.NewStockHandler(stockSvc, appLogger)
	stockHandler.RegisterRoutes(apiV1)

	watchHandler := delivery.NewListHandler(watchSvc, appLogger)
	watchHandler.RegisterRoutes(apiV1.Group("/watchlist"))

	warnHandler := delivery.NewListHandler(warnSvc, appLogger)
	warnHandler.RegisterRoutes(apiV1.Group("/warninglist"))

	tagHandler := delivery.NewTagHandler(tagSvc, appLogger)
	tagHandler.RegisterRoutes(apiV1.Group("/tags"))

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop() // trigger shutdown
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()

	appLogger.Info("Shutting down server...")

	// Gracefully shutdown the server
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	appLogger.Info("Server exiting")
}

func main() {
	rootCmd := &cobra.Command{Use: "dashboard-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-dashboard.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing dashboard-service CLI: %s\n", err)
		os.Exit(1)
	}
}
