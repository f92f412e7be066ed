package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fridgechef/internal/api"
	"fridgechef/internal/config"
	"fridgechef/internal/database"
	"fridgechef/internal/inventory"
	"fridgechef/internal/logger"
	"fridgechef/internal/monitoring"
	"fridgechef/internal/realtime"
	"fridgechef/internal/receipts"
	"fridgechef/internal/recipes"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	port        = flag.Int("port", 0, "API server port (overrides config)")
	metricsPort = flag.Int("metrics-port", 0, "Metrics server port (overrides config)")
	configFile  = flag.String("config", "configs/config.yaml", "Path to configuration file")
)

func main() {
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration
	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *metricsPort != 0 {
		cfg.Metrics.Port = *metricsPort
	}

	zlog, err := logger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	if err := cfg.Validate(); err != nil {
		zlog.Fatal("Invalid configuration", zap.Error(err))
	}
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	connectCtx, connectCancel := context.WithTimeout(ctx, 10*time.Second)
	store, err := database.Open(connectCtx, database.Options{URL: cfg.Database.URL, Database: cfg.Database.Name}, zlog)
	connectCancel()
	if err != nil {
		zlog.Fatal("Failed to connect to database", zap.Error(err))
	}

	monitor := monitoring.NewMonitor()
	inv := inventory.NewService(store, zlog)
	if items, err := inv.List(ctx, ""); err == nil {
		monitor.SetFridgeSize(len(items))
	}

	generator, err := recipes.NewGenerator(cfg.Recipes)
	if err != nil {
		zlog.Fatal("Failed to initialize recipe backend", zap.String("backend", cfg.Recipes.Backend), zap.Error(err))
	}
	aggregator := recipes.NewAggregator(inv, generator, monitor, zlog)
	zlog.Info("Recipe backend ready", zap.String("backend", aggregator.Backend()))

	var recognizer receipts.ImageRecognizer
	if cfg.Receipts.AWSRegion != "" {
		r, err := receipts.NewRekognitionRecognizer(ctx, cfg.Receipts.AWSRegion)
		if err != nil {
			zlog.Warn("Receipt recognition disabled", zap.Error(err))
		} else {
			recognizer = r
		}
	}

	hub := realtime.NewHub(zlog, cfg.Server.AllowedOrigins)
	server := api.NewFridgeAPI(api.Options{
		Inventory:      inv,
		Recipes:        aggregator,
		Receipts:       receipts.NewParser(cfg.Receipts.UploadDir, recognizer, zlog),
		Store:          store,
		Hub:            hub,
		Metrics:        monitor,
		Log:            zlog,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		JWTSecret:      cfg.Auth.JWTSecret,
		MaxUploadSize:  cfg.Receipts.MaxUploadSize,
	})

	// Start metrics server
	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metricsServer = startMetricsServer(cfg.Metrics.Port, cfg.Metrics.Path, monitor, zlog)
	}

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: server.Router,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		zlog.Info("Shutting down servers...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		zlog.Info("Closing websocket subscribers", zap.Int("clients", hub.Clients()))
		hub.Close()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			zlog.Error("API server shutdown error", zap.Error(err))
		}
		if metricsServer != nil {
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				zlog.Error("Metrics server shutdown error", zap.Error(err))
			}
		}

		cancel()
	}()

	zlog.Info("Starting API server", zap.Int("port", cfg.Server.Port))
	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		zlog.Error("API server error", zap.Error(err))
		cancel()
	}

	<-ctx.Done()
	closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer closeCancel()
	if err := store.Close(closeCtx); err != nil {
		zlog.Error("Failed to close database", zap.Error(err))
	}
	zlog.Info("Server stopped", zap.Duration("uptime", monitor.Uptime()))
}

func startMetricsServer(port int, path string, monitor *monitoring.Monitor, zlog *zap.Logger) *http.Server {
	metricsRouter := gin.New()
	metricsRouter.Use(gin.Recovery())
	metricsRouter.GET(path, gin.WrapH(monitor.Handler()))

	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: metricsRouter,
	}

	go func() {
		zlog.Info("Starting metrics server", zap.Int("port", port), zap.String("path", path))
		if err := metricsServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			zlog.Error("Metrics server error", zap.Error(err))
		}
	}()
	return metricsServer
}
