package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Goopi7/crop-connect/internal/agronomy"
	"github.com/Goopi7/crop-connect/internal/bootstrap"
	"github.com/Goopi7/crop-connect/internal/config"
	"github.com/Goopi7/crop-connect/internal/crops"
	"github.com/Goopi7/crop-connect/internal/logger"
	"github.com/Goopi7/crop-connect/internal/middleware"
	"github.com/Goopi7/crop-connect/internal/recommendation"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Initialize logger
	zlog, err := logger.New(cfg.Logging)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Open stores
	stores, err := bootstrap.OpenStores(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("Failed to open store", zap.Error(err))
	}
	defer stores.Close(context.Background())

	// Initialize crop catalogue
	cropRepo := crops.NewCachedRepository(stores.Crops, cfg.Catalog.CacheTTL.Std())
	cropService := crops.NewService(cropRepo, zlog)

	if cfg.Store.SeedOnStart {
		catalog, err := crops.DefaultCatalog()
		if err != nil {
			zlog.Fatal("Failed to load default catalogue", zap.Error(err))
		}
		if _, err := cropService.Seed(ctx, catalog); err != nil {
			zlog.Fatal("Failed to seed catalogue", zap.Error(err))
		}
	}

	if cached, ok := cropRepo.(*crops.CachedRepository); ok {
		defer cached.Close()
		if cfg.Catalog.WarmSchedule != "" {
			warmer := crops.NewWarmer(cached, cfg.Catalog.WarmSchedule, zlog)
			if err := warmer.Start(ctx); err != nil {
				zlog.Fatal("Failed to start catalogue warmer", zap.Error(err))
			}
			defer warmer.Stop()
		}
	}

	// Initialize recommendation engine
	tables, err := recommendation.LoadTables(cfg.Recommendation.TablesPath)
	if err != nil {
		zlog.Fatal("Failed to load reference tables", zap.Error(err))
	}
	engine := recommendation.NewEngine(cropRepo, tables, zlog)

	// Initialize agronomy advisor
	advisor := agronomy.NewAdvisor(stores.Agronomy, cropRepo, zlog)

	router := newRouter(cfg, zlog)

	// Register Routes
	api := router.Group("/api/v1")
	{
		crops.NewHandler(cropService, zlog).RegisterRoutes(api)
		recommendation.NewHandler(engine, cfg.Recommendation.ExportLimit, zlog).RegisterRoutes(api)
		agronomy.NewHandler(advisor, zlog).RegisterRoutes(api)
	}

	// Start Server
	srv := &http.Server{
		Addr:         cfg.Server.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Std(),
		WriteTimeout: cfg.Server.WriteTimeout.Std(),
		IdleTimeout:  cfg.Server.IdleTimeout.Std(),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("Server failed", zap.Error(err))
		}
	}()

	zlog.Info("Server started",
		zap.String("addr", srv.Addr),
		zap.String("store", cfg.Store.Driver),
	)

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("Server forced to shutdown", zap.Error(err))
	}

	zlog.Info("Server exiting")
}

// newRouter builds the gin engine with middleware, health and metrics endpoints
func newRouter(cfg *config.Config, zlog *zap.Logger) *gin.Engine {
	if cfg.Server.GinMode != "" {
		gin.SetMode(cfg.Server.GinMode)
	}
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(zlog),
		middleware.CORS(),
	)
	if cfg.Metrics.Enabled {
		router.Use(middleware.Metrics())
		router.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	// Health Check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"version":   fmt.Sprintf("crop-connect/%s", version),
		})
	})

	return router
}

var version = "dev"
