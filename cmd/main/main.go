package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"deviation-dashboard/src/cache"
	"deviation-dashboard/src/config"
	"deviation-dashboard/src/data_source/yahoo"
	"deviation-dashboard/src/export"
	"deviation-dashboard/src/interfaces"
	"deviation-dashboard/src/logger"
	"deviation-dashboard/src/metrics"
	"deviation-dashboard/src/network"
	"deviation-dashboard/src/server"
	"deviation-dashboard/src/service"
	"deviation-dashboard/src/storage"
)

// -----------------------------------------------------------------------------

func main() {

	// Local overrides (redis address, postgres dsn) come from .env when present
	_ = godotenv.Load()

	// Parse command line flags
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	flag.Parse()

	// Load config from YAML file
	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	appLogger := logger.NewLogger(cfg.LogLevel, cfg.Name)

	// 2. Series cache (fetched bars only, derived data is always recomputed)
	var seriesCache interfaces.ISeriesCache
	ttl := time.Duration(cfg.Cache.TTLSeconds) * time.Second

	switch cfg.Cache.Backend {
	case "redis":
		redisCache := cache.NewRedisCache(cfg.Cache.RedisAddr, cfg.Cache.RedisDB, ttl, appLogger)
		if err := redisCache.Ping(context.Background()); err != nil {
			appLogger.Critical("Redis unreachable at %s: %v", cfg.Cache.RedisAddr, err)
		}
		defer redisCache.Close()
		seriesCache = redisCache
	default:
		seriesCache = cache.NewMemoryCache(ttl, cfg.Cache.MaxEntries)
	}

	// 3. Persistent price store (optional)
	var store interfaces.IPriceStore
	if cfg.Storage.Enabled {
		switch cfg.Storage.DBType {
		case "postgres":
			store, err = storage.NewPostgresStore(cfg.MConfig, appLogger)
		default:
			// Default to SQLite
			store, err = storage.NewSQLiteStore(cfg.MConfig, appLogger)
		}
		if err != nil {
			appLogger.Critical("Failed to init store: %v", err)
		}
		if err := store.Initialize(); err != nil {
			appLogger.Critical("Failed to migrate store: %v", err)
		}
		defer store.Close()

		if err := store.CleanupOldData(); err != nil {
			appLogger.Warning("Startup cleanup failed: %v", err)
		}
	}

	// 4. Network + provider
	var networkManager interfaces.INetworkManager = network.NewAsyncNetworkManager(cfg.MConfig, appLogger)
	var fetcher interfaces.IDataFetcher = yahoo.NewYahooFetcher(cfg.MConfig, networkManager)

	// 5. Metrics + service
	m := metrics.NewMetrics(func() float64 { return float64(seriesCache.Len()) })
	svc := service.NewDeviationService(cfg.MConfig, fetcher, seriesCache, store, m, appLogger)

	// 6. Scheduled chart exports
	exporter := export.NewExporter(cfg.MConfig, svc, appLogger)
	if err := exporter.Start(); err != nil {
		appLogger.Critical("Failed to start exporter: %v", err)
	}
	defer exporter.Stop()

	// 7. Web server
	srv := server.NewWebServer(cfg.MConfig, svc, appLogger)
	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Critical("Server failed: %v", err)
		}
	}()

	// 8. Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		appLogger.Error("Shutdown error: %v", err)
	}
}
