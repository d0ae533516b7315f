package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"deviation-dashboard/src/cache"
	"deviation-dashboard/src/config"
	"deviation-dashboard/src/data_source/yahoo"
	"deviation-dashboard/src/export"
	"deviation-dashboard/src/interfaces"
	"deviation-dashboard/src/logger"
	"deviation-dashboard/src/network"
	"deviation-dashboard/src/service"
)

// -----------------------------------------------------------------------------
// One-shot snapshot tool: fetch, compute and write a standalone chart HTML
// per symbol, then exit. Useful from cron outside the dashboard process.
// -----------------------------------------------------------------------------

func main() {

	_ = godotenv.Load()

	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	outputDir := flag.String("out", "", "override export output directory")
	flag.Parse()

	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *outputDir != "" {
		cfg.Export.OutputDir = *outputDir
	}
	if cfg.Export.OutputDir == "" {
		cfg.Export.OutputDir = "."
	}

	appLogger := logger.NewLogger(cfg.LogLevel, "export")

	ttl := time.Duration(cfg.Cache.TTLSeconds) * time.Second
	seriesCache := cache.NewMemoryCache(ttl, cfg.Cache.MaxEntries)

	var networkManager interfaces.INetworkManager = network.NewAsyncNetworkManager(cfg.MConfig, appLogger)
	var fetcher interfaces.IDataFetcher = yahoo.NewYahooFetcher(cfg.MConfig, networkManager)

	// Single pass, no store or metrics needed
	svc := service.NewDeviationService(cfg.MConfig, fetcher, seriesCache, nil, nil, appLogger)
	exporter := export.NewExporter(cfg.MConfig, svc, appLogger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := exporter.RunOnce(ctx); err != nil {
		appLogger.Error("Export failed: %v", err)
		os.Exit(1)
	}
}
