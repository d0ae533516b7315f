package config

import (
	"fmt"
	"os"
	"time"

	"deviation-dashboard/src/models"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new MConfig instance from YAML file
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	// 2. Unmarshal data into the models struct
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}
	config.applyDefaults()

	// 3. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// applyDefaults fills unset analysis and cache parameters with the values the
// dashboard was built around (200-day SMA, 5x252-day percentile window).
func (c *Config) applyDefaults() {
	if c.Analysis.SmaWindow == 0 {
		c.Analysis.SmaWindow = 200
	}
	if c.Analysis.PercentileYears == 0 {
		c.Analysis.PercentileYears = 5
	}
	if c.Analysis.TradingDaysPerYear == 0 {
		c.Analysis.TradingDaysPerYear = 252
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = "memory"
	}
	if c.Cache.TTLSeconds == 0 {
		c.Cache.TTLSeconds = 3600
	}
	if c.Cache.MaxEntries == 0 {
		c.Cache.MaxEntries = 64
	}
	if c.Fetcher.DefaultSymbol == "" {
		c.Fetcher.DefaultSymbol = "QQQ"
	}
	if c.Fetcher.DefaultStart == "" {
		c.Fetcher.DefaultStart = "2010-01-01"
	}
	if c.Storage.RetentionDays == 0 {
		c.Storage.RetentionDays = 30
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	// Validate App configuration (Flattened)
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	// Validate Server configuration (Flattened)
	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}

	// Validate Storage configuration
	if c.Storage.Enabled {
		if c.Storage.DBType != "sqlite" && c.Storage.DBType != "postgres" {
			return fmt.Errorf("unknown database type: %s", c.Storage.DBType)
		}
		if c.Storage.DBType == "sqlite" && c.Storage.DBPath == "" {
			return fmt.Errorf("database path cannot be empty for sqlite")
		}
		if c.Storage.DBType == "postgres" && c.Storage.DBConnectionString == "" {
			return fmt.Errorf("connection string cannot be empty for postgres")
		}
	}

	// Validate Cache configuration
	if c.Cache.Backend != "memory" && c.Cache.Backend != "redis" {
		return fmt.Errorf("unknown cache backend: %s", c.Cache.Backend)
	}
	if c.Cache.Backend == "redis" && c.Cache.RedisAddr == "" {
		return fmt.Errorf("redis address cannot be empty for redis cache backend")
	}
	if c.Cache.TTLSeconds <= 0 {
		return fmt.Errorf("cache ttl must be greater than 0")
	}

	// Validate Network configuration
	if c.Network.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}
	if c.Network.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}

	// Validate Fetcher configuration
	if _, err := time.Parse("2006-01-02", c.Fetcher.DefaultStart); err != nil {
		return fmt.Errorf("invalid default start date '%s': %w", c.Fetcher.DefaultStart, err)
	}

	// Validate Analysis configuration
	if c.Analysis.SmaWindow < 2 {
		return fmt.Errorf("sma window must be at least 2, got %d", c.Analysis.SmaWindow)
	}
	if c.Analysis.PercentileYears <= 0 {
		return fmt.Errorf("percentile years must be greater than 0")
	}
	if c.Analysis.TradingDaysPerYear <= 0 {
		return fmt.Errorf("trading days per year must be greater than 0")
	}

	// Validate Export configuration
	if c.Export.Enabled {
		if c.Export.CronSpec == "" {
			return fmt.Errorf("export cron spec cannot be empty when export is enabled")
		}
		if c.Export.OutputDir == "" {
			return fmt.Errorf("export output dir cannot be empty when export is enabled")
		}
		if len(c.Export.Symbols) == 0 {
			return fmt.Errorf("export must list at least one symbol")
		}
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	// 1. Marshal the struct to YAML
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// 2. Write to file (0644 permissions)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
