package models

// MConfig Structure
type MConfig struct {
	Name     string          `yaml:"name"`
	Host     string          `yaml:"host"`
	Port     int             `yaml:"port"`
	LogLevel string          `yaml:"log_level"`
	Storage  MStorageConfig  `yaml:"storage"`
	Cache    MCacheConfig    `yaml:"cache"`
	Network  MNetworkConfig  `yaml:"network"`
	Fetcher  MFetcherConfig  `yaml:"fetcher"`
	Analysis MAnalysisConfig `yaml:"analysis"`
	Export   MExportConfig   `yaml:"export"`
}

type MStorageConfig struct {
	Enabled            bool   `yaml:"enabled"`
	DBType             string `yaml:"db_type"` // "sqlite" or "postgres"
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
	RetentionDays      int    `yaml:"retention_days"`
}

type MCacheConfig struct {
	Backend    string `yaml:"backend"` // "memory" or "redis"
	TTLSeconds int    `yaml:"ttl_seconds"`
	MaxEntries int    `yaml:"max_entries"` // memory backend only
	RedisAddr  string `yaml:"redis_addr"`
	RedisDB    int    `yaml:"redis_db"`
}

type MNetworkConfig struct {
	Enabled        bool     `yaml:"enabled"` // proxy rotation
	Proxies        []string `yaml:"proxies"`
	RequestTimeout int      `yaml:"timeout"`
	MaxRetries     int      `yaml:"retries"`
	UserAgent      string   `yaml:"user_agent"`
}

type MFetcherConfig struct {
	DefaultSymbol  string   `yaml:"default_symbol"`
	DefaultStart   string   `yaml:"default_start"` // YYYY-MM-DD
	AllowedSymbols []string `yaml:"allowed_symbols"`
}

type MAnalysisConfig struct {
	SmaWindow          int `yaml:"sma_window"`            // default 200
	PercentileYears    int `yaml:"percentile_years"`      // default 5
	TradingDaysPerYear int `yaml:"trading_days_per_year"` // default 252
}

type MExportConfig struct {
	Enabled   bool     `yaml:"enabled"`
	CronSpec  string   `yaml:"cron_spec"` // e.g. "30 16 * * 1-5"
	OutputDir string   `yaml:"output_dir"`
	Symbols   []string `yaml:"symbols"`
}

// -----------------------------------------------------------------------------

// PercentileWindowDays returns the percentile window length in trading days,
// using the fixed days-per-year approximation (5y x 252 = 1260 by default).
func (c *MConfig) PercentileWindowDays() int {
	return c.Analysis.PercentileYears * c.Analysis.TradingDaysPerYear
}
