package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the scanner.
// All environment variables are read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Data locations
	DataDir   string // directory of per-ticker daily candle CSVs
	FlowFile  string // institutional flow CSV (optional)
	ReportDir string // rendered report output

	// Scan defaults (overridable per run via flags / YAML)
	Scan ScanConfig

	// Database (optional; scan output persistence)
	Database DatabaseConfig

	// Redis (optional; fetch cache)
	Redis RedisConfig

	// TWSE remote data source
	TWSE TWSEConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// ScanConfig holds default scan parameters.
type ScanConfig struct {
	TopN      int
	MinVolume float64
	Workers   int
	Schedule  string // cron spec for scheduled scans
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	URL     string
	Enabled bool

	// Connection pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// TWSEConfig holds Taiwan Stock Exchange data source configuration.
type TWSEConfig struct {
	BaseURL       string
	RatePerSecond float64 // client-side request rate limit
	Burst         int
}

// Load reads configuration from environment variables.
// This is the only function that calls os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8085"),
		Env:  getEnv("ENV", "development"),

		DataDir:   getEnv("DATA_DIR", "data/dayk"),
		FlowFile:  getEnv("FLOW_FILE", "data/institutional.csv"),
		ReportDir: getEnv("REPORT_DIR", "reports"),

		Scan: ScanConfig{
			TopN:      getEnvAsInt("SCAN_TOP_N", 30),
			MinVolume: getEnvAsFloat("SCAN_MIN_VOLUME", 500),
			Workers:   getEnvAsInt("SCAN_WORKERS", 1),
			Schedule:  getEnv("SCAN_SCHEDULE", "0 0 18 * * MON-FRI"),
		},

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			Enabled:         getEnvAsBool("DB_ENABLED", false),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		TWSE: TWSEConfig{
			BaseURL:       getEnv("TWSE_BASE_URL", "https://www.twse.com.tw"),
			RatePerSecond: getEnvAsFloat("TWSE_RATE_PER_SECOND", 2),
			Burst:         getEnvAsInt("TWSE_BURST", 1),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set.
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	// The scanner runs from plain CSVs; a database is only required
	// when persistence is switched on.
	if c.Database.Enabled && c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required when DB_ENABLED=true")
	}

	if c.Scan.TopN <= 0 {
		return fmt.Errorf("SCAN_TOP_N must be positive")
	}
	if c.Scan.MinVolume < 0 {
		return fmt.Errorf("SCAN_MIN_VOLUME must not be negative")
	}
	if c.Scan.Workers < 0 {
		return fmt.Errorf("SCAN_WORKERS must not be negative")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
