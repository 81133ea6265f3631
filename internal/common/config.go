package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Oracle   OracleConfig
	Batch    BatchConfig
	Analysis AnalysisConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr        string
	OutputDir   string
	HistoryPath string
	MaxUploadMB int64
}

// OracleConfig holds vision-model configuration
type OracleConfig struct {
	Provider    string // "anthropic" or "gemini"
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float32
	Timeout     time.Duration
}

// BatchConfig holds batch processing configuration
type BatchConfig struct {
	MaxWorkers int
}

// AnalysisConfig holds reconciliation/savings configuration.
// DemoMode amplifies aggregated quantities and costs for presentations and
// must stay off in production.
type AnalysisConfig struct {
	DemoMode bool
	Currency string
	TopN     int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:        getEnv("HTTP_ADDR", ":8001"),
			OutputDir:   getEnv("OUTPUT_DIR", "./output"),
			HistoryPath: getEnv("HISTORY_DB_PATH", "./output/batches.db"),
			MaxUploadMB: int64(getEnvAsInt("MAX_UPLOAD_MB", 10)),
		},
		Oracle: OracleConfig{
			Provider:    getEnv("ORACLE_PROVIDER", "anthropic"),
			Model:       getEnv("ORACLE_MODEL", ""),
			APIKey:      getEnv("ORACLE_API_KEY", ""),
			BaseURL:     getEnv("ORACLE_BASE_URL", ""),
			Temperature: getEnvAsFloat32("ORACLE_TEMPERATURE", 0.0),
			Timeout:     getEnvAsDuration("ORACLE_TIMEOUT", 60*time.Second),
		},
		Batch: BatchConfig{
			MaxWorkers: getEnvAsInt("BATCH_MAX_WORKERS", 10),
		},
		Analysis: AnalysisConfig{
			DemoMode: getEnvAsBool("DEMO_MODE", false),
			Currency: getEnv("REPORT_CURRENCY", "AED"),
			TopN:     getEnvAsInt("SAVINGS_TOP_N", 5),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
