// backend/src/config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application.
// The values are loaded from environment variables.
type AppConfig struct {
	// Core settings
	Port         string
	DatabasePath string
	LogLevel     string

	// Security settings
	JWTSecret      string
	AllowedOrigins []string

	// Quote provider settings
	QuoteAPIBaseURL string
	QuoteCacheTTL   time.Duration
	QuoteTimeout    time.Duration

	// Recurring worker settings
	RecurringInterval     time.Duration
	RecurringRunOnStartup bool

	// Report settings
	ProjectionHorizonMonths int
	UpcomingWindowDays      int
	ReportTablesPath        string
	AllocationIncludeCash   bool
	AllocationIncludeDebt   bool
}

// Cfg is a global instance of the AppConfig.
var Cfg *AppConfig

// LoadConfig loads configuration from environment variables or a .env file.
// It centralizes all configuration logic for the application.
func LoadConfig() {
	// 1. Try loading from the current directory (standard behavior)
	errEnv := godotenv.Load()

	// 2. If not found, try loading from the parent directory
	if errEnv != nil {
		errEnv = godotenv.Load("../.env")
	}

	if errEnv != nil {
		if os.IsNotExist(errEnv) {
			log.Println("Info: No .env file found in current or parent directory. Relying on OS environment variables.")
		} else {
			log.Printf("Warning: Error loading .env file: %v. Relying on OS environment variables.", errEnv)
		}
	} else {
		log.Println(".env file loaded successfully.")
	}

	log.Println("Loading application configuration...")

	jwtSecret := getRequiredEnv("JWT_SECRET")
	Cfg = fromEnv(jwtSecret)

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, DBPath=%s, RecurringInterval=%s",
		Cfg.Port, Cfg.LogLevel, Cfg.DatabasePath, Cfg.RecurringInterval)
}

// fromEnv builds the config from the process environment. Secrets are resolved by the caller.
func fromEnv(jwtSecret string) *AppConfig {
	horizon := getEnvAsInt("PROJECTION_HORIZON_MONTHS", 12)
	if horizon < 1 {
		log.Printf("WARNING: PROJECTION_HORIZON_MONTHS must be positive, got %d. Using 12.", horizon)
		horizon = 12
	}
	upcomingDays := getEnvAsInt("UPCOMING_WINDOW_DAYS", 30)
	if upcomingDays < 0 {
		upcomingDays = 30
	}

	return &AppConfig{
		Port:         getEnv("PORT", "8080"),
		DatabasePath: getEnv("DATABASE_PATH", "./wallet.db"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),

		JWTSecret:      jwtSecret,
		AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),

		QuoteAPIBaseURL: getEnv("QUOTE_API_BASE_URL", "https://query1.finance.yahoo.com"),
		QuoteCacheTTL:   getEnvAsDuration("QUOTE_CACHE_TTL", 5*time.Minute),
		QuoteTimeout:    getEnvAsDuration("QUOTE_TIMEOUT", 10*time.Second),

		RecurringInterval:     getEnvAsDuration("RECURRING_INTERVAL", 12*time.Hour),
		RecurringRunOnStartup: getEnvAsBool("RECURRING_RUN_ON_STARTUP", true),

		ProjectionHorizonMonths: horizon,
		UpcomingWindowDays:      upcomingDays,
		ReportTablesPath:        getEnv("REPORT_TABLES_PATH", ""),
		AllocationIncludeCash:   getEnvAsBool("ALLOCATION_INCLUDE_CASH", false),
		AllocationIncludeDebt:   getEnvAsBool("ALLOCATION_INCLUDE_DEBT", false),
	}
}

// getEnv retrieves an environment variable or returns a fallback value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getRequiredEnv retrieves an environment variable or terminates the application if not set.
func getRequiredEnv(key string) string {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		log.Fatalf("FATAL: Required environment variable %s is not set or is empty. Application cannot start securely.", key)
	}
	return value
}

// getEnvAsInt retrieves an environment variable as an integer or returns a fallback.
func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid integer value for %s ('%s'), using default: %d", key, valueStr, fallback)
	return fallback
}

// getEnvAsDuration retrieves an environment variable as a time.Duration or returns a fallback.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil && value > 0 {
		return value
	}
	log.Printf("Invalid duration value for %s ('%s'), using default: %s", key, valueStr, fallback.String())
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid boolean value for %s ('%s'), using default: %t", key, valueStr, fallback)
	return fallback
}

// getEnvAsList retrieves and parses a comma-separated list.
func getEnvAsList(key string, fallback []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	var items []string
	for _, item := range strings.Split(valueStr, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
