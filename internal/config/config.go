package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Environment string
	Port        string
	JWTSecret   string
	JWTExpiry   time.Duration
	CORSOrigins string
	GeminiKey   string
	GeminiModel string
	Database    DatabaseConfig
	Scanner     ScannerConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
}

// ScannerConfig holds the tunables of the remote-scanner relay subsystem.
// Cooldown and reconnect delay are deliberately single named values so the
// same window applies everywhere a duplicate check or retry is made.
type ScannerConfig struct {
	Cooldown       time.Duration
	ReconnectDelay time.Duration
	PublicHost     string
}

const devJWTSecret = "dev-secret-change-in-production"

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	env := getEnv("ENVIRONMENT", "development")

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		if env == "production" {
			return nil, fmt.Errorf("JWT_SECRET is required in production")
		}
		jwtSecret = devJWTSecret
	}
	if env == "production" && jwtSecret == devJWTSecret {
		return nil, fmt.Errorf("JWT_SECRET must not use the development default in production")
	}

	return &Config{
		Environment: env,
		Port:        getEnv("PORT", "8000"),
		JWTSecret:   jwtSecret,
		JWTExpiry:   time.Duration(getEnvInt("JWT_EXPIRE_MINUTES", 60*24)) * time.Minute,
		CORSOrigins: os.Getenv("CORS_ORIGINS"),
		GeminiKey:   os.Getenv("GEMINI_API_KEY"),
		GeminiModel: getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		Database: DatabaseConfig{
			Host:     getEnv("PG_HOST", "localhost"),
			Port:     getEnv("PG_PORT", "5432"),
			Username: getEnv("PG_USERNAME", "postgres"),
			Password: os.Getenv("PG_PASSWORD"),
			Database: getEnv("PG_DATABASE", "logicapture"),
		},
		Scanner: ScannerConfig{
			Cooldown:       time.Duration(getEnvInt("SCANNER_COOLDOWN_MS", 5000)) * time.Millisecond,
			ReconnectDelay: time.Duration(getEnvInt("SCANNER_RECONNECT_MS", 3000)) * time.Millisecond,
			PublicHost:     getEnv("SCANNER_PUBLIC_HOST", ""),
		},
	}, nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
