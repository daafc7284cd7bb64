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
	Database DatabaseConfig
	Server   ServerConfig
	App      AppConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port string
}

// AppConfig holds referral program policy settings
type AppConfig struct {
	JWTSecret     string
	ServiceSecret string
	AdminSecret   string

	// ReferralRewardPoints is credited to a referrer per confirmed referral.
	ReferralRewardPoints int64
	CodeLength           int
	CodeMaxAttempts      int

	// DailyLimitTZ decides where the calendar day flips for the
	// one-link-per-day rule. UTC unless configured otherwise.
	DailyLimitTZ *time.Location

	// DefaultRewardCost seeds the catalog when it is empty.
	DefaultRewardCost int64
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	tz, err := time.LoadLocation(getEnv("DAILY_LIMIT_TZ", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("invalid DAILY_LIMIT_TZ: %w", err)
	}

	config := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "referral_engine"),
		},
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
		},
		App: AppConfig{
			JWTSecret:            getEnv("JWT_SECRET", ""),
			ServiceSecret:        getEnv("SERVICE_SECRET", ""),
			AdminSecret:          getEnv("ADMIN_SECRET", ""),
			ReferralRewardPoints: getEnvInt64("REFERRAL_REWARD_POINTS", 10),
			CodeLength:           getEnvInt("REFERRAL_CODE_LENGTH", 8),
			CodeMaxAttempts:      getEnvInt("REFERRAL_CODE_MAX_ATTEMPTS", 5),
			DailyLimitTZ:         tz,
			DefaultRewardCost:    getEnvInt64("DEFAULT_REWARD_COST", 50),
		},
	}

	// Validate required fields
	if config.App.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if config.App.ServiceSecret == "" {
		return nil, fmt.Errorf("SERVICE_SECRET is required")
	}
	if config.App.ReferralRewardPoints <= 0 {
		return nil, fmt.Errorf("REFERRAL_REWARD_POINTS must be positive")
	}

	return config, nil
}

// GetDSN returns the PostgreSQL connection string
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}
