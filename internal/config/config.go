package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Environment string `validate:"required"`
	Port        string `validate:"required,numeric"`
	Log         LogConfig
	Database    DatabaseConfig
	Auth        AuthConfig
	HTTP        HTTPConfig
	Infra       InfraConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `validate:"oneof=trace debug info warn warning error fatal panic"`
	Format string `validate:"oneof=json text"`
}

// AuthConfig holds bearer token configuration
type AuthConfig struct {
	Enabled     bool
	JWTSecret   string `validate:"required_if=Enabled true"`
	Issuer      string
	ExpiryHours int `validate:"gte=1"`
}

// HTTPConfig holds settings for the standalone HTTP server
type HTTPConfig struct {
	RateLimitRPS   float64 `validate:"gte=0"`
	RateLimitBurst int     `validate:"gte=0"`
	MaxBodyBytes   int64   `validate:"gte=0"`
}

// InfraConfig holds the deployment descriptor values handed to the function
type InfraConfig struct {
	DatabaseHost      string
	DatabaseName      string
	DatabaseSecretARN string
	UserPoolID        string
	ClientID          string
}

// IsDevelopment reports whether development-only routes should be served
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// TokenDuration returns the lifetime of issued tokens
func (c *AuthConfig) TokenDuration() time.Duration {
	return time.Duration(c.ExpiryHours) * time.Hour
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Set up Viper
	viper.AutomaticEnv()
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DB_DRIVER", "memory")
	viper.SetDefault("DB_PATH", DefaultSQLitePath)
	viper.SetDefault("DB_MAX_OPEN_CONNS", 10)
	viper.SetDefault("DB_CONN_MAX_LIFETIME", time.Hour)
	viper.SetDefault("DB_AUTO_MIGRATE", true)
	viper.SetDefault("DB_CONNECT_ATTEMPTS", 3)
	viper.SetDefault("AUTH_ENABLED", false)
	viper.SetDefault("JWT_ISSUER", "events-api")
	viper.SetDefault("JWT_EXPIRY_HOURS", 24)
	viper.SetDefault("RATE_LIMIT_RPS", 100)
	viper.SetDefault("RATE_LIMIT_BURST", 200)
	viper.SetDefault("MAX_BODY_BYTES", 1<<20)

	logFormat := strings.ToLower(viper.GetString("LOG_FORMAT"))
	if logFormat == "" {
		logFormat = "text"
		if IsServerlessMode() {
			logFormat = "json"
		}
	}

	config := &Config{
		Environment: viper.GetString("ENVIRONMENT"),
		Port:        viper.GetString("PORT"),
		Log: LogConfig{
			Level:  strings.ToLower(viper.GetString("LOG_LEVEL")),
			Format: logFormat,
		},
		Database: DatabaseConfig{
			Driver:          strings.ToLower(viper.GetString("DB_DRIVER")),
			Path:            viper.GetString("DB_PATH"),
			URL:             viper.GetString("DB_URL"),
			MaxOpenConns:    viper.GetInt("DB_MAX_OPEN_CONNS"),
			ConnMaxLifetime: viper.GetDuration("DB_CONN_MAX_LIFETIME"),
			AutoMigrate:     viper.GetBool("DB_AUTO_MIGRATE"),
			ConnectAttempts: viper.GetInt("DB_CONNECT_ATTEMPTS"),
		},
		Auth: AuthConfig{
			Enabled:     viper.GetBool("AUTH_ENABLED"),
			JWTSecret:   viper.GetString("JWT_SECRET"),
			Issuer:      viper.GetString("JWT_ISSUER"),
			ExpiryHours: viper.GetInt("JWT_EXPIRY_HOURS"),
		},
		HTTP: HTTPConfig{
			RateLimitRPS:   viper.GetFloat64("RATE_LIMIT_RPS"),
			RateLimitBurst: viper.GetInt("RATE_LIMIT_BURST"),
			MaxBodyBytes:   viper.GetInt64("MAX_BODY_BYTES"),
		},
		Infra: InfraConfig{
			DatabaseHost:      viper.GetString("DATABASE_HOST"),
			DatabaseName:      viper.GetString("DATABASE_NAME"),
			DatabaseSecretARN: viper.GetString("DATABASE_SECRET_ARN"),
			UserPoolID:        viper.GetString("USER_POOL_ID"),
			ClientID:          viper.GetString("CLIENT_ID"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the configuration against its struct tags
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// NewLogger builds a logger from the logging configuration
func NewLogger(cfg LogConfig) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger
}

// GetEnv gets an environment variable with a fallback value
func GetEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// GetEnvAsInt gets an environment variable as integer with a fallback value
func GetEnvAsInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}
