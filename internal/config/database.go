package config

import (
	"time"

	"github.com/sirupsen/logrus"

	"events-api/internal/database"
)

// DefaultSQLitePath is where the sqlite store lives unless DB_PATH says otherwise
const DefaultSQLitePath = "./data/events.db"

// DatabaseConfig holds event store configuration
type DatabaseConfig struct {
	Driver          string `validate:"oneof=memory sqlite postgres"`
	Path            string `validate:"required_if=Driver sqlite"`
	URL             string `validate:"required_if=Driver postgres"`
	MaxOpenConns    int    `validate:"gte=1"`
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
	ConnectAttempts int // 0 keeps the default
}

// ToConnectionConfig converts DatabaseConfig to database.ConnectionConfig
func (c *DatabaseConfig) ToConnectionConfig(logger *logrus.Logger) *database.ConnectionConfig {
	retry := database.DefaultRetryConfig()
	if c.ConnectAttempts > 0 {
		retry.MaxAttempts = c.ConnectAttempts
	}
	return &database.ConnectionConfig{
		Driver:          c.Driver,
		DatabasePath:    c.Path,
		DatabaseURL:     c.URL,
		MaxOpenConns:    c.MaxOpenConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
		AutoMigrate:     c.AutoMigrate,
		ConnectRetry:    retry,
		Logger:          logger,
	}
}
