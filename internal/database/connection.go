package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

// Supported store drivers
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ConnectionConfig holds database connection configuration
type ConnectionConfig struct {
	Driver          string
	DatabasePath    string // sqlite file path
	DatabaseURL     string // postgres connection string
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
	ConnectRetry    *RetryConfig // postgres only; nil uses DefaultRetryConfig
	Logger          *logrus.Logger
}

// DefaultConnectionConfig returns a default configuration
func DefaultConnectionConfig() *ConnectionConfig {
	return &ConnectionConfig{
		Driver:          DriverSQLite,
		DatabasePath:    "./data/events.db",
		MaxOpenConns:    1, // SQLite works best with single connection
		ConnMaxLifetime: time.Hour,
		AutoMigrate:     true,
		Logger:          logrus.New(),
	}
}

// DSN returns the data source name for the configured driver
func (c *ConnectionConfig) DSN() string {
	if c.Driver == DriverPostgres {
		return c.DatabaseURL
	}
	return c.DatabasePath
}

// SQLiteDSN appends the pragmas every sqlite connection needs
func SQLiteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000"
}

// ConnectionManager manages database connections
type ConnectionManager struct {
	config *ConnectionConfig
	db     *sql.DB
	pool   *pgxpool.Pool
}

// NewConnectionManager creates a new connection manager
func NewConnectionManager(config *ConnectionConfig) *ConnectionManager {
	if config.Logger == nil {
		config.Logger = logrus.New()
	}
	return &ConnectionManager{
		config: config,
	}
}

// Connect establishes a database connection and runs migrations when enabled.
// Postgres is reached through the retried ping before migrations dial it.
func (cm *ConnectionManager) Connect(ctx context.Context) error {
	if cm.db != nil || cm.pool != nil {
		return fmt.Errorf("database connection already established")
	}

	switch cm.config.Driver {
	case DriverSQLite:
		if err := cm.migrate(); err != nil {
			return err
		}
		return cm.connectSQLite(ctx)
	case DriverPostgres:
		if err := cm.connectPostgres(ctx); err != nil {
			return err
		}
		if err := cm.migrate(); err != nil {
			cm.pool.Close()
			cm.pool = nil
			return err
		}
		return nil
	default:
		return fmt.Errorf("unsupported database driver: %q", cm.config.Driver)
	}
}

func (cm *ConnectionManager) migrate() error {
	if !cm.config.AutoMigrate {
		return nil
	}
	if err := cm.prepare(); err != nil {
		return err
	}
	if err := cm.GetMigrationManager().RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (cm *ConnectionManager) prepare() error {
	if cm.config.Driver != DriverSQLite {
		return nil
	}
	dbDir := filepath.Dir(cm.config.DatabasePath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	return nil
}

func (cm *ConnectionManager) connectSQLite(ctx context.Context) error {
	if err := cm.prepare(); err != nil {
		return err
	}

	db, err := sql.Open("sqlite3", SQLiteDSN(cm.config.DatabasePath))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	// SQLite serializes writers; one connection keeps transactions from
	// failing with SQLITE_BUSY under concurrent signups.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(cm.config.ConnMaxLifetime)

	cm.db = db
	cm.config.Logger.WithField("db_path", cm.config.DatabasePath).Info("Database connection established")
	return nil
}

func (cm *ConnectionManager) connectPostgres(ctx context.Context) error {
	poolConfig, err := pgxpool.ParseConfig(cm.config.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to parse database url: %w", err)
	}
	if cm.config.MaxOpenConns > 0 {
		poolConfig.MaxConns = int32(cm.config.MaxOpenConns)
	}
	if cm.config.ConnMaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cm.config.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}

	attempt := 0
	err = WithRetry(ctx, cm.config.ConnectRetry, func(ctx context.Context) error {
		attempt++
		pingErr := pool.Ping(ctx)
		if pingErr != nil {
			cm.config.Logger.WithError(pingErr).WithField("attempt", attempt).Warn("Database ping failed")
		}
		return pingErr
	})
	if err != nil {
		pool.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	cm.pool = pool
	cm.config.Logger.WithField("max_conns", poolConfig.MaxConns).Info("Database connection pool established")
	return nil
}

// GetDB returns the sqlite database handle
func (cm *ConnectionManager) GetDB() *sql.DB {
	return cm.db
}

// GetPool returns the postgres connection pool
func (cm *ConnectionManager) GetPool() *pgxpool.Pool {
	return cm.pool
}

// Close closes the database connection
func (cm *ConnectionManager) Close() error {
	if cm.pool != nil {
		cm.pool.Close()
		cm.pool = nil
		cm.config.Logger.Info("Database connection pool closed")
	}

	if cm.db == nil {
		return nil
	}

	err := cm.db.Close()
	cm.db = nil

	if err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}

	cm.config.Logger.Info("Database connection closed")
	return nil
}

// Ping tests the database connection
func (cm *ConnectionManager) Ping(ctx context.Context) error {
	switch {
	case cm.pool != nil:
		if err := cm.pool.Ping(ctx); err != nil {
			return fmt.Errorf("database ping failed: %w", err)
		}
	case cm.db != nil:
		if err := cm.db.PingContext(ctx); err != nil {
			return fmt.Errorf("database ping failed: %w", err)
		}
	default:
		return fmt.Errorf("database connection not established")
	}
	return nil
}

// GetMigrationManager returns a migration manager for this connection
func (cm *ConnectionManager) GetMigrationManager() *MigrationManager {
	return NewMigrationManager(cm.config.Driver, cm.config.DSN(), cm.config.Logger)
}
