package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"events-api/internal/config"
	"events-api/internal/database"
)

func main() {
	var (
		driver  = flag.String("driver", config.GetEnv("DB_DRIVER", database.DriverSQLite), "Store driver: sqlite or postgres")
		dbPath  = flag.String("db", config.GetEnv("DB_PATH", config.DefaultSQLitePath), "SQLite database file path")
		dbURL   = flag.String("url", os.Getenv("DB_URL"), "Postgres connection URL")
		action  = flag.String("action", "up", "Migration action: up, down, status")
		verbose = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	// Setup logger
	logger := logrus.New()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	connConfig := &database.ConnectionConfig{
		Driver:      *driver,
		DatabaseURL: *dbURL,
		Logger:      logger,
	}

	switch *driver {
	case database.DriverSQLite:
		absDBPath, err := filepath.Abs(*dbPath)
		if err != nil {
			logger.WithError(err).Fatal("Failed to get absolute database path")
		}
		if err := os.MkdirAll(filepath.Dir(absDBPath), 0755); err != nil {
			logger.WithError(err).Fatal("Failed to create database directory")
		}
		connConfig.DatabasePath = absDBPath
	case database.DriverPostgres:
		if *dbURL == "" {
			logger.Fatal("Postgres migrations need -url or DB_URL")
		}
	default:
		logger.WithField("driver", *driver).Fatal("Unknown driver. Use: sqlite, postgres")
	}

	logger.WithFields(logrus.Fields{
		"driver":  *driver,
		"db_path": connConfig.DatabasePath,
		"action":  *action,
	}).Info("Starting migration tool")

	migrationManager := database.NewConnectionManager(connConfig).GetMigrationManager()

	// Handle different actions
	switch *action {
	case "up":
		if err := migrationManager.RunMigrations(); err != nil {
			logger.WithError(err).Fatal("Migration up failed")
		}
	case "down":
		if err := migrationManager.RollbackMigration(); err != nil {
			logger.WithError(err).Fatal("Migration down failed")
		}
	case "status":
		if err := showMigrationStatus(migrationManager); err != nil {
			logger.WithError(err).Fatal("Failed to get migration status")
		}
	default:
		logger.WithField("action", *action).Fatal("Unknown action. Use: up, down, status")
	}

	logger.Info("Migration tool completed successfully")
}

func showMigrationStatus(mm *database.MigrationManager) error {
	status, err := mm.GetMigrationStatus()
	if err != nil {
		return fmt.Errorf("failed to get migration status: %w", err)
	}

	fmt.Printf("Migration Status:\n")
	fmt.Printf("  Version: %d\n", status.Version)
	fmt.Printf("  Applied: %t\n", status.Applied)
	fmt.Printf("  Dirty: %t\n", status.Dirty)
	fmt.Printf("  Timestamp: %s\n", status.Timestamp.Format("2006-01-02 15:04:05"))

	return nil
}
