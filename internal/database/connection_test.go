package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel) // Reduce noise in tests
	return logger
}

func tableExists(t *testing.T, cm *ConnectionManager, table string) bool {
	t.Helper()
	var count int
	err := cm.GetDB().QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, table,
	).Scan(&count)
	require.NoError(t, err)
	return count == 1
}

func TestConnectionManager_SQLiteWithMigrations(t *testing.T) {
	cfg := DefaultConnectionConfig()
	cfg.DatabasePath = filepath.Join(t.TempDir(), "nested", "events.db")
	cfg.Logger = testLogger()

	cm := NewConnectionManager(cfg)
	require.NoError(t, cm.Connect(context.Background()))
	defer cm.Close()

	require.NoError(t, cm.Ping(context.Background()))
	assert.True(t, tableExists(t, cm, "events"))
	assert.True(t, tableExists(t, cm, "event_participants"))

	info, err := cm.GetMigrationManager().GetMigrationStatus()
	require.NoError(t, err)
	assert.Equal(t, uint(1), info.Version)
	assert.False(t, info.Dirty)
	assert.True(t, info.Applied)
}

func TestConnectionManager_ConnectTwice(t *testing.T) {
	cfg := DefaultConnectionConfig()
	cfg.DatabasePath = filepath.Join(t.TempDir(), "events.db")
	cfg.Logger = testLogger()

	cm := NewConnectionManager(cfg)
	require.NoError(t, cm.Connect(context.Background()))
	defer cm.Close()

	assert.Error(t, cm.Connect(context.Background()))
}

func TestConnectionManager_UnsupportedDriver(t *testing.T) {
	cm := NewConnectionManager(&ConnectionConfig{Driver: "oracle", Logger: testLogger()})
	assert.Error(t, cm.Connect(context.Background()))
	assert.Error(t, cm.Ping(context.Background()))
}

func TestConnectionManager_PostgresRetriesBeforeMigrating(t *testing.T) {
	logger, hook := test.NewNullLogger()

	cm := NewConnectionManager(&ConnectionConfig{
		Driver:      DriverPostgres,
		DatabaseURL: "postgres://events@127.0.0.1:1/events?sslmode=disable&connect_timeout=1",
		AutoMigrate: true,
		ConnectRetry: &RetryConfig{
			MaxAttempts:   3,
			InitialDelay:  time.Millisecond,
			MaxDelay:      5 * time.Millisecond,
			BackoffFactor: 2.0,
		},
		Logger: logger,
	})

	err := cm.Connect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to ping database")
	assert.Nil(t, cm.GetPool())

	attempts := 0
	for _, entry := range hook.AllEntries() {
		if entry.Message == "Database ping failed" {
			attempts++
		}
	}
	assert.Equal(t, 3, attempts)
}

func TestMigrationManager_RollbackAndReapply(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "events.db")
	mm := NewMigrationManager(DriverSQLite, dbPath, testLogger())

	require.NoError(t, mm.RunMigrations())
	// Running again is a no-op
	require.NoError(t, mm.RunMigrations())

	require.NoError(t, mm.RollbackMigration())
	info, err := mm.GetMigrationStatus()
	require.NoError(t, err)
	assert.False(t, info.Applied)

	assert.Error(t, mm.RollbackMigration())
	require.NoError(t, mm.RunMigrations())
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "a.db?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000", SQLiteDSN("a.db"))
	assert.Equal(t, "a.db?mode=ro", SQLiteDSN("a.db?mode=ro"))
}
