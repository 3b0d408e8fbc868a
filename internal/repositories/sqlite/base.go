package sqlite

import (
	"context"
	"database/sql"
	"time"

	"events-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// BaseRepository provides common functionality for all SQLite repositories
type BaseRepository struct {
	db     *sql.DB
	table  string
	logger *logrus.Logger
}

// NewBaseRepository creates a new base repository
func NewBaseRepository(db *sql.DB, table string, logger *logrus.Logger) *BaseRepository {
	if logger == nil {
		logger = logrus.New()
	}
	return &BaseRepository{
		db:     db,
		table:  table,
		logger: logger,
	}
}

// logQuery logs a query with its execution time
func (r *BaseRepository) logQuery(operation string, query string, args []interface{}, duration time.Duration, err error) {
	fields := logrus.Fields{
		"operation": operation,
		"table":     r.table,
		"query":     query,
		"args":      args,
		"duration":  duration,
	}

	if err != nil {
		fields["error"] = err.Error()
		r.logger.WithFields(fields).Error("Query failed")
	} else {
		r.logger.WithFields(fields).Debug("Query executed")
	}
}

// executeQuery executes a query and logs the result
func (r *BaseRepository) executeQuery(ctx context.Context, q querier, operation, query string, args ...interface{}) (*sql.Rows, error) {
	start := time.Now()
	rows, err := q.QueryContext(ctx, query, args...)
	r.logQuery(operation, query, args, time.Since(start), err)

	if err != nil {
		return nil, repositories.NewRepositoryError(operation, r.table, "", err)
	}

	return rows, nil
}

// executeQueryRow executes a single-row query and logs the result
func (r *BaseRepository) executeQueryRow(ctx context.Context, q querier, operation, query string, args ...interface{}) *sql.Row {
	start := time.Now()
	row := q.QueryRowContext(ctx, query, args...)
	r.logQuery(operation, query, args, time.Since(start), nil)

	return row
}

// executeExec executes a non-query statement and logs the result. The raw
// driver error is returned so callers can inspect constraint violations.
func (r *BaseRepository) executeExec(ctx context.Context, q querier, operation, query string, args ...interface{}) (sql.Result, error) {
	start := time.Now()
	result, err := q.ExecContext(ctx, query, args...)
	r.logQuery(operation, query, args, time.Since(start), err)

	return result, err
}

// withTx runs fn inside a transaction, committing on success
func (r *BaseRepository) withTx(ctx context.Context, operation string, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return repositories.NewRepositoryError(operation, r.table, "", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			r.logger.WithError(rbErr).WithField("operation", operation).Warn("Transaction rollback failed")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return repositories.NewRepositoryError(operation, r.table, "", err)
	}
	return nil
}
