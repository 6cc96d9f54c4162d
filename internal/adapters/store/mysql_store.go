package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/rankpulse/provider-cache/internal/core"
)

const mysqlTimeFormat = "2006-01-02 15:04:05.000000"

// MySQLStore is a MySQL implementation of the EntryStore port, for
// deployments where several dashboard instances share one cache.
type MySQLStore struct {
	db     *sql.DB
	table  string
	logger *zap.Logger
}

// NewMySQLStore connects to MySQL and ensures the table backing one
// resource type exists.
func NewMySQLStore(dsn, resource string, logger *zap.Logger) (*MySQLStore, error) {
	table, err := tableName(resource)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	_, err = db.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			fingerprint VARCHAR(512) PRIMARY KEY,
			payload MEDIUMBLOB,
			status VARCHAR(16) NOT NULL,
			written_at DATETIME(6) NOT NULL,
			expires_at DATETIME(6) NOT NULL,
			INDEX idx_expires_at (expires_at)
		)
	`, table))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", table, err)
	}

	return &MySQLStore{
		db:     db,
		table:  table,
		logger: logger,
	}, nil
}

// Get retrieves the entry for a fingerprint, expired or not.
func (s *MySQLStore) Get(ctx context.Context, fingerprint string) (*core.CacheEntry, error) {
	var (
		entry                core.CacheEntry
		status               string
		writtenAt, expiresAt string
	)

	err := s.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT fingerprint, payload, status, written_at, expires_at
		FROM %s
		WHERE fingerprint = ?
	`, s.table), fingerprint).Scan(&entry.Fingerprint, &entry.Payload, &status, &writtenAt, &expiresAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("%w: query %s: %v", core.ErrStorageUnavailable, s.table, err)
	}

	entry.Status = core.EntryStatus(status)

	entry.WrittenAt, err = time.Parse(mysqlTimeFormat, writtenAt)
	if err != nil {
		return nil, fmt.Errorf("%w: parse written_at: %v", core.ErrStorageUnavailable, err)
	}
	entry.ExpiresAt, err = time.Parse(mysqlTimeFormat, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("%w: parse expires_at: %v", core.ErrStorageUnavailable, err)
	}

	return &entry, nil
}

// Upsert writes the entry, replacing any existing row for its fingerprint.
func (s *MySQLStore) Upsert(ctx context.Context, entry *core.CacheEntry) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (fingerprint, payload, status, written_at, expires_at)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			payload = VALUES(payload),
			status = VALUES(status),
			written_at = VALUES(written_at),
			expires_at = VALUES(expires_at)
	`, s.table),
		entry.Fingerprint,
		entry.Payload,
		string(entry.Status),
		entry.WrittenAt.UTC().Format(mysqlTimeFormat),
		entry.ExpiresAt.UTC().Format(mysqlTimeFormat),
	)

	if err != nil {
		return fmt.Errorf("%w: upsert into %s: %v", core.ErrStorageUnavailable, s.table, err)
	}
	return nil
}

// Delete removes the row for a fingerprint and reports whether one existed.
func (s *MySQLStore) Delete(ctx context.Context, fingerprint string) (bool, error) {
	result, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		DELETE FROM %s WHERE fingerprint = ?
	`, s.table), fingerprint)

	if err != nil {
		return false, fmt.Errorf("%w: delete from %s: %v", core.ErrStorageUnavailable, s.table, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		s.logger.Warn("failed to read rows affected after delete", zap.Error(err))
		return false, nil
	}
	return affected > 0, nil
}

// DeleteExpired removes every row whose expiry passed before the cutoff.
func (s *MySQLStore) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		DELETE FROM %s WHERE expires_at < ?
	`, s.table), cutoff.UTC().Format(mysqlTimeFormat))

	if err != nil {
		return 0, fmt.Errorf("%w: expiry sweep of %s: %v", core.ErrStorageUnavailable, s.table, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		s.logger.Warn("failed to read rows affected after sweep", zap.Error(err))
		return 0, nil
	}
	return affected, nil
}

// Close closes the underlying database handle.
func (s *MySQLStore) Close() error {
	return s.db.Close()
}
