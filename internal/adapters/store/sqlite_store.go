package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/rankpulse/provider-cache/internal/core"
)

// SQLiteStore is a SQLite implementation of the EntryStore port.
// Timestamps are stored as epoch nanoseconds so expiry cutoffs compare as
// plain integers.
type SQLiteStore struct {
	db     *sql.DB
	table  string
	logger *zap.Logger
}

// NewSQLiteStore opens (or creates) the table backing one resource type in
// the SQLite database at dbPath. Callers for different resource types may
// share the same file; each gets its own table.
func NewSQLiteStore(dbPath, resource string, logger *zap.Logger) (*SQLiteStore, error) {
	table, err := tableName(resource)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	_, err = db.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			fingerprint TEXT PRIMARY KEY,
			payload BLOB,
			status TEXT NOT NULL,
			written_at INTEGER NOT NULL,
			expires_at INTEGER NOT NULL
		)
	`, table))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", table, err)
	}

	// Index on expires_at keeps janitor sweeps off the primary key.
	_, err = db.Exec(fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS idx_%s_expires_at ON %s(expires_at)
	`, table, table))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index on %s: %w", table, err)
	}

	return &SQLiteStore{
		db:     db,
		table:  table,
		logger: logger,
	}, nil
}

// Get retrieves the entry for a fingerprint, expired or not.
func (s *SQLiteStore) Get(ctx context.Context, fingerprint string) (*core.CacheEntry, error) {
	var (
		entry                core.CacheEntry
		status               string
		writtenAt, expiresAt int64
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
	entry.WrittenAt = time.Unix(0, writtenAt).UTC()
	entry.ExpiresAt = time.Unix(0, expiresAt).UTC()

	return &entry, nil
}

// Upsert writes the entry, replacing any existing row for its fingerprint.
func (s *SQLiteStore) Upsert(ctx context.Context, entry *core.CacheEntry) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		INSERT OR REPLACE INTO %s (fingerprint, payload, status, written_at, expires_at)
		VALUES (?, ?, ?, ?, ?)
	`, s.table),
		entry.Fingerprint,
		entry.Payload,
		string(entry.Status),
		entry.WrittenAt.UnixNano(),
		entry.ExpiresAt.UnixNano(),
	)

	if err != nil {
		return fmt.Errorf("%w: upsert into %s: %v", core.ErrStorageUnavailable, s.table, err)
	}
	return nil
}

// Delete removes the row for a fingerprint and reports whether one existed.
func (s *SQLiteStore) Delete(ctx context.Context, fingerprint string) (bool, error) {
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
func (s *SQLiteStore) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		DELETE FROM %s WHERE expires_at < ?
	`, s.table), cutoff.UnixNano())

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
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
