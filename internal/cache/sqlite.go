package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

var _ Backend = (*SQLiteBackend)(nil)

// SQLiteBackend stores cache entries in a SQLite database.
// Use ":memory:" for a cache that lives as long as the process.
type SQLiteBackend struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// NewSQLiteBackend creates a backend for the database at path
func NewSQLiteBackend(path string) *SQLiteBackend {
	return &SQLiteBackend{path: path, now: time.Now}
}

// Open opens the database and creates the cache table if needed
func (b *SQLiteBackend) Open() error {
	conn, err := sql.Open("sqlite3", b.path)
	if err != nil {
		return fmt.Errorf("failed to open cache database: %w", err)
	}

	// One writer at a time; also keeps a :memory: database alive
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to connect to cache database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}

	// WAL is not supported for in-memory databases
	if b.path != ":memory:" {
		if _, err := conn.Exec("PRAGMA journal_mode = WAL"); err != nil {
			conn.Close()
			return fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	b.db = conn

	if err := b.createSchema(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to create cache schema: %w", err)
	}

	return nil
}

// Close closes the database connection
func (b *SQLiteBackend) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

func (b *SQLiteBackend) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS cache_entries (
			key TEXT PRIMARY KEY,
			value BLOB NOT NULL,
			expires_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_cache_entries_expires_at ON cache_entries(expires_at);
	`

	_, err := b.db.Exec(schema)
	return err
}

func (b *SQLiteBackend) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := b.db.QueryRowContext(ctx,
		"SELECT value FROM cache_entries WHERE key = ? AND expires_at > ?",
		key, b.now().UnixMilli(),
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}
	return value, nil
}

func (b *SQLiteBackend) SetEx(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO cache_entries (key, value, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at
	`, key, value, b.now().Add(ttl).UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

func (b *SQLiteBackend) Delete(ctx context.Context, key string) error {
	if _, err := b.db.ExecContext(ctx, "DELETE FROM cache_entries WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

func (b *SQLiteBackend) DeletePattern(ctx context.Context, pattern string) error {
	if _, err := b.db.ExecContext(ctx, "DELETE FROM cache_entries WHERE key GLOB ?", pattern); err != nil {
		return fmt.Errorf("failed to delete cache entries: %w", err)
	}
	return nil
}

// Purge removes expired entries
func (b *SQLiteBackend) Purge(ctx context.Context) (int64, error) {
	res, err := b.db.ExecContext(ctx, "DELETE FROM cache_entries WHERE expires_at <= ?", b.now().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to purge cache entries: %w", err)
	}
	return res.RowsAffected()
}
