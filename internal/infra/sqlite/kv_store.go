package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"learnhub-quiz-service/internal/domain"
)

// KVStore persists the on-device style key/value data (progress flags,
// auto-login records) in a single SQLite file.
type KVStore struct {
	db    *sql.DB
	clock func() time.Time
}

func NewKVStore(path string) (*KVStore, error) {
	return NewKVStoreWithClock(path, time.Now)
}

// NewKVStoreWithClock is test-only for deterministic expiry.
func NewKVStoreWithClock(path string, clock func() time.Time) (*KVStore, error) {
	if strings.TrimSpace(path) == "" {
		path = "learnhub.db"
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	store := &KVStore{db: db, clock: clock}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *KVStore) Close() error {
	return s.db.Close()
}

func (s *KVStore) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value BLOB NOT NULL,
			-- 0 means the entry never expires
			expires_at_unix_ms INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE INDEX IF NOT EXISTS idx_kv_expires_at ON kv(expires_at_unix_ms);`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *KVStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var expiresAt int64
	if ttl > 0 {
		expiresAt = s.clock().Add(ttl).UnixMilli()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, expires_at_unix_ms) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value, expires_at_unix_ms=excluded.expires_at_unix_ms`,
		key, value, expiresAt)
	return err
}

func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT value FROM kv
		WHERE key = ? AND (expires_at_unix_ms = 0 OR expires_at_unix_ms > ?)`,
		key, s.clock().UnixMilli()).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *KVStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
	return err
}

// Keys lists live keys with the prefix in lexical order.
func (s *KVStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key FROM kv
		WHERE substr(key, 1, ?) = ? AND (expires_at_unix_ms = 0 OR expires_at_unix_ms > ?)
		ORDER BY key`,
		len(prefix), prefix, s.clock().UnixMilli())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make([]string, 0)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// PurgeExpired drops expired rows and reports how many went.
func (s *KVStore) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE expires_at_unix_ms != 0 AND expires_at_unix_ms <= ?`, s.clock().UnixMilli())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
