package alarms

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	// Pure-Go sqlite driver registered under the "sqlite" name.
	_ "modernc.org/sqlite"

	"github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// SQLiteRepository persists the alarm collection in a sqlite kv table,
// keyed by StorageKey like the file backend.
type SQLiteRepository struct {
	// db is the open sqlite handle.
	db *sql.DB
}

// kvSchema creates the key-value table the collection is stored in.
const kvSchema = `CREATE TABLE IF NOT EXISTS kv (
	key   TEXT PRIMARY KEY,
	value BLOB NOT NULL
)`

// NewSQLiteRepository opens (creating if needed) the sqlite database at
// the provided path and ensures the kv schema exists.
func NewSQLiteRepository(ctx context.Context, path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if _, err = db.ExecContext(ctx, kvSchema); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("ensure kv schema: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// Load reads the collection from the kv table. A missing row or an
// unreadable payload yields an empty collection.
func (r *SQLiteRepository) Load(ctx context.Context) ([]*alarm.Alarm, error) {
	var payload []byte

	err := r.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, StorageKey).Scan(&payload)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("query alarm state: %w", err)
	}

	return decodeAlarms(ctx, payload), nil
}

// Save replaces the collection stored under StorageKey.
func (r *SQLiteRepository) Save(ctx context.Context, alarms []*alarm.Alarm) error {
	payload, err := json.Marshal(alarms)
	if err != nil {
		return fmt.Errorf("encode alarms: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		StorageKey, payload)
	if err != nil {
		return fmt.Errorf("write alarm state: %w", err)
	}

	return nil
}

// Close releases the underlying database handle.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
