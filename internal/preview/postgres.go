package preview

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the query surface shared by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// value is JSON rather than JSONB: JSONB reorders object keys, and contact
// rows must come back in header order.
const createPreviewTable = `
CREATE TABLE IF NOT EXISTS preview_cache (
    key        TEXT PRIMARY KEY,
    value      JSON NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Tables created with a JSONB value column are switched to JSON. Rows saved
// before the switch keep their reordered keys until rewritten.
const migrateValueToJSON = `
DO $$
BEGIN
    IF EXISTS (
        SELECT 1 FROM information_schema.columns
        WHERE table_schema = current_schema()
          AND table_name = 'preview_cache'
          AND column_name = 'value'
          AND data_type = 'jsonb'
    ) THEN
        ALTER TABLE preview_cache ALTER COLUMN value TYPE JSON USING value::json;
    END IF;
END
$$`

const getEntry = `SELECT value FROM preview_cache WHERE key = $1`

const upsertEntry = `
INSERT INTO preview_cache (key, value, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`

const deleteEntry = `DELETE FROM preview_cache WHERE key = $1`

const pruneEntries = `DELETE FROM preview_cache WHERE updated_at < $1`

const listKeys = `SELECT key FROM preview_cache WHERE starts_with(key, $1) ORDER BY key`

// PostgresStore keeps entries in the preview_cache table. Values must be
// JSON documents; Cache only ever writes JSON.
type PostgresStore struct {
	db DBTX
}

func NewPostgresStore(db DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the preview_cache table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createPreviewTable); err != nil {
		return fmt.Errorf("create preview_cache: %w", err)
	}
	if _, err := s.db.Exec(ctx, migrateValueToJSON); err != nil {
		return fmt.Errorf("migrate preview_cache: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow(ctx, getEntry, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get preview entry %s: %w", key, err)
	}
	return value, nil
}

func (s *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	if _, err := s.db.Exec(ctx, upsertEntry, key, string(value)); err != nil {
		return fmt.Errorf("save preview entry %s: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.Exec(ctx, deleteEntry, key); err != nil {
		return fmt.Errorf("delete preview entry %s: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.db.Query(ctx, listKeys, prefix)
	if err != nil {
		return nil, fmt.Errorf("list preview keys: %w", err)
	}
	keys, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("list preview keys: %w", err)
	}
	return keys, nil
}

// Prune deletes entries last written before cutoff and reports how many
// went. Postgres has no TTL, so a scheduler calls this periodically.
func (s *PostgresStore) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, pruneEntries, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune preview entries: %w", err)
	}
	return tag.RowsAffected(), nil
}
