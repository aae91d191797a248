package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/justestif/go-spotify-alarm/internal/storage"
)

// KVRepository stores opaque values by key. It implements storage.Store.
type KVRepository struct {
	pool *pgxpool.Pool
}

// Get retrieves the value stored under key.
// Returns storage.ErrNotFound if there is none.
func (r *KVRepository) Get(ctx context.Context, key string) ([]byte, error) {
	query := `SELECT value FROM kv_store WHERE key = $1`

	var value []byte
	err := r.pool.QueryRow(ctx, query, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying key: %w", err)
	}
	return value, nil
}

// Set creates or replaces the value stored under key.
func (r *KVRepository) Set(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = NOW()
	`
	if _, err := r.pool.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("upserting key: %w", err)
	}
	return nil
}

// Delete removes key if present.
func (r *KVRepository) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM kv_store WHERE key = $1`
	if _, err := r.pool.Exec(ctx, query, key); err != nil {
		return fmt.Errorf("deleting key: %w", err)
	}
	return nil
}

var _ storage.Store = (*KVRepository)(nil)
