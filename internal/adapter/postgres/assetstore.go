package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AssetStore implements assetstore.Store on the assets table, which mirrors
// the current content per key.
type AssetStore struct {
	pool *pgxpool.Pool
}

// NewAssetStore creates an AssetStore backed by the given connection pool.
func NewAssetStore(pool *pgxpool.Pool) *AssetStore {
	return &AssetStore{pool: pool}
}

// Get returns the current content for key.
func (s *AssetStore) Get(ctx context.Context, key string) ([]byte, error) {
	var content []byte
	err := s.pool.QueryRow(ctx,
		`SELECT content FROM assets WHERE key = $1`, key,
	).Scan(&content)
	if err != nil {
		return nil, notFoundWrap(err, "get asset %s", key)
	}
	return content, nil
}

// Set upserts the content for key.
func (s *AssetStore) Set(ctx context.Context, key string, content []byte) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO assets (key, content) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET content = EXCLUDED.content, updated_at = now()`,
		key, content)
	if err != nil {
		return fmt.Errorf("set asset %s: %w", key, err)
	}
	return nil
}

// Keys returns the managed asset keys in lexical order.
func (s *AssetStore) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT key FROM assets ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list asset keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan asset key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
