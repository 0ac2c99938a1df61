package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stewardhq/steward/internal/domain"
	"github.com/stewardhq/steward/internal/domain/asset"
)

// VersionLog implements versionlog.Log on the snapshots table. Sequence
// numbers are allocated in the insert statement itself; the (asset_key, seq)
// primary key rejects a racing duplicate instead of corrupting the history.
type VersionLog struct {
	pool *pgxpool.Pool
}

// NewVersionLog creates a VersionLog backed by the given connection pool.
func NewVersionLog(pool *pgxpool.Pool) *VersionLog {
	return &VersionLog{pool: pool}
}

// Append records content as the next snapshot for key and returns it.
func (l *VersionLog) Append(ctx context.Context, key string, content []byte) (asset.Snapshot, error) {
	snap := asset.Snapshot{Key: key, Content: content, Checksum: asset.Checksum(content)}
	err := l.pool.QueryRow(ctx,
		`INSERT INTO snapshots (asset_key, seq, content, checksum)
		 SELECT $1, COALESCE(MAX(seq) + 1, 0), $2, $3 FROM snapshots WHERE asset_key = $1
		 RETURNING seq, created_at`,
		key, content, snap.Checksum,
	).Scan(&snap.Seq, &snap.CreatedAt)
	if err != nil {
		return asset.Snapshot{}, fmt.Errorf("append snapshot for %s: %w", key, err)
	}
	return snap, nil
}

// History returns every snapshot for key, oldest first.
func (l *VersionLog) History(ctx context.Context, key string) ([]asset.Snapshot, error) {
	rows, err := l.pool.Query(ctx,
		`SELECT asset_key, seq, content, checksum, created_at
		 FROM snapshots WHERE asset_key = $1 ORDER BY seq ASC`, key)
	if err != nil {
		return nil, fmt.Errorf("history for asset %s: %w", key, err)
	}
	defer rows.Close()

	var snaps []asset.Snapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, fmt.Errorf("history for asset %s: %w", key, domain.ErrNotFound)
	}
	return snaps, nil
}

// Latest returns the most recent snapshot for key.
func (l *VersionLog) Latest(ctx context.Context, key string) (asset.Snapshot, error) {
	row := l.pool.QueryRow(ctx,
		`SELECT asset_key, seq, content, checksum, created_at
		 FROM snapshots WHERE asset_key = $1 ORDER BY seq DESC LIMIT 1`, key)

	snap, err := scanSnapshot(row)
	if err != nil {
		return asset.Snapshot{}, notFoundWrap(err, "latest snapshot for asset %s", key)
	}
	return snap, nil
}

// Restore appends a new snapshot carrying the content recorded at seq and
// returns it. The target row supplies content and checksum in one statement,
// so a missing seq inserts nothing.
func (l *VersionLog) Restore(ctx context.Context, key string, seq int64) (asset.Snapshot, error) {
	row := l.pool.QueryRow(ctx,
		`INSERT INTO snapshots (asset_key, seq, content, checksum)
		 SELECT s.asset_key, (SELECT MAX(seq) + 1 FROM snapshots WHERE asset_key = $1), s.content, s.checksum
		 FROM snapshots s WHERE s.asset_key = $1 AND s.seq = $2
		 RETURNING asset_key, seq, content, checksum, created_at`,
		key, seq)

	snap, err := scanSnapshot(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return asset.Snapshot{}, fmt.Errorf("restore asset %s to seq %d: %w", key, seq, domain.ErrUnknownSnapshot)
		}
		return asset.Snapshot{}, fmt.Errorf("restore asset %s to seq %d: %w", key, seq, err)
	}
	return snap, nil
}

func scanSnapshot(row scannable) (asset.Snapshot, error) {
	var s asset.Snapshot
	err := row.Scan(&s.Key, &s.Seq, &s.Content, &s.Checksum, &s.CreatedAt)
	return s, err
}
