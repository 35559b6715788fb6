package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStorage keeps session values in the console_session_values table
// (see migrations/). Expired rows read as absent and are purged by Purge.
type PostgresStorage struct {
	pool *pgxpool.Pool
	ttl  time.Duration
}

// NewPostgresStorage returns a pgx-backed storage. A zero ttl disables expiry.
func NewPostgresStorage(pool *pgxpool.Pool, ttl time.Duration) *PostgresStorage {
	return &PostgresStorage{pool: pool, ttl: ttl}
}

func (p *PostgresStorage) expiry() *time.Time {
	if p.ttl <= 0 {
		return nil
	}
	exp := time.Now().Add(p.ttl)
	return &exp
}

func (p *PostgresStorage) Get(ctx context.Context, key string) (string, bool, error) {
	const query = `
        UPDATE console_session_values SET expires_at = $2
        WHERE key = $1 AND (expires_at IS NULL OR expires_at > NOW())
        RETURNING value`

	var value string
	err := p.pool.QueryRow(ctx, query, key, p.expiry()).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("postgres get: %w", err)
	}
	return value, true, nil
}

func (p *PostgresStorage) Set(ctx context.Context, key, value string) error {
	const query = `
        INSERT INTO console_session_values (key, value, expires_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at, updated_at = NOW()`

	if _, err := p.pool.Exec(ctx, query, key, value, p.expiry()); err != nil {
		return fmt.Errorf("postgres set: %w", err)
	}
	return nil
}

func (p *PostgresStorage) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	const query = `DELETE FROM console_session_values WHERE key = ANY($1)`
	if _, err := p.pool.Exec(ctx, query, keys); err != nil {
		return fmt.Errorf("postgres delete: %w", err)
	}
	return nil
}

// Purge removes expired rows and returns how many were deleted.
func (p *PostgresStorage) Purge(ctx context.Context) (int64, error) {
	const query = `DELETE FROM console_session_values WHERE expires_at IS NOT NULL AND expires_at <= NOW()`
	cmd, err := p.pool.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("postgres purge: %w", err)
	}
	return cmd.RowsAffected(), nil
}
