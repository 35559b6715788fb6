package persistence

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/contentdesk/internal/config"
)

func TestOpenMemoryDriverSealsWhenSecretSet(t *testing.T) {
	cfg := &config.Config{Session: config.SessionConfig{Driver: config.DriverMemory, SealSecret: "0123456789abcdef0123456789abcdef"}}

	b, err := Open(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer b.Close()

	ctx := context.Background()
	require.NoError(t, b.Storage.Set(ctx, "token", "bearer-value"))
	got, ok, err := b.Storage.Get(ctx, "token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "bearer-value", got)
	assert.Nil(t, b.Sessions)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{Session: config.SessionConfig{Driver: "etcd"}}, zap.NewNop())
	require.Error(t, err)
}

func TestRunMigrationsWithoutPoolIsNoop(t *testing.T) {
	require.NoError(t, RunMigrations(context.Background(), nil, "missing-dir", zap.NewNop()))
}

func TestRunMigrationsAgainstPostgres(t *testing.T) {
	dsn := os.Getenv("CONTENTDESK_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("CONTENTDESK_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	pg, err := NewPostgres(ctx, config.PostgresConfig{DSN: dsn}, zap.NewNop())
	require.NoError(t, err)
	defer pg.Close()

	dir := filepath.Join("..", "..", "migrations")
	require.NoError(t, RunMigrations(ctx, pg.Pool, dir, zap.NewNop()))
	// Second run finds everything applied.
	require.NoError(t, RunMigrations(ctx, pg.Pool, dir, zap.NewNop()))
	require.NoError(t, pg.Ping(ctx))
}
