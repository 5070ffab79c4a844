package postgres

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// migrationGlob matches the SQL the migrations package embeds. It is read
// from disk because migrations imports this package.
const migrationGlob = "../migrations/postgres/*.sql"

// setupTestDB starts a PostgreSQL container with the schema applied.
// The returned cleanup closes the pool and stops the container.
func setupTestDB(t *testing.T) (*Pool, func()) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("recon"),
		tcpostgres.WithUsername("recon"),
		tcpostgres.WithPassword("recon"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "start postgres container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := NewPool(ctx, dsn, 4)
	require.NoError(t, err)

	// Glob returns names in lexical order.
	files, err := filepath.Glob(migrationGlob)
	require.NoError(t, err)
	require.NotEmpty(t, files, "no migrations under %s", migrationGlob)

	for _, file := range files {
		sql, err := os.ReadFile(file)
		require.NoError(t, err)
		_, err = pool.Exec(ctx, string(sql))
		require.NoError(t, err, "apply %s", filepath.Base(file))
	}

	return pool, func() {
		pool.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	}
}

func ptr[T any](v T) *T {
	return &v
}
