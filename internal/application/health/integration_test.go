//go:build integration

package health

import (
	"context"
	"os"
	"testing"

	"givehub-backend/internal/infrastructure/database"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// TestCollectHealth_RealDependencies runs against real Redis and Postgres when
// REDIS_URL and DATABASE_URL are set.
// Run with: go test -tags=integration ./internal/application/health/... -v
func TestCollectHealth_RealDependencies(t *testing.T) {
	redisURL, dbURL := os.Getenv("REDIS_URL"), os.Getenv("DATABASE_URL")
	if redisURL == "" || dbURL == "" {
		t.Skip("REDIS_URL or DATABASE_URL not set, skipping integration test")
	}
	opt, err := redis.ParseURL(redisURL)
	require.NoError(t, err)
	rdb := redis.NewClient(opt)
	defer rdb.Close()

	db, err := database.Open(dbURL)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	result := CollectHealth(context.Background(), rdb, sqlDB)
	require.Equal(t, "connected", result.Dependencies["redis"].Status)
	require.Equal(t, "connected", result.Dependencies["database"].Status)
	require.NotNil(t, result.Dependencies["redis"].PingMs)
	require.Equal(t, "ok", result.Status)
}
