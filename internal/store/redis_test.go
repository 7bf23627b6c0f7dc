package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedis_BadURL(t *testing.T) {
	_, err := NewRedis(context.Background(), "not-a-redis-url")
	assert.Error(t, err)
}

// Needs a live server: REDIS_TEST_URL=redis://localhost:6379/15
func TestIncrWindow(t *testing.T) {
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set")
	}
	ctx := context.Background()

	rdb, err := NewRedis(ctx, url)
	require.NoError(t, err)
	defer rdb.Close()

	key := "test-" + uuid.NewString()
	for want := int64(1); want <= 3; want++ {
		n, err := rdb.IncrWindow(ctx, key, time.Hour)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}
	assert.NoError(t, rdb.Ping(ctx))
}
