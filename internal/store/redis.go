// Package store wraps the optional Redis instance shared by server replicas.
package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis wraps the Redis client
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis creates a new Redis client and checks the connection
func NewRedis(ctx context.Context, redisURL string) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return NewRedisFromClient(ctx, redis.NewClient(opts))
}

// NewRedisFromClient wraps an existing client
func NewRedisFromClient(ctx context.Context, client *redis.Client) (*Redis, error) {
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return &Redis{client: client, prefix: "legobuilder:"}, nil
}

// Client returns the underlying Redis client
func (r *Redis) Client() *redis.Client {
	return r.client
}

// Ping checks the Redis connection
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (r *Redis) Close() error {
	return r.client.Close()
}

// IncrWindow increments the counter for key in the current fixed window and
// returns the new count. The counter expires with the window.
func (r *Redis) IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	bucket := time.Now().Truncate(window).Unix()
	k := r.prefix + "ratelimit:" + key + ":" + time.Unix(bucket, 0).UTC().Format("20060102T150405")

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}
