package publish

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	errs "github.com/matzehuels/versionsync/pkg/errors"
)

// Redis keys.
const (
	RedisLatestKey  = "versionsync:latest"
	RedisRunChannel = "versionsync:runs"
)

// redisClient is the subset of *redis.Client used by [Redis].
type redisClient interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
	Close() error
}

// Redis stores the latest report under [RedisLatestKey] and announces it
// on [RedisRunChannel].
type Redis struct {
	client redisClient
}

// DialRedis creates a Redis publisher from a redis:// or rediss:// URL.
// The connection is established lazily on first use.
func DialRedis(rawURL string) (*Redis, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, errs.New(errs.ErrCodeConfiguration, "invalid redis url: %s", errs.Redact(err.Error()))
	}
	return &Redis{client: redis.NewClient(opts)}, nil
}

// Publish stores and announces r.
func (p *Redis) Publish(ctx context.Context, r *Report) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	if err := p.client.Set(ctx, RedisLatestKey, data, 0).Err(); err != nil {
		return publishError(err, "redis")
	}
	if err := p.client.Publish(ctx, RedisRunChannel, data).Err(); err != nil {
		return publishError(err, "redis")
	}
	return nil
}

// Close closes the Redis connection pool.
func (p *Redis) Close() error {
	return p.client.Close()
}

var _ Publisher = (*Redis)(nil)
