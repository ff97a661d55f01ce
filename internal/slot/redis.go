package slot

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	redisPingTimeout = 5 * time.Second
	redisCallTimeout = 3 * time.Second
)

// Redis stores each slot as a plain string value.
type Redis struct {
	client  *redis.Client
	timeout time.Duration
}

// NewRedis accepts either a redis:// URL or a bare host:port.
func NewRedis(addr string) *Redis {
	opts, err := redis.ParseURL(addr)
	if err != nil {
		opts = &redis.Options{
			Addr:         addr,
			MinIdleConns: 1,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PoolSize:     10,
		}
	}
	return NewRedisWithClient(redis.NewClient(opts))
}

func NewRedisWithClient(c *redis.Client) *Redis {
	return &Redis{client: c, timeout: redisCallTimeout}
}

func (s *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	b, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrEmpty
	}
	return b, err
}

func (s *Redis) Set(ctx context.Context, key string, value []byte) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.client.Set(ctx, key, value, 0).Err()
}

func (s *Redis) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	return s.client.Ping(ctx).Err()
}

func (s *Redis) Close() error {
	return s.client.Close()
}
