package redis

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// Client is a thin wrapper over go-redis, narrowed to the operations the
// result cache needs. A nil-miss is mapped to the empty string so callers
// do not have to know about redis.Nil.
type Client struct {
	rdb *redis.Client
}

// NewClient connects and verifies the connection with a short ping.
func NewClient(addr string, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	client := &Client{rdb: rdb}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx); err != nil {
		return nil, err
	}
	return client, nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Get returns the value, or "" when the key does not exist.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	result := c.rdb.Get(ctx, key)
	if result.Err() == redis.Nil {
		return "", nil
	}
	return result.Result()
}

// Set stores a value without expiration.
func (c *Client) Set(ctx context.Context, key string, value interface{}) error {
	return c.rdb.Set(ctx, key, value, 0).Err()
}

// SetWithExpiration stores a value with a TTL.
func (c *Client) SetWithExpiration(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.rdb.Set(ctx, key, value, expiration).Err()
}

// Del removes keys, returning how many existed.
func (c *Client) Del(ctx context.Context, keys ...string) (int64, error) {
	return c.rdb.Del(ctx, keys...).Result()
}

// Exists reports how many of the given keys exist.
func (c *Client) Exists(ctx context.Context, keys ...string) (int64, error) {
	return c.rdb.Exists(ctx, keys...).Result()
}

func (c *Client) Close() error {
	return c.rdb.Close()
}
