package aligncache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"lyralign/pkg/redis"
)

const keyPrefix = "lyralign:result:"

var logger = log.With().Str("component", "align-cache").Logger()

// Cache stores encoded alignment results keyed by their inputs. Encoding is
// deterministic, so a hit is byte-identical to a fresh run. Redis-backed
// when a client is supplied, an in-process map otherwise.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	mem    sync.Map
}

// New creates a cache. client may be nil, which selects the in-memory
// fallback.
func New(client *redis.Client, ttl time.Duration) *Cache {
	if client == nil {
		logger.Info().Msg("No redis client, using in-memory result cache")
	}
	return &Cache{client: client, ttl: ttl}
}

// Key hashes everything that influences the encoded output into a cache
// key. Callers must pass every field that changes the bytes: job id,
// granularity, duration, caps, format, header fields and the lyrics text.
func Key(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Get returns the cached value for key, if any.
func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	if c.client != nil {
		val, err := c.client.Get(ctx, key)
		if err != nil {
			logger.Warn().Err(err).Msg("Redis get failed")
			return "", false
		}
		return val, val != ""
	}

	if v, ok := c.mem.Load(key); ok {
		return v.(string), true
	}
	return "", false
}

// Put stores a value. Failures are logged and swallowed: the cache is an
// optimisation, never a correctness dependency.
func (c *Cache) Put(ctx context.Context, key, value string) {
	if c.client != nil {
		if err := c.client.SetWithExpiration(ctx, key, value, c.ttl); err != nil {
			logger.Warn().Err(err).Msg("Redis set failed")
		}
		return
	}
	c.mem.Store(key, value)
}
