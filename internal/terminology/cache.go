package terminology

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/somnolink/somnolink/pkg/logging"
)

const cacheTTL = 24 * time.Hour

// Cache stores search results in Redis. A nil client disables caching; every
// method then behaves as a miss.
type Cache struct {
	redis  *redis.Client
	logger *logging.Logger
}

// NewCache creates a cache. redis may be nil.
func NewCache(client *redis.Client, logger *logging.Logger) *Cache {
	if logger == nil {
		logger = logging.Default()
	}
	return &Cache{redis: client, logger: logger}
}

func cacheKey(system, query string) string {
	return fmt.Sprintf("terminology:%s:%s", system, strings.ToLower(strings.TrimSpace(query)))
}

// Get returns the cached results for a query, or nil on miss.
func (c *Cache) Get(ctx context.Context, system, query string) []SearchResult {
	if c == nil || c.redis == nil {
		return nil
	}
	raw, err := c.redis.Get(ctx, cacheKey(system, query)).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		c.logger.Warn("terminology cache read failed", "error", err)
		return nil
	}
	var out []SearchResult
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}

// Set stores results for a query. Failures are logged and ignored.
func (c *Cache) Set(ctx context.Context, system, query string, results []SearchResult) {
	if c == nil || c.redis == nil {
		return
	}
	raw, err := json.Marshal(results)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, cacheKey(system, query), raw, cacheTTL).Err(); err != nil {
		c.logger.Warn("terminology cache write failed", "error", err)
	}
}
