package destination

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/abdulsami822/wander-whiz-game/internal/game"
)

const defaultCacheTTL = 5 * time.Minute

// Cache provides Redis-backed pool caching to offload repeated catalog reads.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ PoolCache = (*Cache)(nil)

// NewCache wraps a Redis client. A non-positive ttl falls back to the default.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) key(tiers []game.Difficulty) string {
	parts := make([]string, 0, len(tiers))
	for _, t := range tiers {
		parts = append(parts, string(t))
	}
	sort.Strings(parts)
	return "destpool:" + strings.Join(parts, "+")
}

// Get returns the cached pool for a tier set, or nil on miss.
func (c *Cache) Get(ctx context.Context, tiers []game.Difficulty) ([]game.Destination, error) {
	data, err := c.client.Get(ctx, c.key(tiers)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var pool []game.Destination
	if err := json.Unmarshal(data, &pool); err != nil {
		return nil, err
	}
	return pool, nil
}

// Set stores the pool for a tier set with the cache TTL.
func (c *Cache) Set(ctx context.Context, tiers []game.Difficulty, pool []game.Destination) error {
	data, err := json.Marshal(pool)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(tiers), data, c.ttl).Err()
}
