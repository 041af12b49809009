package nutrition

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// lookupTTL is how long a normalized lookup result stays cached. Nutrition
// data changes rarely, but provider catalogs do grow.
const lookupTTL = 24 * time.Hour

// CachedClient wraps a provider client with a Redis TTL cache keyed by
// query and result count. Cache failures degrade to a direct provider
// call; they never fail the lookup.
type CachedClient struct {
	inner Client
	redis *redis.Client
	name  string
}

// NewCachedClient caches results of inner under the given provider name.
func NewCachedClient(inner Client, redisClient *redis.Client, name string) *CachedClient {
	return &CachedClient{inner: inner, redis: redisClient, name: name}
}

// Search returns cached records when present, otherwise delegates to the
// wrapped client and stores its result.
func (c *CachedClient) Search(ctx context.Context, query string, maxResults int) ([]FoodRecord, error) {
	key := fmt.Sprintf("nutrition:lookup:%s:%s:%d", c.name, query, maxResults)

	if data, err := c.redis.Get(ctx, key).Bytes(); err == nil {
		var records []FoodRecord
		if err := json.Unmarshal(data, &records); err == nil {
			return records, nil
		}
		log.Printf("[NutritionCache] Discarding corrupt cache entry %s", key)
	}

	records, err := c.inner.Search(ctx, query, maxResults)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(records); err == nil {
		if err := c.redis.Set(ctx, key, data, lookupTTL).Err(); err != nil {
			log.Printf("[NutritionCache] Failed to cache %s: %v", key, err)
		}
	}

	return records, nil
}
