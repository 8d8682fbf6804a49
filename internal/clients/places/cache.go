package places

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/eatsential/eatsential-backend/internal/logger"
)

// cachedClient memoizes text-search responses in Redis for a short TTL so
// repeated requests for the same cuisine do not burn provider quota.
// Cache failures fall through to the live client.
type cachedClient struct {
	log   *logger.Logger
	inner Client
	rdb   *goredis.Client
	ttl   time.Duration
}

func NewCachedClient(log *logger.Logger, inner Client, rdb *goredis.Client, ttl time.Duration) Client {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &cachedClient{
		log:   log.With("client", "CachedPlacesClient"),
		inner: inner,
		rdb:   rdb,
		ttl:   ttl,
	}
}

func (c *cachedClient) Search(ctx context.Context, query string, maxResults int) ([]Place, error) {
	key := fmt.Sprintf("places:search:%s:%d", strings.ToLower(strings.TrimSpace(query)), maxResults)

	if raw, err := c.rdb.Get(ctx, key).Result(); err == nil {
		var cached []Place
		if jsonErr := json.Unmarshal([]byte(raw), &cached); jsonErr == nil {
			c.log.Debug("Place search cache hit", "key", key, "results", len(cached))
			return cached, nil
		}
		// Stale or corrupt entry, drop it and refetch.
		_ = c.rdb.Del(ctx, key).Err()
	}

	results, err := c.inner.Search(ctx, query, maxResults)
	if err != nil {
		return nil, err
	}

	if raw, jsonErr := json.Marshal(results); jsonErr == nil {
		if setErr := c.rdb.Set(ctx, key, raw, c.ttl).Err(); setErr != nil {
			c.log.Warn("Failed to cache place search results", "key", key, "error", setErr)
		}
	}
	return results, nil
}
