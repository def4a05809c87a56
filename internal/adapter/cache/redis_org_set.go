package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alexindevs/orgbase/internal/access"
)

// RedisOrgSetCache memoises per-user organisation-id sets in Redis.
type RedisOrgSetCache struct {
	client redis.UniversalClient
}

var _ access.Cache = (*RedisOrgSetCache)(nil)

// NewRedisOrgSetCache constructs a Redis-backed membership-set cache.
func NewRedisOrgSetCache(client redis.UniversalClient) *RedisOrgSetCache {
	return &RedisOrgSetCache{client: client}
}

func orgSetKey(userID string) string {
	return "orgset:" + userID
}

// GetOrgSet loads the cached set. The second return is false on a miss.
func (c *RedisOrgSetCache) GetOrgSet(ctx context.Context, userID string) ([]string, bool, error) {
	payload, err := c.client.Get(ctx, orgSetKey(userID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("load org set: %w", err)
	}
	var set []string
	if err := json.Unmarshal(payload, &set); err != nil {
		return nil, false, fmt.Errorf("decode org set: %w", err)
	}
	return set, true, nil
}

// SetOrgSet stores the set with a TTL.
func (c *RedisOrgSetCache) SetOrgSet(ctx context.Context, userID string, orgIDs []string, ttl time.Duration) error {
	payload, err := json.Marshal(orgIDs)
	if err != nil {
		return fmt.Errorf("marshal org set: %w", err)
	}
	if err := c.client.Set(ctx, orgSetKey(userID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("persist org set: %w", err)
	}
	return nil
}

// Invalidate removes the cached set for the user.
func (c *RedisOrgSetCache) Invalidate(ctx context.Context, userID string) error {
	if err := c.client.Del(ctx, orgSetKey(userID)).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("invalidate org set: %w", err)
	}
	return nil
}
