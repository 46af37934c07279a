package services

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const scheduleCacheKey = "schedule:upcoming"

// ScheduleCache keeps the serialized upcoming schedule in Redis so the
// public schedule endpoint doesn't recount spots on every request. Cache
// failures degrade to the store; they are logged, never surfaced.
type ScheduleCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewScheduleCache(client *redis.Client, ttl time.Duration) *ScheduleCache {
	return &ScheduleCache{client: client, ttl: ttl}
}

func (c *ScheduleCache) Get(ctx context.Context) ([]byte, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	payload, err := c.client.Get(ctx, scheduleCacheKey).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		log.Printf("schedule cache get failed: %v", err)
		return nil, false
	}
	return payload, true
}

func (c *ScheduleCache) Set(ctx context.Context, payload []byte) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Set(ctx, scheduleCacheKey, payload, c.ttl).Err(); err != nil {
		log.Printf("schedule cache set failed: %v", err)
	}
}

func (c *ScheduleCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, scheduleCacheKey).Err(); err != nil {
		log.Printf("schedule cache invalidate failed: %v", err)
	}
}
