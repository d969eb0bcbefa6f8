package reports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Cache is a read-through redis cache for report payloads. Concurrent
// requests for the same key are collapsed with singleflight so a cold
// cache triggers one aggregation, not one per caller.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{client: client, ttl: ttl}
}

// Key builds the cache key for a report and its parameters.
func Key(companyID int64, report string, params ...string) string {
	key := fmt.Sprintf("reports:%d:%s", companyID, report)
	for _, p := range params {
		key += ":" + p
	}
	return key
}

// Payload returns the JSON payload for the key, computing and storing
// it on a miss. A nil client degrades to computing every time.
func (c *Cache) Payload(ctx context.Context, key string, compute func(ctx context.Context) (any, error)) ([]byte, error) {
	if c.client != nil {
		cached, err := c.client.Get(ctx, key).Bytes()
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, redis.Nil) {
			// Redis being down never blocks a report.
			return c.computeAndStore(ctx, key, compute)
		}
	}
	return c.computeAndStore(ctx, key, compute)
}

func (c *Cache) computeAndStore(ctx context.Context, key string, compute func(ctx context.Context) (any, error)) ([]byte, error) {
	payload, err, _ := c.group.Do(key, func() (any, error) {
		value, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		if c.client != nil {
			_ = c.client.Set(ctx, key, raw, c.ttl).Err()
		}
		return raw, nil
	})
	if err != nil {
		return nil, err
	}
	return payload.([]byte), nil
}

// Invalidate drops every cached report for a company. Called after
// postings and voids change the active ledger.
func (c *Cache) Invalidate(ctx context.Context, companyID int64) error {
	if c.client == nil {
		return nil
	}
	pattern := fmt.Sprintf("reports:%d:*", companyID)
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
