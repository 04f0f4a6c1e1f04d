package cache

import (
	"context"
	"encoding/json"
	"time"

	dom "Tracker/internal/domain"
	"Tracker/internal/listing"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "activities:"

// ActivityCache caches each account's sorted activity list in Redis, one key
// per sort state.
type ActivityCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewActivityCache returns a new ActivityCache.
func NewActivityCache(rdb *redis.Client, ttl time.Duration) *ActivityCache {
	return &ActivityCache{rdb: rdb, ttl: ttl}
}

// GetList returns the cached list, or nil on a miss.
func (c *ActivityCache) GetList(ctx context.Context, username string, sort listing.State) ([]dom.Activity, error) {
	b, err := c.rdb.Get(ctx, listKey(username, sort)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	list := []dom.Activity{}
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// SetList stores the list. An empty list is cached as [] so it still counts as a hit.
func (c *ActivityCache) SetList(ctx context.Context, username string, sort listing.State, list []dom.Activity) error {
	if list == nil {
		list = []dom.Activity{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, listKey(username, sort), b, c.ttl).Err()
}

// Invalidate removes every cached list of username.
func (c *ActivityCache) Invalidate(ctx context.Context, username string) error {
	iter := c.rdb.Scan(ctx, 0, userPrefix(username)+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func userPrefix(username string) string {
	return keyPrefix + username + ":"
}

func listKey(username string, sort listing.State) string {
	sort = sort.Normalize()
	return userPrefix(username) + string(sort.Column) + ":" + sort.Direction()
}
