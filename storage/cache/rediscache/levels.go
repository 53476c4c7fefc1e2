// Package rediscache caches the effective levels of courses in Redis.
package rediscache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/levelup/core/levels"
)

const (
	keyPrefix = "levelup:levels:"
	scanCount = 100
)

// Client is the subset of the redis client used by the cache.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
}

type levelsCache struct {
	client Client
	ttl    time.Duration
}

var _ levels.Cache = (*levelsCache)(nil) // interface compliance check

func NewLevelsCache(client Client, ttl time.Duration) *levelsCache {
	vala.BeginValidation().Validate(vala.IsNotNil(client, "client")).CheckAndPanic()
	return &levelsCache{client: client, ttl: ttl}
}

func key(courseID int) string {
	return keyPrefix + strconv.Itoa(courseID)
}

func (c *levelsCache) Get(ctx context.Context, courseID int) (levels.Info, bool, error) {
	data, err := c.client.Get(ctx, key(courseID)).Bytes()
	if err == redis.Nil {
		return levels.Info{}, false, nil
	} else if err != nil {
		return levels.Info{}, false, errors.Wrap(err, "getting cached levels")
	}

	var info levels.Info
	if err = json.Unmarshal(data, &info); err != nil {
		return levels.Info{}, false, errors.Wrap(err, "decoding cached levels")
	}
	return info, true, nil
}

func (c *levelsCache) Set(ctx context.Context, info levels.Info) error {
	data, err := json.Marshal(info)
	if err != nil {
		return errors.Wrap(err, "encoding levels")
	}
	return errors.Wrap(c.client.Set(ctx, key(info.CourseID), data, c.ttl).Err(), "caching levels")
}

func (c *levelsCache) Delete(ctx context.Context, courseIDs ...int) error {
	if len(courseIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(courseIDs))
	for _, id := range courseIDs {
		keys = append(keys, key(id))
	}
	return errors.Wrap(c.client.Del(ctx, keys...).Err(), "deleting cached levels")
}

// Flush deletes the cached levels of every course.
func (c *levelsCache) Flush(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, keyPrefix+"*", scanCount).Result()
		if err != nil {
			return errors.Wrap(err, "scanning cached levels")
		}
		if len(keys) > 0 {
			if err = c.client.Del(ctx, keys...).Err(); err != nil {
				return errors.Wrap(err, "deleting cached levels")
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
