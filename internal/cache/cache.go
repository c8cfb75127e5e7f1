// Package cache keeps resolved day schedules in Redis so calendar renders
// do not hit the database for every cell. Misses and Redis errors are
// silent; the resolver falls through to storage.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"rosterd/internal/metrics"
	"rosterd/internal/model"
)

// DayCache is a TTL cache of resolved DaySchedules keyed by staff and date.
type DayCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// New creates a cache over the given Redis client.
func New(rdb *redis.Client, ttl time.Duration, logger zerolog.Logger) *DayCache {
	return &DayCache{
		rdb:    rdb,
		ttl:    ttl,
		logger: logger.With().Str("component", "cache").Logger(),
	}
}

func dayKey(staffID string, date time.Time) string {
	return fmt.Sprintf("dayschedule:%s:%s", staffID, date.Format("2006-01-02"))
}

// GetDay returns the cached schedule for (staffID, date), if present.
func (c *DayCache) GetDay(ctx context.Context, staffID string, date time.Time) (*model.DaySchedule, bool) {
	if c == nil || c.rdb == nil || c.ttl <= 0 {
		return nil, false
	}
	val, err := c.rdb.Get(ctx, dayKey(staffID, date)).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Debug().Err(err).Msg("cache read failed")
		}
		metrics.IncCacheOp("miss")
		return nil, false
	}
	var day model.DaySchedule
	if err := json.Unmarshal([]byte(val), &day); err != nil {
		metrics.IncCacheOp("miss")
		return nil, false
	}
	metrics.IncCacheOp("hit")
	return &day, true
}

// SetDay stores the resolved schedule for (staffID, date).
func (c *DayCache) SetDay(ctx context.Context, staffID string, date time.Time, day model.DaySchedule) {
	if c == nil || c.rdb == nil || c.ttl <= 0 {
		return
	}
	data, err := json.Marshal(day)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, dayKey(staffID, date), data, c.ttl).Err(); err != nil {
		c.logger.Debug().Err(err).Msg("cache write failed")
		return
	}
	metrics.IncCacheOp("set")
}

// InvalidateDay drops the cached schedule for one date.
func (c *DayCache) InvalidateDay(ctx context.Context, staffID string, date time.Time) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, dayKey(staffID, date)).Err(); err != nil {
		c.logger.Debug().Err(err).Msg("cache invalidate failed")
		return
	}
	metrics.IncCacheOp("invalidate")
}

// InvalidateDates drops the cached schedules for a set of dates, used when
// a template save changes a whole business week at once.
func (c *DayCache) InvalidateDates(ctx context.Context, staffID string, dates []time.Time) {
	for _, d := range dates {
		c.InvalidateDay(ctx, staffID, d)
	}
}
