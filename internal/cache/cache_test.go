package cache

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rosterd/internal/model"
)

func newTestCache(t *testing.T) (*DayCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return New(rdb, time.Minute, zerolog.New(io.Discard)), mr
}

func TestDayCache_RoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	date := time.Date(2024, time.June, 4, 0, 0, 0, 0, time.Local)

	day := model.DaySchedule{
		WorkingHours: model.WorkingHours{Start: 540, End: 1260},
		BreakTimes:   []model.BreakWindow{{Start: 720, End: 780, Name: "lunch"}},
	}

	_, ok := c.GetDay(ctx, "kim", date)
	assert.False(t, ok, "empty cache misses")

	c.SetDay(ctx, "kim", date, day)
	got, ok := c.GetDay(ctx, "kim", date)
	require.True(t, ok)
	assert.Equal(t, day, *got)

	// Another staff member or date does not collide.
	_, ok = c.GetDay(ctx, "lee", date)
	assert.False(t, ok)
	_, ok = c.GetDay(ctx, "kim", date.AddDate(0, 0, 1))
	assert.False(t, ok)
}

func TestDayCache_Invalidate(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	date := time.Date(2024, time.June, 4, 0, 0, 0, 0, time.Local)

	c.SetDay(ctx, "kim", date, model.DaySchedule{IsHoliday: true})
	c.InvalidateDay(ctx, "kim", date)

	_, ok := c.GetDay(ctx, "kim", date)
	assert.False(t, ok)
}

func TestDayCache_InvalidateDates(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	base := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.Local)

	dates := make([]time.Time, 7)
	for i := range dates {
		dates[i] = base.AddDate(0, 0, i)
		c.SetDay(ctx, "kim", dates[i], model.DaySchedule{IsHoliday: true})
	}

	c.InvalidateDates(ctx, "kim", dates)
	for _, d := range dates {
		_, ok := c.GetDay(ctx, "kim", d)
		assert.False(t, ok, d.Format("2006-01-02"))
	}
}

func TestDayCache_TTLExpiry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	date := time.Date(2024, time.June, 4, 0, 0, 0, 0, time.Local)

	c.SetDay(ctx, "kim", date, model.DaySchedule{IsHoliday: true})
	mr.FastForward(2 * time.Minute)

	_, ok := c.GetDay(ctx, "kim", date)
	assert.False(t, ok)
}

func TestDayCache_NilSafe(t *testing.T) {
	var c *DayCache
	ctx := context.Background()
	date := time.Now()

	_, ok := c.GetDay(ctx, "kim", date)
	assert.False(t, ok)
	c.SetDay(ctx, "kim", date, model.DaySchedule{})
	c.InvalidateDay(ctx, "kim", date)
}
