package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"rosterd/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	templates map[string]*model.WeeklyTemplate // key: staffID + weekStart
	overrides map[string]*model.DailyOverride  // key: staffID + date
	err       error
}

func tplKey(staffID string, d time.Time) string {
	return staffID + "|" + d.Format("2006-01-02")
}

func (f *fakeStore) GetWeeklyTemplate(_ context.Context, staffID string, weekStart time.Time) (*model.WeeklyTemplate, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.templates[tplKey(staffID, weekStart)], nil
}

func (f *fakeStore) GetDailyOverride(_ context.Context, staffID string, d time.Time) (*model.DailyOverride, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.overrides[tplKey(staffID, d)], nil
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		templates: make(map[string]*model.WeeklyTemplate),
		overrides: make(map[string]*model.DailyOverride),
	}
}

func TestResolver_DefaultFallback(t *testing.T) {
	r := NewResolver(newFakeStore())
	ctx := context.Background()

	t.Run("saturday is a holiday", func(t *testing.T) {
		day, err := r.Resolve(ctx, "lee", date(2024, time.June, 1))
		require.NoError(t, err)
		assert.True(t, day.IsHoliday)
	})

	t.Run("sunday is a holiday", func(t *testing.T) {
		day, err := r.Resolve(ctx, "lee", date(2024, time.June, 2))
		require.NoError(t, err)
		assert.True(t, day.IsHoliday)
	})

	t.Run("tuesday works 09:00-21:00", func(t *testing.T) {
		day, err := r.Resolve(ctx, "lee", date(2024, time.June, 4))
		require.NoError(t, err)
		assert.False(t, day.IsHoliday)
		assert.Equal(t, DefaultWorkStart, day.WorkingHours.Start)
		assert.Equal(t, DefaultWorkEnd, day.WorkingHours.End)
		assert.Empty(t, day.BreakTimes)
	})
}

func TestResolver_TemplateWins_OverDefault(t *testing.T) {
	store := newFakeStore()
	monday := date(2024, time.June, 3)
	store.templates[tplKey("kim", monday)] = &model.WeeklyTemplate{
		StaffID:   "kim",
		WeekStart: monday,
		Days: map[model.Weekday]model.DaySchedule{
			model.Tuesday: {
				WorkingHours: model.WorkingHours{Start: 600, End: 1200},
				BreakTimes:   []model.BreakWindow{{Start: 720, End: 780, Name: "lunch"}},
			},
			model.Saturday: {WorkingHours: model.WorkingHours{Start: 600, End: 840}},
		},
	}
	r := NewResolver(store)
	ctx := context.Background()

	day, err := r.Resolve(ctx, "kim", date(2024, time.June, 4))
	require.NoError(t, err)
	assert.Equal(t, model.WorkingHours{Start: 600, End: 1200}, day.WorkingHours)
	require.Len(t, day.BreakTimes, 1)

	// The template's Saturday belongs to the same Monday key even though
	// the date precedes it.
	day, err = r.Resolve(ctx, "kim", date(2024, time.June, 1))
	require.NoError(t, err)
	assert.False(t, day.IsHoliday)
	assert.Equal(t, model.WorkingHours{Start: 600, End: 840}, day.WorkingHours)

	// A weekday the template omits is a holiday, not the default.
	day, err = r.Resolve(ctx, "kim", date(2024, time.June, 5))
	require.NoError(t, err)
	assert.True(t, day.IsHoliday)
}

func TestResolver_OverrideWins_OverTemplate(t *testing.T) {
	store := newFakeStore()
	monday := date(2024, time.June, 3)
	tuesday := date(2024, time.June, 4)
	store.templates[tplKey("kim", monday)] = &model.WeeklyTemplate{
		StaffID:   "kim",
		WeekStart: monday,
		Days: map[model.Weekday]model.DaySchedule{
			model.Tuesday: {
				WorkingHours: model.WorkingHours{Start: 600, End: 1200},
				BreakTimes:   []model.BreakWindow{{Start: 720, End: 780, Name: "lunch"}},
			},
		},
	}
	store.overrides[tplKey("kim", tuesday)] = &model.DailyOverride{
		StaffID:   "kim",
		Date:      tuesday,
		IsHoliday: true,
	}
	r := NewResolver(store)

	day, err := r.Resolve(context.Background(), "kim", tuesday)
	require.NoError(t, err)
	assert.True(t, day.IsHoliday)
	assert.Empty(t, day.BreakTimes, "legacy overrides carry no breaks")
}

func TestResolver_Idempotent(t *testing.T) {
	store := newFakeStore()
	r := NewResolver(store)
	ctx := context.Background()
	d := date(2024, time.June, 4)

	first, err := r.Resolve(ctx, "kim", d)
	require.NoError(t, err)
	second, err := r.Resolve(ctx, "kim", d)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestResolver_StoreError(t *testing.T) {
	boom := errors.New("disk on fire")
	r := NewResolver(&fakeStore{err: boom})

	_, err := r.Resolve(context.Background(), "kim", date(2024, time.June, 4))
	assert.ErrorIs(t, err, boom)
}

type fakeCache struct {
	days map[string]model.DaySchedule
	hits int
}

func (c *fakeCache) GetDay(_ context.Context, staffID string, d time.Time) (*model.DaySchedule, bool) {
	day, ok := c.days[tplKey(staffID, d)]
	if ok {
		c.hits++
		return &day, true
	}
	return nil, false
}

func (c *fakeCache) SetDay(_ context.Context, staffID string, d time.Time, day model.DaySchedule) {
	c.days[tplKey(staffID, d)] = day
}

func TestResolver_CacheShortCircuitsStore(t *testing.T) {
	store := newFakeStore()
	cache := &fakeCache{days: make(map[string]model.DaySchedule)}
	r := NewResolver(store, WithCache(cache))
	ctx := context.Background()
	d := date(2024, time.June, 4)

	first, err := r.Resolve(ctx, "kim", d)
	require.NoError(t, err)

	store.err = errors.New("store must not be consulted on a cache hit")
	second, err := r.Resolve(ctx, "kim", d)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.hits)
}
