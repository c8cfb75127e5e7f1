// Package schedule resolves the effective day schedule of a staff member
// from the layered configuration: legacy daily overrides win over the
// weekly template, and the built-in default (weekends off, 09:00-21:00
// otherwise) backs both.
package schedule

import (
	"context"
	"fmt"
	"time"

	"rosterd/internal/metrics"
	"rosterd/internal/model"
	"rosterd/internal/timegrid"
)

// Store is the slice of the storage collaborator the resolver reads.
// A missing record is (nil, nil), never an error.
type Store interface {
	GetWeeklyTemplate(ctx context.Context, staffID string, weekStart time.Time) (*model.WeeklyTemplate, error)
	GetDailyOverride(ctx context.Context, staffID string, date time.Time) (*model.DailyOverride, error)
}

// Cache holds resolved day schedules keyed by staff and date. Implemented
// by the Redis cache; nil-safe to omit.
type Cache interface {
	GetDay(ctx context.Context, staffID string, date time.Time) (*model.DaySchedule, bool)
	SetDay(ctx context.Context, staffID string, date time.Time, day model.DaySchedule)
}

// DefaultWorkStart and DefaultWorkEnd are the fallback working hours when
// neither an override nor a template exists for a date.
const (
	DefaultWorkStart timegrid.Minutes = 540  // 09:00
	DefaultWorkEnd   timegrid.Minutes = 1260 // 21:00
)

// Resolver computes effective day schedules. All methods are read-only.
type Resolver struct {
	store     Store
	cache     Cache
	workStart timegrid.Minutes
	workEnd   timegrid.Minutes
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithCache attaches a resolved-day cache.
func WithCache(c Cache) Option {
	return func(r *Resolver) { r.cache = c }
}

// WithDefaultHours overrides the fallback working window.
func WithDefaultHours(start, end timegrid.Minutes) Option {
	return func(r *Resolver) {
		if start < end {
			r.workStart, r.workEnd = start, end
		}
	}
}

// NewResolver creates a resolver over the given store.
func NewResolver(store Store, opts ...Option) *Resolver {
	r := &Resolver{
		store:     store,
		workStart: DefaultWorkStart,
		workEnd:   DefaultWorkEnd,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the effective schedule for one staff member on one
// calendar date. Precedence: daily override, then weekly template, then
// the weekend/working-hours default. Missing records fall through; the
// result is always a fully populated DaySchedule.
func (r *Resolver) Resolve(ctx context.Context, staffID string, date time.Time) (model.DaySchedule, error) {
	if r.cache != nil {
		if day, ok := r.cache.GetDay(ctx, staffID, date); ok {
			metrics.IncResolve("cache")
			return day.Clone(), nil
		}
	}

	override, err := r.store.GetDailyOverride(ctx, staffID, date)
	if err != nil {
		return model.DaySchedule{}, fmt.Errorf("get daily override: %w", err)
	}
	if override != nil {
		day := override.DaySchedule()
		r.cacheDay(ctx, staffID, date, day)
		metrics.IncResolve("override")
		return day, nil
	}

	tpl, err := r.store.GetWeeklyTemplate(ctx, staffID, WeekKey(date))
	if err != nil {
		return model.DaySchedule{}, fmt.Errorf("get weekly template: %w", err)
	}
	if tpl != nil {
		day := tpl.Day(model.WeekdayOf(date)).Clone()
		r.cacheDay(ctx, staffID, date, day)
		metrics.IncResolve("template")
		return day, nil
	}

	day := r.defaultDay(date)
	r.cacheDay(ctx, staffID, date, day)
	metrics.IncResolve("default")
	return day, nil
}

func (r *Resolver) defaultDay(date time.Time) model.DaySchedule {
	wd := date.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return model.DaySchedule{IsHoliday: true}
	}
	return model.DaySchedule{
		WorkingHours: model.WorkingHours{Start: r.workStart, End: r.workEnd},
	}
}

func (r *Resolver) cacheDay(ctx context.Context, staffID string, date time.Time, day model.DaySchedule) {
	if r.cache != nil {
		r.cache.SetDay(ctx, staffID, date, day)
	}
}
