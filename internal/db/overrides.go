package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"rosterd/internal/model"
	"rosterd/internal/timegrid"
)

// GetDailyOverride returns the override for one staff member and date, or
// nil when none exists.
func (db *DB) GetDailyOverride(ctx context.Context, staffID string, date time.Time) (*model.DailyOverride, error) {
	var (
		o                  model.DailyOverride
		workStart, workEnd int
	)
	err := db.QueryRowContext(ctx, `
		SELECT staff_id, date, is_holiday, work_start, work_end, updated_at
		FROM daily_overrides
		WHERE staff_id = ? AND date = ?`,
		staffID, model.Midnight(date),
	).Scan(&o.StaffID, &o.Date, &o.IsHoliday, &workStart, &workEnd, &o.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query daily override: %w", err)
	}
	o.WorkingHours = model.WorkingHours{Start: timegrid.Minutes(workStart), End: timegrid.Minutes(workEnd)}
	return &o, nil
}

// GetDailyOverridesByDateRange returns overrides with date in [start, end],
// optionally filtered to the given staff ids.
func (db *DB) GetDailyOverridesByDateRange(ctx context.Context, start, end time.Time, staffIDs []string) ([]model.DailyOverride, error) {
	query := `
		SELECT staff_id, date, is_holiday, work_start, work_end, updated_at
		FROM daily_overrides
		WHERE date >= ? AND date <= ?`
	args := []interface{}{model.Midnight(start), model.Midnight(end)}

	if len(staffIDs) > 0 {
		query += fmt.Sprintf(" AND staff_id IN (%s)", strings.TrimRight(strings.Repeat("?,", len(staffIDs)), ","))
		for _, id := range staffIDs {
			args = append(args, id)
		}
	}
	query += " ORDER BY date, staff_id"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query daily overrides: %w", err)
	}
	defer rows.Close()

	var out []model.DailyOverride
	for rows.Next() {
		var (
			o                  model.DailyOverride
			workStart, workEnd int
		)
		if err := rows.Scan(&o.StaffID, &o.Date, &o.IsHoliday, &workStart, &workEnd, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan daily override: %w", err)
		}
		o.WorkingHours = model.WorkingHours{Start: timegrid.Minutes(workStart), End: timegrid.Minutes(workEnd)}
		out = append(out, o)
	}
	return out, rows.Err()
}

// SaveDailyOverride upserts a single-day override.
func (db *DB) SaveDailyOverride(ctx context.Context, o *model.DailyOverride) error {
	if o == nil {
		return fmt.Errorf("override is nil")
	}
	if err := o.WorkingHours.Validate(); err != nil {
		return err
	}

	now := time.Now()
	_, err := db.ExecContext(ctx, `
		INSERT INTO daily_overrides (staff_id, date, is_holiday, work_start, work_end, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(staff_id, date) DO UPDATE SET
			is_holiday = excluded.is_holiday,
			work_start = excluded.work_start,
			work_end = excluded.work_end,
			updated_at = excluded.updated_at`,
		o.StaffID, model.Midnight(o.Date), o.IsHoliday,
		int(o.WorkingHours.Start), int(o.WorkingHours.End), now,
	)
	if err != nil {
		return fmt.Errorf("save daily override: %w", err)
	}
	o.UpdatedAt = now
	return nil
}

// DeleteDailyOverride removes an override, letting the weekly template
// show through again.
func (db *DB) DeleteDailyOverride(ctx context.Context, staffID string, date time.Time) error {
	_, err := db.ExecContext(ctx,
		"DELETE FROM daily_overrides WHERE staff_id = ? AND date = ?",
		staffID, model.Midnight(date),
	)
	return err
}
