package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"rosterd/internal/model"
	"rosterd/internal/timegrid"
)

// GetWeeklyTemplate returns the template stored under (staffID, weekStart),
// or nil when none exists.
func (db *DB) GetWeeklyTemplate(ctx context.Context, staffID string, weekStart time.Time) (*model.WeeklyTemplate, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT weekday, is_holiday, work_start, work_end, updated_at
		FROM weekly_template_days
		WHERE staff_id = ? AND week_start = ?`,
		staffID, model.Midnight(weekStart),
	)
	if err != nil {
		return nil, fmt.Errorf("query template days: %w", err)
	}
	defer rows.Close()

	tpl := &model.WeeklyTemplate{
		StaffID:   staffID,
		WeekStart: model.Midnight(weekStart),
		Days:      make(map[model.Weekday]model.DaySchedule),
	}
	for rows.Next() {
		var (
			weekday            string
			isHoliday          bool
			workStart, workEnd int
			updatedAt          time.Time
		)
		if err := rows.Scan(&weekday, &isHoliday, &workStart, &workEnd, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan template day: %w", err)
		}
		tpl.Days[model.Weekday(weekday)] = model.DaySchedule{
			IsHoliday: isHoliday,
			WorkingHours: model.WorkingHours{
				Start: timegrid.Minutes(workStart),
				End:   timegrid.Minutes(workEnd),
			},
		}
		if updatedAt.After(tpl.UpdatedAt) {
			tpl.UpdatedAt = updatedAt
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(tpl.Days) == 0 {
		return nil, nil
	}

	if err := db.loadTemplateBreaks(ctx, tpl); err != nil {
		return nil, err
	}
	return tpl, nil
}

func (db *DB) loadTemplateBreaks(ctx context.Context, tpl *model.WeeklyTemplate) error {
	rows, err := db.QueryContext(ctx, `
		SELECT weekday, name, break_start, break_end
		FROM weekly_template_breaks
		WHERE staff_id = ? AND week_start = ?
		ORDER BY weekday, break_start`,
		tpl.StaffID, tpl.WeekStart,
	)
	if err != nil {
		return fmt.Errorf("query template breaks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			weekday, name        string
			breakStart, breakEnd int
		)
		if err := rows.Scan(&weekday, &name, &breakStart, &breakEnd); err != nil {
			return fmt.Errorf("scan template break: %w", err)
		}
		day := tpl.Days[model.Weekday(weekday)]
		day.BreakTimes = append(day.BreakTimes, model.BreakWindow{
			Start: timegrid.Minutes(breakStart),
			End:   timegrid.Minutes(breakEnd),
			Name:  name,
		})
		tpl.Days[model.Weekday(weekday)] = day
	}
	return rows.Err()
}

// SaveWeeklyTemplates bulk-upserts templates, full overwrite per
// (staff, week) key. A template whose UpdatedAt is set but no longer
// matches the stored value fails with ErrConcurrentModification; the whole
// batch runs in one transaction and rolls back together.
func (db *DB) SaveWeeklyTemplates(ctx context.Context, templates []*model.WeeklyTemplate) error {
	if len(templates) == 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	for _, tpl := range templates {
		if err := tpl.Validate(); err != nil {
			return err
		}
		weekStart := model.Midnight(tpl.WeekStart)

		// Aggregate expressions carry no decltype, so the sqlite driver
		// would hand MAX(updated_at) back as a string; read the newest
		// row's column directly instead.
		var stored time.Time
		err := tx.QueryRowContext(ctx, `
			SELECT updated_at FROM weekly_template_days
			WHERE staff_id = ? AND week_start = ?
			ORDER BY updated_at DESC LIMIT 1`,
			tpl.StaffID, weekStart,
		).Scan(&stored)
		if err != nil && err != sql.ErrNoRows {
			return fmt.Errorf("read stored version: %w", err)
		}
		if err == nil && !tpl.UpdatedAt.IsZero() && !stored.Equal(tpl.UpdatedAt) {
			return fmt.Errorf("template %s/%s: %w", tpl.StaffID, weekStart.Format("2006-01-02"), ErrConcurrentModification)
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM weekly_template_days WHERE staff_id = ? AND week_start = ?`,
			tpl.StaffID, weekStart,
		); err != nil {
			return fmt.Errorf("clear template days: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM weekly_template_breaks WHERE staff_id = ? AND week_start = ?`,
			tpl.StaffID, weekStart,
		); err != nil {
			return fmt.Errorf("clear template breaks: %w", err)
		}

		for _, weekday := range model.WeekdayOrder {
			day, ok := tpl.Days[weekday]
			if !ok {
				continue
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO weekly_template_days
					(staff_id, week_start, weekday, is_holiday, work_start, work_end, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				tpl.StaffID, weekStart, string(weekday),
				day.IsHoliday, int(day.WorkingHours.Start), int(day.WorkingHours.End), now,
			); err != nil {
				return fmt.Errorf("insert template day: %w", err)
			}
			for _, b := range day.BreakTimes {
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO weekly_template_breaks
						(staff_id, week_start, weekday, name, break_start, break_end)
					VALUES (?, ?, ?, ?, ?, ?)`,
					tpl.StaffID, weekStart, string(weekday), b.Name, int(b.Start), int(b.End),
				); err != nil {
					return fmt.Errorf("insert template break: %w", err)
				}
			}
		}
		tpl.UpdatedAt = now
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit templates: %w", err)
	}

	db.logger.Info().Int("count", len(templates)).Msg("weekly templates saved")
	return nil
}
