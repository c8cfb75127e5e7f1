package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"rosterd/internal/model"
)

// GetActiveEvents returns active events for a staff member touching the
// half-open range [from, to).
func (db *DB) GetActiveEvents(ctx context.Context, staffID string, from, to time.Time) ([]model.ScheduleEvent, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, staff_id, start_time, end_time, type, source_type, status, created_at, updated_at
		FROM schedule_events
		WHERE staff_id = ? AND status = ? AND start_time < ? AND end_time > ?
		ORDER BY start_time`,
		staffID, string(model.StatusActive), to, from,
	)
	if err != nil {
		return nil, fmt.Errorf("query active events: %w", err)
	}
	defer rows.Close()

	var out []model.ScheduleEvent
	for rows.Next() {
		var ev model.ScheduleEvent
		if err := rows.Scan(
			&ev.ID, &ev.StaffID, &ev.StartTime, &ev.EndTime,
			&ev.Type, &ev.SourceType, &ev.Status, &ev.CreatedAt, &ev.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// GetActiveEventsOn returns active events touching one calendar day.
func (db *DB) GetActiveEventsOn(ctx context.Context, staffID string, date time.Time) ([]model.ScheduleEvent, error) {
	dayStart := model.Midnight(date)
	return db.GetActiveEvents(ctx, staffID, dayStart, dayStart.AddDate(0, 0, 1))
}

// GetEvent returns one event by id, ErrNotFound when absent.
func (db *DB) GetEvent(ctx context.Context, eventID string) (*model.ScheduleEvent, error) {
	var ev model.ScheduleEvent
	err := db.QueryRowContext(ctx, `
		SELECT id, staff_id, start_time, end_time, type, source_type, status, created_at, updated_at
		FROM schedule_events WHERE id = ?`,
		eventID,
	).Scan(
		&ev.ID, &ev.StaffID, &ev.StartTime, &ev.EndTime,
		&ev.Type, &ev.SourceType, &ev.Status, &ev.CreatedAt, &ev.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query event: %w", err)
	}
	return &ev, nil
}

// SaveEvents inserts events in one transaction.
func (db *DB) SaveEvents(ctx context.Context, events []*model.ScheduleEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	for _, ev := range events {
		if !ev.StartTime.Before(ev.EndTime) {
			return &model.ValidationError{Msg: fmt.Sprintf("event %s start not before end", ev.ID)}
		}
		if ev.CreatedAt.IsZero() {
			ev.CreatedAt = now
		}
		ev.UpdatedAt = now
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO schedule_events
				(id, staff_id, start_time, end_time, type, source_type, status, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			ev.ID, ev.StaffID, ev.StartTime, ev.EndTime,
			string(ev.Type), string(ev.SourceType), string(ev.Status), ev.CreatedAt, ev.UpdatedAt,
		); err != nil {
			return fmt.Errorf("insert event %s: %w", ev.ID, err)
		}
	}

	return tx.Commit()
}

// UpdateEventStatus flips an event's lifecycle state. Events are never
// deleted; active -> cancelled is the terminal transition.
func (db *DB) UpdateEventStatus(ctx context.Context, eventID string, status model.EventStatus) error {
	res, err := db.ExecContext(ctx,
		"UPDATE schedule_events SET status = ?, updated_at = ? WHERE id = ?",
		string(status), time.Now(), eventID,
	)
	if err != nil {
		return fmt.Errorf("update event status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateEventTimes moves an event to a new window.
func (db *DB) UpdateEventTimes(ctx context.Context, eventID string, start, end time.Time) error {
	if !start.Before(end) {
		return &model.ValidationError{Msg: "event start not before end"}
	}
	res, err := db.ExecContext(ctx,
		"UPDATE schedule_events SET start_time = ?, end_time = ?, updated_at = ? WHERE id = ?",
		start, end, time.Now(), eventID,
	)
	if err != nil {
		return fmt.Errorf("update event times: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// CancelMaterializedEvents cancels previously materialized template blocks
// for a staff member within [from, to), so a re-saved template can lay
// down fresh ones without stacking duplicates.
func (db *DB) CancelMaterializedEvents(ctx context.Context, staffID string, from, to time.Time) (int64, error) {
	res, err := db.ExecContext(ctx, `
		UPDATE schedule_events SET status = ?, updated_at = ?
		WHERE staff_id = ? AND source_type = ? AND status = ?
			AND start_time < ? AND end_time > ?`,
		string(model.StatusCancelled), time.Now(),
		staffID, string(model.SourceWeeklyHoliday), string(model.StatusActive),
		to, from,
	)
	if err != nil {
		return 0, fmt.Errorf("cancel materialized events: %w", err)
	}
	return res.RowsAffected()
}
