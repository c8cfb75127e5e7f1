package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"rosterd/internal/model"
)

// GetStaff returns one staff record, ErrNotFound when absent.
func (db *DB) GetStaff(ctx context.Context, staffID string) (*model.Staff, error) {
	var (
		s          model.Staff
		start, end sql.NullTime
	)
	err := db.QueryRowContext(ctx, `
		SELECT id, name, role, shift_type, contract_start, contract_end
		FROM staff WHERE id = ?`,
		staffID,
	).Scan(&s.ID, &s.Name, &s.Role, &s.Shift, &start, &end)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query staff: %w", err)
	}
	if start.Valid {
		t := start.Time
		s.Contract.Start = &t
	}
	if end.Valid {
		t := end.Time
		s.Contract.End = &t
	}
	return &s, nil
}

// GetStaffContractWindow returns the contract bounds for one staff member.
// A missing staff record yields an open window: resolution falls back to
// defaults rather than failing.
func (db *DB) GetStaffContractWindow(ctx context.Context, staffID string) (model.ContractWindow, error) {
	s, err := db.GetStaff(ctx, staffID)
	if err == ErrNotFound {
		return model.ContractWindow{}, nil
	}
	if err != nil {
		return model.ContractWindow{}, err
	}
	return s.Contract, nil
}

// ListActiveStaff returns staff whose contract covers the given date.
func (db *DB) ListActiveStaff(ctx context.Context, date time.Time) ([]model.Staff, error) {
	day := model.Midnight(date)
	rows, err := db.QueryContext(ctx, `
		SELECT id, name, role, shift_type, contract_start, contract_end
		FROM staff
		WHERE (contract_start IS NULL OR contract_start <= ?)
		  AND (contract_end IS NULL OR contract_end >= ?)
		ORDER BY id`,
		day, day,
	)
	if err != nil {
		return nil, fmt.Errorf("query staff list: %w", err)
	}
	defer rows.Close()

	var staff []model.Staff
	for rows.Next() {
		var (
			s          model.Staff
			start, end sql.NullTime
		)
		if err := rows.Scan(&s.ID, &s.Name, &s.Role, &s.Shift, &start, &end); err != nil {
			return nil, fmt.Errorf("scan staff: %w", err)
		}
		if start.Valid {
			t := start.Time
			s.Contract.Start = &t
		}
		if end.Valid {
			t := end.Time
			s.Contract.End = &t
		}
		staff = append(staff, s)
	}
	return staff, rows.Err()
}

// UpsertStaff creates or updates a staff record.
func (db *DB) UpsertStaff(ctx context.Context, s *model.Staff) error {
	if s == nil || s.ID == "" {
		return fmt.Errorf("staff id is empty")
	}
	var start, end interface{}
	if s.Contract.Start != nil {
		start = model.Midnight(*s.Contract.Start)
	}
	if s.Contract.End != nil {
		end = model.Midnight(*s.Contract.End)
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO staff (id, name, role, shift_type, contract_start, contract_end, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			role = excluded.role,
			shift_type = excluded.shift_type,
			contract_start = excluded.contract_start,
			contract_end = excluded.contract_end,
			updated_at = excluded.updated_at`,
		s.ID, s.Name, string(s.Role), string(s.Shift), start, end, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("upsert staff: %w", err)
	}
	return nil
}
