package db

import (
	"context"
	"fmt"
	"time"
)

// AuditTableNames that should be exported in audit reports.
var AuditTableNames = []string{
	"staff",
	"weekly_template_days",
	"weekly_template_breaks",
	"daily_overrides",
	"schedule_events",
	"schedule_audit_log",
}

// AppendAudit records one schedule change in the audit log.
func (db *DB) AppendAudit(ctx context.Context, actorID, action, entity, entityID, details string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO schedule_audit_log (actor_id, action, entity, entity_id, details)
		VALUES (?, ?, ?, ?, ?)`,
		actorID, action, entity, entityID, details,
	)
	if err != nil {
		return fmt.Errorf("append audit: %w", err)
	}
	return nil
}

// GetTableNames returns list of table names to export.
func (db *DB) GetTableNames(ctx context.Context) ([]string, error) {
	return AuditTableNames, nil
}

// GetTableData returns all rows from a table as maps.
func (db *DB) GetTableData(ctx context.Context, tableName string) (data []map[string]interface{}, columns []string, err error) {
	validTable := false
	for _, t := range AuditTableNames {
		if t == tableName {
			validTable = true
			break
		}
	}
	if !validTable {
		return nil, nil, fmt.Errorf("invalid table name: %s", tableName)
	}

	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", tableName))
	if err != nil {
		return nil, nil, err
	}
	for rows.Next() {
		var cid, notNull, pk int
		var name, typeName string
		var dfltValue interface{}
		if err = rows.Scan(&cid, &name, &typeName, &notNull, &dfltValue, &pk); err != nil {
			rows.Close()
			return nil, nil, err
		}
		columns = append(columns, name)
	}
	rows.Close()

	if len(columns) == 0 {
		return nil, nil, fmt.Errorf("table %s has no columns", tableName)
	}

	dataRows, err := db.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s", tableName))
	if err != nil {
		return nil, nil, err
	}
	defer dataRows.Close()

	for dataRows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err = dataRows.Scan(valuePtrs...); err != nil {
			return nil, nil, err
		}
		row := make(map[string]interface{})
		for i, col := range columns {
			row[col] = values[i]
		}
		data = append(data, row)
	}
	return data, columns, dataRows.Err()
}

// DeleteOldAuditRows trims the audit log to the retention window once the
// rows have been exported. Schedule events themselves are never purged:
// the cancelled rows are the booking history.
func (db *DB) DeleteOldAuditRows(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	res, err := db.ExecContext(ctx,
		"DELETE FROM schedule_audit_log WHERE created_at < ?",
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("delete old audit rows: %w", err)
	}
	return res.RowsAffected()
}
