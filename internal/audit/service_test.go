package audit

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExporter struct {
	tables map[string][]map[string]interface{}
	cols   map[string][]string
}

func (f *fakeExporter) GetTableNames(ctx context.Context) ([]string, error) {
	names := []string{"schedule_events", "schedule_audit_log"}
	return names, nil
}

func (f *fakeExporter) GetTableData(ctx context.Context, table string) ([]map[string]interface{}, []string, error) {
	return f.tables[table], f.cols[table], nil
}

type fakeWriter struct {
	sheets  []string
	headers [][]string
	rows    [][]interface{}
	saved   string
}

func (w *fakeWriter) AddSheet(name string) error {
	w.sheets = append(w.sheets, name)
	return nil
}

func (w *fakeWriter) WriteHeader(columns []string) error {
	w.headers = append(w.headers, columns)
	return nil
}

func (w *fakeWriter) WriteRow(row []interface{}) error {
	w.rows = append(w.rows, row)
	return nil
}

func (w *fakeWriter) Save(io.Writer) error { return nil }

func (w *fakeWriter) SaveToFile(path string) error {
	w.saved = path
	return nil
}

type fakeCleaner struct {
	olderThan time.Duration
	deleted   int64
}

func (c *fakeCleaner) DeleteOldAuditRows(ctx context.Context, olderThan time.Duration) (int64, error) {
	c.olderThan = olderThan
	return c.deleted, nil
}

func TestRunExportAndCleanup(t *testing.T) {
	exporter := &fakeExporter{
		tables: map[string][]map[string]interface{}{
			"schedule_events": {
				{"id": "ev1", "staff_id": "kim", "status": []byte("active")},
			},
			"schedule_audit_log": {
				{"id": int64(1), "action": "book"},
				{"id": int64(2), "action": "cancel"},
			},
		},
		cols: map[string][]string{
			"schedule_events":    {"id", "staff_id", "status"},
			"schedule_audit_log": {"id", "action"},
		},
	}
	writer := &fakeWriter{}
	cleaner := &fakeCleaner{deleted: 2}

	svc := NewService(Config{RetentionDays: 10, ExportDir: t.TempDir()},
		exporter, func() ExcelWriter { return writer }, cleaner, zerolog.New(io.Discard))

	svc.RunExportAndCleanup()

	assert.Equal(t, []string{"schedule_events", "schedule_audit_log"}, writer.sheets)
	require.Len(t, writer.rows, 3)
	assert.Equal(t, "active", writer.rows[0][2], "byte columns are stringified")
	assert.Equal(t, 10*24*time.Hour, cleaner.olderThan)
	assert.Equal(t, GenerateFilenameForPreviousMonth(time.Now()), filepath.Base(writer.saved))
}

func TestGenerateFilename(t *testing.T) {
	now := time.Date(2026, time.February, 1, 0, 1, 0, 0, time.UTC)
	assert.Equal(t, "schedule_audit_2026-02.xlsx", GenerateFilename(now))
	assert.Equal(t, "schedule_audit_2026-01.xlsx", GenerateFilenameForPreviousMonth(now))
}

func TestStartStop(t *testing.T) {
	svc := NewService(Config{}, &fakeExporter{}, func() ExcelWriter { return &fakeWriter{} }, nil, zerolog.New(io.Discard))
	svc.Start()
	svc.Start() // idempotent
	svc.Stop()
	svc.Stop()
}

func TestNextFirstOfMonth(t *testing.T) {
	now := time.Date(2026, time.August, 28, 15, 0, 0, 0, time.UTC)
	next := nextFirstOfMonth(now)
	assert.Equal(t, time.September, next.Month())
	assert.Equal(t, 1, next.Day())
}
