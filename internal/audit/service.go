// Package audit exports the schedule tables to a monthly xlsx report and
// trims the exported audit log to the retention window. The report is the
// durable change history behind the event-sourced cancellation model.
package audit

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config holds configuration for the audit service.
type Config struct {
	// RetentionDays is how long audit-log rows are kept after export.
	// Default: 31 days.
	RetentionDays int

	// ExportDir is the directory monthly reports are written to.
	ExportDir string

	// ExportOnStart if true, runs an export immediately on service start.
	ExportOnStart bool
}

// Service runs the monthly export and cleanup loop.
type Service struct {
	config   Config
	exporter TableExporter
	writer   func() ExcelWriter
	cleaner  Cleaner
	logger   zerolog.Logger

	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// NewService creates the audit service. writerFactory produces a fresh
// ExcelWriter per export.
func NewService(config Config, exporter TableExporter, writerFactory func() ExcelWriter, cleaner Cleaner, logger zerolog.Logger) *Service {
	if config.RetentionDays <= 0 {
		config.RetentionDays = 31
	}
	if config.ExportDir == "" {
		config.ExportDir = "exports"
	}
	return &Service{
		config:   config,
		exporter: exporter,
		writer:   writerFactory,
		cleaner:  cleaner,
		logger:   logger.With().Str("component", "audit").Logger(),
		stopCh:   make(chan struct{}),
	}
}

// Start begins the monthly scheduler.
func (s *Service) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	if s.config.ExportOnStart {
		go s.RunExportAndCleanup()
	}

	s.wg.Add(1)
	go s.loop()

	s.logger.Info().Int("retention_days", s.config.RetentionDays).Msg("audit service started")
}

// Stop gracefully stops the audit service.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	close(s.stopCh)
	s.wg.Wait()
	s.logger.Info().Msg("audit service stopped")
}

func (s *Service) loop() {
	defer s.wg.Done()

	nextRun := nextFirstOfMonth(time.Now())
	timer := time.NewTimer(time.Until(nextRun))
	defer timer.Stop()

	s.logger.Info().Time("next_run", nextRun).Msg("audit export scheduled")

	for {
		select {
		case <-s.stopCh:
			return
		case <-timer.C:
			s.RunExportAndCleanup()
			nextRun = nextFirstOfMonth(time.Now())
			timer.Reset(time.Until(nextRun))
			s.logger.Info().Time("next_run", nextRun).Msg("audit export scheduled")
		}
	}
}

func nextFirstOfMonth(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month()+1, 1, 0, 1, 0, 0, now.Location())
}

// RunExportAndCleanup performs the export and cleanup immediately.
func (s *Service) RunExportAndCleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	if err := s.exportData(ctx); err != nil {
		s.logger.Error().Err(err).Msg("audit export failed")
		return
	}
	if s.cleaner != nil {
		retention := time.Duration(s.config.RetentionDays) * 24 * time.Hour
		deleted, err := s.cleaner.DeleteOldAuditRows(ctx, retention)
		if err != nil {
			s.logger.Error().Err(err).Msg("audit cleanup failed")
			return
		}
		s.logger.Info().Int64("deleted", deleted).Msg("audit log trimmed")
	}
}

func (s *Service) exportData(ctx context.Context) error {
	if s.exporter == nil || s.writer == nil {
		return fmt.Errorf("exporter or writer not configured")
	}

	tables, err := s.exporter.GetTableNames(ctx)
	if err != nil {
		return fmt.Errorf("get table names: %w", err)
	}
	if len(tables) == 0 {
		s.logger.Info().Msg("no tables to export")
		return nil
	}

	excel := s.writer()
	if excel == nil {
		return fmt.Errorf("failed to create excel writer")
	}

	for _, table := range tables {
		if err := s.exportTable(ctx, excel, table); err != nil {
			return fmt.Errorf("export table %s: %w", table, err)
		}
	}

	path := filepath.Join(s.config.ExportDir, GenerateFilenameForPreviousMonth(time.Now()))
	if err := excel.SaveToFile(path); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	s.logger.Info().Str("path", path).Msg("audit report written")
	return nil
}

func (s *Service) exportTable(ctx context.Context, excel ExcelWriter, table string) error {
	data, columns, err := s.exporter.GetTableData(ctx, table)
	if err != nil {
		return err
	}

	if err := excel.AddSheet(table); err != nil {
		return err
	}
	if err := excel.WriteHeader(columns); err != nil {
		return err
	}

	for _, row := range data {
		values := make([]interface{}, len(columns))
		for i, col := range columns {
			values[i] = normalizeCell(row[col])
		}
		if err := excel.WriteRow(values); err != nil {
			return err
		}
	}
	return nil
}

// normalizeCell converts driver values into types excelize renders well.
func normalizeCell(v interface{}) interface{} {
	switch val := v.(type) {
	case []byte:
		return string(val)
	case time.Time:
		return val.Format("2006-01-02 15:04:05")
	case nil:
		return ""
	default:
		return val
	}
}
