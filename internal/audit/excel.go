package audit

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Excel caps sheet names at 31 chars.
const maxSheetNameLen = 31

// xlsxWriter builds the monthly report workbook, one sheet per exported
// table, via excelize. Rows are appended top to bottom; the first AddSheet
// renames the workbook's default sheet instead of leaving it empty.
type xlsxWriter struct {
	file  *excelize.File
	sheet string
	row   int
}

// NewExcelizeWriter returns a fresh workbook writer.
func NewExcelizeWriter() ExcelWriter {
	return &xlsxWriter{file: excelize.NewFile()}
}

func (w *xlsxWriter) AddSheet(name string) error {
	if len(name) > maxSheetNameLen {
		name = name[:maxSheetNameLen]
	}

	if w.sheet == "" {
		w.file.SetSheetName("Sheet1", name)
	} else if _, err := w.file.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}

	w.sheet = name
	w.row = 1
	return nil
}

func (w *xlsxWriter) WriteHeader(columns []string) error {
	header := make([]interface{}, len(columns))
	for i, col := range columns {
		header[i] = col
	}
	if err := w.appendRow(header); err != nil {
		return err
	}

	style, err := w.file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		first, _ := excelize.CoordinatesToCellName(1, 1)
		last, _ := excelize.CoordinatesToCellName(len(columns), 1)
		_ = w.file.SetCellStyle(w.sheet, first, last, style)
	}
	return nil
}

func (w *xlsxWriter) WriteRow(row []interface{}) error {
	return w.appendRow(row)
}

func (w *xlsxWriter) appendRow(values []interface{}) error {
	if w.sheet == "" {
		return fmt.Errorf("no active sheet")
	}
	anchor, err := excelize.CoordinatesToCellName(1, w.row)
	if err != nil {
		return err
	}
	if err := w.file.SetSheetRow(w.sheet, anchor, &values); err != nil {
		return fmt.Errorf("write row %d of %s: %w", w.row, w.sheet, err)
	}
	w.row++
	return nil
}

func (w *xlsxWriter) Save(wr io.Writer) error {
	return w.file.Write(wr)
}

func (w *xlsxWriter) SaveToFile(path string) error {
	return w.file.SaveAs(path)
}

// Close releases the workbook's resources.
func (w *xlsxWriter) Close() error {
	return w.file.Close()
}
