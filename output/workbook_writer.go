// Package output writes report tables to the processed workbook and to the
// console.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/penwyp/UsagePivot/errors"
	"github.com/penwyp/UsagePivot/logging"
	"github.com/penwyp/UsagePivot/models"
)

// ReportBundle is everything that goes into the processed workbook
type ReportBundle struct {
	// Sheets are the usage workbook's own sheets in their original order,
	// the usage sheet already replaced by the enriched table
	Sheets    []models.Table
	Performer models.Table
	Tool      models.Table
	Provision models.Table
}

// ProcessedPath returns "<dir>/<usage stem>-processed.xlsx". An empty dir
// keeps the usage workbook's directory.
func ProcessedPath(usagePath, dir string) string {
	base := filepath.Base(usagePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if dir == "" {
		dir = filepath.Dir(usagePath)
	}
	return filepath.Join(dir, stem+models.ProcessedSuffix)
}

// RawSheet turns the rows of an untouched input sheet into a table whose
// header is rows[header]. Rows above the header are dropped and numeric
// text is written back as numbers, except codes with a leading zero.
func RawSheet(name string, rows [][]string, header int) models.Table {
	t := models.Table{Name: name}
	if header < 0 || header >= len(rows) {
		return t
	}

	t.Columns = append([]string(nil), rows[header]...)
	for _, raw := range rows[header+1:] {
		row := make(models.Row, len(raw))
		for i, s := range raw {
			row[i] = rawCell(s)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func rawCell(s string) models.Cell {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return models.Blank()
	}
	if leadingZero(trimmed) || strings.HasPrefix(trimmed, "+") {
		return models.Text(s)
	}
	if d, err := decimal.NewFromString(trimmed); err == nil {
		return models.Number(d)
	}
	return models.Text(s)
}

// leadingZero reports codes like "00123" that must stay text
func leadingZero(s string) bool {
	s = strings.TrimPrefix(s, "-")
	return len(s) > 1 && s[0] == '0' && s[1] >= '0' && s[1] <= '9'
}

// Font colors of the classification columns of the provisioning sheet
var classificationColors = map[string]string{
	models.ProvOver:     "FF0000",
	models.ProvUnder:    "0000FF",
	models.ProvAdequate: "008000",
}

// WorkbookWriter writes the processed xlsx workbook
type WorkbookWriter struct {
	// FileMode is applied after saving so other lab members can overwrite
	// the report
	FileMode os.FileMode
}

// NewWorkbookWriter returns a writer producing world-writable files
func NewWorkbookWriter() *WorkbookWriter {
	return &WorkbookWriter{FileMode: 0666}
}

// Write saves the bundle to path, replacing any existing file
func (w *WorkbookWriter) Write(path string, bundle ReportBundle) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			logging.LogWarnf("closing workbook %s: %v", path, err)
		}
	}()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.Wrap(errors.ErrorTypeIO, "failed to create header style", err)
	}

	tables := w.uniqueTables(bundle)
	for i, table := range tables {
		if i == 0 {
			err = f.SetSheetName(f.GetSheetName(0), table.Name)
		} else {
			_, err = f.NewSheet(table.Name)
		}
		if err != nil {
			return errors.Wrap(errors.ErrorTypeIO, "failed to add sheet", err).
				WithContext("sheet", table.Name)
		}

		if err := writeTable(f, table, bold); err != nil {
			return errors.Wrap(errors.ErrorTypeIO, "failed to write sheet", err).
				WithContext("sheet", table.Name)
		}
	}

	if err := w.colorClassification(f, bundle.Provision, bold); err != nil {
		return errors.Wrap(errors.ErrorTypeIO, "failed to style provisioning sheet", err)
	}

	if err := f.SaveAs(path); err != nil {
		return errors.Wrap(errors.ErrorTypeIO, "failed to save workbook", err).
			WithContext("path", path)
	}

	if w.FileMode != 0 {
		if err := os.Chmod(path, w.FileMode); err != nil {
			return errors.Wrap(errors.ErrorTypeIO, "failed to set workbook permissions", err).
				WithContext("path", path)
		}
	}

	logging.LogDebugf("wrote %d sheets to %s", len(tables), path)
	return nil
}

// uniqueTables drops input sheets whose names clash with a report sheet
func (w *WorkbookWriter) uniqueTables(bundle ReportBundle) []models.Table {
	reserved := map[string]bool{
		strings.ToLower(bundle.Performer.Name): true,
		strings.ToLower(bundle.Tool.Name):      true,
		strings.ToLower(bundle.Provision.Name): true,
	}

	var out []models.Table
	for _, t := range bundle.Sheets {
		if reserved[strings.ToLower(t.Name)] {
			logging.LogWarnf("input sheet %q is replaced by the report sheet of the same name", t.Name)
			continue
		}
		out = append(out, t)
	}
	return append(out, bundle.Performer, bundle.Tool, bundle.Provision)
}

func writeTable(f *excelize.File, table models.Table, headerStyle int) error {
	header := make([]interface{}, len(table.Columns))
	for i, c := range table.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(table.Name, "A1", &header); err != nil {
		return err
	}

	for r, row := range table.Rows {
		values := make([]interface{}, len(row))
		for i, c := range row {
			if c.IsBlank() {
				values[i] = nil
				continue
			}
			values[i] = c.Interface()
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(table.Name, cell, &values); err != nil {
			return err
		}
	}

	if table.Width() == 0 {
		return nil
	}
	last, err := excelize.CoordinatesToCellName(table.Width(), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(table.Name, "A1", last, headerStyle)
}

// colorClassification paints the over, under and adequate columns. The
// header cells keep the plain bold style.
func (w *WorkbookWriter) colorClassification(f *excelize.File, table models.Table, headerStyle int) error {
	for name, color := range classificationColors {
		idx := table.ColumnIndex(name)
		if idx < 0 {
			continue
		}

		style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Color: color}})
		if err != nil {
			return err
		}
		col, err := excelize.ColumnNumberToName(idx + 1)
		if err != nil {
			return err
		}
		if err := f.SetColStyle(table.Name, col, style); err != nil {
			return err
		}
		if err := f.SetCellStyle(table.Name, col+"1", col+"1", headerStyle); err != nil {
			return err
		}
	}
	return nil
}

// Describe summarizes the bundle for progress logging
func (b ReportBundle) Describe() string {
	return fmt.Sprintf("%d input sheets, %d performer rows, %d tool rows, %d provisioning rows",
		len(b.Sheets), len(b.Performer.Rows), len(b.Tool.Rows), len(b.Provision.Rows))
}
