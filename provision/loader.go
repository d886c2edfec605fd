// Package provision compares provisioned license seats with the concurrency
// observed in the usage log.
package provision

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/penwyp/UsagePivot/errors"
	"github.com/penwyp/UsagePivot/fileio"
	"github.com/penwyp/UsagePivot/logging"
	"github.com/penwyp/UsagePivot/models"
)

// Config locates the provisioning sheet
type Config struct {
	Sheet            string            `yaml:"sheet" json:"sheet"`
	HeaderSearchRows int               `yaml:"header_search_rows" json:"header_search_rows"`
	PerformerAliases map[string]string `yaml:"performer_aliases" json:"performer_aliases"`
}

// DefaultConfig returns the settings for the lab's provisioning workbook
func DefaultConfig() Config {
	return Config{
		Sheet:            "Current Provisioning",
		HeaderSearchRows: 20,
		PerformerAliases: DefaultPerformerAliases(),
	}
}

// DefaultPerformerAliases maps directory organization names to the names
// used on the provisioning sheet
func DefaultPerformerAliases() map[string]string {
	return map[string]string{
		"USC-ISI, The MOSIS Services": "MOSIS 2.0",
		"UCR, The MOSIS Services":     "UCR",
	}
}

// keyColumns are the provisioning columns read from the sheet, in order
var keyColumns = []string{
	models.ProvProject,
	models.ProvPerformer,
	models.ProvVendor,
	models.ProvProduct,
	models.ProvCurrent,
}

// LoadTable reads the provisioning sheet. The header is the first row among
// the leading HeaderSearchRows that mentions every key column; columns are
// matched by substring first and by exact name second.
func LoadTable(wb fileio.Workbook, cfg Config) (*Table, error) {
	if cfg.Sheet == "" {
		cfg.Sheet = DefaultConfig().Sheet
	}
	if cfg.HeaderSearchRows <= 0 {
		cfg.HeaderSearchRows = DefaultConfig().HeaderSearchRows
	}

	rows, err := wb.Rows(cfg.Sheet)
	if err != nil {
		return nil, err
	}

	h := fileio.FindHeaderRow(rows, keyColumns, cfg.HeaderSearchRows, fileio.ContainsFold)
	if h < 0 {
		return nil, errors.Newf(errors.ErrorTypeDataMissing,
			"failed to detect header row within first %d rows", cfg.HeaderSearchRows).
			WithContext("file", wb.Path()).
			WithContext("sheet", cfg.Sheet)
	}

	cols, missing := fileio.ResolveColumns(rows[h], keyColumns, fileio.ContainsFold, fileio.FoldMatch)
	if len(missing) > 0 {
		return nil, errors.Newf(errors.ErrorTypeDataMissing, "could not find required columns %v", missing).
			WithContext("file", wb.Path()).
			WithContext("sheet", cfg.Sheet)
	}

	table := &Table{}
	for i, row := range rows[h+1:] {
		e := &Entry{
			Project:   fileio.Cell(row, cols[models.ProvProject]),
			Performer: fileio.Cell(row, cols[models.ProvPerformer]),
			Vendor:    fileio.Cell(row, cols[models.ProvVendor]),
			Product:   fileio.Cell(row, cols[models.ProvProduct]),
		}
		raw := fileio.Cell(row, cols[models.ProvCurrent])
		if e.Project == "" && e.Performer == "" && e.Vendor == "" && e.Product == "" && raw == "" {
			continue
		}

		e.Current, e.CurrentText = parseProvision(raw)
		if e.CurrentText != "" {
			logging.LogWarnf("provisioning row %d: %q is not a number, counted as 0", h+i+2, raw)
		}
		table.Entries = append(table.Entries, e)
	}

	logging.LogDebugf("provisioning: %d rows from %s (header on row %d)", len(table.Entries), wb.Path(), h+1)
	return table, nil
}

// parseProvision returns the seat count, or zero and the raw text when the
// cell is not numeric
func parseProvision(raw string) (decimal.Decimal, string) {
	s := strings.ReplaceAll(raw, ",", "")
	if s == "" {
		return decimal.Zero, ""
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, raw
	}
	return d, ""
}
