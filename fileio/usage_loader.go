package fileio

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/penwyp/UsagePivot/errors"
	"github.com/penwyp/UsagePivot/logging"
	"github.com/penwyp/UsagePivot/models"
)

// UsageData is the usage sheet after the directory join
type UsageData struct {
	// Sheet is the name of the usage sheet in the source workbook
	Sheet string
	// Table is the sheet with the joined columns appended
	Table models.Table
	// Records holds one entry per non-blank data row
	Records []models.UsageRecord
}

// usageHeaderRows is how many leading rows may hold the usage header
const usageHeaderRows = 2

// joinColumns are appended to the usage sheet, in order
var joinColumns = []string{
	models.ColVendorName,
	models.ColProductName,
	models.ColOrganization,
	models.ColProjectName,
}

// DetectUsageHeader returns 0 or 1: the first of the leading rows holding a
// user-name or product-name cell. It defaults to 0.
func DetectUsageHeader(rows [][]string, schema Schema) int {
	schema = schema.withDefaults()
	for i := 0; i < usageHeaderRows && i < len(rows); i++ {
		for _, cell := range rows[i] {
			if FoldMatch(cell, schema.UsageUser) || FoldMatch(cell, models.ColProductName) {
				return i
			}
		}
	}
	return 0
}

// FindUsageSheet returns the first sheet whose detected header has a user
// name column
func FindUsageSheet(wb Workbook, schema Schema) (string, int, [][]string, error) {
	schema = schema.withDefaults()
	for _, sheet := range wb.SheetNames() {
		rows, err := wb.Rows(sheet)
		if err != nil {
			return "", 0, nil, err
		}
		if len(rows) == 0 {
			continue
		}
		h := DetectUsageHeader(rows, schema)
		if h < len(rows) && ColumnIndex(rows[h], schema.UsageUser, ExactMatch) >= 0 {
			return sheet, h, rows, nil
		}
	}
	return "", 0, nil, errors.Newf(errors.ErrorTypeDataMissing,
		"could not find a sheet with %q in the first or second row", schema.UsageUser).
		WithContext("file", wb.Path())
}

// LoadUsage locates the usage sheet, joins vendor, product, organization and
// project from the directories, and returns the enriched sheet with its
// records. Directory misses leave the joined cells empty.
func LoadUsage(wb Workbook, features FeatureDirectory, users UserDirectory, schema Schema) (*UsageData, error) {
	schema = schema.withDefaults()

	sheet, h, rows, err := FindUsageSheet(wb, schema)
	if err != nil {
		return nil, err
	}
	header := rows[h]

	cols, missing := ResolveColumns(header, []string{
		schema.UsageUser, schema.UsageProduct, schema.UsageFeature,
		schema.UsageEmail, schema.UsageHours,
	}, ExactMatch)
	if len(missing) > 0 {
		return nil, errors.Newf(errors.ErrorTypeDataMissing, "column %q not found in usage sheet", missing[0]).
			WithContext("file", wb.Path()).
			WithContext("sheet", sheet)
	}
	startCol := ColumnIndex(header, schema.UsageStart, ExactMatch)
	endCol := ColumnIndex(header, schema.UsageEnd, ExactMatch)

	columns, joinAt := enrichedColumns(header)
	data := &UsageData{
		Sheet: sheet,
		Table: models.Table{Name: sheet, Columns: columns},
	}

	for i, row := range rows[h+1:] {
		if isBlankRow(row) {
			continue
		}
		sheetRow := h + i + 2

		hours, err := parseHours(Cell(row, cols[schema.UsageHours]))
		if err != nil {
			return nil, errors.Wrap(errors.ErrorTypeDataFormat, "invalid usage time", err).
				WithContext("file", wb.Path()).
				WithContext("row", sheetRow)
		}

		feature := features.Lookup(Cell(row, cols[schema.UsageFeature]))
		email := Cell(row, cols[schema.UsageEmail])
		user, _ := users.Lookup(email)

		rec := models.UsageRecord{
			Row:           sheetRow,
			Project:       user.Project,
			Organization:  user.Organization,
			Vendor:        feature.Vendor,
			Product:       feature.Product,
			Feature:       Cell(row, cols[schema.UsageProduct]),
			Username:      Cell(row, cols[schema.UsageUser]),
			Email:         email,
			DurationHours: hours.InexactFloat64(),
			StartTime:     Cell(row, startCol),
			EndTime:       Cell(row, endCol),
		}
		data.Records = append(data.Records, rec)

		out := models.NewRow(len(columns))
		for j, v := range row {
			if j >= len(header) {
				break
			}
			v = strings.TrimSpace(v)
			switch {
			case v == "":
			case j == cols[schema.UsageHours]:
				out[j] = models.Number(hours)
			default:
				out[j] = models.Text(v)
			}
		}
		joined := []string{feature.Vendor, feature.Product, user.Organization, user.Project}
		for k, v := range joined {
			if v == "" {
				out[joinAt[k]] = models.Blank()
				continue
			}
			out[joinAt[k]] = models.Text(v)
		}
		data.Table.Rows = append(data.Table.Rows, out)
	}

	logging.LogDebugf("usage sheet %q: %d records (header on row %d)", sheet, len(data.Records), h+1)
	return data, nil
}

// enrichedColumns appends the join columns to header, reusing any that the
// sheet already has. It returns the columns and the join column positions.
func enrichedColumns(header []string) ([]string, []int) {
	columns := make([]string, len(header))
	for i, c := range header {
		columns[i] = strings.TrimSpace(c)
	}

	at := make([]int, len(joinColumns))
	for k, name := range joinColumns {
		idx := ColumnIndex(columns, name, ExactMatch)
		if idx < 0 {
			columns = append(columns, name)
			idx = len(columns) - 1
		}
		at[k] = idx
	}
	return columns, at
}

// parseHours reads a duration cell; blank means zero
func parseHours(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
