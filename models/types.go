package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// UsageRecord is one usage-log row after the directory join
type UsageRecord struct {
	Row           int     `json:"row"`
	Project       string  `json:"project"`
	Organization  string  `json:"organization"`
	Vendor        string  `json:"vendor"`
	Product       string  `json:"product"`
	Feature       string  `json:"feature"`
	Username      string  `json:"username"`
	Email         string  `json:"email"`
	DurationHours float64 `json:"duration_hours"`
	StartTime     string  `json:"start_time"`
	EndTime       string  `json:"end_time"`
}

// Hours returns the record duration as a decimal
func (r UsageRecord) Hours() decimal.Decimal {
	return decimal.NewFromFloat(r.DurationHours)
}

// Interval returns the record's session interval
func (r UsageRecord) Interval() Interval {
	return Interval{Start: r.StartTime, End: r.EndTime}
}

// Interval is one usage session as recorded in the log
type Interval struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// GroupingOrder selects the dimension order of an aggregation tree
type GroupingOrder int

const (
	// ByPerformer groups project, organization, vendor, product, feature
	ByPerformer GroupingOrder = iota
	// ByTool groups project, vendor, product, feature, organization
	ByTool
)

// String returns the grouping order name
func (g GroupingOrder) String() string {
	switch g {
	case ByPerformer:
		return "performer"
	case ByTool:
		return "tool"
	default:
		return "unknown"
	}
}

// Columns returns the report header for the grouping order
func (g GroupingOrder) Columns() []string {
	if g == ByTool {
		return append([]string(nil), ToolColumns...)
	}
	return append([]string(nil), PerformerColumns...)
}

// ParseGroupingOrder parses "performer" or "tool"
func ParseGroupingOrder(s string) (GroupingOrder, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "performer", "by-performer":
		return ByPerformer, true
	case "tool", "by-tool":
		return ByTool, true
	}
	return ByPerformer, false
}

// CellKind tags the content of a report cell
type CellKind int

const (
	CellBlank CellKind = iota
	CellText
	CellNumber
)

// Cell is a single report value
type Cell struct {
	Kind  CellKind
	Text  string
	Value decimal.Decimal
}

// Blank returns an empty cell
func Blank() Cell {
	return Cell{Kind: CellBlank}
}

// Text returns a text cell
func Text(s string) Cell {
	return Cell{Kind: CellText, Text: s}
}

// Number returns a numeric cell
func Number(d decimal.Decimal) Cell {
	return Cell{Kind: CellNumber, Value: d}
}

// Int returns a numeric cell holding an integer
func Int(n int) Cell {
	return Number(decimal.NewFromInt(int64(n)))
}

// IsBlank reports whether the cell holds nothing
func (c Cell) IsBlank() bool {
	return c.Kind == CellBlank
}

// String renders the cell for text outputs
func (c Cell) String() string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		return c.Value.String()
	default:
		return ""
	}
}

// Interface returns the cell as a plain Go value for spreadsheet and JSON writers
func (c Cell) Interface() interface{} {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		if c.Value.IsInteger() {
			return c.Value.IntPart()
		}
		return c.Value.InexactFloat64()
	default:
		return ""
	}
}

// Row is one fixed-width report line
type Row []Cell

// NewRow returns a row of n blank cells
func NewRow(n int) Row {
	row := make(Row, n)
	for i := range row {
		row[i] = Blank()
	}
	return row
}

// Strings renders every cell of the row
func (r Row) Strings() []string {
	out := make([]string, len(r))
	for i, c := range r {
		out[i] = c.String()
	}
	return out
}

// Table is a named, rectangular report
type Table struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Rows    []Row    `json:"-"`
}

// Width returns the number of columns
func (t *Table) Width() int {
	return len(t.Columns)
}

// ColumnIndex returns the index of the named column or -1
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Records renders the table as column-keyed maps
func (t *Table) Records() []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(map[string]interface{}, len(t.Columns))
		for i, col := range t.Columns {
			if i < len(row) {
				rec[col] = row[i].Interface()
			}
		}
		out = append(out, rec)
	}
	return out
}

// StringRows renders all rows as strings
func (t *Table) StringRows() [][]string {
	out := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Strings()
	}
	return out
}
