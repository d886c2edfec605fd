package fileio

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Layouts of date and time cells read from xlsx workbooks
const (
	DateTimeLayout = "2006-01-02 15:04:05"
	TimeLayout     = "15:04:05"
)

// builtinDateFormats are the built-in number format ids that render dates
// or times
var builtinDateFormats = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 18: true, 19: true, 20: true, 21: true, 22: true,
	27: true, 28: true, 29: true, 30: true, 31: true, 32: true, 33: true, 34: true, 35: true, 36: true,
	45: true, 46: true, 47: true,
	50: true, 51: true, 52: true, 53: true, 54: true, 55: true, 56: true, 57: true, 58: true,
}

// dateCells rewrites serial date cells of one workbook as text
type dateCells struct {
	f        *excelize.File
	date1904 bool
	styles   map[int]bool
}

func newDateCells(f *excelize.File) *dateCells {
	d := &dateCells{f: f, styles: make(map[int]bool)}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		d.date1904 = *props.Date1904
	}
	return d
}

// format replaces, in place, every numeric cell of sheet whose style is a
// date or time format
func (d *dateCells) format(sheet string, rows [][]string) error {
	for r, row := range rows {
		for c, v := range row {
			serial, err := strconv.ParseFloat(v, 64)
			if err != nil || serial < 0 {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			style, err := d.f.GetCellStyle(sheet, cell)
			if err != nil {
				return err
			}
			if !d.isDate(style) {
				continue
			}
			if text, ok := d.text(serial); ok {
				row[c] = text
			}
		}
	}
	return nil
}

func (d *dateCells) isDate(style int) bool {
	if style == 0 {
		return false
	}
	if v, ok := d.styles[style]; ok {
		return v
	}

	var date bool
	if st, err := d.f.GetStyle(style); err == nil && st != nil {
		if st.CustomNumFmt != nil {
			date = IsDateFormat(*st.CustomNumFmt)
		} else {
			date = builtinDateFormats[st.NumFmt]
		}
	}
	d.styles[style] = date
	return date
}

func (d *dateCells) text(serial float64) (string, bool) {
	t, err := excelize.ExcelDateToTime(serial, d.date1904)
	if err != nil {
		return "", false
	}
	t = t.Round(time.Second)
	if serial < 1 {
		return t.Format(TimeLayout), true
	}
	return t.Format(DateTimeLayout), true
}

// IsDateFormat reports whether a number format code renders a date or a
// time. Quoted literals, escaped characters and bracketed sections other
// than elapsed time are ignored.
func IsDateFormat(code string) bool {
	code = strings.ToLower(code)
	// only the positive section decides
	if i := strings.IndexByte(code, ';'); i >= 0 {
		code = code[:i]
	}

	var quoted, bracket bool
	var section strings.Builder
	for i := 0; i < len(code); i++ {
		ch := code[i]
		switch {
		case quoted:
			quoted = ch != '"'
		case bracket:
			if ch == ']' {
				bracket = false
				s := section.String()
				if s == "h" || s == "hh" || s == "m" || s == "mm" || s == "s" || s == "ss" {
					return true
				}
				section.Reset()
				continue
			}
			section.WriteByte(ch)
		case ch == '"':
			quoted = true
		case ch == '[':
			bracket = true
		case ch == '\\' || ch == '_' || ch == '*':
			i++
		case ch == 'y' || ch == 'm' || ch == 'd' || ch == 'h' || ch == 's':
			return true
		}
	}
	return false
}
