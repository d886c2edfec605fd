// Package fileio reads the tool's spreadsheet inputs and joins them into
// usage records.
package fileio

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/xuri/excelize/v2"

	"github.com/penwyp/UsagePivot/cache"
	"github.com/penwyp/UsagePivot/errors"
	"github.com/penwyp/UsagePivot/logging"
)

// Workbook is a read-only set of named sheets of text cells. Rows may be
// ragged; missing trailing cells read as empty.
type Workbook interface {
	Path() string
	SheetNames() []string
	Rows(sheet string) ([][]string, error)
}

// SheetCache persists parsed sheets between runs
type SheetCache interface {
	Get(key string) ([][]string, bool)
	Put(key string, rows [][]string) error
}

// memWorkbook holds fully decoded sheets
type memWorkbook struct {
	path   string
	names  []string
	sheets map[string][][]string
}

func (w *memWorkbook) Path() string { return w.path }

func (w *memWorkbook) SheetNames() []string {
	return append([]string(nil), w.names...)
}

func (w *memWorkbook) Rows(sheet string) ([][]string, error) {
	rows, ok := w.sheets[sheet]
	if !ok {
		return nil, errors.Newf(errors.ErrorTypeDataMissing, "sheet %q not found", sheet).
			WithContext("file", w.path)
	}
	return rows, nil
}

// NewMemoryWorkbook builds a workbook from already decoded sheets, in the
// given sheet order
func NewMemoryWorkbook(path string, names []string, sheets map[string][][]string) Workbook {
	return &memWorkbook{path: path, names: append([]string(nil), names...), sheets: sheets}
}

// OpenWorkbook decodes the file at path according to its extension
func OpenWorkbook(path string) (Workbook, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return openXLSX(path)
	case ".csv":
		return openCSV(path)
	case ".jsonl", ".ndjson":
		return openJSONL(path)
	default:
		return nil, errors.Newf(errors.ErrorTypeDataFormat, "unsupported workbook type %q", filepath.Ext(path)).
			WithContext("file", path)
	}
}

// OpenCachedWorkbook serves sheets from store when the file is unchanged
// since they were cached and decodes the file otherwise. A nil store is
// the same as OpenWorkbook.
func OpenCachedWorkbook(path string, store SheetCache) (Workbook, error) {
	if store == nil {
		return OpenWorkbook(path)
	}

	if wb, ok := cachedWorkbook(path, store); ok {
		logging.LogDebugf("sheet cache hit for %s", path)
		return wb, nil
	}

	wb, err := OpenWorkbook(path)
	if err != nil {
		return nil, err
	}

	names := wb.SheetNames()
	if key, err := sheetKey(path, sheetListKey); err == nil {
		if err := store.Put(key, [][]string{names}); err != nil {
			logging.LogWarnf("failed to cache sheet list of %s: %v", path, err)
			return wb, nil
		}
	}
	for _, name := range names {
		rows, err := wb.Rows(name)
		if err != nil {
			return nil, err
		}
		key, err := sheetKey(path, name)
		if err != nil {
			continue
		}
		if err := store.Put(key, rows); err != nil {
			logging.LogWarnf("failed to cache sheet %s of %s: %v", name, path, err)
		}
	}
	return wb, nil
}

// sheetListKey names the cache entry holding a file's sheet order
const sheetListKey = "\x00sheets"

func cachedWorkbook(path string, store SheetCache) (Workbook, bool) {
	key, err := sheetKey(path, sheetListKey)
	if err != nil {
		return nil, false
	}
	list, ok := store.Get(key)
	if !ok || len(list) != 1 {
		return nil, false
	}

	names := list[0]
	sheets := make(map[string][][]string, len(names))
	for _, name := range names {
		key, err := sheetKey(path, name)
		if err != nil {
			return nil, false
		}
		rows, ok := store.Get(key)
		if !ok {
			return nil, false
		}
		sheets[name] = rows
	}
	return NewMemoryWorkbook(path, names, sheets), true
}

// openXLSX reads cell values rather than their display text, so numbers keep
// their precision. Date and time cells become DateTimeLayout text.
func openXLSX(path string) (Workbook, error) {
	raw := excelize.Options{RawCellValue: true}
	f, err := excelize.OpenFile(path, raw)
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeIO, "failed to open workbook", err).WithContext("file", path)
	}
	defer f.Close()

	dates := newDateCells(f)
	names := f.GetSheetList()
	sheets := make(map[string][][]string, len(names))
	for _, name := range names {
		rows, err := f.GetRows(name, raw)
		if err == nil {
			err = dates.format(name, rows)
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrorTypeDataFormat, "failed to read sheet", err).
				WithContext("file", path).
				WithContext("sheet", name)
		}
		sheets[name] = rows
	}
	return NewMemoryWorkbook(path, names, sheets), nil
}

func openCSV(path string) (Workbook, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeIO, "failed to open workbook", err).WithContext("file", path)
	}
	defer file.Close()

	r := csv.NewReader(bufio.NewReader(file))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeDataFormat, "failed to parse csv", err).WithContext("file", path)
	}

	name := sheetNameFromPath(path)
	return NewMemoryWorkbook(path, []string{name}, map[string][][]string{name: rows}), nil
}

// openJSONL reads one object per line. The header is the sorted key set of
// the first object; later objects missing a key leave the cell empty.
func openJSONL(path string) (Workbook, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeIO, "failed to open workbook", err).WithContext("file", path)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var header []string
	var rows [][]string
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var obj map[string]interface{}
		if err := sonic.UnmarshalString(line, &obj); err != nil {
			return nil, errors.Wrap(errors.ErrorTypeDataFormat, "invalid json line", err).
				WithContext("file", path).
				WithContext("line", lineNum)
		}

		if header == nil {
			for k := range obj {
				header = append(header, k)
			}
			sort.Strings(header)
			rows = append(rows, header)
		}

		row := make([]string, len(header))
		for i, k := range header {
			row[i] = stringifyJSON(obj[k])
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		return nil, errors.Wrap(errors.ErrorTypeIO, "failed to read workbook", err).WithContext("file", path)
	}

	name := sheetNameFromPath(path)
	return NewMemoryWorkbook(path, []string{name}, map[string][][]string{name: rows}), nil
}

func stringifyJSON(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		s, err := sonic.MarshalString(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return s
	}
}

func sheetNameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func sheetKey(path, sheet string) (string, error) {
	return cache.SheetKey(path, sheet)
}
