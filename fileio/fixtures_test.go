package fileio

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type sheetFixture struct {
	name string
	rows [][]interface{}
}

// writeXLSX saves sheets, in order, to a new workbook under dir
func writeXLSX(t *testing.T, dir, file string, sheets ...sheetFixture) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", s.name))
		} else {
			_, err := f.NewSheet(s.name)
			require.NoError(t, err)
		}
		for r, row := range s.rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			values := row
			require.NoError(t, f.SetSheetRow(s.name, cell, &values))
		}
	}

	path := filepath.Join(dir, file)
	require.NoError(t, f.SaveAs(path))
	return path
}

// memCache is a SheetCache that counts lookups
type memCache struct {
	data map[string][][]string
	hits int
	puts int
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][][]string)}
}

func (c *memCache) Get(key string) ([][]string, bool) {
	rows, ok := c.data[key]
	if ok {
		c.hits++
	}
	return rows, ok
}

func (c *memCache) Put(key string, rows [][]string) error {
	c.puts++
	c.data[key] = rows
	return nil
}

func row(cells ...interface{}) []interface{} {
	return cells
}

func featureSheets() []sheetFixture {
	return []sheetFixture{
		{name: "Cadence", rows: [][]interface{}{
			row("Cadence license catalog"),
			row("Product", "Feature", "Seats"),
			row("Virtuoso", "Virtuoso_Schematic_Editor_L", 10),
			row("Virtuoso", "Virtuoso_Layout_Suite_XL", 4),
			row("Spectre", "", 3),
		}},
		{name: "Synopsys", rows: [][]interface{}{
			row("Product", "Feature"),
			row("VCS", "VCSRuntime_Net"),
			row("PrimeTime", "Virtuoso_Layout_Suite_XL"),
		}},
		{name: "Notes", rows: [][]interface{}{
			row("nothing to see"),
		}},
	}
}

func userSheets() []sheetFixture {
	return []sheetFixture{
		{name: "Summary", rows: [][]interface{}{row("LAST NAME", "ORGANIZATION")}},
		{name: "Admin-User List", rows: [][]interface{}{
			row("Admin users as of March"),
			row("LAST NAME", "FIRST NAME", "PROJECT NAME", "ORGANIZATION", "microelectornics.us E-MAIL", "NOTES"),
			row("Smith", "Alice", "Apollo", "UCR", "alice@microelectronics.us", ""),
			row("Jones", "Bob", "Apollo", "USC-ISI, The MOSIS Services", "bob@microelectronics.us", ""),
			row("Gone", "Carl", "Apollo", "UCR", "carl@microelectronics.us", "REMOVE"),
			row("Nobody", "Dee", "Apollo", "", "dee@microelectronics.us", ""),
		}},
	}
}
