package output

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/penwyp/UsagePivot/models"
)

func summaryTable() models.Table {
	return models.Table{
		Name:    models.SheetPerformerSummary,
		Columns: []string{"Project", "Product", "Total Usage Time"},
		Rows: []models.Row{
			{models.Text("Apollo"), models.Blank(), models.Number(decimal.RequireFromString("3.5"))},
			{models.Blank(), models.Text("VCS, Net"), models.Int(2)},
		},
	}
}

func provisionTable() models.Table {
	row := func(over, under, adequate models.Cell) models.Row {
		return models.Row{
			models.Text("Apollo"), models.Text("UCR"), models.Text("Synopsys"), models.Text("VCS"),
			models.Int(1), models.Int(2), over, under, adequate, models.Int(4),
		}
	}
	return models.Table{
		Name:    models.SheetActualUsage,
		Columns: append([]string(nil), models.ProvisionColumns...),
		Rows: []models.Row{
			row(models.Blank(), models.Int(-1), models.Blank()),
			row(models.Int(2), models.Blank(), models.Blank()),
			row(models.Blank(), models.Blank(), models.Text("Yes")),
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatNone, false},
		{"none", FormatNone, false},
		{"Table", FormatTable, false},
		{" csv ", FormatCSV, false},
		{"json", FormatJSON, false},
		{"yaml", FormatNone, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewFormatter(t *testing.T) {
	f, err := NewFormatter(FormatNone)
	require.NoError(t, err)
	assert.Nil(t, f)

	f, err = NewFormatter(FormatCSV)
	require.NoError(t, err)
	assert.IsType(t, CSVFormatter{}, f)

	_, err = NewFormatter(Format("xml"))
	assert.Error(t, err)
}

func TestTableFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, TableFormatter{}.Format(&buf, summaryTable()))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "== Performer Summary ==", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "Project  Product   Total Usage Time"), lines[1])
	assert.Contains(t, lines[2], "3.5")
	assert.Contains(t, lines[3], "VCS, Net")
}

func TestCSVFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSVFormatter{}.Format(&buf, summaryTable()))

	assert.Equal(t, "Project,Product,Total Usage Time\nApollo,,3.5\n,\"VCS, Net\",2\n", buf.String())
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSONFormatter{}.Format(&buf, summaryTable()))

	var decoded []map[string]interface{}
	require.NoError(t, sonic.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "Apollo", decoded[0]["Project"])
	assert.Equal(t, 3.5, decoded[0]["Total Usage Time"])
	assert.Equal(t, "", decoded[0]["Product"])
	assert.Equal(t, float64(2), decoded[1]["Total Usage Time"])

	buf.Reset()
	require.NoError(t, JSONFormatter{Indent: "  "}.Format(&buf, summaryTable()))
	assert.Contains(t, buf.String(), "\n  {")
}

func TestProcessedPath(t *testing.T) {
	assert.Equal(t, filepath.Join("data", "usage-march-processed.xlsx"), ProcessedPath(filepath.Join("data", "usage-march.xlsx"), ""))
	assert.Equal(t, filepath.Join("out", "usage-processed.xlsx"), ProcessedPath("/tmp/in/usage.csv", "out"))
}

func TestRawSheet(t *testing.T) {
	rows := [][]string{
		{"Exported 2024-03-02"},
		{"Name", "Seats", "Code"},
		{"Virtuoso", "4", "+1"},
		{"Spectre", "", "n/a"},
	}

	table := RawSheet("Notes", rows, 1)
	assert.Equal(t, "Notes", table.Name)
	assert.Equal(t, []string{"Name", "Seats", "Code"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, models.CellNumber, table.Rows[0][1].Kind)
	assert.Equal(t, models.CellText, table.Rows[0][2].Kind)
	assert.True(t, table.Rows[1][1].IsBlank())

	empty := RawSheet("Empty", nil, 0)
	assert.Empty(t, empty.Columns)
	assert.Empty(t, empty.Rows)
}

func TestRawSheet_LeadingZerosStayText(t *testing.T) {
	rows := [][]string{
		{"Code", "Seats", "Ratio", "Delta"},
		{"00123", "0", "0.25", "-07"},
	}

	table := RawSheet("Codes", rows, 0)
	require.Len(t, table.Rows, 1)
	got := table.Rows[0]
	assert.Equal(t, models.CellText, got[0].Kind)
	assert.Equal(t, "00123", got[0].String())
	assert.Equal(t, models.CellNumber, got[1].Kind)
	assert.Equal(t, models.CellNumber, got[2].Kind)
	assert.Equal(t, models.CellText, got[3].Kind)
}

func TestWorkbookWriter_Write(t *testing.T) {
	usage := models.Table{
		Name:    "Usage",
		Columns: []string{"User Name", "Total usage time (hours)"},
		Rows:    []models.Row{{models.Text("alice"), models.Int(2)}},
	}
	clash := models.Table{Name: "performer summary", Columns: []string{"stale"}}

	tool := summaryTable()
	tool.Name = models.SheetToolSummary

	bundle := ReportBundle{
		Sheets:    []models.Table{usage, clash},
		Performer: summaryTable(),
		Tool:      tool,
		Provision: provisionTable(),
	}
	assert.Equal(t, "2 input sheets, 2 performer rows, 2 tool rows, 3 provisioning rows", bundle.Describe())

	path := filepath.Join(t.TempDir(), "usage-processed.xlsx")
	require.NoError(t, NewWorkbookWriter().Write(path, bundle))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0666), info.Mode().Perm())

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Usage", models.SheetPerformerSummary, models.SheetToolSummary, models.SheetActualUsage}, f.GetSheetList())

	rows, err := f.GetRows("Usage")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"User Name", "Total usage time (hours)"}, {"alice", "2"}}, rows)

	rows, err = f.GetRows(models.SheetPerformerSummary)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "3.5", rows[1][2])
	assert.Equal(t, "VCS, Net", rows[2][1])

	header := cellFont(t, f, "Usage", "A1")
	assert.True(t, header.Bold)

	over := cellFont(t, f, models.SheetActualUsage, "G3")
	assert.True(t, over.Bold)
	assert.True(t, strings.HasSuffix(strings.ToUpper(over.Color), "FF0000"), over.Color)

	under := cellFont(t, f, models.SheetActualUsage, "H2")
	assert.True(t, strings.HasSuffix(strings.ToUpper(under.Color), "0000FF"), under.Color)

	adequate := cellFont(t, f, models.SheetActualUsage, "I4")
	assert.True(t, strings.HasSuffix(strings.ToUpper(adequate.Color), "008000"), adequate.Color)

	// classification headers stay plain bold
	overHeader := cellFont(t, f, models.SheetActualUsage, "G1")
	assert.True(t, overHeader.Bold)
	assert.False(t, strings.HasSuffix(strings.ToUpper(overHeader.Color), "FF0000"))
}

func TestWorkbookWriter_WriteFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.xlsx")
	err := NewWorkbookWriter().Write(path, ReportBundle{
		Performer: summaryTable(),
		Tool:      models.Table{Name: models.SheetToolSummary},
		Provision: provisionTable(),
	})
	assert.Error(t, err)
}

func cellFont(t *testing.T, f *excelize.File, sheet, cell string) excelize.Font {
	t.Helper()
	id, err := f.GetCellStyle(sheet, cell)
	require.NoError(t, err)
	style, err := f.GetStyle(id)
	require.NoError(t, err)
	require.NotNil(t, style.Font, "%s!%s has no font", sheet, cell)
	return *style.Font
}
